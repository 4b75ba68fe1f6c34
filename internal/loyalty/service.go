package loyalty

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/pkg/db"
	"github.com/fosbar/barpos-backend/pkg/db/models"
	"github.com/fosbar/barpos-backend/pkg/enums"
	pkgerrors "github.com/fosbar/barpos-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service applies purchases to a person's loyalty cards and manages card
// assignment.
type Service interface {
	ProcessPurchaseTx(ctx context.Context, tx *gorm.DB, input ProcessPurchaseInput) (*PurchaseResult, error)
	AssignCard(ctx context.Context, input AssignCardInput) (*models.LoyaltyCard, error)
	RemoveCard(ctx context.Context, cardID uuid.UUID) error
	ListPersonCards(ctx context.Context, personID uuid.UUID) ([]models.LoyaltyCard, error)
	CardHistory(ctx context.Context, cardID uuid.UUID) ([]models.StampEvent, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// ProcessPurchaseInput describes one purchased product to stamp against the
// person's cards.
type ProcessPurchaseInput struct {
	PersonID uuid.UUID
	Product  models.Product
	SaleID   *uuid.UUID
}

// PurchaseResult reports the loyalty effect of a purchase. MatchedCards is
// the number of cards the product was eligible for, whether or not any of
// them was full enough to redeem.
type PurchaseResult struct {
	Redemption   *Redemption
	StampsAdded  int
	Completed    int
	MatchedCards int
}

// AssignCardInput hands a person a fresh card of the given type.
type AssignCardInput struct {
	PersonID   uuid.UUID
	CardTypeID uuid.UUID
}

// NewService wires a loyalty service with the provided dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loyalty repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// ProcessPurchaseTx evaluates the purchase against the person's cards and
// applies the result inside the caller's transaction. Evaluation happens
// before any write, so a failed purchase leaves every card untouched.
func (s *service) ProcessPurchaseTx(ctx context.Context, tx *gorm.DB, input ProcessPurchaseInput) (*PurchaseResult, error) {
	if input.PersonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "person id required")
	}
	if input.Product.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product required")
	}

	repo := s.repo.WithTx(tx)
	cards, err := repo.ListCardsByPerson(ctx, input.PersonID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load loyalty cards")
	}

	evalCards := make([]EvalCard, 0, len(cards))
	basePrices := map[uuid.UUID]int{}
	for _, card := range cards {
		if card.CardType == nil {
			continue
		}
		base, ok := basePrices[card.CardTypeID]
		if !ok {
			base, err = repo.BasePriceCents(ctx, *card.CardType)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve base price")
			}
			basePrices[card.CardTypeID] = base
		}
		evalCards = append(evalCards, EvalCard{Card: card, CardType: *card.CardType, BasePriceCents: base})
	}

	eval := Evaluate(input.Product, evalCards)
	result := &PurchaseResult{
		Redemption:   eval.Redemption,
		Completed:    len(eval.Completions),
		MatchedCards: eval.EligibleCards,
	}

	byID := map[uuid.UUID]models.LoyaltyCard{}
	for _, card := range cards {
		byID[card.ID] = card
	}

	applied := map[uuid.UUID]int{}
	for _, grant := range eval.Grants {
		card := byID[grant.CardID]
		event := &models.StampEvent{
			CardID:      card.ID,
			Action:      enums.StampActionStamp,
			ProductID:   &input.Product.ID,
			ProductName: &input.Product.Name,
			SaleID:      input.SaleID,
			StampsAdded: grant.Stamps,
			Note:        grant.Note,
		}
		if err := repo.CreateStampEvent(ctx, event); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stamp")
		}
		if err := repo.UpdateCardProgress(ctx, card.ID, card.CurrentStamps+grant.Stamps, card.CompletedCards); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update card")
		}
		applied[card.ID] += grant.Stamps
		result.StampsAdded += grant.Stamps
	}

	for _, completion := range eval.Completions {
		card := byID[completion.CardID]
		note := completionNote
		event := &models.StampEvent{
			CardID: card.ID,
			Action: enums.StampActionComplete,
			Note:   &note,
		}
		if err := repo.CreateStampEvent(ctx, event); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record completion")
		}
		if err := repo.UpdateCardProgress(ctx, card.ID, card.CurrentStamps+applied[card.ID], card.CompletedCards+1); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update card")
		}
	}

	if eval.Redemption != nil {
		event := &models.StampEvent{
			CardID:      eval.Redemption.CardID,
			Action:      enums.StampActionRedeem,
			ProductID:   &input.Product.ID,
			ProductName: &input.Product.Name,
			SaleID:      input.SaleID,
			StampsUsed:  eval.Redemption.StampsUsed,
		}
		if err := repo.CreateStampEvent(ctx, event); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record redemption")
		}
	}

	for _, cardID := range eval.DestroyCardIDs {
		if err := repo.DeleteCard(ctx, cardID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "destroy card")
		}
	}

	return result, nil
}

func (s *service) AssignCard(ctx context.Context, input AssignCardInput) (*models.LoyaltyCard, error) {
	if input.PersonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "person id required")
	}
	if input.CardTypeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card type id required")
	}

	exists, err := s.repo.PersonExists(ctx, input.PersonID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check person")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "person not found")
	}

	ct, err := s.repo.FindCardType(ctx, input.CardTypeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "card type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load card type")
	}
	if !ct.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card type is inactive")
	}

	card := &models.LoyaltyCard{
		PersonID:   input.PersonID,
		CardTypeID: ct.ID,
	}
	if err := s.repo.CreateCard(ctx, card); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "person already holds a card of this type")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create card")
	}
	card.CardType = ct
	return card, nil
}

func (s *service) RemoveCard(ctx context.Context, cardID uuid.UUID) error {
	if cardID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "card id required")
	}
	if _, err := s.repo.FindCard(ctx, cardID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load card")
	}
	if err := s.repo.DeleteCard(ctx, cardID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete card")
	}
	return nil
}

func (s *service) ListPersonCards(ctx context.Context, personID uuid.UUID) ([]models.LoyaltyCard, error) {
	if personID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "person id required")
	}
	cards, err := s.repo.ListCardsByPerson(ctx, personID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cards")
	}
	return cards, nil
}

func (s *service) CardHistory(ctx context.Context, cardID uuid.UUID) ([]models.StampEvent, error) {
	if cardID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card id required")
	}
	if _, err := s.repo.FindCard(ctx, cardID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "card not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load card")
	}
	events, err := s.repo.ListEventsByCard(ctx, cardID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}
	return events, nil
}
