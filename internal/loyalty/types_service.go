package loyalty

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/pkg/db/models"
	"github.com/fosbar/barpos-backend/pkg/enums"
	pkgerrors "github.com/fosbar/barpos-backend/pkg/errors"
)

// TypeService manages the card type catalog.
type TypeService interface {
	CreateCardType(ctx context.Context, input CardTypeInput) (*models.LoyaltyCardType, error)
	UpdateCardType(ctx context.Context, id uuid.UUID, input CardTypeInput) (*models.LoyaltyCardType, error)
	SetCardTypeActive(ctx context.Context, id uuid.UUID, active bool) error
	GetCardType(ctx context.Context, id uuid.UUID) (*models.LoyaltyCardType, error)
	ListCardTypes(ctx context.Context, includeInactive bool) ([]models.LoyaltyCardType, error)
}

type typeService struct {
	repo Repository
}

// CardTypeInput captures the configurable fields of a card type.
type CardTypeInput struct {
	Name              string            `json:"name"`
	Description       *string           `json:"description"`
	Scheme            enums.CardScheme  `json:"scheme"`
	RequiredPurchases int               `json:"required_purchases"`
	PayCount          int               `json:"pay_count"`
	GetCount          int               `json:"get_count"`
	Binding           enums.CardBinding `json:"binding"`
	ProductID         *uuid.UUID        `json:"product_id"`
	ProductIDs        []uuid.UUID       `json:"product_ids"`
	CategoryID        *uuid.UUID        `json:"category_id"`
	AllowUpgrade      bool              `json:"allow_upgrade"`
}

// NewTypeService wires a card type service with the provided repository.
func NewTypeService(repo Repository) (TypeService, error) {
	if repo == nil {
		return nil, fmt.Errorf("loyalty repository required")
	}
	return &typeService{repo: repo}, nil
}

func (s *typeService) CreateCardType(ctx context.Context, input CardTypeInput) (*models.LoyaltyCardType, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	ct := &models.LoyaltyCardType{
		Name:              input.Name,
		Description:       input.Description,
		Scheme:            input.Scheme,
		RequiredPurchases: input.RequiredPurchases,
		PayCount:          input.PayCount,
		GetCount:          input.GetCount,
		Binding:           input.Binding,
		ProductID:         input.ProductID,
		ProductIDs:        pq.StringArray(uuidStrings(input.ProductIDs)),
		CategoryID:        input.CategoryID,
		AllowUpgrade:      input.AllowUpgrade,
		IsActive:          true,
	}
	if err := s.repo.CreateCardType(ctx, ct); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create card type")
	}
	return ct, nil
}

func (s *typeService) UpdateCardType(ctx context.Context, id uuid.UUID, input CardTypeInput) (*models.LoyaltyCardType, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card type id required")
	}
	if _, err := s.repo.FindCardType(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "card type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load card type")
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":               input.Name,
		"description":        input.Description,
		"scheme":             input.Scheme,
		"required_purchases": input.RequiredPurchases,
		"pay_count":          input.PayCount,
		"get_count":          input.GetCount,
		"binding":            input.Binding,
		"product_id":         input.ProductID,
		"product_ids":        pq.StringArray(uuidStrings(input.ProductIDs)),
		"category_id":        input.CategoryID,
		"allow_upgrade":      input.AllowUpgrade,
	}
	if err := s.repo.UpdateCardType(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update card type")
	}
	return s.repo.FindCardType(ctx, id)
}

func (s *typeService) SetCardTypeActive(ctx context.Context, id uuid.UUID, active bool) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "card type id required")
	}
	if _, err := s.repo.FindCardType(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "card type not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load card type")
	}
	if err := s.repo.UpdateCardType(ctx, id, map[string]any{"is_active": active}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update card type")
	}
	return nil
}

func (s *typeService) GetCardType(ctx context.Context, id uuid.UUID) (*models.LoyaltyCardType, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card type id required")
	}
	ct, err := s.repo.FindCardType(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "card type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load card type")
	}
	return ct, nil
}

func (s *typeService) ListCardTypes(ctx context.Context, includeInactive bool) ([]models.LoyaltyCardType, error) {
	types, err := s.repo.ListCardTypes(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list card types")
	}
	return types, nil
}

func (s *typeService) validate(ctx context.Context, input CardTypeInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if !input.Scheme.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid scheme")
	}
	if !input.Binding.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid binding")
	}

	switch input.Scheme {
	case enums.CardSchemeBuyNGet1, enums.CardSchemeStampsOnly:
		if input.RequiredPurchases < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "required purchases must be at least 1")
		}
	case enums.CardSchemePayNGetM:
		if input.PayCount < 1 || input.GetCount < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "pay and get counts must be at least 1")
		}
		if input.GetCount <= input.PayCount {
			return pkgerrors.New(pkgerrors.CodeValidation, "get count must exceed pay count")
		}
	}

	switch input.Binding {
	case enums.CardBindingProduct:
		if input.ProductID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id required for product binding")
		}
	case enums.CardBindingProducts:
		if len(input.ProductIDs) < 2 {
			return pkgerrors.New(pkgerrors.CodeValidation, "at least 2 products required for products binding")
		}
		products, err := s.repo.ProductsByIDs(ctx, input.ProductIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}
		if len(products) != len(input.ProductIDs) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown product in products binding")
		}
		for _, product := range products[1:] {
			if product.PriceCents != products[0].PriceCents {
				return pkgerrors.New(pkgerrors.CodeValidation, "all bound products must share the same price")
			}
		}
	case enums.CardBindingCategory:
		if input.CategoryID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "category id required for category binding")
		}
	}

	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
