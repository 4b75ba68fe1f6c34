package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/pkg/db/models"
	"github.com/fosbar/barpos-backend/pkg/enums"
	pkgerrors "github.com/fosbar/barpos-backend/pkg/errors"
	"github.com/fosbar/barpos-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the balance-moving operations for persons and debtors.
// Every mutation appends exactly one transaction row and updates the stored
// balance in the same database transaction, so the stored value always equals
// the signed sum of the account's transaction log.
type Service interface {
	CreditPerson(ctx context.Context, input CreditPersonInput) (*models.Transaction, error)
	ChargePerson(ctx context.Context, input ChargePersonInput) (*models.Transaction, error)
	ChargePersonTx(ctx context.Context, tx *gorm.DB, input ChargePersonInput) (*models.Transaction, error)
	RefundPerson(ctx context.Context, input RefundPersonInput) (*models.Transaction, error)
	RefundPersonTx(ctx context.Context, tx *gorm.DB, input RefundPersonInput) (*models.Transaction, error)
	AddDebt(ctx context.Context, input AddDebtInput) (*models.Transaction, error)
	AddDebtTx(ctx context.Context, tx *gorm.DB, input AddDebtInput) (*models.Transaction, error)
	PayDebt(ctx context.Context, input PayDebtInput) (*models.Transaction, error)
	ListTransactions(ctx context.Context, input ListTransactionsInput) ([]models.Transaction, string, error)
	CheckBalance(ctx context.Context, accountID uuid.UUID, kind enums.AccountKind) (*BalanceCheck, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// CreditPersonInput tops up a person's prepaid balance.
type CreditPersonInput struct {
	PersonID    uuid.UUID
	AmountCents int
	Note        *string
}

// ChargePersonInput debits a person's prepaid balance for a purchase.
type ChargePersonInput struct {
	PersonID    uuid.UUID
	AmountCents int
	ProductName *string
	SaleID      *uuid.UUID
}

// RefundPersonInput returns a previously charged amount to a person.
type RefundPersonInput struct {
	PersonID    uuid.UUID
	AmountCents int
	ProductName *string
	SaleID      *uuid.UUID
	Note        *string
}

// AddDebtInput grows a debtor's outstanding debt. Manual marks amounts entered
// by hand rather than rung up as a product sale.
type AddDebtInput struct {
	DebtorID    uuid.UUID
	AmountCents int
	ProductName *string
	SaleID      *uuid.UUID
	Note        *string
	Manual      bool
}

// PayDebtInput settles part of a debtor's debt. A zero amount forgives the
// entire remaining debt.
type PayDebtInput struct {
	DebtorID    uuid.UUID
	AmountCents int
	Note        *string
}

// ListTransactionsInput pages through an account's transaction history.
type ListTransactionsInput struct {
	AccountID uuid.UUID
	Kind      enums.AccountKind
	Page      pagination.Params
}

// BalanceCheck compares the stored balance against a replay of the
// transaction log.
type BalanceCheck struct {
	AccountID       uuid.UUID         `json:"account_id"`
	Kind            enums.AccountKind `json:"kind"`
	StoredCents     int               `json:"stored_cents"`
	RecomputedCents int               `json:"recomputed_cents"`
	Consistent      bool              `json:"consistent"`
}

const debtForgivenNote = "settled without payment"

// NewService wires a ledger service with the provided dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreditPerson(ctx context.Context, input CreditPersonInput) (*models.Transaction, error) {
	if input.PersonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "person id required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "credit amount must be positive")
	}

	var txn *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		person, err := repo.FindPerson(ctx, input.PersonID)
		if err != nil {
			return personLookupError(err)
		}

		txn = &models.Transaction{
			AccountID:   person.ID,
			AccountType: string(enums.AccountKindPerson),
			Type:        enums.TransactionTypeCredit,
			AmountCents: input.AmountCents,
			Note:        input.Note,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record credit")
		}
		return repo.UpdatePersonBalance(ctx, person.ID, person.BalanceCents+input.AmountCents)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) ChargePerson(ctx context.Context, input ChargePersonInput) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		t, err := s.ChargePersonTx(ctx, tx, input)
		txn = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) ChargePersonTx(ctx context.Context, tx *gorm.DB, input ChargePersonInput) (*models.Transaction, error) {
	if input.PersonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "person id required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "charge amount must be positive")
	}

	repo := s.repo.WithTx(tx)
	person, err := repo.FindPerson(ctx, input.PersonID)
	if err != nil {
		return nil, personLookupError(err)
	}
	if person.BalanceCents < input.AmountCents {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientBalance, "balance does not cover charge").
			WithDetails(map[string]int{
				"balance_cents": person.BalanceCents,
				"amount_cents":  input.AmountCents,
			})
	}

	txn := &models.Transaction{
		AccountID:   person.ID,
		AccountType: string(enums.AccountKindPerson),
		Type:        enums.TransactionTypePurchase,
		AmountCents: -input.AmountCents,
		ProductName: input.ProductName,
		SaleID:      input.SaleID,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record charge")
	}
	if err := repo.UpdatePersonBalance(ctx, person.ID, person.BalanceCents-input.AmountCents); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update balance")
	}
	return txn, nil
}

func (s *service) RefundPerson(ctx context.Context, input RefundPersonInput) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		t, err := s.RefundPersonTx(ctx, tx, input)
		txn = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) RefundPersonTx(ctx context.Context, tx *gorm.DB, input RefundPersonInput) (*models.Transaction, error) {
	if input.PersonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "person id required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "refund amount must be positive")
	}

	repo := s.repo.WithTx(tx)
	person, err := repo.FindPerson(ctx, input.PersonID)
	if err != nil {
		return nil, personLookupError(err)
	}

	txn := &models.Transaction{
		AccountID:   person.ID,
		AccountType: string(enums.AccountKindPerson),
		Type:        enums.TransactionTypeRefund,
		AmountCents: input.AmountCents,
		ProductName: input.ProductName,
		SaleID:      input.SaleID,
		Note:        input.Note,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record refund")
	}
	if err := repo.UpdatePersonBalance(ctx, person.ID, person.BalanceCents+input.AmountCents); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update balance")
	}
	return txn, nil
}

func (s *service) AddDebt(ctx context.Context, input AddDebtInput) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		t, err := s.AddDebtTx(ctx, tx, input)
		txn = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) AddDebtTx(ctx context.Context, tx *gorm.DB, input AddDebtInput) (*models.Transaction, error) {
	if input.DebtorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debtor id required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "debt amount must be positive")
	}

	repo := s.repo.WithTx(tx)
	debtor, err := repo.FindDebtor(ctx, input.DebtorID)
	if err != nil {
		return nil, debtorLookupError(err)
	}

	txnType := enums.TransactionTypePurchase
	if input.Manual {
		txnType = enums.TransactionTypeManual
	}
	txn := &models.Transaction{
		AccountID:   debtor.ID,
		AccountType: string(enums.AccountKindDebtor),
		Type:        txnType,
		AmountCents: input.AmountCents,
		ProductName: input.ProductName,
		SaleID:      input.SaleID,
		Note:        input.Note,
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record debt")
	}
	if err := repo.UpdateDebtorDebt(ctx, debtor.ID, debtor.DebtCents+input.AmountCents); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update debt")
	}
	return txn, nil
}

func (s *service) PayDebt(ctx context.Context, input PayDebtInput) (*models.Transaction, error) {
	if input.DebtorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debtor id required")
	}
	if input.AmountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "payment amount must not be negative")
	}

	var txn *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		debtor, err := repo.FindDebtor(ctx, input.DebtorID)
		if err != nil {
			return debtorLookupError(err)
		}
		if input.AmountCents > debtor.DebtCents {
			return pkgerrors.New(pkgerrors.CodeAmountExceedsDebt, "payment exceeds outstanding debt").
				WithDetails(map[string]int{
					"debt_cents":   debtor.DebtCents,
					"amount_cents": input.AmountCents,
				})
		}

		// A zero payment forgives the whole remaining debt. The forgiveness
		// entry itself carries amount 0, so a forgiven account no longer
		// replays to its stored balance; CheckBalance surfaces the gap.
		remaining := debtor.DebtCents - input.AmountCents
		note := input.Note
		if input.AmountCents == 0 {
			remaining = 0
			forgiven := debtForgivenNote
			note = &forgiven
		}

		txn = &models.Transaction{
			AccountID:   debtor.ID,
			AccountType: string(enums.AccountKindDebtor),
			Type:        enums.TransactionTypePayment,
			AmountCents: -input.AmountCents,
			Note:        note,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment")
		}
		return repo.UpdateDebtorDebt(ctx, debtor.ID, remaining)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]models.Transaction, string, error) {
	if input.AccountID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	if !input.Kind.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid account kind")
	}

	cursor, err := pagination.ParseCursor(input.Page.Cursor)
	if err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Page.Limit)

	var before *time.Time
	if cursor != nil {
		before = &cursor.CreatedAt
	}
	txns, err := s.repo.ListByAccount(ctx, input.AccountID, input.Kind, pagination.LimitWithBuffer(input.Page.Limit), before)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	next := ""
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return txns, next, nil
}

func (s *service) CheckBalance(ctx context.Context, accountID uuid.UUID, kind enums.AccountKind) (*BalanceCheck, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account kind")
	}

	var stored int
	switch kind {
	case enums.AccountKindPerson:
		person, err := s.repo.FindPerson(ctx, accountID)
		if err != nil {
			return nil, personLookupError(err)
		}
		stored = person.BalanceCents
	case enums.AccountKindDebtor:
		debtor, err := s.repo.FindDebtor(ctx, accountID)
		if err != nil {
			return nil, debtorLookupError(err)
		}
		stored = debtor.DebtCents
	}

	recomputed, err := s.repo.SumByAccount(ctx, accountID, kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replay transactions")
	}
	return &BalanceCheck{
		AccountID:       accountID,
		Kind:            kind,
		StoredCents:     stored,
		RecomputedCents: recomputed,
		Consistent:      stored == recomputed,
	}, nil
}

func personLookupError(err error) error {
	if err == gorm.ErrRecordNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "person not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load person")
}

func debtorLookupError(err error) error {
	if err == gorm.ErrRecordNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "debtor not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debtor")
}
