package debtors

import (
	"context"
	"fmt"
	"strings"

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

// Service manages debtor accounts. Debt movements happen in the ledger.
type Service interface {
	CreateDebtor(ctx context.Context, input CreateDebtorInput) (*models.Debtor, error)
	GetDebtor(ctx context.Context, id uuid.UUID) (*models.Debtor, error)
	ListDebtors(ctx context.Context, includeSettled bool) ([]models.Debtor, error)
	RenameDebtor(ctx context.Context, id uuid.UUID, name string) (*models.Debtor, error)
	DeleteDebtor(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// CreateDebtorInput creates a debtor, optionally already owing something.
type CreateDebtorInput struct {
	Name             string
	InitialDebtCents int
}

const initialDebtNote = "opening debt"

// NewService wires a debtor service with the provided dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("debtor repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateDebtor(ctx context.Context, input CreateDebtorInput) (*models.Debtor, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.InitialDebtCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "initial debt must not be negative")
	}

	debtor := &models.Debtor{
		Name:      name,
		DebtCents: input.InitialDebtCents,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, debtor); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "a debtor with this name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create debtor")
		}
		if input.InitialDebtCents > 0 {
			note := initialDebtNote
			txn := &models.Transaction{
				AccountID:   debtor.ID,
				AccountType: string(enums.AccountKindDebtor),
				Type:        enums.TransactionTypeInitial,
				AmountCents: input.InitialDebtCents,
				Note:        &note,
			}
			if err := repo.CreateTransaction(ctx, txn); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record opening debt")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return debtor, nil
}

func (s *service) GetDebtor(ctx context.Context, id uuid.UUID) (*models.Debtor, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debtor id required")
	}
	debtor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "debtor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debtor")
	}
	return debtor, nil
}

func (s *service) ListDebtors(ctx context.Context, includeSettled bool) ([]models.Debtor, error) {
	debtors, err := s.repo.List(ctx, includeSettled)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list debtors")
	}
	return debtors, nil
}

func (s *service) RenameDebtor(ctx context.Context, id uuid.UUID, name string) (*models.Debtor, error) {
	name = strings.TrimSpace(name)
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debtor id required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if _, err := s.GetDebtor(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateName(ctx, id, name); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a debtor with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename debtor")
	}
	return s.GetDebtor(ctx, id)
}

// DeleteDebtor removes a settled account. Outstanding debt must be paid or
// forgiven first so the transaction log stays explainable.
func (s *service) DeleteDebtor(ctx context.Context, id uuid.UUID) error {
	debtor, err := s.GetDebtor(ctx, id)
	if err != nil {
		return err
	}
	if debtor.DebtCents != 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "debtor still has outstanding debt")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete debtor")
	}
	return nil
}
