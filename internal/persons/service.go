package persons

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

// Service manages person accounts. Balance movements happen in the ledger;
// this service only handles the account lifecycle.
type Service interface {
	CreatePerson(ctx context.Context, input CreatePersonInput) (*models.Person, error)
	GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error)
	ListPersons(ctx context.Context, includeZeroBalance bool) ([]models.Person, error)
	RenamePerson(ctx context.Context, id uuid.UUID, name string) (*models.Person, error)
	DeletePerson(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// CreatePersonInput creates a person, optionally with a starting balance.
type CreatePersonInput struct {
	Name                string
	InitialBalanceCents int
}

const initialBalanceNote = "starting balance"

// NewService wires a person service with the provided dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("person repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreatePerson(ctx context.Context, input CreatePersonInput) (*models.Person, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.InitialBalanceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "initial balance must not be negative")
	}

	person := &models.Person{
		Name:         name,
		BalanceCents: input.InitialBalanceCents,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, person); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "a person with this name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create person")
		}
		if input.InitialBalanceCents > 0 {
			note := initialBalanceNote
			txn := &models.Transaction{
				AccountID:   person.ID,
				AccountType: string(enums.AccountKindPerson),
				Type:        enums.TransactionTypeInitial,
				AmountCents: input.InitialBalanceCents,
				Note:        &note,
			}
			if err := repo.CreateTransaction(ctx, txn); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record starting balance")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return person, nil
}

func (s *service) GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "person id required")
	}
	person, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "person not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load person")
	}
	return person, nil
}

func (s *service) ListPersons(ctx context.Context, includeZeroBalance bool) ([]models.Person, error) {
	persons, err := s.repo.List(ctx, includeZeroBalance)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list persons")
	}
	return persons, nil
}

func (s *service) RenamePerson(ctx context.Context, id uuid.UUID, name string) (*models.Person, error) {
	name = strings.TrimSpace(name)
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "person id required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if _, err := s.GetPerson(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateName(ctx, id, name); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a person with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename person")
	}
	return s.GetPerson(ctx, id)
}

// DeletePerson removes the account along with its transactions and loyalty
// cards.
func (s *service) DeletePerson(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetPerson(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete person")
	}
	return nil
}
