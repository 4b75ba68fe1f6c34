package persons

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/pkg/db/models"
	"github.com/fosbar/barpos-backend/pkg/enums"
	pkgerrors "github.com/fosbar/barpos-backend/pkg/errors"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepository struct {
	persons      map[uuid.UUID]*models.Person
	transactions []*models.Transaction
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{persons: map[uuid.UUID]*models.Person{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(_ context.Context, person *models.Person) error {
	for _, existing := range f.persons {
		if existing.Name == person.Name {
			return errors.New(`duplicate key value violates unique constraint "idx_persons_name"`)
		}
	}
	if person.ID == uuid.Nil {
		person.ID = uuid.New()
	}
	f.persons[person.ID] = person
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Person, error) {
	person, ok := f.persons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return person, nil
}

func (f *fakeRepository) FindByName(_ context.Context, name string) (*models.Person, error) {
	for _, person := range f.persons {
		if person.Name == name {
			return person, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(_ context.Context, includeZeroBalance bool) ([]models.Person, error) {
	var out []models.Person
	for _, person := range f.persons {
		if !includeZeroBalance && person.BalanceCents == 0 {
			continue
		}
		out = append(out, *person)
	}
	return out, nil
}

func (f *fakeRepository) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	person, ok := f.persons[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	person.Name = name
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.persons, id)
	return nil
}

func (f *fakeRepository) CreateTransaction(_ context.Context, txn *models.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	f.transactions = append(f.transactions, txn)
	return nil
}

func newTestService(t *testing.T) (Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	svc, err := NewService(repo, fakeTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func TestCreatePersonWithStartingBalance(t *testing.T) {
	svc, repo := newTestService(t)

	person, err := svc.CreatePerson(context.Background(), CreatePersonInput{
		Name:                "  Anna  ",
		InitialBalanceCents: 2000,
	})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if person.Name != "Anna" {
		t.Errorf("expected trimmed name, got %q", person.Name)
	}
	if person.BalanceCents != 2000 {
		t.Errorf("expected balance 2000, got %d", person.BalanceCents)
	}
	if len(repo.transactions) != 1 {
		t.Fatalf("expected one opening transaction, got %d", len(repo.transactions))
	}
	txn := repo.transactions[0]
	if txn.Type != enums.TransactionTypeInitial {
		t.Errorf("expected initial type, got %s", txn.Type)
	}
	if txn.AmountCents != 2000 {
		t.Errorf("expected +2000, got %d", txn.AmountCents)
	}
}

func TestCreatePersonZeroBalanceSkipsTransaction(t *testing.T) {
	svc, repo := newTestService(t)

	if _, err := svc.CreatePerson(context.Background(), CreatePersonInput{Name: "Anna"}); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if len(repo.transactions) != 0 {
		t.Errorf("no transaction expected for zero balance, got %d", len(repo.transactions))
	}
}

func TestCreatePersonValidation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name  string
		input CreatePersonInput
		code  pkgerrors.Code
	}{
		{"missing name", CreatePersonInput{InitialBalanceCents: 100}, pkgerrors.CodeValidation},
		{"negative balance", CreatePersonInput{Name: "Anna", InitialBalanceCents: -1}, pkgerrors.CodeInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePerson(context.Background(), tc.input)
			var appErr *pkgerrors.Error
			if !errors.As(err, &appErr) || appErr.Code() != tc.code {
				t.Errorf("expected code %s, got %v", tc.code, err)
			}
		})
	}
}

func TestCreatePersonDuplicateName(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.CreatePerson(context.Background(), CreatePersonInput{Name: "Anna"}); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	_, err := svc.CreatePerson(context.Background(), CreatePersonInput{Name: "Anna"})
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestListPersonsHidesZeroBalances(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreatePerson(ctx, CreatePersonInput{Name: "Anna", InitialBalanceCents: 500}); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if _, err := svc.CreatePerson(ctx, CreatePersonInput{Name: "Ben"}); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	active, err := svc.ListPersons(ctx, false)
	if err != nil {
		t.Fatalf("ListPersons: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("expected 1 person with balance, got %d", len(active))
	}

	all, err := svc.ListPersons(ctx, true)
	if err != nil {
		t.Fatalf("ListPersons: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 persons, got %d", len(all))
	}
}

func TestRenamePerson(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	person, err := svc.CreatePerson(ctx, CreatePersonInput{Name: "Anna"})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	renamed, err := svc.RenamePerson(ctx, person.ID, "Anna B")
	if err != nil {
		t.Fatalf("RenamePerson: %v", err)
	}
	if renamed.Name != "Anna B" {
		t.Errorf("expected new name, got %q", renamed.Name)
	}
	if repo.persons[person.ID].Name != "Anna B" {
		t.Error("rename not persisted")
	}
}

func TestDeletePerson(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	person, err := svc.CreatePerson(ctx, CreatePersonInput{Name: "Anna"})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if err := svc.DeletePerson(ctx, person.ID); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}
	if _, ok := repo.persons[person.ID]; ok {
		t.Error("person should be deleted")
	}

	err = svc.DeletePerson(ctx, uuid.New())
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}
