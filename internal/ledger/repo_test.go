package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/pkg/db/models"
	"github.com/fosbar/barpos-backend/pkg/enums"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	persons := `
CREATE TABLE IF NOT EXISTS persons (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  balance_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	debtors := `
CREATE TABLE IF NOT EXISTS debtors (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  debt_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	transactions := `
CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  account_type TEXT NOT NULL,
  type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  note TEXT,
  product_name TEXT,
  sale_id TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(persons).Error)
	require.NoError(t, db.Exec(debtors).Error)
	require.NoError(t, db.Exec(transactions).Error)
	require.NoError(t, db.Exec(`DELETE FROM transactions`).Error)
	require.NoError(t, db.Exec(`DELETE FROM persons`).Error)
	require.NoError(t, db.Exec(`DELETE FROM debtors`).Error)
	return db
}

func newPerson(t *testing.T, db *gorm.DB, name string, balanceCents int) *models.Person {
	t.Helper()

	person := &models.Person{ID: uuid.New(), Name: name, BalanceCents: balanceCents}
	require.NoError(t, db.Create(person).Error)
	return person
}

func newTransaction(t *testing.T, db *gorm.DB, repo Repository, accountID uuid.UUID, kind enums.AccountKind, amountCents int, createdAt time.Time) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		AccountType: string(kind),
		Type:        enums.TransactionTypePurchase,
		AmountCents: amountCents,
		CreatedAt:   createdAt,
	}
	require.NoError(t, repo.CreateTransaction(context.Background(), txn))
	return txn
}

func TestUpdatePersonBalance(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	person := newPerson(t, db, "Anna", 1000)

	require.NoError(t, repo.UpdatePersonBalance(ctx, person.ID, 650))

	reloaded, err := repo.FindPerson(ctx, person.ID)
	require.NoError(t, err)
	assert.Equal(t, 650, reloaded.BalanceCents)
}

func TestFindPersonMissing(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindPerson(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSumByAccount(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	person := newPerson(t, db, "Anna", 0)
	other := newPerson(t, db, "Ben", 0)
	now := time.Now()

	newTransaction(t, db, repo, person.ID, enums.AccountKindPerson, 2000, now.Add(-3*time.Minute))
	newTransaction(t, db, repo, person.ID, enums.AccountKindPerson, -350, now.Add(-2*time.Minute))
	newTransaction(t, db, repo, person.ID, enums.AccountKindPerson, -350, now.Add(-time.Minute))
	newTransaction(t, db, repo, other.ID, enums.AccountKindPerson, 500, now)

	total, err := repo.SumByAccount(ctx, person.ID, enums.AccountKindPerson)
	require.NoError(t, err)
	assert.Equal(t, 1300, total)

	empty, err := repo.SumByAccount(ctx, uuid.New(), enums.AccountKindPerson)
	require.NoError(t, err)
	assert.Equal(t, 0, empty)
}

func TestListByAccountOrderAndCursor(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	person := newPerson(t, db, "Anna", 0)
	now := time.Now().Truncate(time.Second)

	oldest := newTransaction(t, db, repo, person.ID, enums.AccountKindPerson, 100, now.Add(-3*time.Hour))
	middle := newTransaction(t, db, repo, person.ID, enums.AccountKindPerson, 200, now.Add(-2*time.Hour))
	newest := newTransaction(t, db, repo, person.ID, enums.AccountKindPerson, 300, now.Add(-time.Hour))

	page, err := repo.ListByAccount(ctx, person.ID, enums.AccountKindPerson, 2, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, newest.ID, page[0].ID)
	assert.Equal(t, middle.ID, page[1].ID)

	before := page[1].CreatedAt
	rest, err := repo.ListByAccount(ctx, person.ID, enums.AccountKindPerson, 2, &before)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, oldest.ID, rest[0].ID)
}

func TestDebtorDebtRoundTrip(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	debtor := &models.Debtor{ID: uuid.New(), Name: "Chris", DebtCents: 0}
	require.NoError(t, db.Create(debtor).Error)

	require.NoError(t, repo.UpdateDebtorDebt(ctx, debtor.ID, 1200))

	reloaded, err := repo.FindDebtor(ctx, debtor.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200, reloaded.DebtCents)
}
