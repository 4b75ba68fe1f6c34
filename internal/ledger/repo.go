package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/pkg/db/models"
	"github.com/fosbar/barpos-backend/pkg/enums"
)

// Repository manages persistence for ledger accounts and their transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	FindPerson(ctx context.Context, id uuid.UUID) (*models.Person, error)
	UpdatePersonBalance(ctx context.Context, id uuid.UUID, balanceCents int) error
	FindDebtor(ctx context.Context, id uuid.UUID) (*models.Debtor, error)
	UpdateDebtorDebt(ctx context.Context, id uuid.UUID, debtCents int) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, kind enums.AccountKind, limit int, before *time.Time) ([]models.Transaction, error)
	SumByAccount(ctx context.Context, accountID uuid.UUID, kind enums.AccountKind) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) FindPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	var person models.Person
	if err := r.db.WithContext(ctx).First(&person, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *repository) UpdatePersonBalance(ctx context.Context, id uuid.UUID, balanceCents int) error {
	return r.db.WithContext(ctx).
		Model(&models.Person{}).
		Where("id = ?", id).
		Update("balance_cents", balanceCents).Error
}

func (r *repository) FindDebtor(ctx context.Context, id uuid.UUID) (*models.Debtor, error) {
	var debtor models.Debtor
	if err := r.db.WithContext(ctx).First(&debtor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &debtor, nil
}

func (r *repository) UpdateDebtorDebt(ctx context.Context, id uuid.UUID, debtCents int) error {
	return r.db.WithContext(ctx).
		Model(&models.Debtor{}).
		Where("id = ?", id).
		Update("debt_cents", debtCents).Error
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, kind enums.AccountKind, limit int, before *time.Time) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("account_id = ? AND account_type = ?", accountID, string(kind)).
		Order("created_at DESC")
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var txns []models.Transaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) SumByAccount(ctx context.Context, accountID uuid.UUID, kind enums.AccountKind) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("account_id = ? AND account_type = ?", accountID, string(kind)).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}
