package debtors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/pkg/db/models"
)

// Repository manages persistence for debtor accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, debtor *models.Debtor) error
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Debtor, error)
	List(ctx context.Context, includeSettled bool) ([]models.Debtor, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a debtor repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, debtor *models.Debtor) error {
	return r.db.WithContext(ctx).Create(debtor).Error
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Debtor, error) {
	var debtor models.Debtor
	if err := r.db.WithContext(ctx).First(&debtor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &debtor, nil
}

func (r *repository) List(ctx context.Context, includeSettled bool) ([]models.Debtor, error) {
	query := r.db.WithContext(ctx).Order("debt_cents DESC, name ASC")
	if !includeSettled {
		query = query.Where("debt_cents <> 0")
	}
	var debtors []models.Debtor
	if err := query.Find(&debtors).Error; err != nil {
		return nil, err
	}
	return debtors, nil
}

func (r *repository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return r.db.WithContext(ctx).
		Model(&models.Debtor{}).
		Where("id = ?", id).
		Update("name", name).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Debtor{}, "id = ?", id).Error
}
