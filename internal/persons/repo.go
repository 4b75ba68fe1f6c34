package persons

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/pkg/db/models"
)

// Repository manages persistence for person accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, person *models.Person) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Person, error)
	FindByName(ctx context.Context, name string) (*models.Person, error)
	List(ctx context.Context, includeZeroBalance bool) ([]models.Person, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a person repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, person *models.Person) error {
	return r.db.WithContext(ctx).Create(person).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	var person models.Person
	if err := r.db.WithContext(ctx).First(&person, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.Person, error) {
	var person models.Person
	if err := r.db.WithContext(ctx).First(&person, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *repository) List(ctx context.Context, includeZeroBalance bool) ([]models.Person, error) {
	query := r.db.WithContext(ctx).Order("balance_cents DESC, name ASC")
	if !includeZeroBalance {
		query = query.Where("balance_cents <> 0")
	}
	var persons []models.Person
	if err := query.Find(&persons).Error; err != nil {
		return nil, err
	}
	return persons, nil
}

func (r *repository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return r.db.WithContext(ctx).
		Model(&models.Person{}).
		Where("id = ?", id).
		Update("name", name).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Person{}, "id = ?", id).Error
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}
