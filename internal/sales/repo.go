package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/pkg/db/models"
)

// SummaryRow aggregates sales for one payment method.
type SummaryRow struct {
	PaymentMethod string
	Count         int64
	TotalCents    int64
}

// CategorySummaryRow aggregates sales for one product category. Sales whose
// product or category no longer exists land under "uncategorized".
type CategorySummaryRow struct {
	Category   string
	Count      int64
	TotalCents int64
}

// ListFilter narrows sale queries to a time window.
type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Before *time.Time
	Limit  int
}

// Repository manages persistence for sales.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSale(ctx context.Context, sale *models.Sale) error
	FindSale(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
	DeleteSalesSince(ctx context.Context, since time.Time) (int64, error)
	ListSales(ctx context.Context, filter ListFilter) ([]models.Sale, error)
	SummaryRows(ctx context.Context, from, to *time.Time) ([]SummaryRow, error)
	CategorySummaryRows(ctx context.Context, from, to *time.Time) ([]CategorySummaryRow, error)
	CountRedemptions(ctx context.Context, from, to *time.Time) (int64, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repository) FindSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) DeleteSale(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Sale{}, "id = ?", id).Error
}

func (r *repository) DeleteSalesSince(ctx context.Context, since time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at >= ?", since).Delete(&models.Sale{})
	return res.RowsAffected, res.Error
}

func (r *repository) ListSales(ctx context.Context, filter ListFilter) ([]models.Sale, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.Before != nil {
		query = query.Where("created_at < ?", *filter.Before)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var sales []models.Sale
	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repository) SummaryRows(ctx context.Context, from, to *time.Time) ([]SummaryRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("payment_method, COUNT(*) AS count, COALESCE(SUM(price_cents), 0) AS total_cents").
		Group("payment_method")
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at < ?", *to)
	}

	var rows []SummaryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CategorySummaryRows(ctx context.Context, from, to *time.Time) ([]CategorySummaryRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("COALESCE(categories.name, 'uncategorized') AS category, COUNT(*) AS count, COALESCE(SUM(sales.price_cents), 0) AS total_cents").
		Joins("LEFT JOIN products ON products.id = sales.product_id").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Group("category").
		Order("total_cents DESC")
	if from != nil {
		query = query.Where("sales.created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("sales.created_at < ?", *to)
	}

	var rows []CategorySummaryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountRedemptions(ctx context.Context, from, to *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("is_free_redemption = ?", true)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at < ?", *to)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
