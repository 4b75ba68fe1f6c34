package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/pkg/db/models"
	pkgerrors "github.com/fosbar/barpos-backend/pkg/errors"
)

// Service tracks stock movements per product. Stock levels are derived by
// summing the movement log, never stored.
type Service interface {
	Restock(ctx context.Context, input AdjustInput) (*models.InventoryEntry, error)
	Adjust(ctx context.Context, input AdjustInput) (*models.InventoryEntry, error)
	AdjustTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int, note string) error
	Stock(ctx context.Context, productID uuid.UUID) (int, error)
	StockLevels(ctx context.Context) ([]StockRow, error)
	History(ctx context.Context, productID uuid.UUID) ([]models.InventoryEntry, error)
}

type service struct {
	repo Repository
}

// AdjustInput describes one stock movement.
type AdjustInput struct {
	ProductID      uuid.UUID
	QuantityChange int
	Note           *string
}

// NewService wires an inventory service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Restock(ctx context.Context, input AdjustInput) (*models.InventoryEntry, error) {
	if input.QuantityChange <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "restock quantity must be positive")
	}
	return s.applyAdjustment(ctx, input)
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.InventoryEntry, error) {
	if input.QuantityChange == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "quantity change must not be zero")
	}
	return s.applyAdjustment(ctx, input)
}

func (s *service) applyAdjustment(ctx context.Context, input AdjustInput) (*models.InventoryEntry, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	exists, err := s.repo.ProductExists(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	entry := &models.InventoryEntry{
		ProductID:      input.ProductID,
		QuantityChange: input.QuantityChange,
		Note:           input.Note,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record movement")
	}
	return entry, nil
}

// AdjustTx records a stock movement inside the caller's transaction. Used by
// the sale flow so the movement commits or rolls back with the sale.
func (s *service) AdjustTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int, note string) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if delta == 0 {
		return nil
	}
	entry := &models.InventoryEntry{
		ProductID:      productID,
		QuantityChange: delta,
		Note:           &note,
	}
	if err := s.repo.WithTx(tx).CreateEntry(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record movement")
	}
	return nil
}

func (s *service) Stock(ctx context.Context, productID uuid.UUID) (int, error) {
	if productID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	stock, err := s.repo.StockFor(ctx, productID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum movements")
	}
	return stock, nil
}

func (s *service) StockLevels(ctx context.Context) ([]StockRow, error) {
	rows, err := s.repo.StockLevels(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate stock")
	}
	return rows, nil
}

func (s *service) History(ctx context.Context, productID uuid.UUID) ([]models.InventoryEntry, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	entries, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list movements")
	}
	return entries, nil
}
