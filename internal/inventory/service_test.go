package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/pkg/db/models"
	pkgerrors "github.com/fosbar/barpos-backend/pkg/errors"
)

type fakeRepository struct {
	products map[uuid.UUID]bool
	entries  []*models.InventoryEntry
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{products: map[uuid.UUID]bool{}}
}

func (f *fakeRepository) seedProduct() uuid.UUID {
	id := uuid.New()
	f.products[id] = true
	return id
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) CreateEntry(_ context.Context, entry *models.InventoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeRepository) ListByProduct(_ context.Context, productID uuid.UUID) ([]models.InventoryEntry, error) {
	var out []models.InventoryEntry
	for _, entry := range f.entries {
		if entry.ProductID == productID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (f *fakeRepository) StockFor(_ context.Context, productID uuid.UUID) (int, error) {
	total := 0
	for _, entry := range f.entries {
		if entry.ProductID == productID {
			total += entry.QuantityChange
		}
	}
	return total, nil
}

func (f *fakeRepository) StockLevels(_ context.Context) ([]StockRow, error) {
	totals := map[uuid.UUID]int{}
	for _, entry := range f.entries {
		totals[entry.ProductID] += entry.QuantityChange
	}
	var out []StockRow
	for id, stock := range totals {
		out = append(out, StockRow{ProductID: id, Stock: stock})
	}
	return out, nil
}

func (f *fakeRepository) ProductExists(_ context.Context, productID uuid.UUID) (bool, error) {
	return f.products[productID], nil
}

func TestRestockThenSellTracksStock(t *testing.T) {
	repo := newFakeRepository()
	productID := repo.seedProduct()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.Restock(ctx, AdjustInput{ProductID: productID, QuantityChange: 24}); err != nil {
		t.Fatalf("Restock: %v", err)
	}
	if err := svc.AdjustTx(ctx, nil, productID, -1, "sale"); err != nil {
		t.Fatalf("AdjustTx: %v", err)
	}
	if err := svc.AdjustTx(ctx, nil, productID, -1, "sale"); err != nil {
		t.Fatalf("AdjustTx: %v", err)
	}

	stock, err := svc.Stock(ctx, productID)
	if err != nil {
		t.Fatalf("Stock: %v", err)
	}
	if stock != 22 {
		t.Errorf("expected stock 22, got %d", stock)
	}
}

func TestRestockRejectsNonPositive(t *testing.T) {
	repo := newFakeRepository()
	productID := repo.seedProduct()
	svc, _ := NewService(repo)

	for _, qty := range []int{0, -5} {
		_, err := svc.Restock(context.Background(), AdjustInput{ProductID: productID, QuantityChange: qty})
		var appErr *pkgerrors.Error
		if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeInvalidAmount {
			t.Errorf("qty %d: expected invalid amount, got %v", qty, err)
		}
	}
}

func TestAdjustRejectsZero(t *testing.T) {
	repo := newFakeRepository()
	productID := repo.seedProduct()
	svc, _ := NewService(repo)

	_, err := svc.Adjust(context.Background(), AdjustInput{ProductID: productID, QuantityChange: 0})
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeInvalidAmount {
		t.Errorf("expected invalid amount, got %v", err)
	}
}

func TestAdjustUnknownProduct(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	_, err := svc.Adjust(context.Background(), AdjustInput{ProductID: uuid.New(), QuantityChange: 5})
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeNotFound {
		t.Errorf("expected not found, got %v", err)
	}
	if len(repo.entries) != 0 {
		t.Error("no movement should be recorded")
	}
}

func TestAdjustTxZeroDeltaIsNoop(t *testing.T) {
	repo := newFakeRepository()
	productID := repo.seedProduct()
	svc, _ := NewService(repo)

	if err := svc.AdjustTx(context.Background(), nil, productID, 0, "sale"); err != nil {
		t.Fatalf("AdjustTx: %v", err)
	}
	if len(repo.entries) != 0 {
		t.Error("zero delta should not record a movement")
	}
}

func TestHistoryReturnsMovements(t *testing.T) {
	repo := newFakeRepository()
	productID := repo.seedProduct()
	otherID := repo.seedProduct()
	svc, _ := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Restock(ctx, AdjustInput{ProductID: productID, QuantityChange: 10}); err != nil {
		t.Fatalf("Restock: %v", err)
	}
	if _, err := svc.Restock(ctx, AdjustInput{ProductID: otherID, QuantityChange: 3}); err != nil {
		t.Fatalf("Restock: %v", err)
	}

	history, err := svc.History(ctx, productID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(history))
	}
	if history[0].QuantityChange != 10 {
		t.Errorf("expected quantity 10, got %d", history[0].QuantityChange)
	}
}
