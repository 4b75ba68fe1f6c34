package products

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
	products   map[uuid.UUID]*models.Product
	categories map[uuid.UUID]*models.Category
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		products:   map[uuid.UUID]*models.Product{},
		categories: map[uuid.UUID]*models.Category{},
	}
}

func (f *fakeRepository) seedCategory(name string) *models.Category {
	category := &models.Category{ID: uuid.New(), Name: name}
	f.categories[category.ID] = category
	return category
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) CreateProduct(_ context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeRepository) FindProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (f *fakeRepository) ListProducts(_ context.Context, filter ListFilter) ([]models.Product, error) {
	var out []models.Product
	for _, product := range f.products {
		if !filter.IncludeInactive && !product.IsActive {
			continue
		}
		if filter.CategoryID != nil && product.CategoryID != *filter.CategoryID {
			continue
		}
		out = append(out, *product)
	}
	return out, nil
}

func (f *fakeRepository) UpdateProduct(_ context.Context, id uuid.UUID, updates map[string]any) error {
	product, ok := f.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		product.Name = name
	}
	if price, ok := updates["price_cents"].(int); ok {
		product.PriceCents = price
	}
	if categoryID, ok := updates["category_id"].(uuid.UUID); ok {
		product.CategoryID = categoryID
	}
	if active, ok := updates["is_active"].(bool); ok {
		product.IsActive = active
	}
	return nil
}

func (f *fakeRepository) DeleteProduct(_ context.Context, id uuid.UUID) error {
	delete(f.products, id)
	return nil
}

func (f *fakeRepository) CreateCategory(_ context.Context, category *models.Category) error {
	for _, existing := range f.categories {
		if existing.Name == category.Name {
			return errors.New(`duplicate key value violates unique constraint "idx_categories_name"`)
		}
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	f.categories[category.ID] = category
	return nil
}

func (f *fakeRepository) FindCategory(_ context.Context, id uuid.UUID) (*models.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return category, nil
}

func (f *fakeRepository) ListCategories(_ context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, category := range f.categories {
		out = append(out, *category)
	}
	return out, nil
}

func (f *fakeRepository) UpdateCategory(_ context.Context, id uuid.UUID, updates map[string]any) error {
	category, ok := f.categories[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		category.Name = name
	}
	if position, ok := updates["position"].(int); ok {
		category.Position = position
	}
	return nil
}

func (f *fakeRepository) DeleteCategory(_ context.Context, id uuid.UUID) error {
	delete(f.categories, id)
	return nil
}

func (f *fakeRepository) CountProductsInCategory(_ context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	for _, product := range f.products {
		if product.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func TestCreateProduct(t *testing.T) {
	repo := newFakeRepository()
	category := repo.seedCategory("Beer")
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	product, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:       "  Pils  ",
		PriceCents: 350,
		CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.Name != "Pils" {
		t.Errorf("expected trimmed name, got %q", product.Name)
	}
	if !product.IsActive {
		t.Error("new product should be active")
	}
}

func TestCreateProductValidation(t *testing.T) {
	repo := newFakeRepository()
	category := repo.seedCategory("Beer")
	svc, _ := NewService(repo)

	cases := []struct {
		name  string
		input ProductInput
		code  pkgerrors.Code
	}{
		{"missing name", ProductInput{PriceCents: 100, CategoryID: category.ID}, pkgerrors.CodeValidation},
		{"negative price", ProductInput{Name: "Pils", PriceCents: -1, CategoryID: category.ID}, pkgerrors.CodeInvalidAmount},
		{"missing category", ProductInput{Name: "Pils", PriceCents: 100}, pkgerrors.CodeValidation},
		{"unknown category", ProductInput{Name: "Pils", PriceCents: 100, CategoryID: uuid.New()}, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tc.input)
			if err == nil {
				t.Fatal("expected error")
			}
			var appErr *pkgerrors.Error
			if !errors.As(err, &appErr) || appErr.Code() != tc.code {
				t.Errorf("expected code %s, got %v", tc.code, err)
			}
		})
	}
}

func TestSetProductActive(t *testing.T) {
	repo := newFakeRepository()
	category := repo.seedCategory("Beer")
	svc, _ := NewService(repo)

	product, err := svc.CreateProduct(context.Background(), ProductInput{
		Name: "Pils", PriceCents: 350, CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	if err := svc.SetProductActive(context.Background(), product.ID, false); err != nil {
		t.Fatalf("SetProductActive: %v", err)
	}
	if repo.products[product.ID].IsActive {
		t.Error("product should be inactive")
	}

	listed, err := svc.ListProducts(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("inactive product should not be listed by default, got %d", len(listed))
	}
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	repo := newFakeRepository()
	repo.seedCategory("Beer")
	svc, _ := NewService(repo)

	_, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Beer"})
	if err == nil {
		t.Fatal("expected conflict")
	}
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeConflict {
		t.Errorf("expected conflict code, got %v", err)
	}
}

func TestDeleteCategoryWithProducts(t *testing.T) {
	repo := newFakeRepository()
	category := repo.seedCategory("Beer")
	svc, _ := NewService(repo)

	if _, err := svc.CreateProduct(context.Background(), ProductInput{
		Name: "Pils", PriceCents: 350, CategoryID: category.ID,
	}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	err := svc.DeleteCategory(context.Background(), category.ID)
	if err == nil {
		t.Fatal("expected conflict while category has products")
	}
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeConflict {
		t.Errorf("expected conflict code, got %v", err)
	}

	empty := repo.seedCategory("Empty")
	if err := svc.DeleteCategory(context.Background(), empty.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if _, ok := repo.categories[empty.ID]; ok {
		t.Error("category should be deleted")
	}
}
