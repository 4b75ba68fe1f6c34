package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/internal/ledger"
	"github.com/fosbar/barpos-backend/internal/loyalty"
	"github.com/fosbar/barpos-backend/pkg/db/models"
	"github.com/fosbar/barpos-backend/pkg/enums"
	pkgerrors "github.com/fosbar/barpos-backend/pkg/errors"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepository struct {
	products   map[uuid.UUID]*models.Product
	categories map[uuid.UUID]string
	sales      map[uuid.UUID]*models.Sale
}

func newFakeRepo() *fakeRepository {
	return &fakeRepository{
		products:   map[uuid.UUID]*models.Product{},
		categories: map[uuid.UUID]string{},
		sales:      map[uuid.UUID]*models.Sale{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) CreateSale(ctx context.Context, sale *models.Sale) error {
	sale.CreatedAt = time.Now()
	f.sales[sale.ID] = sale
	return nil
}

func (f *fakeRepository) FindSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	sale, ok := f.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *sale
	return &copied, nil
}

func (f *fakeRepository) DeleteSale(ctx context.Context, id uuid.UUID) error {
	delete(f.sales, id)
	return nil
}

func (f *fakeRepository) DeleteSalesSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	for id, sale := range f.sales {
		if !sale.CreatedAt.Before(since) {
			delete(f.sales, id)
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) ListSales(ctx context.Context, filter ListFilter) ([]models.Sale, error) {
	var out []models.Sale
	for _, sale := range f.sales {
		out = append(out, *sale)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeRepository) SummaryRows(ctx context.Context, from, to *time.Time) ([]SummaryRow, error) {
	byMethod := map[string]*SummaryRow{}
	for _, sale := range f.sales {
		row, ok := byMethod[string(sale.PaymentMethod)]
		if !ok {
			row = &SummaryRow{PaymentMethod: string(sale.PaymentMethod)}
			byMethod[string(sale.PaymentMethod)] = row
		}
		row.Count++
		row.TotalCents += int64(sale.PriceCents)
	}
	var rows []SummaryRow
	for _, row := range byMethod {
		rows = append(rows, *row)
	}
	return rows, nil
}

func (f *fakeRepository) CategorySummaryRows(ctx context.Context, from, to *time.Time) ([]CategorySummaryRow, error) {
	byCategory := map[string]*CategorySummaryRow{}
	for _, sale := range f.sales {
		name := "uncategorized"
		if sale.ProductID != nil {
			if product, ok := f.products[*sale.ProductID]; ok {
				if categoryName, ok := f.categories[product.CategoryID]; ok {
					name = categoryName
				}
			}
		}
		row, ok := byCategory[name]
		if !ok {
			row = &CategorySummaryRow{Category: name}
			byCategory[name] = row
		}
		row.Count++
		row.TotalCents += int64(sale.PriceCents)
	}
	var rows []CategorySummaryRow
	for _, row := range byCategory {
		rows = append(rows, *row)
	}
	return rows, nil
}

func (f *fakeRepository) CountRedemptions(ctx context.Context, from, to *time.Time) (int64, error) {
	var count int64
	for _, sale := range f.sales {
		if sale.IsFreeRedemption {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (f *fakeRepository) seedProduct(priceCents int) *models.Product {
	categoryID := uuid.New()
	f.categories[categoryID] = "Drinks"
	product := &models.Product{
		ID:         uuid.New(),
		Name:       "Beer",
		PriceCents: priceCents,
		CategoryID: categoryID,
		IsActive:   true,
	}
	f.products[product.ID] = product
	return product
}

type fakeLedger struct {
	charges    []ledger.ChargePersonInput
	refunds    []ledger.RefundPersonInput
	debts      []ledger.AddDebtInput
	chargeErr  error
	addDebtErr error
}

func (f *fakeLedger) ChargePersonTx(ctx context.Context, tx *gorm.DB, input ledger.ChargePersonInput) (*models.Transaction, error) {
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	f.charges = append(f.charges, input)
	return &models.Transaction{}, nil
}

func (f *fakeLedger) RefundPersonTx(ctx context.Context, tx *gorm.DB, input ledger.RefundPersonInput) (*models.Transaction, error) {
	f.refunds = append(f.refunds, input)
	return &models.Transaction{}, nil
}

func (f *fakeLedger) AddDebtTx(ctx context.Context, tx *gorm.DB, input ledger.AddDebtInput) (*models.Transaction, error) {
	if f.addDebtErr != nil {
		return nil, f.addDebtErr
	}
	f.debts = append(f.debts, input)
	return &models.Transaction{}, nil
}

// fakeLoyalty returns a canned result, or simulates a single card filling up
// toward threshold when one is set.
type fakeLoyalty struct {
	result    *loyalty.PurchaseResult
	threshold int
	stamps    int
	calls     []loyalty.ProcessPurchaseInput
}

func (f *fakeLoyalty) ProcessPurchaseTx(ctx context.Context, tx *gorm.DB, input loyalty.ProcessPurchaseInput) (*loyalty.PurchaseResult, error) {
	f.calls = append(f.calls, input)
	if f.result != nil {
		return f.result, nil
	}
	if f.threshold > 0 {
		if f.stamps >= f.threshold {
			f.stamps = 0
			return &loyalty.PurchaseResult{
				MatchedCards: 1,
				Redemption: &loyalty.Redemption{
					CardID:       uuid.New(),
					CardTypeID:   uuid.New(),
					CardTypeName: "Beer card",
					StampsUsed:   1,
				},
			}, nil
		}
		f.stamps++
		return &loyalty.PurchaseResult{MatchedCards: 1, StampsAdded: 1}, nil
	}
	return &loyalty.PurchaseResult{}, nil
}

type fakeInventory struct {
	adjustments []int
}

func (f *fakeInventory) AdjustTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int, note string) error {
	f.adjustments = append(f.adjustments, delta)
	return nil
}

type saleFixture struct {
	repo      *fakeRepository
	ledger    *fakeLedger
	loyalty   *fakeLoyalty
	inventory *fakeInventory
	svc       Service
}

func newFixture(t *testing.T) *saleFixture {
	t.Helper()
	fx := &saleFixture{
		repo:      newFakeRepo(),
		ledger:    &fakeLedger{},
		loyalty:   &fakeLoyalty{},
		inventory: &fakeInventory{},
	}
	svc, err := NewService(fx.repo, fakeTxRunner{}, fx.ledger, fx.loyalty, fx.inventory, nil)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	fx.svc = svc
	return fx
}

func TestService_RecordCashSale(t *testing.T) {
	fx := newFixture(t)
	product := fx.repo.seedProduct(350)

	result, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
		ProductID:     product.ID,
		PaymentMethod: enums.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("RecordSale error: %v", err)
	}
	if result.Sale.PriceCents != 350 || result.Sale.PaymentMethod != enums.PaymentMethodCash {
		t.Fatalf("unexpected sale: %+v", result.Sale)
	}
	if len(fx.ledger.charges) != 0 || len(fx.loyalty.calls) != 0 {
		t.Fatal("cash sales must not touch ledger or loyalty")
	}
	if len(fx.inventory.adjustments) != 1 || fx.inventory.adjustments[0] != -1 {
		t.Fatalf("expected stock decrement, got %v", fx.inventory.adjustments)
	}
}

func TestService_RecordCreditSaleCharges(t *testing.T) {
	fx := newFixture(t)
	product := fx.repo.seedProduct(350)
	personID := uuid.New()

	result, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
		ProductID:     product.ID,
		PaymentMethod: enums.PaymentMethodCredit,
		PersonID:      &personID,
	})
	if err != nil {
		t.Fatalf("RecordSale error: %v", err)
	}
	if len(fx.ledger.charges) != 1 || fx.ledger.charges[0].AmountCents != 350 {
		t.Fatalf("unexpected charges: %+v", fx.ledger.charges)
	}
	if fx.ledger.charges[0].SaleID == nil || *fx.ledger.charges[0].SaleID != result.Sale.ID {
		t.Fatal("charge should reference the sale")
	}
	if result.Sale.PriceCents != 350 || result.Sale.PaidWithStamp {
		t.Fatalf("credit sale should keep its price: %+v", result.Sale)
	}
	if len(fx.loyalty.calls) != 0 {
		t.Fatalf("credit sale ran loyalty processing %d time(s)", len(fx.loyalty.calls))
	}
}

func TestService_RecordCreditSaleInsufficientBalance(t *testing.T) {
	fx := newFixture(t)
	product := fx.repo.seedProduct(350)
	personID := uuid.New()
	fx.ledger.chargeErr = pkgerrors.New(pkgerrors.CodeInsufficientBalance, "balance does not cover charge")

	_, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
		ProductID:     product.ID,
		PaymentMethod: enums.PaymentMethodCredit,
		PersonID:      &personID,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientBalance) {
		t.Fatalf("expected insufficient balance error, got %v", err)
	}
	if len(fx.repo.sales) != 0 {
		t.Fatal("no sale should be recorded when the charge fails")
	}
}

func TestService_RecordStampSaleAccrues(t *testing.T) {
	fx := newFixture(t)
	product := fx.repo.seedProduct(350)
	personID := uuid.New()
	fx.loyalty.result = &loyalty.PurchaseResult{MatchedCards: 1, StampsAdded: 1}

	result, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
		ProductID:     product.ID,
		PaymentMethod: enums.PaymentMethodStamp,
		PersonID:      &personID,
	})
	if err != nil {
		t.Fatalf("RecordSale error: %v", err)
	}
	sale := result.Sale
	if sale.PriceCents != 0 || !sale.PaidWithStamp {
		t.Fatalf("stamp sale should move no money: %+v", sale)
	}
	if sale.IsFreeRedemption {
		t.Fatal("accrual-only stamp sale is not a redemption")
	}
	if sale.OriginalPriceCents == nil || *sale.OriginalPriceCents != 350 {
		t.Fatal("original price should be preserved")
	}
	if result.StampsAdded != 1 {
		t.Fatalf("stamps added = %d, want 1", result.StampsAdded)
	}
	if len(fx.ledger.charges) != 0 {
		t.Fatal("stamp sales must not charge the person")
	}
}

func TestService_RecordStampSaleRedeems(t *testing.T) {
	fx := newFixture(t)
	product := fx.repo.seedProduct(350)
	personID := uuid.New()
	cardTypeID := uuid.New()
	fx.loyalty.result = &loyalty.PurchaseResult{
		MatchedCards: 1,
		Redemption: &loyalty.Redemption{
			CardID:       uuid.New(),
			CardTypeID:   cardTypeID,
			CardTypeName: "Beer card",
			StampsUsed:   1,
		},
	}

	result, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
		ProductID:     product.ID,
		PaymentMethod: enums.PaymentMethodStamp,
		PersonID:      &personID,
	})
	if err != nil {
		t.Fatalf("RecordSale error: %v", err)
	}
	if result.Sale.PriceCents != 0 || !result.Sale.PaidWithStamp || !result.Sale.IsFreeRedemption {
		t.Fatalf("stamp sale should be free: %+v", result.Sale)
	}
	if result.Sale.LoyaltyCardTypeID == nil || *result.Sale.LoyaltyCardTypeID != cardTypeID {
		t.Fatal("sale should reference the redeemed card type")
	}
	if len(fx.ledger.charges) != 0 {
		t.Fatal("stamp sales must not charge the person")
	}
}

func TestService_StampSalesAccrueThenRedeem(t *testing.T) {
	fx := newFixture(t)
	product := fx.repo.seedProduct(350)
	personID := uuid.New()
	fx.loyalty.threshold = 5

	for i := 0; i < 5; i++ {
		result, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
			ProductID:     product.ID,
			PaymentMethod: enums.PaymentMethodStamp,
			PersonID:      &personID,
		})
		if err != nil {
			t.Fatalf("RecordSale %d error: %v", i+1, err)
		}
		if result.Sale.PriceCents != 0 || !result.Sale.PaidWithStamp || result.Sale.IsFreeRedemption {
			t.Fatalf("purchase %d should only accrue: %+v", i+1, result.Sale)
		}
		if result.StampsAdded != 1 {
			t.Fatalf("purchase %d stamps added = %d, want 1", i+1, result.StampsAdded)
		}
	}

	result, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
		ProductID:     product.ID,
		PaymentMethod: enums.PaymentMethodStamp,
		PersonID:      &personID,
	})
	if err != nil {
		t.Fatalf("RecordSale error: %v", err)
	}
	if result.Redemption == nil || !result.Sale.IsFreeRedemption {
		t.Fatalf("sixth purchase should redeem the full card: %+v", result.Sale)
	}
	if len(fx.ledger.charges) != 0 {
		t.Fatal("no purchase in the run may charge the balance")
	}
	if len(fx.repo.sales) != 6 {
		t.Fatalf("recorded sales = %d, want 6", len(fx.repo.sales))
	}
}

func TestService_RecordStampSaleNoEligibleCard(t *testing.T) {
	fx := newFixture(t)
	product := fx.repo.seedProduct(350)
	personID := uuid.New()

	_, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
		ProductID:     product.ID,
		PaymentMethod: enums.PaymentMethodStamp,
		PersonID:      &personID,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNoEligibleCard) {
		t.Fatalf("expected no eligible card error, got %v", err)
	}
	if len(fx.repo.sales) != 0 {
		t.Fatal("no sale should be recorded without a redeemable card")
	}
}

func TestService_RecordDebtSale(t *testing.T) {
	fx := newFixture(t)
	product := fx.repo.seedProduct(500)
	debtorID := uuid.New()

	_, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
		ProductID:     product.ID,
		PaymentMethod: enums.PaymentMethodDebt,
		DebtorID:      &debtorID,
	})
	if err != nil {
		t.Fatalf("RecordSale error: %v", err)
	}
	if len(fx.ledger.debts) != 1 || fx.ledger.debts[0].AmountCents != 500 {
		t.Fatalf("unexpected debts: %+v", fx.ledger.debts)
	}
	if len(fx.loyalty.calls) != 0 {
		t.Fatal("debt sales must not run loyalty processing")
	}
}

func TestService_RecordSaleValidation(t *testing.T) {
	fx := newFixture(t)
	product := fx.repo.seedProduct(350)

	tests := []struct {
		name  string
		input RecordSaleInput
	}{
		{"missing product", RecordSaleInput{PaymentMethod: enums.PaymentMethodCash}},
		{"credit without person", RecordSaleInput{ProductID: product.ID, PaymentMethod: enums.PaymentMethodCredit}},
		{"debt without debtor", RecordSaleInput{ProductID: product.ID, PaymentMethod: enums.PaymentMethodDebt}},
		{"stamp without person", RecordSaleInput{ProductID: product.ID, PaymentMethod: enums.PaymentMethodStamp}},
		{"unknown method", RecordSaleInput{ProductID: product.ID, PaymentMethod: enums.PaymentMethod("barter")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := fx.svc.RecordSale(context.Background(), tc.input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_RecordSaleInactiveProduct(t *testing.T) {
	fx := newFixture(t)
	product := fx.repo.seedProduct(350)
	product.IsActive = false

	if _, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
		ProductID:     product.ID,
		PaymentMethod: enums.PaymentMethodCash,
	}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_DeleteSaleRefundsCredit(t *testing.T) {
	fx := newFixture(t)
	product := fx.repo.seedProduct(350)
	personID := uuid.New()

	result, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
		ProductID:     product.ID,
		PaymentMethod: enums.PaymentMethodCredit,
		PersonID:      &personID,
	})
	if err != nil {
		t.Fatalf("RecordSale error: %v", err)
	}

	if err := fx.svc.DeleteSale(context.Background(), result.Sale.ID); err != nil {
		t.Fatalf("DeleteSale error: %v", err)
	}
	if len(fx.ledger.refunds) != 1 || fx.ledger.refunds[0].AmountCents != 350 {
		t.Fatalf("unexpected refunds: %+v", fx.ledger.refunds)
	}
	if _, ok := fx.repo.sales[result.Sale.ID]; ok {
		t.Fatal("sale should be deleted")
	}
	last := fx.inventory.adjustments[len(fx.inventory.adjustments)-1]
	if last != 1 {
		t.Fatalf("stock should be returned on deletion, got %d", last)
	}
}

func TestService_DeleteSaleCashNoRefund(t *testing.T) {
	fx := newFixture(t)
	product := fx.repo.seedProduct(350)

	result, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
		ProductID:     product.ID,
		PaymentMethod: enums.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("RecordSale error: %v", err)
	}
	if err := fx.svc.DeleteSale(context.Background(), result.Sale.ID); err != nil {
		t.Fatalf("DeleteSale error: %v", err)
	}
	if len(fx.ledger.refunds) != 0 {
		t.Fatal("cash sales must not refund anyone")
	}
}

func TestService_Summary(t *testing.T) {
	fx := newFixture(t)
	cash := fx.repo.seedProduct(350)
	credit := fx.repo.seedProduct(500)
	personID := uuid.New()

	if _, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
		ProductID:     cash.ID,
		PaymentMethod: enums.PaymentMethodCash,
	}); err != nil {
		t.Fatalf("RecordSale error: %v", err)
	}
	if _, err := fx.svc.RecordSale(context.Background(), RecordSaleInput{
		ProductID:     credit.ID,
		PaymentMethod: enums.PaymentMethodCredit,
		PersonID:      &personID,
	}); err != nil {
		t.Fatalf("RecordSale error: %v", err)
	}

	summary, err := fx.svc.Summary(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Summary error: %v", err)
	}
	if summary.TotalSales != 2 {
		t.Fatalf("total sales = %d, want 2", summary.TotalSales)
	}
	if summary.RevenueCents != 850 {
		t.Fatalf("revenue cents = %d, want 850", summary.RevenueCents)
	}
	if summary.Revenue != "8.50" {
		t.Fatalf("revenue = %q, want 8.50", summary.Revenue)
	}
	if len(summary.ByCategory) != 1 || summary.ByCategory[0].Category != "Drinks" {
		t.Fatalf("unexpected category rows: %+v", summary.ByCategory)
	}
	if summary.ByCategory[0].TotalCents != 850 {
		t.Fatalf("category total = %d, want 850", summary.ByCategory[0].TotalCents)
	}
}
