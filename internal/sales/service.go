package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/internal/ledger"
	"github.com/fosbar/barpos-backend/internal/loyalty"
	"github.com/fosbar/barpos-backend/pkg/db/models"
	"github.com/fosbar/barpos-backend/pkg/enums"
	pkgerrors "github.com/fosbar/barpos-backend/pkg/errors"
	"github.com/fosbar/barpos-backend/pkg/metrics"
	"github.com/fosbar/barpos-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type personLedger interface {
	ChargePersonTx(ctx context.Context, tx *gorm.DB, input ledger.ChargePersonInput) (*models.Transaction, error)
	RefundPersonTx(ctx context.Context, tx *gorm.DB, input ledger.RefundPersonInput) (*models.Transaction, error)
	AddDebtTx(ctx context.Context, tx *gorm.DB, input ledger.AddDebtInput) (*models.Transaction, error)
}

type loyaltyProcessor interface {
	ProcessPurchaseTx(ctx context.Context, tx *gorm.DB, input loyalty.ProcessPurchaseInput) (*loyalty.PurchaseResult, error)
}

type stockAdjuster interface {
	AdjustTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int, note string) error
}

// Service orchestrates a sale. Exactly one engine runs per payment method
// (the ledger for credit and debt, the loyalty cards for stamp), and the
// payment effect, the sale record, and the stock movement commit in one
// database transaction.
type Service interface {
	RecordSale(ctx context.Context, input RecordSaleInput) (*SaleResult, error)
	GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
	ClearSalesSince(ctx context.Context, since time.Time) (int64, error)
	ListSales(ctx context.Context, input ListSalesInput) ([]models.Sale, string, error)
	Summary(ctx context.Context, from, to *time.Time) (*Summary, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	ledger    personLedger
	loyalty   loyaltyProcessor
	inventory stockAdjuster
	metrics   *metrics.SaleMetrics
}

// RecordSaleInput describes one register purchase. Credit and stamp sales
// require a person, debt sales a debtor; cash sales are anonymous.
type RecordSaleInput struct {
	ProductID     uuid.UUID
	PaymentMethod enums.PaymentMethod
	PersonID      *uuid.UUID
	DebtorID      *uuid.UUID
}

// SaleResult is the recorded sale plus its loyalty effect.
type SaleResult struct {
	Sale        *models.Sale        `json:"sale"`
	Redemption  *loyalty.Redemption `json:"redemption,omitempty"`
	StampsAdded int                 `json:"stamps_added"`
}

// ListSalesInput pages through the sale history, optionally within a window.
type ListSalesInput struct {
	From *time.Time
	To   *time.Time
	Page pagination.Params
}

// MethodSummary aggregates one payment method inside a Summary.
type MethodSummary struct {
	Method     string `json:"method"`
	Count      int64  `json:"count"`
	TotalCents int64  `json:"total_cents"`
	Total      string `json:"total"`
}

// CategorySummary aggregates one product category inside a Summary.
type CategorySummary struct {
	Category   string `json:"category"`
	Count      int64  `json:"count"`
	TotalCents int64  `json:"total_cents"`
	Total      string `json:"total"`
}

// Summary reports totals for a time window. Monetary strings are decimal
// euros derived from the cent totals.
type Summary struct {
	From            *time.Time        `json:"from,omitempty"`
	To              *time.Time        `json:"to,omitempty"`
	TotalSales      int64             `json:"total_sales"`
	RevenueCents    int64             `json:"revenue_cents"`
	Revenue         string            `json:"revenue"`
	ByMethod        []MethodSummary   `json:"by_method"`
	ByCategory      []CategorySummary `json:"by_category"`
	FreeRedemptions int64             `json:"free_redemptions"`
}

const saleStockNote = "sale"

// NewService builds a sale orchestrator with the required dependencies.
// Metrics may be nil.
func NewService(repo Repository, tx txRunner, personLedger personLedger, loyaltySvc loyaltyProcessor, inventory stockAdjuster, saleMetrics *metrics.SaleMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if personLedger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if loyaltySvc == nil {
		return nil, fmt.Errorf("loyalty service required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		ledger:    personLedger,
		loyalty:   loyaltySvc,
		inventory: inventory,
		metrics:   saleMetrics,
	}, nil
}

func (s *service) RecordSale(ctx context.Context, input RecordSaleInput) (*SaleResult, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	switch input.PaymentMethod {
	case enums.PaymentMethodCash:
	case enums.PaymentMethodCredit:
		if input.PersonID == nil || *input.PersonID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit sales require a person")
		}
	case enums.PaymentMethodStamp:
		if input.PersonID == nil || *input.PersonID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stamp sales require a person")
		}
	case enums.PaymentMethodDebt:
		if input.DebtorID == nil || *input.DebtorID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "debt sales require a debtor")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method must be cash, credit, stamp, or debt")
	}

	result := &SaleResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindProduct(ctx, input.ProductID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "product is inactive")
		}

		sale := &models.Sale{
			ID:            uuid.New(),
			ProductID:     &product.ID,
			ProductName:   product.Name,
			PriceCents:    product.PriceCents,
			PaymentMethod: input.PaymentMethod,
			PersonID:      input.PersonID,
			DebtorID:      input.DebtorID,
		}

		switch input.PaymentMethod {
		case enums.PaymentMethodCredit:
			// Credit pays full price off the balance and never touches the
			// person's loyalty cards.
			if product.PriceCents > 0 {
				if _, err := s.ledger.ChargePersonTx(ctx, tx, ledger.ChargePersonInput{
					PersonID:    *input.PersonID,
					AmountCents: product.PriceCents,
					ProductName: &product.Name,
					SaleID:      &sale.ID,
				}); err != nil {
					return err
				}
			}
		case enums.PaymentMethodStamp:
			loyaltyResult, err := s.loyalty.ProcessPurchaseTx(ctx, tx, loyalty.ProcessPurchaseInput{
				PersonID: *input.PersonID,
				Product:  *product,
				SaleID:   &sale.ID,
			})
			if err != nil {
				return err
			}
			result.Redemption = loyaltyResult.Redemption
			result.StampsAdded = loyaltyResult.StampsAdded

			// Aborting here also rolls back any stamps granted during
			// evaluation, so a rejected stamp sale leaves the cards untouched.
			if loyaltyResult.MatchedCards == 0 {
				return pkgerrors.New(pkgerrors.CodeNoEligibleCard, "no active loyalty card covers this product")
			}

			// No money moves on a stamp sale: either the stamps merely
			// accrue, or a full card pays for the product.
			original := product.PriceCents
			sale.OriginalPriceCents = &original
			sale.PriceCents = 0
			sale.PaidWithStamp = true
			if loyaltyResult.Redemption != nil {
				sale.IsFreeRedemption = true
				sale.LoyaltyCardTypeID = &loyaltyResult.Redemption.CardTypeID
			}
		case enums.PaymentMethodDebt:
			if product.PriceCents > 0 {
				if _, err := s.ledger.AddDebtTx(ctx, tx, ledger.AddDebtInput{
					DebtorID:    *input.DebtorID,
					AmountCents: product.PriceCents,
					ProductName: &product.Name,
					SaleID:      &sale.ID,
				}); err != nil {
					return err
				}
			}
		}

		if err := repo.CreateSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sale")
		}
		if err := s.inventory.AdjustTx(ctx, tx, product.ID, -1, saleStockNote); err != nil {
			return err
		}

		result.Sale = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveSale(string(result.Sale.PaymentMethod), result.Sale.PriceCents)
	s.metrics.AddStamps(result.StampsAdded)
	if result.Redemption != nil {
		s.metrics.IncRedemption()
	}
	return result, nil
}

func (s *service) GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	sale, err := s.repo.FindSale(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return sale, nil
}

// DeleteSale removes a sale and returns its stock. Credit sales are refunded
// to the person's balance; consumed stamps are not restored.
func (s *service) DeleteSale(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := repo.FindSale(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
		}

		if sale.PaymentMethod == enums.PaymentMethodCredit && sale.PersonID != nil && sale.PriceCents > 0 {
			note := "sale removed"
			if _, err := s.ledger.RefundPersonTx(ctx, tx, ledger.RefundPersonInput{
				PersonID:    *sale.PersonID,
				AmountCents: sale.PriceCents,
				ProductName: &sale.ProductName,
				SaleID:      &sale.ID,
				Note:        &note,
			}); err != nil {
				return err
			}
		}

		if err := repo.DeleteSale(ctx, sale.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete sale")
		}
		if sale.ProductID != nil {
			if err := s.inventory.AdjustTx(ctx, tx, *sale.ProductID, 1, "sale removed"); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearSalesSince drops all sales recorded at or after the given time without
// reversing their balance effects. Used to reset the register display for the
// day.
func (s *service) ClearSalesSince(ctx context.Context, since time.Time) (int64, error) {
	if since.IsZero() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "since timestamp required")
	}
	count, err := s.repo.DeleteSalesSince(ctx, since)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear sales")
	}
	return count, nil
}

func (s *service) ListSales(ctx context.Context, input ListSalesInput) ([]models.Sale, string, error) {
	cursor, err := pagination.ParseCursor(input.Page.Cursor)
	if err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Page.Limit)

	filter := ListFilter{From: input.From, To: input.To, Limit: pagination.LimitWithBuffer(input.Page.Limit)}
	if cursor != nil {
		filter.Before = &cursor.CreatedAt
	}
	sales, err := s.repo.ListSales(ctx, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}

	next := ""
	if len(sales) > limit {
		sales = sales[:limit]
		last := sales[len(sales)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return sales, next, nil
}

func (s *service) Summary(ctx context.Context, from, to *time.Time) (*Summary, error) {
	rows, err := s.repo.SummaryRows(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate sales")
	}
	categoryRows, err := s.repo.CategorySummaryRows(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate categories")
	}
	redemptions, err := s.repo.CountRedemptions(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count redemptions")
	}

	summary := &Summary{From: from, To: to, FreeRedemptions: redemptions}
	for _, row := range rows {
		summary.TotalSales += row.Count
		summary.RevenueCents += row.TotalCents
		summary.ByMethod = append(summary.ByMethod, MethodSummary{
			Method:     row.PaymentMethod,
			Count:      row.Count,
			TotalCents: row.TotalCents,
			Total:      centsToDecimal(row.TotalCents),
		})
	}
	for _, row := range categoryRows {
		summary.ByCategory = append(summary.ByCategory, CategorySummary{
			Category:   row.Category,
			Count:      row.Count,
			TotalCents: row.TotalCents,
			Total:      centsToDecimal(row.TotalCents),
		})
	}
	summary.Revenue = centsToDecimal(summary.RevenueCents)
	return summary, nil
}

func centsToDecimal(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
