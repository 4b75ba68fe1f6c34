package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics records counters for completed register activity.
type SaleMetrics struct {
	sales       *prometheus.CounterVec
	revenue     *prometheus.CounterVec
	redemptions prometheus.Counter
	stamps      prometheus.Counter
}

// NewSaleMetrics registers the sale metrics on the provided registerer.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	sales := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_total",
		Help: "Completed sales by payment method.",
	}, []string{"payment_method"})
	revenue := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_revenue_cents_total",
		Help: "Gross revenue in cents by payment method.",
	}, []string{"payment_method"})
	redemptions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_redemptions_total",
		Help: "Free products granted through loyalty card redemption.",
	})
	stamps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_stamps_total",
		Help: "Stamps accrued across all loyalty cards.",
	})
	reg.MustRegister(sales, revenue, redemptions, stamps)
	return &SaleMetrics{
		sales:       sales,
		revenue:     revenue,
		redemptions: redemptions,
		stamps:      stamps,
	}
}

// ObserveSale records a completed sale and its revenue.
func (s *SaleMetrics) ObserveSale(paymentMethod string, amountCents int) {
	if s == nil || s.sales == nil {
		return
	}
	label := normalizeLabel(paymentMethod)
	s.sales.WithLabelValues(label).Inc()
	if amountCents > 0 {
		s.revenue.WithLabelValues(label).Add(float64(amountCents))
	}
}

// IncRedemption increments the loyalty redemption counter.
func (s *SaleMetrics) IncRedemption() {
	if s == nil || s.redemptions == nil {
		return
	}
	s.redemptions.Inc()
}

// AddStamps records stamps accrued during a purchase.
func (s *SaleMetrics) AddStamps(count int) {
	if s == nil || s.stamps == nil {
		return
	}
	if count > 0 {
		s.stamps.Add(float64(count))
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
