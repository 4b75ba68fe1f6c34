package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fosbar/barpos-backend/api/controllers"
	"github.com/fosbar/barpos-backend/api/middleware"
	"github.com/fosbar/barpos-backend/internal/debtors"
	"github.com/fosbar/barpos-backend/internal/inventory"
	"github.com/fosbar/barpos-backend/internal/ledger"
	"github.com/fosbar/barpos-backend/internal/loyalty"
	"github.com/fosbar/barpos-backend/internal/persons"
	"github.com/fosbar/barpos-backend/internal/products"
	"github.com/fosbar/barpos-backend/internal/sales"
	"github.com/fosbar/barpos-backend/internal/settings"
	"github.com/fosbar/barpos-backend/internal/users"
	"github.com/fosbar/barpos-backend/pkg/config"
	"github.com/fosbar/barpos-backend/pkg/logger"
	"github.com/fosbar/barpos-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	catalogService products.Service,
	personService persons.Service,
	debtorService debtors.Service,
	ledgerService ledger.Service,
	loyaltyService loyalty.Service,
	cardTypeService loyalty.TypeService,
	saleService sales.Service,
	inventoryService inventory.Service,
	userService users.Service,
	settingService settings.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(catalogService, logg))
			r.Post("/", controllers.CreateCategory(catalogService, logg))
			r.Put("/{id}", controllers.UpdateCategory(catalogService, logg))
			r.Delete("/{id}", controllers.DeleteCategory(catalogService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Post("/", controllers.CreateProduct(catalogService, logg))
			r.Get("/{id}", controllers.GetProduct(catalogService, logg))
			r.Put("/{id}", controllers.UpdateProduct(catalogService, logg))
			r.Patch("/{id}/active", controllers.SetProductActive(catalogService, logg))
			r.Delete("/{id}", controllers.DeleteProduct(catalogService, logg))
			r.Get("/{id}/stock", controllers.ProductStock(inventoryService, logg))
			r.Get("/{id}/stock/history", controllers.StockHistory(inventoryService, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.StockLevels(inventoryService, logg))
			r.Post("/restock", controllers.Restock(inventoryService, logg))
			r.Post("/adjust", controllers.AdjustStock(inventoryService, logg))
		})

		r.Route("/persons", func(r chi.Router) {
			r.Get("/", controllers.ListPersons(personService, logg))
			r.Post("/", controllers.CreatePerson(personService, logg))
			r.Get("/{id}", controllers.GetPerson(personService, logg))
			r.Put("/{id}", controllers.RenamePerson(personService, logg))
			r.Delete("/{id}", controllers.DeletePerson(personService, logg))
			r.Post("/{id}/credit", controllers.CreditPerson(ledgerService, logg))
			r.Post("/{id}/refund", controllers.RefundPerson(ledgerService, logg))
			r.Get("/{id}/transactions", controllers.ListPersonTransactions(ledgerService, logg))
			r.Get("/{id}/balance-check", controllers.CheckPersonBalance(ledgerService, logg))
			r.Get("/{id}/cards", controllers.ListPersonCards(loyaltyService, logg))
		})

		r.Route("/debtors", func(r chi.Router) {
			r.Get("/", controllers.ListDebtors(debtorService, logg))
			r.Post("/", controllers.CreateDebtor(debtorService, logg))
			r.Get("/{id}", controllers.GetDebtor(debtorService, logg))
			r.Put("/{id}", controllers.RenameDebtor(debtorService, logg))
			r.Delete("/{id}", controllers.DeleteDebtor(debtorService, logg))
			r.Post("/{id}/debt", controllers.AddDebt(ledgerService, logg))
			r.Post("/{id}/pay", controllers.PayDebt(ledgerService, logg))
			r.Get("/{id}/transactions", controllers.ListDebtorTransactions(ledgerService, logg))
			r.Get("/{id}/balance-check", controllers.CheckDebtorBalance(ledgerService, logg))
		})

		r.Route("/card-types", func(r chi.Router) {
			r.Get("/", controllers.ListCardTypes(cardTypeService, logg))
			r.Post("/", controllers.CreateCardType(cardTypeService, logg))
			r.Get("/{id}", controllers.GetCardType(cardTypeService, logg))
			r.Put("/{id}", controllers.UpdateCardType(cardTypeService, logg))
			r.Patch("/{id}/active", controllers.SetCardTypeActive(cardTypeService, logg))
		})

		r.Route("/cards", func(r chi.Router) {
			r.Post("/", controllers.AssignCard(loyaltyService, logg))
			r.Delete("/{id}", controllers.RemoveCard(loyaltyService, logg))
			r.Get("/{id}/history", controllers.CardHistory(loyaltyService, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(saleService, logg))
			r.Post("/", controllers.RecordSale(saleService, logg))
			r.Get("/summary", controllers.SalesSummary(saleService, logg))
			r.Post("/clear", controllers.ClearSales(saleService, logg))
			r.Get("/{id}", controllers.GetSale(saleService, logg))
			r.Delete("/{id}", controllers.DeleteSale(saleService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.ListUsers(userService, logg))
			r.Post("/", controllers.CreateUser(userService, logg))
			r.Get("/{id}", controllers.GetUser(userService, logg))
			r.Put("/{id}", controllers.UpdateUser(userService, logg))
			r.Put("/{id}/password", controllers.ChangeUserPassword(userService, logg))
			r.Patch("/{id}/active", controllers.SetUserActive(userService, logg))
			r.Delete("/{id}", controllers.DeleteUser(userService, logg))
		})

		r.Post("/auth/login", controllers.Login(userService, logg))

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.GetSettings(settingService, logg))
			r.Get("/{key}", controllers.GetSetting(settingService, logg))
			r.Put("/{key}", controllers.SetSetting(settingService, logg))
			r.Delete("/{key}", controllers.DeleteSetting(settingService, logg))
		})
	})

	return r
}
