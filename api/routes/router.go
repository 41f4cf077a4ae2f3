package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/balcaohq/balcao-backend/api/controllers"
	"github.com/balcaohq/balcao-backend/api/middleware"
	"github.com/balcaohq/balcao-backend/internal/cashbook"
	"github.com/balcaohq/balcao-backend/internal/catalog"
	"github.com/balcaohq/balcao-backend/internal/customers"
	"github.com/balcaohq/balcao-backend/internal/orders"
	"github.com/balcaohq/balcao-backend/internal/paymentmethods"
	"github.com/balcaohq/balcao-backend/internal/pos"
	"github.com/balcaohq/balcao-backend/pkg/config"
	"github.com/balcaohq/balcao-backend/pkg/db"
	"github.com/balcaohq/balcao-backend/pkg/logger"
	"github.com/balcaohq/balcao-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	catalogService catalog.Service,
	customersService customers.Service,
	methodsService paymentmethods.Service,
	cashbookService cashbook.Service,
	ordersService orders.Service,
	posService pos.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Route("/items", func(r chi.Router) {
				r.Get("/", controllers.CatalogListItems(catalogService, logg))
				r.Post("/", controllers.CatalogCreateItem(catalogService, logg))
				r.Get("/{itemId}", controllers.CatalogGetItem(catalogService, logg))
				r.Put("/{itemId}", controllers.CatalogUpdateItem(catalogService, logg))
				r.Delete("/{itemId}", controllers.CatalogDeactivateItem(catalogService, logg))
				r.Put("/{itemId}/quota", controllers.CatalogSetQuota(catalogService, logg))
				r.Delete("/{itemId}/quota", controllers.CatalogRemoveQuota(catalogService, logg))
			})
			r.Route("/groups", func(r chi.Router) {
				r.Get("/", controllers.CatalogListGroups(catalogService, logg))
				r.Post("/", controllers.CatalogCreateGroup(catalogService, logg))
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerList(customersService, logg))
			r.Post("/", controllers.CustomerCreate(customersService, logg))
			r.Get("/{customerId}", controllers.CustomerGet(customersService, logg))
			r.Put("/{customerId}", controllers.CustomerUpdate(customersService, logg))
			r.Delete("/{customerId}", controllers.CustomerDelete(customersService, logg))
		})

		r.Route("/payment-methods", func(r chi.Router) {
			r.Get("/", controllers.PaymentMethodList(methodsService, logg))
			r.Post("/", controllers.PaymentMethodCreate(methodsService, logg))
			r.Get("/{methodId}", controllers.PaymentMethodGet(methodsService, logg))
			r.Put("/{methodId}", controllers.PaymentMethodUpdate(methodsService, logg))
		})

		r.Route("/cashbook", func(r chi.Router) {
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Get("/movements", controllers.CashbookListDay(cashbookService, logg))
			r.Post("/movements", controllers.CashbookRecord(cashbookService, logg))
			r.Get("/balance", controllers.CashbookBalance(cashbookService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Get("/", controllers.OrderList(ordersService, logg))
			r.Get("/reports/daily", controllers.OrderDailySales(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			r.Post("/{orderId}/deliver", controllers.OrderDeliver(ordersService, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(ordersService, logg))
		})

		// Session operations are keyed by the X-Terminal-Id header; one live
		// session per terminal.
		r.Route("/pos/session", func(r chi.Router) {
			r.Use(middleware.TerminalContext(logg))
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Post("/", controllers.PosStartSession(posService, logg))
			r.Get("/", controllers.PosGetSession(posService, logg))
			r.Post("/items", controllers.PosAddItem(posService, logg))
			r.Post("/items/{itemId}/complements", controllers.PosAttachComplement(posService, logg))
			r.Put("/items/{itemId}/quantity", controllers.PosSetQuantity(posService, logg))
			r.Delete("/items/{itemId}", controllers.PosRemoveLine(posService, logg))
			r.Put("/customer", controllers.PosSetCustomer(posService, logg))
			r.Put("/note", controllers.PosSetNote(posService, logg))
			r.Put("/fulfillment", controllers.PosSetFulfillment(posService, logg))
			r.Post("/settle", controllers.PosSettle(posService, logg))
			r.Put("/payment-method", controllers.PosSelectMethod(posService, logg))
			r.Post("/finalize", controllers.PosFinalize(posService, logg))
			r.Post("/cancel", controllers.PosCancel(posService, logg))
			r.Post("/save-pending", controllers.PosSavePending(posService, logg))
		})
	})

	return r
}
