package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ortnersoft/crm-backend/api/controllers"
	"github.com/ortnersoft/crm-backend/api/middleware"
	"github.com/ortnersoft/crm-backend/internal/auth"
	"github.com/ortnersoft/crm-backend/internal/contacts"
	"github.com/ortnersoft/crm-backend/internal/customers"
	"github.com/ortnersoft/crm-backend/internal/insights"
	"github.com/ortnersoft/crm-backend/internal/orders"
	"github.com/ortnersoft/crm-backend/internal/products"
	"github.com/ortnersoft/crm-backend/pkg/auth/session"
	"github.com/ortnersoft/crm-backend/pkg/config"
	"github.com/ortnersoft/crm-backend/pkg/db"
	"github.com/ortnersoft/crm-backend/pkg/logger"
	"github.com/ortnersoft/crm-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	Sessions session.AccessSessionChecker

	Auth      auth.Service
	Customers customers.Service
	Products  products.Service
	Orders    orders.Service
	Contacts  contacts.Service
	Insights  insights.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, deps.Redis, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.Login(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.Register(deps.Auth, logg))
		r.Post("/refresh", controllers.Refresh(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Post("/auth/logout", controllers.Logout(deps.Auth, logg))

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerList(deps.Customers, logg))
			r.Post("/", controllers.CustomerCreate(deps.Customers, logg))
			r.Get("/{customerId}", controllers.CustomerGet(deps.Customers, logg))
			r.Patch("/{customerId}", controllers.CustomerUpdate(deps.Customers, logg))
			r.With(middleware.RequireCanDelete(logg)).Delete("/{customerId}", controllers.CustomerDelete(deps.Customers, logg))
			r.Get("/{customerId}/revenue", controllers.CustomerRevenue(deps.Customers, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Post("/", controllers.ProductCreate(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.Products, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(deps.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Post("/", controllers.OrderCreate(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(deps.Orders, logg))
			r.Patch("/{orderId}", controllers.OrderUpdate(deps.Orders, logg))
			r.With(middleware.RequireCanDelete(logg)).Delete("/{orderId}", controllers.OrderDelete(deps.Orders, logg))
			r.Post("/{orderId}/items", controllers.OrderItemAdd(deps.Orders, logg))
			r.Patch("/{orderId}/items/{itemId}", controllers.OrderItemUpdate(deps.Orders, logg))
			r.Delete("/{orderId}/items/{itemId}", controllers.OrderItemRemove(deps.Orders, logg))
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", controllers.ContactList(deps.Contacts, logg))
			r.Post("/", controllers.ContactCreate(deps.Contacts, logg))
			r.Get("/{contactId}", controllers.ContactGet(deps.Contacts, logg))
			r.Patch("/{contactId}", controllers.ContactUpdate(deps.Contacts, logg))
			r.Delete("/{contactId}", controllers.ContactDelete(deps.Contacts, logg))
		})

		r.Get("/dashboard", controllers.Dashboard(deps.Insights, logg))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/kpis", controllers.ReportKPIs(deps.Insights, logg))
			r.Get("/monthly-revenue", controllers.ReportMonthlyRevenue(deps.Insights, logg))
			r.Get("/top-customers", controllers.ReportTopCustomers(deps.Insights, logg))
			r.Get("/top-products", controllers.ReportTopProducts(deps.Insights, logg))
			r.Get("/customers-without-orders", controllers.ReportInactiveCustomers(deps.Insights, logg))
		})

		r.Route("/exports", func(r chi.Router) {
			r.Get("/customers", controllers.ExportCustomers(deps.Customers, logg))
			r.Get("/orders", controllers.ExportOrders(deps.Orders, logg))
			r.Get("/orders/{orderId}", controllers.ExportOrderDetail(deps.Orders, logg))
			r.Get("/contacts", controllers.ExportContacts(deps.Contacts, logg))
		})
	})

	return r
}
