package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autocare/autocare-backend/api/controllers"
	"github.com/autocare/autocare-backend/api/middleware"
	"github.com/autocare/autocare-backend/internal/auth"
	"github.com/autocare/autocare-backend/internal/cart"
	"github.com/autocare/autocare-backend/internal/inquiries"
	"github.com/autocare/autocare-backend/internal/orders"
	"github.com/autocare/autocare-backend/internal/products"
	"github.com/autocare/autocare-backend/pkg/auth/session"
	"github.com/autocare/autocare-backend/pkg/config"
	"github.com/autocare/autocare-backend/pkg/logger"
	"github.com/autocare/autocare-backend/pkg/metrics"
	"github.com/autocare/autocare-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Revoke(ctx context.Context, accessID string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles everything the router needs.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             pinger
	Redis          *redis.Client
	Metrics        *metrics.HTTPMetrics
	SessionManager sessionManager
	AuthService    auth.Service
	Register       auth.RegisterService
	ProductService products.Service
	CartService    cart.Service
	OrderService   orders.Service
	InquiryService inquiries.Service
}

// NewRouter assembles the storefront API surface.
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
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	loginLimiter := rateLimiter(middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	), deps.Redis, logg)
	registerLimiter := rateLimiter(middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	), deps.Redis, logg)

	var cache pinger
	if deps.Redis != nil {
		cache = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, cache, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(loginLimiter).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(registerLimiter).
			Post("/register", controllers.AuthRegister(deps.Register, deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.SessionManager, cfg.JWT, logg))
	})

	// Public storefront surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.ProductService, logg))
			r.Get("/{slug}", controllers.ProductGet(deps.ProductService, logg))
		})
		r.Post("/orders/track", controllers.OrdersTrack(deps.OrderService, logg))
		r.Post("/inquiries", controllers.InquiriesCreate(deps.InquiryService, logg))
	})

	// Signed-in surface.
	r.Route("/api/v1/me", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

		r.Get("/", controllers.AuthMe(deps.AuthService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.CartService, logg))
			r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(deps.CartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.CartService, logg))
			r.Delete("/", controllers.CartClear(deps.CartService, logg))
			r.Post("/merge", controllers.CartMerge(deps.CartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrdersPlace(deps.OrderService, logg))
			r.Get("/", controllers.OrdersListMine(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.OrdersGetMine(deps.OrderService, logg))
		})
	})

	// Back office.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.With(loginLimiter).
			Post("/auth/login", controllers.AdminAuthLogin(deps.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
			r.Use(middleware.RequireAdmin(logg))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.AdminProductCreate(deps.ProductService, logg))
				r.Patch("/{productId}", controllers.AdminProductUpdate(deps.ProductService, logg))
				r.Delete("/{productId}", controllers.AdminProductDelete(deps.ProductService, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrdersList(deps.OrderService, logg))
				r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.OrderService, logg))
			})
			r.Route("/inquiries", func(r chi.Router) {
				r.Get("/", controllers.AdminInquiriesList(deps.InquiryService, logg))
				r.Patch("/{inquiryId}/status", controllers.AdminInquiryUpdateStatus(deps.InquiryService, logg))
			})
		})
	})

	return r
}

// rateLimiter skips throttling entirely when no redis client is wired, so
// tests and local runs without redis still route.
func rateLimiter(policy middleware.AuthRateLimitPolicy, client *redis.Client, logg *logger.Logger) func(http.Handler) http.Handler {
	if client == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.AuthRateLimit(policy, client, logg)
}
