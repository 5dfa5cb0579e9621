package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nicofzzn/ecommerce/internal/service"
	"github.com/nicofzzn/ecommerce/pkg/health"
	"github.com/nicofzzn/ecommerce/pkg/middleware"
)

const serviceName = "proshop-api"

// RouterConfig carries everything the router mounts. Orders may be nil when
// orders live in a remote service; GET /api/orders/{id} is then not served.
// WriteLimit may be nil to disable rate limiting.
type RouterConfig struct {
	Products *service.ProductService
	Reviews  *service.ReviewService
	Checkout *service.CheckoutService
	Orders   *service.OrderService

	Health         *health.Handler
	ValidateToken  middleware.TokenValidator
	Metrics        *middleware.HTTPMetrics
	Gatherer       prometheus.Gatherer
	CORS           middleware.CORSConfig
	WriteLimit     func(http.Handler) http.Handler
	PayPalClientID string
	PprofCIDRs     []string
	Logger         *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	log := cfg.Logger

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogging(log))
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware(serviceName))
	}
	r.Use(middleware.RequestLogger(log))

	writeLimit := cfg.WriteLimit
	if writeLimit == nil {
		writeLimit = func(next http.Handler) http.Handler { return next }
	}
	requireAuth := middleware.Auth(cfg.ValidateToken)
	optionalAuth := middleware.OptionalAuth(cfg.ValidateToken)
	enrichLogger := middleware.RequestLogger(log)

	// Health and metrics
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if len(cfg.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, log)
	}

	products := NewProductHandler(cfg.Products, log)
	reviews := NewReviewHandler(cfg.Reviews, log)

	r.Route("/api/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(30 * time.Second))
			r.Get("/", products.ListProducts)
			r.Get("/top", products.TopProducts)
			r.Get("/{id}", products.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, enrichLogger, writeLimit)
			// Older storefront builds POST reviews; the documented verb is PUT.
			r.Post("/{id}/reviews", reviews.AddReview)
			r.Put("/{id}/reviews", reviews.AddReview)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, enrichLogger, middleware.RequireRole(middleware.RoleAdmin))
			r.Post("/", products.CreateProduct)
			r.Put("/{id}", products.UpdateProduct)
			r.Delete("/{id}", products.DeleteProduct)
		})
	})

	checkout := NewCheckoutHandler(cfg.Checkout, log)

	r.Route("/api/checkout", func(r chi.Router) {
		r.Use(middleware.NoStore)

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth, enrichLogger)
			r.Get("/{id}", checkout.GetSession)

			r.Group(func(r chi.Router) {
				r.Use(writeLimit)
				r.Post("/", checkout.CreateSession)
				r.Post("/{id}/steps/{step}", checkout.EnterStep)
				r.Put("/{id}/cart", checkout.SetCart)
				r.Put("/{id}/shipping", checkout.SetShipping)
				r.Put("/{id}/payment", checkout.SavePayment)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, enrichLogger, writeLimit)
			r.Post("/{id}/order", checkout.PlaceOrder)
		})
	})

	if cfg.Orders != nil {
		orders := NewOrderHandler(cfg.Orders, log)
		r.With(middleware.NoStore, requireAuth, enrichLogger).Get("/api/orders/{id}", orders.GetOrder)
	}

	r.Get("/api/config/paypal", PayPalConfig(cfg.PayPalClientID))

	return r
}
