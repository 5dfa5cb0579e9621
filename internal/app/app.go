package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/nicofzzn/ecommerce/internal/auth"
	"github.com/nicofzzn/ecommerce/internal/config"
	"github.com/nicofzzn/ecommerce/internal/event"
	handler "github.com/nicofzzn/ecommerce/internal/handler/http"
	"github.com/nicofzzn/ecommerce/internal/orderclient"
	"github.com/nicofzzn/ecommerce/internal/repository/postgres"
	redisrepo "github.com/nicofzzn/ecommerce/internal/repository/redis"
	"github.com/nicofzzn/ecommerce/internal/service"
	"github.com/nicofzzn/ecommerce/migrations"
	"github.com/nicofzzn/ecommerce/pkg/database"
	"github.com/nicofzzn/ecommerce/pkg/health"
	"github.com/nicofzzn/ecommerce/pkg/httpclient"
	pkgkafka "github.com/nicofzzn/ecommerce/pkg/kafka"
	"github.com/nicofzzn/ecommerce/pkg/logger"
	"github.com/nicofzzn/ecommerce/pkg/middleware"
	"github.com/nicofzzn/ecommerce/pkg/tracing"
)

const serviceName = "proshop-api"

// App wires together all dependencies and runs the storefront API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer // nil when events are disabled
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
	stopBackground context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, log *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// PostgreSQL holds products, reviews, orders and users.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		if err != nil {
			pool.Close()
		}
	}()
	log.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err = database.RegisterPoolMetrics(reg, pool, serviceName); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	if err = database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database migrations completed")

	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, log)
	}

	// Redis holds checkout sessions.
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	defer func() {
		if err != nil {
			_ = redisClient.Close()
		}
	}()
	log.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))

	var producer *pkgkafka.Producer
	var publisher event.Publisher = event.Nop{}
	if cfg.EventsEnabled {
		producer = pkgkafka.NewProducer(
			pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers),
			pkgkafka.NewProducerMetrics(reg),
			log,
		)
		publisher = event.NewProducer(producer, log)
		log.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		log.Info("domain events disabled")
	}

	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	sessionRepo := redisrepo.NewCheckoutRepository(redisClient, cfg.CheckoutTTL())

	productService := service.NewProductService(productRepo, publisher, log)
	reviewService := service.NewReviewService(productRepo, publisher, log)
	orderService := service.NewOrderService(orderRepo, log)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterCritical("redis", sessionRepo.Ping)
	if producer != nil {
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
	}

	// Orders go to the remote order service when one is configured.
	var placer service.OrderPlacer = orderService
	localOrders := orderService
	if cfg.OrderServiceURL != "" {
		breakerCfg := cfg.OrderServiceBreaker()
		cbClient := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			breakerCfg,
			httpclient.NewBreakerMetrics(reg),
			log,
		)
		placer = orderclient.New(cbClient, cfg.OrderServiceURL, log)
		localOrders = nil
		log.Info("orders delegated to remote service",
			slog.String("url", cfg.OrderServiceURL),
			slog.String("breaker", breakerCfg.Name),
			slog.Uint64("min_requests", uint64(breakerCfg.MinRequests)),
		)
	}

	checkoutService := service.NewCheckoutService(sessionRepo, productRepo, placer, publisher, log)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 0)

	bgCtx, stopBackground := context.WithCancel(context.Background())

	var pprofCIDRs []string
	if cfg.PprofEnabled {
		pprofCIDRs = cfg.PprofAllowedCIDRs
	}

	router := handler.NewRouter(handler.RouterConfig{
		Products:      productService,
		Reviews:       reviewService,
		Checkout:      checkoutService,
		Orders:        localOrders,
		Health:        healthHandler,
		ValidateToken: jwtManager.Validate,
		Metrics:       middleware.NewHTTPMetrics(reg),
		Gatherer:      reg,
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowCredentials: true,
			MaxAge:           300,
		},
		WriteLimit:     middleware.RateLimit(bgCtx, cfg.RateLimitRPS, cfg.RateLimitBurst, log),
		PayPalClientID: cfg.PayPalClientID,
		PprofCIDRs:     pprofCIDRs,
		Logger:         log,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         log,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
		stopBackground: stopBackground,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown stops components in dependency order: the HTTP server drains
// first, then spans are flushed, then the producer and stores close.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", logger.Err(err))
		errs = append(errs, err)
	}
	a.stopBackground()

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", logger.Err(err))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", logger.Err(err))
			errs = append(errs, err)
		}
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", logger.Err(err))
		errs = append(errs, err)
	}
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
