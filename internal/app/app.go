package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trovekart/storefront/internal/backend"
	"github.com/trovekart/storefront/internal/config"
	"github.com/trovekart/storefront/internal/event"
	handler "github.com/trovekart/storefront/internal/handler/http"
	"github.com/trovekart/storefront/internal/pricing"
	redisrepo "github.com/trovekart/storefront/internal/repository/redis"
	"github.com/trovekart/storefront/internal/service"
	"github.com/trovekart/storefront/pkg/health"
	"github.com/trovekart/storefront/pkg/httpclient"
	pkgkafka "github.com/trovekart/storefront/pkg/kafka"
	"github.com/trovekart/storefront/pkg/middleware"
	"github.com/trovekart/storefront/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize tracing.
	tracingCfg := tracing.DefaultConfig("storefront")
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracingCfg.SampleRate = cfg.OTELSampleRate
	tracingCfg.Enabled = cfg.OTELEnabled
	tracerShutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize Redis client.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Downstream clients, each behind its own circuit breaker.
	httpClient := httpclient.New(httpclient.DefaultConfig())
	catalogClient := backend.NewCatalogClient(newBreaker(httpClient, "catalog", cfg, logger), cfg.CatalogServiceURL)
	orderClient := backend.NewOrderClient(newBreaker(httpClient, "order", cfg, logger), cfg.OrderServiceURL)
	paymentClient := backend.NewPaymentClient(newBreaker(httpClient, "payment", cfg, logger), cfg.PaymentServiceURL)

	// Build the dependency graph.
	calc := pricing.Calculator{
		TaxRateBps:            cfg.TaxRateBps,
		ShippingFee:           cfg.ShippingFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
	}

	cartRepo := redisrepo.NewCartRepository(rdb, time.Duration(cfg.CartTTL)*time.Hour)
	checkoutRepo := redisrepo.NewCheckoutRepository(rdb, time.Duration(cfg.CheckoutTTL)*time.Minute)
	eventProducer := event.NewProducer(producer, logger)

	cartService := service.NewCartService(cartRepo, catalogClient, eventProducer, calc, logger)
	checkoutService := service.NewCheckoutService(checkoutRepo, cartRepo, catalogClient, calc, logger)
	orderService := service.NewOrderService(
		checkoutService, cartService, orderClient, paymentClient, eventProducer, calc, logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", producer.Ping)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.CORSAllowedOrigins
	corsConfig.Environment = cfg.Environment

	router := handler.NewRouter(
		cartService, checkoutService, orderService, healthHandler, corsConfig, logger,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// newBreaker builds a circuit-breaker-wrapped HTTP client for one downstream.
func newBreaker(client *httpclient.Client, name string, cfg *config.Config, logger *slog.Logger) *httpclient.BreakerClient {
	breakerCfg := httpclient.CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}
	return httpclient.NewBreakerClient(client, breakerCfg, logger)
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
