package config

import (
	"fmt"
	"net/url"

	pkgconfig "github.com/trovekart/storefront/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart TTL in hours (default: 7 days)
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"168"`

	// Checkout state TTL in minutes (default: 24 hours)
	CheckoutTTL int `env:"CHECKOUT_TTL_MINUTES" envDefault:"1440"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Downstream service URLs
	CatalogServiceURL string `env:"CATALOG_SERVICE_URL" envDefault:"http://localhost:8001"`
	OrderServiceURL   string `env:"ORDER_SERVICE_URL" envDefault:"http://localhost:8004"`
	PaymentServiceURL string `env:"PAYMENT_SERVICE_URL" envDefault:"http://localhost:8005"`

	// Pricing policy. Amounts are in minor currency units, the tax rate
	// in basis points.
	TaxRateBps            int64 `env:"TAX_RATE_BPS" envDefault:"1800"`
	ShippingFee           int64 `env:"SHIPPING_FEE" envDefault:"5000"`
	FreeShippingThreshold int64 `env:"FREE_SHIPPING_THRESHOLD" envDefault:"1000000"`

	// Circuit breaker settings for downstream service calls
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.CartTTL < 1 {
		return fmt.Errorf("CART_TTL_HOURS must be positive, got %d", c.CartTTL)
	}
	if c.CheckoutTTL < 1 {
		return fmt.Errorf("CHECKOUT_TTL_MINUTES must be positive, got %d", c.CheckoutTTL)
	}
	if c.TaxRateBps < 0 || c.TaxRateBps > 10_000 {
		return fmt.Errorf("TAX_RATE_BPS must be between 0 and 10000, got %d", c.TaxRateBps)
	}
	if c.ShippingFee < 0 {
		return fmt.Errorf("SHIPPING_FEE must not be negative, got %d", c.ShippingFee)
	}
	if c.FreeShippingThreshold < 0 {
		return fmt.Errorf("FREE_SHIPPING_THRESHOLD must not be negative, got %d", c.FreeShippingThreshold)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	for name, rawURL := range map[string]string{
		"CATALOG_SERVICE_URL": c.CatalogServiceURL,
		"ORDER_SERVICE_URL":   c.OrderServiceURL,
		"PAYMENT_SERVICE_URL": c.PaymentServiceURL,
	} {
		if rawURL == "" {
			return fmt.Errorf("%s is required", name)
		}
		if _, err := url.ParseRequestURI(rawURL); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, rawURL, err)
		}
	}
	return nil
}
