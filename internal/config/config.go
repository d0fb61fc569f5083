package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string

	// Storage buckets
	ImagesBucket       string
	DeliverablesBucket string
	InvoicesBucket     string
	SignedURLTTL       time.Duration

	// Database
	DatabaseURL string

	// Orders
	OrderNumberMaxAttempts int
	OrderNumberRetryDelay  time.Duration
	UploadConcurrency      int
	UploadRetries          int
	BracketingPolicy       string
	VATRate                decimal.Decimal

	// Rate limiting
	RateLimitRPS     float64
	RateLimitBurst   int
	RateLimitTTL     time.Duration
	RateLimitMaxKeys int

	// Reconciler
	ReconcileInterval time.Duration
	StaleUploadAge    time.Duration

	// Server
	Port            string
	BaseURL         string
	Environment     string
	LogLevel        string
	ShutdownTimeout time.Duration
}

type envLookup func(string) (string, bool)

func Load() (*Config, error) {
	return load(os.LookupEnv)
}

func load(lookup envLookup) (*Config, error) {
	cfg := &Config{
		SupabaseURL:            getEnv(lookup, "SUPABASE_URL", ""),
		SupabaseServiceRoleKey: getEnv(lookup, "SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:      getEnv(lookup, "SUPABASE_JWT_SECRET", ""),

		ImagesBucket:       getEnv(lookup, "IMAGES_BUCKET", "order-images"),
		DeliverablesBucket: getEnv(lookup, "DELIVERABLES_BUCKET", "order-deliverables"),
		InvoicesBucket:     getEnv(lookup, "INVOICES_BUCKET", "order-invoices"),
		SignedURLTTL:       getDuration(lookup, "SIGNED_URL_TTL", time.Hour),

		DatabaseURL: getEnv(lookup, "DATABASE_URL", ""),

		OrderNumberMaxAttempts: getInt(lookup, "ORDER_NUMBER_MAX_ATTEMPTS", 10),
		OrderNumberRetryDelay:  getDuration(lookup, "ORDER_NUMBER_RETRY_DELAY", 10*time.Millisecond),
		UploadConcurrency:      getInt(lookup, "UPLOAD_CONCURRENCY", 0),
		UploadRetries:          getInt(lookup, "UPLOAD_RETRIES", 3),
		BracketingPolicy:       getEnv(lookup, "BRACKETING_POLICY", "exclude-unmatched"),

		RateLimitRPS:     getFloat(lookup, "RATE_LIMIT_RPS", 1),
		RateLimitBurst:   getInt(lookup, "RATE_LIMIT_BURST", 5),
		RateLimitTTL:     getDuration(lookup, "RATE_LIMIT_TTL", 10*time.Minute),
		RateLimitMaxKeys: getInt(lookup, "RATE_LIMIT_MAX_KEYS", 10000),

		ReconcileInterval: getDuration(lookup, "RECONCILE_INTERVAL", time.Minute),
		StaleUploadAge:    getDuration(lookup, "STALE_UPLOAD_AGE", 30*time.Minute),

		Port:            getEnv(lookup, "PORT", "8080"),
		BaseURL:         getEnv(lookup, "BASE_URL", ""),
		Environment:     getEnv(lookup, "ENVIRONMENT", "development"),
		LogLevel:        getEnv(lookup, "LOG_LEVEL", "info"),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	vat, err := decimal.NewFromString(getEnv(lookup, "VAT_RATE", "0.19"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: VAT_RATE: %w", err)
	}
	cfg.VATRate = vat

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceRoleKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.OrderNumberMaxAttempts <= 0 {
		return fmt.Errorf("ORDER_NUMBER_MAX_ATTEMPTS must be positive")
	}
	if c.UploadConcurrency < 0 {
		return fmt.Errorf("UPLOAD_CONCURRENCY must not be negative")
	}
	if c.UploadRetries <= 0 {
		return fmt.Errorf("UPLOAD_RETRIES must be positive")
	}
	if c.BracketingPolicy != "exclude-unmatched" && c.BracketingPolicy != "bill-unmatched" {
		return fmt.Errorf("BRACKETING_POLICY must be exclude-unmatched or bill-unmatched")
	}
	if c.VATRate.IsNegative() {
		return fmt.Errorf("VAT_RATE must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(lookup envLookup, key, defaultValue string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getInt(lookup envLookup, key string, defaultValue int) int {
	if value, ok := lookup(key); ok && value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloat(lookup envLookup, key string, defaultValue float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDuration(lookup envLookup, key string, defaultValue time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
