package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs from the environment.
// The pricing block exists because the tax/shipping rules have already
// changed once in this product's history; they are tunables, not law.
type Config struct {
	HTTP       HTTPConfig
	Mongo      MongoConfig
	JWT        JWTConfig
	Stripe     StripeConfig
	SMTP       SMTPConfig
	Cloudinary CloudinaryConfig
	NATS       NATSConfig
	Pricing    PricingConfig
	Sweeper    SweeperConfig
}

type HTTPConfig struct {
	Port           string
	AllowedOrigins []string
	CookieSecure   bool
}

type MongoConfig struct {
	URI string
	DB  string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type CloudinaryConfig struct {
	URL string
}

// NATSConfig is optional: an empty URL disables event publishing.
type NATSConfig struct {
	URL string
}

type PricingConfig struct {
	TaxRate           float64
	ShippingThreshold float64
	ShippingFlat      float64
	MinOnlineAmount   float64
}

// SweeperConfig controls the background cleanup of abandoned online
// checkouts (unpaid card orders whose session was never completed).
type SweeperConfig struct {
	Interval time.Duration
	OrderTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTP: HTTPConfig{
			Port:           getEnv("PORT", "4000"),
			AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
			CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		},
		Mongo: MongoConfig{
			URI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DB:  getEnv("MONGO_DB", "greencart"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    getEnvDuration("JWT_TTL", 7*24*time.Hour),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      getEnv("STRIPE_CURRENCY", "inr"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_EMAIL", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", getEnv("SMTP_EMAIL", "")),
		},
		Cloudinary: CloudinaryConfig{
			URL: getEnv("CLOUDINARY_URL", ""),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Pricing: PricingConfig{
			TaxRate:           getEnvFloat("TAX_RATE", 0.04),
			ShippingThreshold: getEnvFloat("SHIPPING_THRESHOLD", 150),
			ShippingFlat:      getEnvFloat("SHIPPING_FLAT", 20),
			MinOnlineAmount:   getEnvFloat("MIN_ONLINE_AMOUNT", 50),
		},
		Sweeper: SweeperConfig{
			Interval: getEnvDuration("SWEEP_INTERVAL", time.Hour),
			OrderTTL: getEnvDuration("STALE_ORDER_TTL", 24*time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Mongo.DB == "" {
		return fmt.Errorf("MONGO_DB is required")
	}
	if c.Pricing.TaxRate < 0 || c.Pricing.TaxRate >= 1 {
		return fmt.Errorf("TAX_RATE must be in [0,1)")
	}
	if c.Pricing.ShippingFlat < 0 || c.Pricing.ShippingThreshold < 0 {
		return fmt.Errorf("shipping settings must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
