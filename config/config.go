package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all environment configuration for the service.
// Stripe keys are validated at load time so a misconfigured deployment
// fails at startup instead of on the first billing request.
type Config struct {
	Port             string
	Env              string
	FrontendURL      string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string

	AccessTokenSecret  string
	RefreshTokenSecret string

	StripeSecretKey      string
	StripePublishableKey string
	StripeWebhookSecret  string

	// Price IDs for the three subscription plans, keyed by plan id.
	PlanPriceIDs map[string]string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "9000"),
		Env:              getEnv("ENV", "development"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),

		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),

		PlanPriceIDs: map[string]string{
			"basic":   os.Getenv("STRIPE_BASIC_PRICE_ID"),
			"premium": os.Getenv("STRIPE_PREMIUM_PRICE_ID"),
			"elite":   os.Getenv("STRIPE_ELITE_PRICE_ID"),
		},
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("missing required Postgres environment variables")
	}
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, fmt.Errorf("missing ACCESS_TOKEN_SECRET or REFRESH_TOKEN_SECRET")
	}

	if err := cfg.validateStripe(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validateStripe() error {
	var missing []string
	if c.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.StripePublishableKey == "" {
		missing = append(missing, "STRIPE_PUBLISHABLE_KEY")
	}
	if c.StripeWebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required Stripe environment variables: %s", strings.Join(missing, ", "))
	}

	if !strings.HasPrefix(c.StripeSecretKey, "sk_") {
		return fmt.Errorf("invalid STRIPE_SECRET_KEY format")
	}
	if !strings.HasPrefix(c.StripePublishableKey, "pk_") {
		return fmt.Errorf("invalid STRIPE_PUBLISHABLE_KEY format")
	}
	if !strings.HasPrefix(c.StripeWebhookSecret, "whsec_") {
		return fmt.Errorf("invalid STRIPE_WEBHOOK_SECRET format")
	}

	for plan, priceID := range c.PlanPriceIDs {
		if priceID == "" {
			return fmt.Errorf("missing Stripe price ID for plan %q", plan)
		}
	}

	if c.Env == "production" && strings.Contains(c.StripeSecretKey, "_test_") {
		log.Println("WARNING: Using test Stripe keys in production")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
