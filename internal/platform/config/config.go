package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// BaseCurrency is the ISO 4217 code journals must balance in after
	// exchange-rate conversion.
	BaseCurrency string

	// RateLimit uses the limiter format string, e.g. "100-M" for 100
	// requests per minute per client IP.
	RateLimit string

	// ChartTemplatePath points at the YAML chart-of-accounts templates used
	// to seed new tenants. Empty disables seeding support.
	ChartTemplatePath string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("BASE_CURRENCY", "USD")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("CHART_TEMPLATE_PATH", "templates/charts")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.BaseCurrency = viper.GetString("BASE_CURRENCY")
	if len(cfg.BaseCurrency) != 3 {
		log.Printf("Warning: Invalid BASE_CURRENCY (%q). Defaulting to USD.\n", cfg.BaseCurrency)
		cfg.BaseCurrency = "USD"
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.ChartTemplatePath = viper.GetString("CHART_TEMPLATE_PATH")

	return cfg, nil
}
