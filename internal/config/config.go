// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Analytics defaults. These are the documented configuration surface of the
// computation engines; none of them is ever inferred silently from the data.
const (
	DefaultPeriodsPerYearDaily   = 252 // trading days
	DefaultPeriodsPerYearMonthly = 12
	DefaultBusinessDaysPerYear   = 252
	DefaultTrailingWindowMonths  = 12
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases, always absolute
	Port     int
	LogLevel string
	DevMode  bool

	// Analytics defaults, overridable per request.
	PeriodsPerYear       int     // 252 (daily) or 12 (monthly)
	BusinessDaysPerYear  int     // fixed-income accrual convention
	TrailingWindowMonths int     // dividend projection window
	RiskFreeRate         float64 // annual benchmark rate fallback, decimal
	BenchmarkTicker      string  // index proxy used for beta and performance
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FOLIO_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:              absDataDir,
		Port:                 getEnvAsInt("FOLIO_PORT", 8001),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		PeriodsPerYear:       getEnvAsInt("FOLIO_PERIODS_PER_YEAR", DefaultPeriodsPerYearDaily),
		BusinessDaysPerYear:  getEnvAsInt("FOLIO_BUSINESS_DAYS_PER_YEAR", DefaultBusinessDaysPerYear),
		TrailingWindowMonths: getEnvAsInt("FOLIO_TRAILING_WINDOW_MONTHS", DefaultTrailingWindowMonths),
		RiskFreeRate:         getEnvAsFloat("FOLIO_RISK_FREE_RATE", 0.0875),
		BenchmarkTicker:      getEnv("FOLIO_BENCHMARK_TICKER", "BOVA11"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.PeriodsPerYear != DefaultPeriodsPerYearDaily && c.PeriodsPerYear != DefaultPeriodsPerYearMonthly {
		return fmt.Errorf("periods per year must be %d (daily) or %d (monthly), got %d",
			DefaultPeriodsPerYearDaily, DefaultPeriodsPerYearMonthly, c.PeriodsPerYear)
	}
	if c.BusinessDaysPerYear <= 0 {
		return fmt.Errorf("business days per year must be positive, got %d", c.BusinessDaysPerYear)
	}
	if c.TrailingWindowMonths <= 0 {
		return fmt.Errorf("trailing window months must be positive, got %d", c.TrailingWindowMonths)
	}
	if c.BenchmarkTicker == "" {
		return fmt.Errorf("benchmark ticker must not be empty")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
