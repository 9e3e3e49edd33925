// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/aristath/fundrisk/internal/modules/aggregation"
	"github.com/aristath/fundrisk/internal/modules/risk"
	"github.com/aristath/fundrisk/internal/modules/sources"
)

// Config holds application configuration
type Config struct {
	DataDir      string `validate:"required"` // Transient upload storage (always absolute)
	LogLevel     string `validate:"oneof=trace debug info warn warning error"`
	Port         int    `validate:"min=1,max=65535"`
	DevMode      bool
	MinFiles     int     `validate:"min=1"`
	MaxFiles     int     `validate:"min=1,gtefield=MinFiles"`
	MaxFileBytes int64   `validate:"min=1"`
	Workers      int     `validate:"min=1,max=64"`
	VaRZ         float64 `validate:"gt=0"`
	HorizonDays  int     `validate:"min=1,max=252"`
	VaRModel     string  `validate:"oneof=parametric historical"`
	Coefficients risk.Coefficients
	Inbox        *InboxConfig
	S3           sources.S3Config
}

// InboxConfig holds the scheduled analysis settings. An empty Dir and no S3
// bucket disable the job.
type InboxConfig struct {
	Dir      string
	Schedule string `validate:"required"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FUNDRISK_DATA_DIR", "")
	if dataDir == "" {
		dataDir = filepath.Join(os.TempDir(), "fundrisk")
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	defaults := risk.DefaultConfig()
	limits := sources.DefaultLimits()

	cfg := &Config{
		DataDir:      absDataDir,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnvAsInt("GO_PORT", 8001),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		MinFiles:     getEnvAsInt("FUNDRISK_MIN_FILES", aggregation.DefaultMinFiles),
		MaxFiles:     getEnvAsInt("FUNDRISK_MAX_FILES", limits.MaxFiles),
		MaxFileBytes: int64(getEnvAsInt("FUNDRISK_MAX_FILE_BYTES", int(limits.MaxFileBytes))),
		Workers:      getEnvAsInt("FUNDRISK_WORKERS", 4),
		VaRZ:         getEnvAsFloat("FUNDRISK_VAR_Z", defaults.ZScore),
		HorizonDays:  getEnvAsInt("FUNDRISK_VAR_HORIZON_DAYS", defaults.HorizonDays),
		VaRModel:     getEnv("FUNDRISK_VAR_MODEL", string(risk.ModelParametric)),
		Coefficients: risk.Coefficients{
			InterestRate: getEnvAsFloat("FUNDRISK_RATE_COEF", defaults.Coefficients.InterestRate),
			FX:           getEnvAsFloat("FUNDRISK_FX_COEF", defaults.Coefficients.FX),
			Equity:       getEnvAsFloat("FUNDRISK_EQUITY_COEF", defaults.Coefficients.Equity),
			RealEstate:   getEnvAsFloat("FUNDRISK_REAL_ESTATE_COEF", defaults.Coefficients.RealEstate),
			Credit:       getEnvAsFloat("FUNDRISK_CREDIT_COEF", defaults.Coefficients.Credit),
		},
		Inbox: &InboxConfig{
			Dir:      getEnv("FUNDRISK_INBOX_DIR", ""),
			Schedule: getEnv("FUNDRISK_INBOX_SCHEDULE", "0 0 7 * * *"), // 07:00 daily
		},
		S3: sources.S3Config{
			Bucket:    getEnv("FUNDRISK_S3_BUCKET", ""),
			Prefix:    getEnv("FUNDRISK_S3_PREFIX", ""),
			Endpoint:  getEnv("FUNDRISK_S3_ENDPOINT", ""),
			Region:    getEnv("FUNDRISK_S3_REGION", ""),
			AccessKey: getEnv("FUNDRISK_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("FUNDRISK_S3_SECRET_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration ranges
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RiskConfig builds the risk engine configuration
func (c *Config) RiskConfig() risk.Config {
	cfg := risk.DefaultConfig()
	cfg.ZScore = c.VaRZ
	cfg.HorizonDays = c.HorizonDays
	cfg.Model = risk.VaRModel(c.VaRModel)
	cfg.Coefficients = c.Coefficients
	return cfg
}

// AggregationConfig builds the aggregator configuration
func (c *Config) AggregationConfig() aggregation.Config {
	return aggregation.Config{MinFiles: c.MinFiles, Workers: c.Workers}
}

// Limits builds the document loader limits
func (c *Config) Limits() sources.Limits {
	return sources.Limits{MaxFiles: c.MaxFiles, MaxFileBytes: c.MaxFileBytes}
}

// InboxEnabled reports whether scheduled analysis has anything to read
func (c *Config) InboxEnabled() bool {
	return c.Inbox != nil && (c.Inbox.Dir != "" || c.S3.Enabled())
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
