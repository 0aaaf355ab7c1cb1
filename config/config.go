package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	Port     string
	GoEnv    string
	LogLevel string

	DatabaseURL string

	// Google service account used for the Sheets append
	GoogleClientEmail string
	GooglePrivateKey  string
	GoogleSheetID     string
	GoogleSheetRange  string
	SheetsTimeout     time.Duration

	CORSAllowedOrigins []string

	Auth0Domain   string
	Auth0Audience string

	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			// Hosted deployments set the environment directly
			log.Debug().Msg("No .env file found, using system environment variables")
		}
	} else {
		log.Debug().Str("file", envFile).Msg("Loaded configuration file")
	}

	timeout, err := time.ParseDuration(getEnv("SHEETS_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHEETS_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		GoogleClientEmail:  getEnv("GOOGLE_CLIENT_EMAIL", ""),
		GooglePrivateKey:   NormalizePrivateKey(getEnv("GOOGLE_PRIVATE_KEY", "")),
		GoogleSheetID:      getEnv("GOOGLE_SHEET_ID", ""),
		GoogleSheetRange:   getEnv("GOOGLE_SHEET_RANGE", "A1:G1"),
		SheetsTimeout:      timeout,
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfig = cfg
	return cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.GoogleClientEmail == "" {
		return fmt.Errorf("GOOGLE_CLIENT_EMAIL is required")
	}
	if c.GooglePrivateKey == "" {
		return fmt.Errorf("GOOGLE_PRIVATE_KEY is required")
	}
	if c.GoogleSheetID == "" {
		return fmt.Errorf("GOOGLE_SHEET_ID is required")
	}
	if c.SheetsTimeout <= 0 {
		return fmt.Errorf("SHEETS_TIMEOUT must be positive")
	}
	return nil
}

// GetConfig returns the configuration stored by the last successful Load
func GetConfig() *Config {
	return appConfig
}

// SetConfig replaces the process-wide configuration (primarily for testing)
func SetConfig(cfg *Config) {
	appConfig = cfg
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// ReceiptsEnabled reports whether S3 settings are present for receipt uploads
func (c *Config) ReceiptsEnabled() bool {
	return c.AWSS3Bucket != ""
}

// FlavorAdminEnabled reports whether Auth0 is configured for catalog writes
func (c *Config) FlavorAdminEnabled() bool {
	return c.Auth0Domain != "" && c.Auth0Audience != ""
}

// NormalizePrivateKey turns escaped "\n" sequences into real newlines.
// Keys pasted into a single-line env var arrive in the escaped form.
func NormalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
