package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Mpesa    MpesaConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// MpesaConfig holds Safaricom Daraja API configuration. Credentials come
// from the environment; none of them have usable defaults.
type MpesaConfig struct {
	ConsumerKey      string
	ConsumerSecret   string
	Passkey          string
	ShortCode        string
	CallbackURL      string
	OAuthURL         string
	STKPushURL       string
	TransactionType  string
	AccountReference string
	TransactionDesc  string
}

// Validate checks that every required Daraja setting is present.
func (c MpesaConfig) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"MPESA_CONSUMER_KEY", c.ConsumerKey},
		{"MPESA_CONSUMER_SECRET", c.ConsumerSecret},
		{"MPESA_PASSKEY", c.Passkey},
		{"MPESA_SHORTCODE", c.ShortCode},
		{"MPESA_CALLBACK_URL", c.CallbackURL},
		{"MPESA_OAUTH_URL", c.OAuthURL},
		{"MPESA_STKPUSH_URL", c.STKPushURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required environment variable %s", r.name)
		}
	}
	return nil
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "mpesa_payments"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "mpesa-stkpush-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Mpesa: MpesaConfig{
			ConsumerKey:      getEnv("MPESA_CONSUMER_KEY", ""),
			ConsumerSecret:   getEnv("MPESA_CONSUMER_SECRET", ""),
			Passkey:          getEnv("MPESA_PASSKEY", ""),
			ShortCode:        getEnv("MPESA_SHORTCODE", ""),
			CallbackURL:      getEnv("MPESA_CALLBACK_URL", ""),
			OAuthURL:         getEnv("MPESA_OAUTH_URL", "https://sandbox.safaricom.co.ke/oauth/v1/generate?grant_type=client_credentials"),
			STKPushURL:       getEnv("MPESA_STKPUSH_URL", "https://sandbox.safaricom.co.ke/mpesa/stkpush/v1/processrequest"),
			TransactionType:  getEnv("MPESA_TRANSACTION_TYPE", "CustomerPayBillOnline"),
			AccountReference: getEnv("MPESA_ACCOUNT_REFERENCE", "Payment"),
			TransactionDesc:  getEnv("MPESA_TRANSACTION_DESC", "STK Push payment"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
