package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration. It is loaded and validated once
// at startup and injected read-only into the components that need it.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Redis    RedisConfig
	Checkout CheckoutConfig
	Payment  PaymentConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// RedisConfig holds configuration for the optional catalogue read cache.
type RedisConfig struct {
	Enabled    bool
	Addr       string
	TTLSeconds int
}

// CheckoutConfig holds checkout pricing configuration.
type CheckoutConfig struct {
	// ShippingPrice is a flat fee in integer currency units, not computed
	// from weight or distance.
	ShippingPrice int64
}

// PaymentConfig holds the online payment gateway configuration. Credentials
// are trimmed of incidental whitespace on load; a value that is still empty
// when payments are enabled is a deployment defect.
type PaymentConfig struct {
	Enabled        bool
	PartnerCode    string
	AccessKey      string
	SecretKey      string
	Endpoint       string
	IPNURL         string
	RedirectURL    string // template, order id is appended
	TimeoutSeconds int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "bookmart"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Redis: RedisConfig{
			Enabled:    getEnvAsBool("REDIS_ENABLED", false),
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			TTLSeconds: getEnvAsInt("REDIS_TTL", 300),
		},
		Checkout: CheckoutConfig{
			ShippingPrice: int64(getEnvAsInt("SHIPPING_PRICE", 30000)),
		},
		Payment: PaymentConfig{
			Enabled:        getEnvAsBool("PAYMENT_ENABLED", false),
			PartnerCode:    strings.TrimSpace(getEnv("MOMO_PARTNER_CODE", "")),
			AccessKey:      strings.TrimSpace(getEnv("MOMO_ACCESS_KEY", "")),
			SecretKey:      strings.TrimSpace(getEnv("MOMO_SECRET_KEY", "")),
			Endpoint:       getEnv("MOMO_API_URL", ""),
			IPNURL:         getEnv("MOMO_IPN_URL", ""),
			RedirectURL:    getEnv("PAYMENT_REDIRECT_URL", "http://localhost:5173/payment-status/"),
			TimeoutSeconds: getEnvAsInt("PAYMENT_TIMEOUT", 8),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	if c.Checkout.ShippingPrice < 0 {
		return fmt.Errorf("shipping price cannot be negative")
	}

	if c.Payment.Enabled {
		if err := c.Payment.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks that the gateway credentials and endpoints are complete.
func (c *PaymentConfig) Validate() error {
	if c.PartnerCode == "" {
		return fmt.Errorf("payment partner code is required when payments are enabled")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("payment access key is required when payments are enabled")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("payment secret key is required when payments are enabled")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("payment gateway endpoint is required when payments are enabled")
	}
	if c.IPNURL == "" {
		return fmt.Errorf("payment IPN URL is required when payments are enabled")
	}
	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("payment timeout must be at least 1 second")
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
