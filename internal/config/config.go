package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Late     LateConfig
	Stripe   StripeConfig
	Cron     CronConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	Environment     string
	RateLimitRPS    float64
	RateLimitBurst  int
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// For SQLite
	Path string
}

// AuthConfig contains authentication configuration
type AuthConfig struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	BCryptCost         int
	TrialPeriod        time.Duration
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string
	Format     string // json or console
	OutputPath string
}

// LateConfig configures the posting provider client
type LateConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// StripeConfig configures the payment provider
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	AppURL        string
	TrialDays     int64
	// Price ids keyed by plan or add-on name
	PlanPrices  map[string]string
	AddonPrices map[string]string
}

// CronConfig configures the maintenance triggers
type CronConfig struct {
	Secret           string
	Enabled          bool
	MonthlyResetSpec string
	TrialExpirySpec  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			RateLimitRPS:    getEnvAsFloat("RATE_LIMIT_RPS", 10),
			RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "pulse"),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			Path:            getEnv("DB_PATH", "./pulse.db"),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			AccessTokenExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshTokenExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
			BCryptCost:         getEnvAsInt("BCRYPT_COST", 12),
			TrialPeriod:        getEnvAsDuration("TRIAL_PERIOD", 7*24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Late: LateConfig{
			BaseURL: getEnv("LATE_API_URL", "https://getlate.dev/api/v1"),
			APIKey:  getEnv("LATE_API_KEY", ""),
			Timeout: getEnvAsDuration("LATE_API_TIMEOUT", 15*time.Second),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			AppURL:        strings.TrimRight(getEnv("NEXT_PUBLIC_APP_URL", "http://localhost:3000"), "/"),
			TrialDays:     int64(getEnvAsInt("STRIPE_TRIAL_DAYS", 7)),
			PlanPrices: map[string]string{
				"essentials": getEnv("STRIPE_PRICE_ESSENTIALS", "price_1SX24aCHzMTnpYNoD0i7ui4w"),
				"pro":        getEnv("STRIPE_PRICE_PRO", "price_1SX2AoCHzMTnpYNoBCRFGtVE"),
				"business":   getEnv("STRIPE_PRICE_BUSINESS", "price_1SX2BpCHzMTnpYNoQSDAM3sg"),
			},
			AddonPrices: map[string]string{
				"reddit":    getEnv("STRIPE_PRICE_ADDON_REDDIT", "price_1SX2SzCHzMTnpYNoDBfMAlP2"),
				"linkedin":  getEnv("STRIPE_PRICE_ADDON_LINKEDIN", "price_1SX2TnCHzMTnpYNo3QSWBG5w"),
				"analytics": getEnv("STRIPE_PRICE_ADDON_ANALYTICS", "price_1SX2UUCHzMTnpYNoKgH11ZCc"),
			},
		},
		Cron: CronConfig{
			Secret:           getEnv("CRON_SECRET", ""),
			Enabled:          getEnvAsBool("CRON_ENABLED", false),
			MonthlyResetSpec: getEnv("CRON_MONTHLY_RESET", "0 0 0 1 * *"),
			TrialExpirySpec:  getEnv("CRON_TRIAL_EXPIRY", "0 0 * * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Late.Timeout <= 0 {
		return fmt.Errorf("LATE_API_TIMEOUT must be positive")
	}

	if c.IsProduction() {
		if c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("STRIPE_WEBHOOK_SECRET must be set in production")
		}
		if c.Cron.Secret == "" {
			return fmt.Errorf("CRON_SECRET must be set in production")
		}
	}

	return nil
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
