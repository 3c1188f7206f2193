package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultInternalToken = "change-me-internal-token"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	DatabaseURL   string
	JWTSecret     string
	InternalToken string
	LogLevel      string

	// Lifecycle timing. AutoBookWindow < RequestTTL and SweepInterval < AutoBookWindow.
	RequestTTL     time.Duration
	AutoBookWindow time.Duration
	SweepInterval  time.Duration
	SweepBatchSize int

	StoreTimeout        time.Duration
	StoreRetryAttempts  int
	StoreRetryBaseDelay time.Duration

	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	AvailabilityCacheTTL time.Duration

	NotifyQueueSize int
	NotifyWorkers   int

	NotificationRetention       time.Duration
	NotificationCleanupInterval time.Duration

	RateLimitPerMinute int
	CORSAllowedOrigins []string
}

// Load reads .env (if present), an optional config.yaml and the process
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	appEnv := strings.TrimSpace(v.GetString("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(v.GetString("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}

	cfg := &Config{
		AppEnv:        strings.ToLower(appEnv),
		HTTPAddr:      strings.TrimSpace(v.GetString("HTTP_ADDR")),
		DatabaseURL:   strings.TrimSpace(v.GetString("DATABASE_URL")),
		JWTSecret:     strings.TrimSpace(v.GetString("JWT_SECRET")),
		InternalToken: strings.TrimSpace(v.GetString("INTERNAL_TOKEN")),
		LogLevel:      strings.TrimSpace(v.GetString("LOG_LEVEL")),

		RequestTTL:     v.GetDuration("REQUEST_TTL"),
		AutoBookWindow: v.GetDuration("AUTO_BOOK_WINDOW"),
		SweepInterval:  v.GetDuration("SWEEP_INTERVAL"),
		SweepBatchSize: v.GetInt("SWEEP_BATCH_SIZE"),

		StoreTimeout:        v.GetDuration("STORE_TIMEOUT"),
		StoreRetryAttempts:  v.GetInt("STORE_RETRY_ATTEMPTS"),
		StoreRetryBaseDelay: v.GetDuration("STORE_RETRY_BASE_DELAY"),

		RedisAddr:            strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		RedisDB:              v.GetInt("REDIS_DB"),
		AvailabilityCacheTTL: v.GetDuration("AVAILABILITY_CACHE_TTL"),

		NotifyQueueSize: v.GetInt("NOTIFY_QUEUE_SIZE"),
		NotifyWorkers:   v.GetInt("NOTIFY_WORKERS"),

		NotificationRetention:       v.GetDuration("NOTIFICATION_RETENTION"),
		NotificationCleanupInterval: v.GetDuration("NOTIFICATION_CLEANUP_INTERVAL"),

		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "stylistbook.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("INTERNAL_TOKEN", defaultInternalToken)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("REQUEST_TTL", "15m")
	v.SetDefault("AUTO_BOOK_WINDOW", "5m")
	v.SetDefault("SWEEP_INTERVAL", "30s")
	v.SetDefault("SWEEP_BATCH_SIZE", 100)

	v.SetDefault("STORE_TIMEOUT", "3s")
	v.SetDefault("STORE_RETRY_ATTEMPTS", 3)
	v.SetDefault("STORE_RETRY_BASE_DELAY", "100ms")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("AVAILABILITY_CACHE_TTL", "10s")

	v.SetDefault("NOTIFY_QUEUE_SIZE", 256)
	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFICATION_RETENTION", "2160h")
	v.SetDefault("NOTIFICATION_CLEANUP_INTERVAL", "24h")

	v.SetDefault("RATE_LIMIT_PER_MINUTE", 120)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
}

func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if c.RequestTTL <= 0 {
		return fmt.Errorf("REQUEST_TTL must be > 0")
	}
	if c.AutoBookWindow <= 0 {
		return fmt.Errorf("AUTO_BOOK_WINDOW must be > 0")
	}
	if c.AutoBookWindow >= c.RequestTTL {
		return fmt.Errorf("AUTO_BOOK_WINDOW (%s) must be shorter than REQUEST_TTL (%s)", c.AutoBookWindow, c.RequestTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	if c.SweepInterval >= c.AutoBookWindow {
		return fmt.Errorf("SWEEP_INTERVAL (%s) must be shorter than AUTO_BOOK_WINDOW (%s)", c.SweepInterval, c.AutoBookWindow)
	}
	if c.SweepBatchSize <= 0 {
		return fmt.Errorf("SWEEP_BATCH_SIZE must be > 0")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be > 0")
	}
	if c.StoreRetryAttempts < 1 {
		return fmt.Errorf("STORE_RETRY_ATTEMPTS must be >= 1")
	}
	if c.StoreRetryBaseDelay < 0 {
		return fmt.Errorf("STORE_RETRY_BASE_DELAY must be >= 0")
	}
	if c.NotifyQueueSize <= 0 || c.NotifyWorkers <= 0 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE and NOTIFY_WORKERS must be > 0")
	}
	if c.NotificationRetention <= 0 || c.NotificationCleanupInterval <= 0 {
		return fmt.Errorf("NOTIFICATION_RETENTION and NOTIFICATION_CLEANUP_INTERVAL must be > 0")
	}

	if c.IsProdLike() {
		if isEmptyOrDefault(c.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(c.InternalToken, defaultInternalToken) {
			return fmt.Errorf("in prod/release INTERNAL_TOKEN must be set and not default")
		}
	}

	return nil
}

func (c *Config) IsProdLike() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
