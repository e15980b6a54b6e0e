package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Billing  BillingConfig
	Locale   LocaleConfig
	Backups  BackupsConfig
	Reports  ReportsConfig
	Metrics  MetricsConfig
	Seed     SeedConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BillingConfig holds fallback monthly-dues parameters used until the
// persisted billing settings row exists.
type BillingConfig struct {
	BasePrice       float64
	RegistrationFee float64
	Currency        string
	ExchangeRate    float64
	DiscountPct     float64
	SurchargePct    float64
	CutoffDay       int
	CacheTTL        time.Duration
}

// LocaleConfig selects the default country mode driving document and phone
// validation rules.
type LocaleConfig struct {
	CountryMode     string
	DefaultLanguage string
}

// BackupsConfig controls snapshot exports of the core tables.
type BackupsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// ReportsConfig governs receipt and monthly-collection document generation.
type ReportsConfig struct {
	Enabled    bool
	StorageDir string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// SeedConfig gates the demo-data endpoint; never enable in production.
type SeedConfig struct {
	Enabled       bool
	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetConfigFile(".env")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Billing = BillingConfig{
		BasePrice:       v.GetFloat64("BILLING_BASE_PRICE"),
		RegistrationFee: v.GetFloat64("BILLING_REGISTRATION_FEE"),
		Currency:        v.GetString("BILLING_CURRENCY"),
		ExchangeRate:    v.GetFloat64("BILLING_EXCHANGE_RATE"),
		DiscountPct:     v.GetFloat64("BILLING_DISCOUNT_PCT"),
		SurchargePct:    v.GetFloat64("BILLING_SURCHARGE_PCT"),
		CutoffDay:       v.GetInt("BILLING_CUTOFF_DAY"),
		CacheTTL:        parseDuration(v.GetString("BILLING_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Locale = LocaleConfig{
		CountryMode:     v.GetString("LOCALE_COUNTRY_MODE"),
		DefaultLanguage: v.GetString("LOCALE_DEFAULT_LANGUAGE"),
	}

	cfg.Backups = BackupsConfig{
		Enabled:           v.GetBool("ENABLE_BACKUPS"),
		StorageDir:        v.GetString("BACKUPS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("BACKUPS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("BACKUPS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("BACKUPS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("BACKUPS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("BACKUPS_WORKER_RETRIES"),
	}

	cfg.Reports = ReportsConfig{
		Enabled:    v.GetBool("ENABLE_REPORTS"),
		StorageDir: v.GetString("REPORTS_STORAGE_DIR"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}
	cfg.Seed = SeedConfig{
		Enabled:       v.GetBool("ENABLE_DEMO_SEED"),
		AdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
		AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "dojo_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BILLING_BASE_PRICE", 30.0)
	v.SetDefault("BILLING_REGISTRATION_FEE", 15.0)
	v.SetDefault("BILLING_CURRENCY", "USD")
	v.SetDefault("BILLING_EXCHANGE_RATE", 1.0)
	v.SetDefault("BILLING_DISCOUNT_PCT", 0.0)
	v.SetDefault("BILLING_SURCHARGE_PCT", 0.0)
	v.SetDefault("BILLING_CUTOFF_DAY", 5)
	v.SetDefault("BILLING_CACHE_TTL", "5m")

	v.SetDefault("LOCALE_COUNTRY_MODE", "VE")
	v.SetDefault("LOCALE_DEFAULT_LANGUAGE", "es")

	v.SetDefault("ENABLE_BACKUPS", false)
	v.SetDefault("BACKUPS_STORAGE_DIR", "./backups")
	v.SetDefault("BACKUPS_SIGNED_URL_SECRET", "dev_backups_secret")
	v.SetDefault("BACKUPS_SIGNED_URL_TTL", "24h")
	v.SetDefault("BACKUPS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("BACKUPS_WORKER_CONCURRENCY", 1)
	v.SetDefault("BACKUPS_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_REPORTS", true)
	v.SetDefault("REPORTS_STORAGE_DIR", "./reports")

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("ENABLE_DEMO_SEED", false)
	v.SetDefault("SEED_ADMIN_EMAIL", "admin@dojo.local")
	v.SetDefault("SEED_ADMIN_PASSWORD", "cambiame")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
