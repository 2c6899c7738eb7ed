package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"relief-portal-go/pkg/logger"
)

const (
	BackendPostgREST = "postgrest"
	BackendPostgres  = "postgres"
)

type Config struct {
	HTTPPort    string
	Env         string
	CORSOrigins []string
	Backend     string
	Cache       CacheConfig
	DB          DBConfig
	Supabase    SupabaseConfig
}

type CacheConfig struct {
	// StaleTime of zero keeps entries fresh until invalidated.
	StaleTime time.Duration
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type SupabaseConfig struct {
	URL            string
	PublishableKey string
	Timeout        time.Duration
	RateLimit      float64
	RateBurst      int
	StorageBucket  string
	SessionToken   string
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		Backend:     strings.ToLower(getEnv("BACKEND", BackendPostgREST)),
		Cache: CacheConfig{
			StaleTime: getEnvDuration("CACHE_STALE_TIME", 0),
		},
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "relief_portal"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Supabase: SupabaseConfig{
			URL:            strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			PublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", getEnv("VITE_SUPABASE_PUBLISHABLE_KEY", "")),
			Timeout:        getEnvDuration("SUPABASE_TIMEOUT", 10*time.Second),
			RateLimit:      getEnvFloat("SUPABASE_RATE_LIMIT", 20),
			RateBurst:      getEnvInt("SUPABASE_RATE_BURST", 10),
			StorageBucket:  getEnv("STORAGE_BUCKET", "public-assets"),
			SessionToken:   getEnv("SESSION_TOKEN", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs to connect.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendPostgREST:
		if c.Supabase.URL == "" || c.Supabase.PublishableKey == "" {
			return fmt.Errorf("config: %w", ErrSupabaseNotConfigured)
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
