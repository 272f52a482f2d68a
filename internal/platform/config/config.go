package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Document lock backends.
const (
	LockRow   = "row"
	LockLocal = "local"
	LockRedis = "redis"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	DBMaxConns         int32
	StoreDriver        string
	SQLitePath         string
	MigrationsPath     string
	LockBackend        string
	LockWaitTimeout    time.Duration
	LockTTL            time.Duration
	RedisURL           string
	RateLimit          string
	CORSAllowedOrigins []string
	ModuleManifestPath string
	LogLevel           string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("STORE_DRIVER", DriverPostgres)
	viper.SetDefault("SQLITE_PATH", "bizledger.db")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("LOCK_BACKEND", "")
	viper.SetDefault("LOCK_WAIT_TIMEOUT", "5s")
	viper.SetDefault("LOCK_TTL", "30s")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("RATE_LIMIT", "600-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("MODULE_MANIFEST_PATH", "")
	viper.SetDefault("LOG_LEVEL", "info")

	// Values from .env have been exported above; real environment variables win.
	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:        viper.GetString("PGSQL_URL"),
		Port:               viper.GetString("PORT"),
		IsProduction:       viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:      viper.GetBool("ENABLE_DB_CHECK"),
		DBMaxConns:         viper.GetInt32("DB_MAX_CONNS"),
		StoreDriver:        strings.ToLower(viper.GetString("STORE_DRIVER")),
		SQLitePath:         viper.GetString("SQLITE_PATH"),
		MigrationsPath:     viper.GetString("MIGRATIONS_PATH"),
		LockBackend:        strings.ToLower(viper.GetString("LOCK_BACKEND")),
		RedisURL:           viper.GetString("REDIS_URL"),
		RateLimit:          viper.GetString("RATE_LIMIT"),
		ModuleManifestPath: viper.GetString("MODULE_MANIFEST_PATH"),
		LogLevel:           viper.GetString("LOG_LEVEL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	// Postgres locks the document row itself; SQLite needs an in-process lock.
	if cfg.LockBackend == "" {
		if cfg.StoreDriver == DriverPostgres {
			cfg.LockBackend = LockRow
		} else {
			cfg.LockBackend = LockLocal
		}
	}
	switch cfg.LockBackend {
	case LockRow:
		if cfg.StoreDriver != DriverPostgres {
			return nil, fmt.Errorf("LOCK_BACKEND=row requires STORE_DRIVER=postgres")
		}
	case LockLocal:
	case LockRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("LOCK_BACKEND=redis requires REDIS_URL")
		}
	default:
		return nil, fmt.Errorf("unsupported LOCK_BACKEND %q", cfg.LockBackend)
	}

	var err error
	cfg.LockWaitTimeout, err = parseDuration("LOCK_WAIT_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.LockTTL, err = parseDuration("LOCK_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := viper.GetString(key)
	if raw == "" {
		log.Printf("Warning: %s not set. Defaulting to %s.\n", key, fallback)
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}
