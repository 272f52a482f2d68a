// Package app assembles the ledger from configuration: store, document locker,
// services and the HTTP router.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/core/services"
	"github.com/SscSPs/bizledger/internal/handlers"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/SscSPs/bizledger/internal/platform/lock"
	"github.com/SscSPs/bizledger/internal/platform/metrics"
	"github.com/SscSPs/bizledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/bizledger/internal/repositories/database/sqlite"
	"github.com/SscSPs/bizledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// App is a fully wired ledger.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Services *portssvc.ServiceContainer
	Manifest *config.ModuleManifest
	Metrics  *metrics.Metrics

	closers []func()
}

// NewLogger builds the JSON logger at the configured level.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// New opens the configured store and wires every service. migrate runs pending Postgres
// migrations first; the SQLite store applies its schema on open.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (*App, error) {
	manifest, err := config.LoadModuleManifest(cfg.ModuleManifestPath)
	if err != nil {
		return nil, fmt.Errorf("load module manifest: %w", err)
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Manifest: manifest,
		Metrics:  metrics.New(),
	}

	repos, err := a.openRepositories(ctx, migrate)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, repos.Close)
	a.Services = services.NewServiceContainer(repos, a.Metrics)
	return a, nil
}

func (a *App) openRepositories(ctx context.Context, migrate bool) (portsrepo.RepositoryProvider, error) {
	cfg := a.Config

	var locker portsrepo.DocumentLocker
	switch cfg.LockBackend {
	case config.LockLocal:
		locker = lock.NewKeyedMutex(cfg.LockWaitTimeout)
	case config.LockRedis:
		rdb, err := lock.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return portsrepo.RepositoryProvider{}, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		locker = lock.NewRedisLocker(rdb, cfg.LockWaitTimeout, cfg.LockTTL, a.Logger)
	}
	a.Logger.Info("Document locks configured", slog.String("backend", cfg.LockBackend), slog.Duration("wait", cfg.LockWaitTimeout))

	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		a.Logger.Info("SQLite store opened", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryProvider(db, locker), nil
	default:
		if migrate {
			a.Logger.Info("Running database migrations...")
			if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, a.Logger); err != nil {
				return portsrepo.RepositoryProvider{}, err
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{
			MaxConns:       cfg.DBMaxConns,
			ConnectTimeout: 5 * time.Second,
			Ping:           cfg.EnableDBCheck,
		})
		if err != nil {
			return portsrepo.RepositoryProvider{}, fmt.Errorf("initialize database pool: %w", err)
		}
		// A nil locker selects row locks on the document header.
		return pgsql.NewRepositoryProvider(pool, locker, cfg.LockWaitTimeout), nil
	}
}

// Router builds the gin engine with global middleware, metrics and every API route.
func (a *App) Router() (*gin.Engine, error) {
	if a.Config.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handlers.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(a.Logger), gin.Recovery(), a.Metrics.GinMiddleware())
	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	if corsConfig, ok := a.corsConfig(); ok {
		r.Use(cors.New(corsConfig))
	}

	lim, err := middleware.NewRateLimiter(a.Config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", a.Config.RateLimit, err)
	}

	r.GET("/metrics", gin.WrapH(a.Metrics.Handler()))
	handlers.RegisterRoutes(r, a.Services, a.Manifest, middleware.RateLimit(lim))
	return r, nil
}

// corsConfig reports false in production when no origins are allowed; browsers then get no CORS headers.
func (a *App) corsConfig() (cors.Config, bool) {
	corsConfig := cors.DefaultConfig()
	switch {
	case len(a.Config.CORSAllowedOrigins) > 0:
		corsConfig.AllowOrigins = a.Config.CORSAllowedOrigins
	case a.Config.IsProduction:
		return corsConfig, false
	default:
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "X-Request-ID")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", "Retry-After", "X-Request-ID")
	return corsConfig, true
}

// RequiredKeys is a convenience for callers that accept a comma separated module list.
func (a *App) RequiredKeys(modules string) ([]string, error) {
	if strings.TrimSpace(modules) == "" {
		return a.Manifest.RequiredKeys("")
	}
	seen := make(map[string]bool)
	var keys []string
	for _, module := range strings.Split(modules, ",") {
		moduleKeys, err := a.Manifest.RequiredKeys(strings.TrimSpace(module))
		if err != nil {
			return nil, err
		}
		for _, k := range moduleKeys {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close releases the store and any lock backend connections in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
