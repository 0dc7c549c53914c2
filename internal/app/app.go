package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/data/cache"
	"github.com/yungbote/atlas-backend/internal/data/db"
	server "github.com/yungbote/atlas-backend/internal/http"
	httpH "github.com/yungbote/atlas-backend/internal/http/handlers"
	"github.com/yungbote/atlas-backend/internal/observability"
	"github.com/yungbote/atlas-backend/internal/platform/config"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

type Options struct {
	// Migrate runs AutoMigrateAll before wiring.
	Migrate bool
}

type App struct {
	Log        *logger.Logger
	DB         *gorm.DB
	Router     *gin.Engine
	Cfg        *config.Config
	Repos      Repos
	Aggregates Aggregates
	Services   Services
	Metrics    *observability.Metrics

	store        *db.Service
	redis        *goredis.Client
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if mode := strings.TrimSpace(cfg.Server.Mode); mode != "" {
		gin.SetMode(mode)
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Observability)

	store, err := db.New(cfg.Database, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.store = store
	a.DB = store.DB()

	if opts.Migrate {
		if err := Migrate(ctx, a.DB, log, cfg); err != nil {
			a.Close()
			return nil, err
		}
	}

	if cfg.Observability.MetricsEnabled {
		a.Metrics = observability.New(nil)
		a.Metrics.RegisterDBStats(log, a.DB, cfg.Database.Name)
	}

	continentCache := a.wireCache(ctx)

	a.Repos = wireRepos(a.DB, log)
	a.Aggregates = wireAggregates(a.DB, log, cfg, a.Repos, continentCache, a.Metrics)
	if err := checkContracts(log, a.Aggregates); err != nil {
		a.Close()
		return nil, err
	}
	a.Services = wireServices(log, cfg, a.Repos, a.Aggregates, a.Metrics)
	handlers := wireHandlers(log, a.Services, a.healthChecks())
	a.Router = wireRouter(log, cfg, handlers, a.Metrics)
	return a, nil
}

// Migrate creates the schema and, when configured, the population trigger.
func Migrate(ctx context.Context, gdb *gorm.DB, log *logger.Logger, cfg *config.Config) error {
	log.Info("Running migrations...", "install_trigger", cfg.Rollup.InstallDBTrigger)
	if err := db.AutoMigrateAll(ctx, gdb, log, db.MigrateOptions{InstallRollupTrigger: cfg.Rollup.InstallDBTrigger}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// wireCache picks redis when configured, an in-process cache otherwise. Nil disables caching.
func (a *App) wireCache(ctx context.Context) cache.ContinentCache {
	rc := a.Cfg.Resolution
	if !rc.CacheEnabled {
		return nil
	}
	if strings.TrimSpace(rc.RedisURL) == "" && strings.TrimSpace(rc.RedisAddr) == "" {
		a.Log.Info("continent cache: in-memory", "ttl", rc.CacheTTL)
		return cache.NewMemoryContinentCache(rc.CacheTTL)
	}
	rdb, err := cache.NewRedisClient(ctx, cache.RedisOptions{Addr: rc.RedisAddr, URL: rc.RedisURL, TTL: rc.CacheTTL})
	if err != nil {
		a.Log.Warn("redis unavailable, falling back to in-memory continent cache", "error", err)
		return cache.NewMemoryContinentCache(rc.CacheTTL)
	}
	a.redis = rdb
	a.Log.Info("continent cache: redis", "addr", rc.RedisAddr, "ttl", rc.CacheTTL)
	return cache.NewRedisContinentCache(rdb, rc.CacheTTL, a.Log)
}

func (a *App) healthChecks() map[string]httpH.HealthCheck {
	checks := map[string]httpH.HealthCheck{
		"database": a.store.Ping,
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}
	return checks
}

// Start launches background collectors. Safe to call once.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.redis, 15*time.Second)
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("listening", "addr", a.Cfg.Server.Addr)
	srv := &server.Server{Engine: a.Router}
	return srv.Run(ctx, a.Cfg.Server.Addr, a.Cfg.Server.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("redis close failed", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
