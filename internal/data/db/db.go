package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/yungbote/atlas-backend/internal/platform/config"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

type Service struct {
	db     *gorm.DB
	log    *logger.Logger
	driver string
}

// New opens the configured store. SQLite runs with foreign keys enforced and a single connection.
func New(cfg config.DatabaseConfig, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DatabaseService", "driver", cfg.Driver)

	gormCfg := &gorm.Config{
		Logger:                 newGormLogger(logg, cfg.SlowThreshold),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}

	var (
		gdb *gorm.DB
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case config.DriverPostgres:
		serviceLog.Info("connecting to postgres", "dsn", cfg.PostgresDSN())
		gdb, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
	case config.DriverSQLite:
		dsn := SQLiteDSN(cfg.SQLitePath)
		serviceLog.Info("opening sqlite", "path", cfg.SQLitePath)
		gdb, err = gorm.Open(sqlite.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get database handle: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.Tracing {
		if err := gdb.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, fmt.Errorf("configure gorm tracing: %w", err)
		}
	}

	return &Service{db: gdb, log: serviceLog, driver: cfg.Driver}, nil
}

// SQLiteDSN builds a glebarez/sqlite DSN. An empty path selects a shared in-memory database.
func SQLiteDSN(path string) string {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	path = strings.TrimSpace(path)
	if path == "" || path == ":memory:" {
		return "file::memory:?cache=shared&" + pragmas
	}
	return fmt.Sprintf("file:%s?%s&_pragma=journal_mode(WAL)", path, pragmas)
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Driver() string { return s.driver }

func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDB.Close()
}

// IsPostgres reports whether a handle (possibly a transaction) talks to Postgres.
func IsPostgres(tx *gorm.DB) bool {
	return tx != nil && tx.Dialector != nil && tx.Dialector.Name() == "postgres"
}
