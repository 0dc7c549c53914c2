package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error

	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	dbSeq atomic.Int64
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a migrated database for one test. Without TEST_POSTGRES_DSN each test gets
// its own in-memory SQLite database; with it, all tests share one Postgres database and
// the tables are truncated on cleanup.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		return postgresDB(tb, dsn)
	}
	return sqliteDB(tb)
}

func sqliteDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := fmt.Sprintf("atlas_test_%d", dbSeq.Add(1))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormLogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(geo.Models...); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func postgresDB(tb testing.TB, dsn string) *gorm.DB {
	tb.Helper()
	pgOnce.Do(func() {
		pgDB, pgErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if pgErr != nil {
			return
		}
		pgErr = pgDB.AutoMigrate(geo.Models...)
	})
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	Truncate(tb, pgDB)
	tb.Cleanup(func() { Truncate(tb, pgDB) })
	return pgDB
}

// Truncate empties every geo table.
func Truncate(tb testing.TB, db *gorm.DB) {
	tb.Helper()
	ctx := context.Background()
	if db.Dialector.Name() == "postgres" {
		if err := db.WithContext(ctx).Exec(`TRUNCATE city, country, continent RESTART IDENTITY CASCADE`).Error; err != nil {
			tb.Fatalf("truncate: %v", err)
		}
		return
	}
	for _, table := range []string{"city", "country", "continent"} {
		if err := db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
			tb.Fatalf("truncate %s: %v", table, err)
		}
	}
}

// Tx opens a transaction that is rolled back on cleanup.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
