package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/domain/geo"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

type MigrateOptions struct {
	// InstallRollupTrigger installs the Postgres city→country population trigger.
	InstallRollupTrigger bool
}

func AutoMigrateAll(ctx context.Context, db *gorm.DB, log *logger.Logger, opts MigrateOptions) error {
	if err := db.WithContext(ctx).AutoMigrate(geo.Models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if opts.InstallRollupTrigger {
		if !IsPostgres(db) {
			return fmt.Errorf("rollup trigger requires postgres, got %s", db.Dialector.Name())
		}
		if err := InstallRollupTrigger(ctx, db); err != nil {
			return err
		}
		if log != nil {
			log.Info("installed country population trigger", "trigger", rollupTriggerName)
		}
	}
	return nil
}
