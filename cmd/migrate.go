package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/atlas-backend/internal/app"
	"github.com/yungbote/atlas-backend/internal/data/db"
	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

func migrateCommand() *cobra.Command {
	var dropTrigger bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and install the population trigger when configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			if cfg == nil {
				return fmt.Errorf("no config loaded")
			}
			log, err := logger.New(cfg.Log.Mode)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			store, err := db.New(cfg.Database, log)
			if err != nil {
				return fmt.Errorf("init database: %w", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			if dropTrigger {
				if err := db.DropRollupTrigger(ctx, store.DB()); err != nil {
					return err
				}
				log.Info("dropped country population trigger")
			}
			if err := app.Migrate(ctx, store.DB(), log, cfg); err != nil {
				return err
			}
			log.Info("migrations complete", "driver", store.Driver())
			return nil
		},
	}
	cmd.Flags().BoolVar(&dropTrigger, "drop-trigger", false, "drop the population trigger before migrating")
	return cmd
}
