package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/atlas-backend/internal/app"
	"github.com/yungbote/atlas-backend/internal/platform/config"
)

var serveFlags = struct {
	migrate bool
	addr    string
}{}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd, configFrom(cmd))
		},
	}
	cmd.Flags().BoolVar(&serveFlags.migrate, "migrate", true, "run migrations before serving")
	cmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func serveRun(cmd *cobra.Command, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("no config loaded")
	}
	if serveFlags.addr != "" {
		cfg.Server.Addr = serveFlags.addr
	}
	// The root command has no --migrate flag; it always migrates.
	migrate := serveFlags.migrate || cmd.Name() == programName

	ctx := cmd.Context()
	application, err := app.New(ctx, cfg, app.Options{Migrate: migrate})
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer application.Close()

	application.Start()
	return application.Run(ctx)
}
