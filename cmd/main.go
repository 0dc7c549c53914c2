package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/yungbote/atlas-backend/internal/platform/config"
)

const programName = "atlas"

type configKey struct{}

var configFile string

func configFrom(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(configKey{}).(*config.Config)
	return cfg
}

func main() {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Continent, country and city API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd, configFrom(cmd))
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (defaults to $"+config.EnvConfigPath+")")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if _, err := maxprocs.Set(); err != nil {
			return fmt.Errorf("set GOMAXPROCS: %w", err)
		}
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
		return nil
	}

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
