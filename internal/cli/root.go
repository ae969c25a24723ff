package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hernanharco/authcenter-backend/internal/app/bootstrap"
)

// NewRootCommand builds the authcenter command tree.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "authcenter",
		Short: "Account and authentication service",
		Long: `authcenter issues session tokens for local and Google sign-in and
manages accounts, roles and account status.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", bootstrap.DefaultConfigPath,
		"YAML configuration file; environment variables override it")

	load := func() (bootstrap.Config, *zap.Logger, error) {
		cfg, err := bootstrap.LoadConfig(configPath)
		if err != nil {
			return bootstrap.Config{}, nil, fmt.Errorf("loading config: %w", err)
		}
		logger, err := bootstrap.NewLogger(cfg)
		if err != nil {
			return bootstrap.Config{}, nil, fmt.Errorf("init logger: %w", err)
		}
		return cfg, logger, nil
	}

	root.AddCommand(
		newServeCommand(load),
		newMigrateCommand(load),
		newSeedAdminCommand(load),
	)
	return root
}

type loaderFunc func() (bootstrap.Config, *zap.Logger, error)
