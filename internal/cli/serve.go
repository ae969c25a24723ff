package cli

import (
	"github.com/spf13/cobra"

	"github.com/hernanharco/authcenter-backend/internal/app/bootstrap"
)

func newServeCommand(load loaderFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			runtime, err := bootstrap.NewRuntime(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return runtime.Run(cmd.Context())
		},
	}
}
