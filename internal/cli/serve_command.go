package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"worklog/internal/api"
)

func (r *RootCommand) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API. Every route except /health and /accounts/register
requires HTTP Basic credentials.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(r.app.services, r.config.Server)
			if err := server.Run(ctx); err != nil {
				return r.app.errors.Handle("serve", err)
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "Listen address (overrides WORKLOG_SERVER_ADDR)")
	cmd.Flags().String("mode", "", "gin mode: debug, release or test (overrides WORKLOG_SERVER_MODE)")
	return cmd
}
