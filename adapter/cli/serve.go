package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/keyturn/keyturn/adapter/api"
	"github.com/keyturn/keyturn/internal/app"
)

func newServeCmd(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			handler := api.NewVerificationHandler(api.VerificationHandlerConfig{
				VerifyMoveIn:        c.VerifyMoveInHandler,
				ReportIssue:         c.ReportIssueHandler,
				ApproveCancellation: c.ApproveCancellationHandler,
				RejectCancellation:  c.RejectCancellationHandler,
				GetStatus:           c.GetVerificationStatusHandler,
				GetLatestPaid:       c.GetLatestPaidStatusHandler,
				Files:               c.FileStore,
				Logger:              c.Logger,
			})

			serverCfg := api.DefaultServerConfig()
			serverCfg.Addr = c.Config.APIAddr
			server := api.NewServer(serverCfg, handler, c.Logger)

			if c.Config.OutboxProcessorEnabled {
				if err := c.OutboxProcessor.Start(ctx); err != nil {
					return err
				}
				defer c.OutboxProcessor.Stop()
			}

			errCh := make(chan error, 1)
			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
