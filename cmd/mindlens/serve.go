package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/mindlens/internal/adapters/http"
	"github.com/PabloGalante/mindlens/internal/observability"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()
			defer observability.Sync()

			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           httpadapter.NewServer(a.svc),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				observability.Logger().Infow("MindLens API listening", "port", a.cfg.Port)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			observability.Logger().Infow("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
}
