package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pet-shelter/internal/router"
)

func newServeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := f.open(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			defer stop()

			srv := &http.Server{
				Addr:              e.cfg.Addr,
				Handler:           router.NewRouter(router.Options{Dispatcher: e.pets, Logger: e.log}),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       5 * time.Second,
				// Al recibir la señal se cancelan los requests abiertos (streams incluidos).
				BaseContext: func(net.Listener) context.Context { return ctx },
				// Sin WriteTimeout: /pets/changes es un stream largo.
			}

			errc := make(chan error, 1)
			go func() {
				e.log.Info("starting server", map[string]any{"addr": e.cfg.Addr, "driver": e.cfg.DB.Driver})
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			e.log.Info("shutting down", nil)
			return srv.Shutdown(shutdownCtx)
		},
	}
}
