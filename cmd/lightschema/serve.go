package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dcdncp/lightschema/internal/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var schemaPath, addr string
	cmd := &cobra.Command{
		Use:   "serve --schema FILE",
		Short: "Serve a schema over HTTP",
		Long: `Starts an HTTP server validating request bodies on POST /validate and
exposing /schema, /metrics and /healthz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := a.loadSchema(ctx, schemaPath)
			if err != nil {
				return err
			}
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(s, server.WithLogger(a.logger), server.WithRegistry(reg)),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return a.serve(ctx, srv)
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Schema definition file (YAML or JSON)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func (a *app) serve(ctx context.Context, srv *http.Server) error {
	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		a.logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	}
}
