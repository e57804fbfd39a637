package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/code19m/errx"
	"github.com/spf13/cobra"

	"github.com/rise-and-shine/filemanager/http/handler"
	"github.com/rise-and-shine/filemanager/http/server"
	"github.com/rise-and-shine/filemanager/http/server/middleware"
	"github.com/rise-and-shine/filemanager/observability/logger"
	"github.com/rise-and-shine/filemanager/observability/tracing"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(load func() Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), load())
		},
	}
}

func serve(ctx context.Context, cfg Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Named("serve")

	shutdownTracer, err := tracing.InitGlobalTracer(cfg.Tracing)
	if err != nil {
		return errx.Wrap(err)
	}
	defer func() {
		if err := shutdownTracer(); err != nil {
			log.Errorx(errx.Wrap(err))
		}
	}()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return errx.Wrap(err)
	}
	defer a.close()

	base := logger.Named("http")
	srv := server.NewHTTPServer(cfg.HTTP, []server.Middleware{
		middleware.NewRecoveryMW(base),
		middleware.NewTracingMW(),
		middleware.NewTimeoutMW(cfg.HTTP.HandleTimeout),
		middleware.NewMetaInjectMW(),
		middleware.NewMetricsMW(a.metrics),
		middleware.NewLoggerMW(base),
		middleware.NewErrorHandlerMW(cfg.HTTP.HideErrorDetails),
	})
	srv.RegisterRouter(handler.New(a.registry, a.metrics).Register)

	errCh := make(chan error, 1)
	go func() {
		log.With("address", cfg.HTTP.Address(), "backend", cfg.Storage.Backend).Info("http server starting")
		errCh <- srv.Start()
	}()

	select {
	case err = <-errCh:
		return errx.Wrap(err)
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err = srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return errx.Wrap(err)
	}
	return nil
}
