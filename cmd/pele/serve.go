package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pele/internal/adapters/http/api"
	"github.com/okian/pele/internal/adapters/http/site"
	"github.com/okian/pele/internal/adapters/repository"
	service "github.com/okian/pele/internal/app"
	"github.com/okian/pele/internal/sample"
	"github.com/okian/pele/pkg/logger"
)

// HTTP server timeouts.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func serveCmd(a *app) *cobra.Command {
	var (
		ef     engineFlags
		addr   string
		webDir string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Score the input and serve results over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ef.apply(cmd, a.cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			if cmd.Flags().Changed("web-dir") {
				a.cfg.WebDir = webDir
			}
			if a.cfg.WebDir != "" {
				if err := site.Validate(a.cfg.WebDir); err != nil {
					return err
				}
			}
			return a.serve(cmd.Context())
		},
	}
	ef.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config addr)")
	cmd.Flags().StringVar(&webDir, "web-dir", "", "serve an exported web directory under /app")
	return cmd
}

// source picks the configured file, or sample data when no input is set.
func (a *app) source(ctx context.Context) (service.Source, error) {
	if a.cfg.Input == "" {
		src := sample.Source{Config: sample.Config{Seed: 1}}
		a.log.Warn(ctx, "no input configured; serving sample data", logger.String("source", src.Name()))
		return src, nil
	}
	return fileSource(a.cfg)
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Named("serve")
	src, err := a.source(ctx)
	if err != nil {
		return err
	}

	svc := service.New(
		service.WithLogger(logger.Named("service")),
		service.WithSource(src),
		service.WithEngineOptions(engineOptions(a.cfg)...),
		service.WithStore(repository.NewSnapshotStore(repository.WithMaxLimit(a.cfg.MaxLimit))),
		service.WithRefreshInterval(time.Duration(a.cfg.RefreshIntervalSec)*time.Second),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	opts := []api.Option{
		api.WithCORSOrigins(a.cfg.CORSAllowOrigins),
		api.WithMaxBodyBytes(a.cfg.MaxBodyBytes),
		api.WithWebDir(a.cfg.WebDir),
	}
	if a.cfg.RateLimitEnabled {
		opts = append(opts, api.WithRateLimit(a.cfg.RateLimitRequests, time.Duration(a.cfg.RateLimitWindowSec)*time.Second))
	}
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           api.NewServer(svc, svc.Store(), svc, opts...).Router(ctx),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", a.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}
