package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/qualitycheck/internal/core"
	"github.com/JonMunkholm/qualitycheck/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr()
			}
			return serve(a, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default SERVER_HOST:SERVER_PORT)")
	return cmd
}

func serve(a *app, addr string) error {
	cfg := a.cfg

	if err := os.MkdirAll(cfg.Server.WorkDir, 0o755); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	history, closeHistory, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	service := core.NewService(cfg, history)
	server := web.NewServer(service)

	slog.Info("configuration loaded",
		"addr", addr,
		"work_dir", cfg.Server.WorkDir,
		"run_max_concurrent", cfg.Run.MaxConcurrent,
		"join_key", cfg.Match.JoinKeyField,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if status := service.Limiter().Status(); status.Active > 0 {
		slog.Info("waiting for runs to complete", "active", status.Active)
		if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
			slog.Warn("runs did not complete in time", "error", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
