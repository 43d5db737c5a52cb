package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"postforlife/cmd/app"
	"postforlife/internal/config"
	"postforlife/internal/database"
	"postforlife/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQL schema and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMigrate()
		},
	}

	root := &cobra.Command{
		Use:           "postforlife",
		Short:         "Social posting backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return logger.Init(config.LoadConfig().LogLevel)
		},
	}
	root.AddCommand(serve, migrate)

	return root
}

func runServe(ctx context.Context) error {
	// setting up config
	cfg := config.LoadConfig()

	if cfg.JWTSecretKey == "" {
		err := errors.New("JWT_SECRET_KEY is not set")
		slog.Error("refusing to start", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, handler, err := app.App(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return err
	}
	defer db.CloseDB()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", srv.Addr, "database", cfg.DB.DbNAME)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func runMigrate() error {
	cfg := config.LoadConfig()

	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("failed to connect", "error", err)
		return err
	}
	defer db.CloseDB()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		slog.Error("migration failed", "error", err)
		return err
	}

	slog.Info("migrations applied", "path", cfg.MigrationsPath)
	return nil
}
