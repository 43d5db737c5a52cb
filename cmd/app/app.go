package app

import (
	"context"
	"fmt"
	"net/http"

	"postforlife/internal/auth"
	"postforlife/internal/config"
	"postforlife/internal/database"
	handlers "postforlife/internal/handler"
	"postforlife/internal/mail"
	"postforlife/internal/repository"
	"postforlife/internal/router"
	"postforlife/internal/service"
	"postforlife/internal/storage"
)

// App connects every backing service and returns the routed HTTP handler.
// The caller closes db.
func App(ctx context.Context, cfg *config.Config) (*database.DB, http.Handler, error) {
	// connection DB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, nil, err
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
	if err != nil {
		db.CloseDB()
		return nil, nil, fmt.Errorf("failed to initialize MinIO: %w", err)
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB)
	tokens := auth.NewTokenManager(cfg)
	services := service.NewService(repo, cfg, minioClient, mail.NewSMTPMailer(cfg.SMTP), tokens)
	h := handlers.NewHandlers(services, db, cfg)

	return db, router.New(h, tokens), nil
}
