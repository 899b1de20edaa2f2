// Package server wires the storage, services and HTTP transport together.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"legacyvault/internal/logging"
	"legacyvault/internal/server/blob"
	"legacyvault/internal/server/config"
	serverhttp "legacyvault/internal/server/http"
	"legacyvault/internal/server/repositories/repomanager"
	"legacyvault/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
}

func NewApp(cfg *config.Config) *App {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	return &App{config: cfg, logger: logger}
}

// Run starts the service and blocks until a termination signal arrives or
// the HTTP server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	db, err := sql.Open("pgx", a.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	blobs, err := blob.NewS3Store(ctx, a.config)
	if err != nil {
		return fmt.Errorf("initializing blob store: %w", err)
	}

	userService := services.NewUserService(db, rm, a.config)
	entryService := services.NewEntryService(db, rm, blobs)

	httpServer := serverhttp.NewServer(a.config.EndpointAddr, a.logger, userService, entryService, a.config.SecretKey)

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httpServer.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	wg.Wait()

	if err := <-errCh; err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	a.logger.Info(ctx, "server stopped")
	return nil
}
