// Package server initializes and runs the paylink application: repositories,
// migrations, domain services, the HTTP API, and graceful shutdown on
// signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/paylink/internal/logging"
	"github.com/dmitrijs2005/paylink/internal/server/chats"
	"github.com/dmitrijs2005/paylink/internal/server/config"
	"github.com/dmitrijs2005/paylink/internal/server/directory"
	"github.com/dmitrijs2005/paylink/internal/server/history"
	"github.com/dmitrijs2005/paylink/internal/server/httpapi"
	"github.com/dmitrijs2005/paylink/internal/server/ledger"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/repomanager"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager repomanager.RepositoryManager
	handler *httpapi.Handler
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	manager, err := newRepositoryManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	verifier := ledger.NewClient(cfg.LedgerBaseURL, cfg.LedgerRequestTimeout, logger)

	directoryService := directory.NewService(manager.Accounts(), manager.Chats(), manager.Histories(), logger)
	chatService := chats.NewService(manager.Accounts(), manager.Chats(), manager.Histories(),
		manager.Transfers(), verifier, cfg.PaymentRequestExpiry, logger)
	historyService := history.NewService(manager.Accounts(), manager.Histories(), logger)

	handler := httpapi.NewHandler(directoryService, chatService, historyService, logger)

	return &App{config: cfg, logger: logger, manager: manager, handler: handler}, nil
}

// newRepositoryManager picks the backend: postgres when a DSN is configured,
// in-memory otherwise.
func newRepositoryManager(cfg *config.Config) (repomanager.RepositoryManager, error) {
	if cfg.DatabaseDSN == "" {
		return repomanager.NewMemoryRepositoryManager(), nil
	}
	return repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.manager.RunMigrations(ctx); err != nil {
		app.logger.Error(ctx, "migrations failed", "error", err)
		return
	}
	defer func() {
		if err := app.manager.Close(); err != nil {
			app.logger.Error(ctx, "closing repositories failed", "error", err)
		}
	}()

	app.initSignalHandler(cancelFunc)

	srv := httpapi.NewServer(app.config.EndpointAddrHTTP, []byte(app.config.SecretKey), app.handler, app.logger)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err)
	}

	wg.Wait()
}
