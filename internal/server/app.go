// Package server initializes and runs the sync service: it opens the
// database, applies migrations, and starts the HTTP endpoint with graceful
// shutdown on signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/inkwell-app/inkwell/internal/logging"
	"github.com/inkwell-app/inkwell/internal/server/config"
	"github.com/inkwell-app/inkwell/internal/server/httpapi"
	"github.com/inkwell-app/inkwell/internal/server/records"
	"github.com/inkwell-app/inkwell/internal/server/storage"
	"github.com/inkwell-app/inkwell/internal/server/users"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	repoManager    storage.RepositoryManager
	userService    *users.Service
	recordsService *records.Service
}

func NewApp(c *config.Config) (*App, error) {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	rm, err := storage.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	us := users.NewService(rm.Users(), c)
	rs := records.NewService(rm.Records())

	return &App{
		config:         c,
		logger:         logger,
		repoManager:    rm,
		userService:    us,
		recordsService: rs,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config, app.userService, app.recordsService, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	if err := app.repoManager.RunMigrations(ctx); err != nil {
		app.logger.Error(ctx, "migration error", "error", err)
		cancelFunc()
		return
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if conn := app.repoManager.Conn(); conn != nil {
		_ = conn.Close()
	}
}
