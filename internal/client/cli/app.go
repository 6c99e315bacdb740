package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/inkwell-app/inkwell/internal/client/api"
	"github.com/inkwell-app/inkwell/internal/client/config"
	"github.com/inkwell-app/inkwell/internal/client/models"
	"github.com/inkwell-app/inkwell/internal/client/services"
	"github.com/inkwell-app/inkwell/internal/client/session"
	"github.com/inkwell-app/inkwell/internal/client/storage"
	"github.com/inkwell-app/inkwell/internal/logging"
)

// App wires the journal services behind the interactive shell.
type App struct {
	config  *config.Config
	session *session.Session
	auth    *services.AuthService
	journal *services.JournalService
	sync    *services.SyncService
	export  *services.ExportService
	logger  logging.Logger
	repos   *storage.Repositories
	reader  *bufio.Reader
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	repos, err := storage.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient := api.NewHTTPClient(cfg.ServerEndpoint, cfg.RequestTimeout)
	sess := session.New()

	syncSvc := services.NewSyncService(apiClient, repos.Entries, repos.Reviews, repos.SyncConfig, sess, logger)

	return &App{
		config:  cfg,
		session: sess,
		auth:    services.NewAuthService(apiClient, repos.SyncConfig, sess),
		journal: services.NewJournalService(repos.Entries, repos.Reviews, syncSvc, logger),
		sync:    syncSvc,
		export:  services.NewExportService(repos.Entries, repos.Reviews, models.Settings{}),
		logger:  logger,
		repos:   repos,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isUnlocked() bool {
	return a.session.Unlocked()
}

// Run starts the shell and blocks until the user exits or ctx is canceled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close wipes the session and releases the database handle.
func (a *App) Close() {
	a.session.Clear()
	if a.repos != nil && a.repos.DB != nil {
		_ = a.repos.DB.Close()
	}
}
