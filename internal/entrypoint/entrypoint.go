package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/clock"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	dbaudit "github.com/mrlokans/librarian/internal/database/audit"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/database/fines"
	"github.com/mrlokans/librarian/internal/database/lendings"
	"github.com/mrlokans/librarian/internal/database/readers"
	http_controllers "github.com/mrlokans/librarian/internal/http"
	"github.com/mrlokans/librarian/internal/idgen"
	"github.com/mrlokans/librarian/internal/lending"
	"github.com/mrlokans/librarian/internal/scheduler"
	"github.com/mrlokans/librarian/internal/services"
	"github.com/mrlokans/librarian/internal/tasks"
)

// App holds everything the serve command runs.
type App struct {
	Router    *gin.Engine
	Lendings  *services.LendingService
	Scheduler *scheduler.OverdueScheduler

	db         *database.Database
	audit      *audit.Service
	taskClient *tasks.Client
	taskCancel context.CancelFunc
}

// NewApp wires configuration into a ready-to-start application. Nothing runs
// in the background until Start.
func NewApp(cfg *config.Config, version string) (*App, error) {
	strategy, err := idgen.ParseStrategy(cfg.IDGeneration.Strategy)
	if err != nil {
		return nil, err
	}
	log.Info().Str("strategy", strategy.String()).Msg("Identifier allocation configured")

	db, err := database.NewDatabase(cfg.Database.Path, idgen.NewAllocator(strategy))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{db: db}
	sysClock := clock.System{}

	booksRepo := books.NewRepository(db.DB)
	readersRepo := readers.NewRepository(db.DB)
	finesRepo := fines.NewRepository(db.DB)
	app.audit = audit.NewService(dbaudit.NewRepository(db.DB))

	app.Lendings = services.NewLendingService(
		booksRepo,
		readersRepo,
		lendings.NewRepository(db.DB, sysClock),
		finesRepo,
		app.audit,
		sysClock,
		services.LendingConfig{
			DurationInDays:         cfg.Lending.DurationInDays,
			FineValuePerDayInCents: cfg.Lending.FineValuePerDayInCents,
			Policy:                 lending.Policy{MaxOutstanding: cfg.Lending.MaxOutstanding},
		},
	)

	var dispatcher scheduler.Dispatcher = tasks.Inline{Reporter: app.Lendings, Auditor: app.audit, Cleaner: app.audit}
	if cfg.Tasks.Enabled {
		app.taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		app.taskClient.Register(
			tasks.NewOverdueReportQueue(app.Lendings, app.audit),
			tasks.NewCleanupAuditEventsQueue(app.audit),
		)
		dispatcher = app.taskClient
	}

	app.Scheduler = scheduler.NewOverdueScheduler(dispatcher, scheduler.Config{
		Enabled:            cfg.OverdueReport.Enabled,
		ReportSchedule:     cfg.OverdueReport.Schedule,
		CleanupSchedule:    cfg.Audit.CleanupSchedule,
		AuditRetentionDays: cfg.Audit.RetentionDays,
	})

	routerCfg := http_controllers.RouterConfig{
		Version:      version,
		Database:     db,
		Lendings:     app.Lendings,
		Reporter:     app.Lendings,
		ReportRunner: app.Scheduler,
		Audit:        app.audit,
	}
	if app.taskClient != nil {
		routerCfg.TaskStatus = app.taskClient
	}
	app.Router = http_controllers.NewRouter(routerCfg)

	return app, nil
}

// Start launches the task workers and the scheduler.
func (a *App) Start(ctx context.Context) error {
	if a.taskClient != nil {
		var taskCtx context.Context
		taskCtx, a.taskCancel = context.WithCancel(ctx)
		a.taskClient.Start(taskCtx)
	}
	return a.Scheduler.Start(ctx)
}

// Shutdown stops background work, flushes audit writes and closes storage.
func (a *App) Shutdown(ctx context.Context) {
	a.Scheduler.Stop()
	if a.taskClient != nil {
		if err := a.taskClient.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Error closing task queue")
		}
		if a.taskCancel != nil {
			a.taskCancel()
		}
	}
	a.audit.Wait()
	if err := a.db.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}
}

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM.
func Serve(router http.Handler, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var listenErr error
	select {
	case <-quit:
	case listenErr = <-serveErr:
	}
	log.Info().Dur("timeout", timeout).Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown")
	}
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info().Msg("Server exiting")
	return listenErr
}

func Run(cfg *config.Config, version string) error {
	log.Info().Str("version", version).Msg("Starting Librarian")

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := NewApp(cfg, version)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		app.Shutdown(ctx)
		return err
	}

	return Serve(app.Router, cfg, app.Shutdown)
}
