package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ReviewsScanner/internal/config"
	"ReviewsScanner/internal/infrastructure/artifact"
	"ReviewsScanner/internal/infrastructure/browser"
	"ReviewsScanner/internal/infrastructure/metrics"
	"ReviewsScanner/internal/infrastructure/parser"
	"ReviewsScanner/internal/infrastructure/places"
	"ReviewsScanner/internal/infrastructure/scheduler"
	"ReviewsScanner/internal/infrastructure/storage"
	"ReviewsScanner/internal/infrastructure/telegram"
	"ReviewsScanner/internal/logging"
	"ReviewsScanner/internal/scanner"
	"ReviewsScanner/internal/usecase"
)

const stopTimeout = 2 * time.Minute

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	db       *sql.DB
}

// New builds the application. Optional sinks that cannot be reached are
// logged and left out; only a missing scanner is an error.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	launcher := browser.NewLauncher(browserOptions(cfg.Browser), baseLogger.With("component", "browser"))

	registry := scanner.NewRegistry()
	registry.Register(parser.NewGoogleReviewsScanner(launcher, baseLogger.With("component", "scanner.google")))

	source, err := scanner.NewSource(registry, cfg.Source.Scanner, scanner.Request{
		SourceURL:  cfg.Source.URL,
		MaxReviews: cfg.Source.MaxReviews,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve scanner: %w", err)
	}

	deps := usecase.PipelineDeps{
		PlaceURL: cfg.Source.URL,
		Source:   source,
		Verifier: places.NewClient(places.Config{
			PlaceID: cfg.Places.PlaceID,
			APIKey:  cfg.Places.APIKey,
			BaseURL: cfg.Places.BaseURL,
			Timeout: cfg.Places.Timeout,
		}, baseLogger.With("component", "places")),
		Artifacts: artifact.NewFileStore(cfg.Output.DisplayPath, cfg.Output.AuditPath),
		Logger:    baseLogger.With("component", "pipeline"),
	}

	application := &Application{cfg: cfg, logger: baseLogger}

	if cfg.Database.DSN != "" {
		if repo, db := openAuditRepository(ctx, cfg.Database.DSN, baseLogger); repo != nil {
			deps.Audits = repo
			application.db = db
		}
	}

	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		deps.Notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID, tg.APIURL)
	}

	if cfg.Metrics.TextfilePath != "" {
		deps.Metrics = metrics.NewRecorder(cfg.Metrics.TextfilePath)
	}

	application.pipeline = usecase.NewPipeline(deps)
	return application, nil
}

func browserOptions(cfg config.BrowserConfig) browser.Options {
	opts := browser.DefaultOptions()
	opts.Headless = cfg.IsHeadless()
	opts.ExecPath = cfg.ExecPath
	if cfg.UserAgent != "" {
		opts.UserAgent = cfg.UserAgent
	}
	if cfg.NavTimeout > 0 {
		opts.NavTimeout = cfg.NavTimeout
	}
	return opts
}

func openAuditRepository(ctx context.Context, dsn string, log *slog.Logger) (*storage.PostgresRepository, *sql.DB) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Warn("audit history disabled", "error", err)
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Warn("audit history disabled", "error", err)
		_ = db.Close()
		return nil, nil
	}

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Warn("audit history disabled", "error", err)
		_ = db.Close()
		return nil, nil
	}
	return repo, db
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return errors.New("pipeline is not configured")
	}

	summary, err := a.pipeline.Run(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("run finished",
		"run_id", summary.RunID,
		"selected", summary.SelectedCount,
		"display", a.cfg.Output.DisplayPath,
		"audit", a.cfg.Output.AuditPath,
		"duration", summary.Duration(),
	)
	return nil
}

// Schedule runs the pipeline on the configured cron expression until ctx is done.
func (a *Application) Schedule(ctx context.Context) error {
	if err := scheduler.Validate(a.cfg.Scheduler.CronExpression); err != nil {
		return err
	}

	driver := scheduler.NewCronScheduler(
		a.cfg.Scheduler.CronExpression,
		a.cfg.Scheduler.Location(),
		a.cfg.Scheduler.RunOnStart,
		a.logger.With("component", "scheduler"),
	)
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}

// Close releases the database pool when audit history is enabled.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
