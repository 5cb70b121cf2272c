package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/synaptic/study-engine/internal/config"
	"github.com/synaptic/study-engine/internal/events"
	"github.com/synaptic/study-engine/internal/platform/postgres"
	"github.com/synaptic/study-engine/internal/platform/redis"
	"github.com/synaptic/study-engine/internal/schedule"
	"github.com/synaptic/study-engine/internal/service/card_review"
	gapsvc "github.com/synaptic/study-engine/internal/service/gaps"
	"github.com/synaptic/study-engine/internal/service/readiness"
	"github.com/synaptic/study-engine/internal/service/study_plan"
	"github.com/synaptic/study-engine/internal/task"
)

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB
	redis  *goredis.Client

	cardReviewService card_review.CardReviewService
	readinessService  readiness.ReadinessService
	gapService        gapsvc.GapService
	studyPlanService  study_plan.StudyPlanService

	events     *events.InMemoryEventEmitter
	taskQueue  *task.TaskQueue
	workerPool *task.WorkerPool
	scheduler  *schedule.Scheduler
}

// newApplication connects to the backing stores and builds every service.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: logger}

	db, err := postgres.Open(ctx, cfg.Database.URL, postgres.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		PingTimeout:     cfg.Database.PingTimeout,
	})
	if err != nil {
		return nil, err
	}
	app.db = db
	logger.Info("Database connection established")

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, db.DB, logger); err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	eng, err := newEngine(cfg.Engine)
	if err != nil {
		app.cleanup()
		return nil, err
	}

	cardStore := postgres.NewPostgresCardStore(db, logger)
	reviewStore := postgres.NewPostgresReviewLogStore(db, logger)
	examStore := postgres.NewPostgresExamStore(db, logger)

	app.events = events.NewInMemoryEventEmitter(logger)
	reviewOpts := []card_review.Option{card_review.WithEventEmitter(app.events)}
	if cfg.Redis.URL != "" {
		app.redis, err = redis.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		guard := redis.NewIdempotencyGuard(app.redis, cfg.Redis.KeyPrefix, cfg.Redis.IdempotencyTTL, logger)
		reviewOpts = append(reviewOpts, card_review.WithIdempotencyGuard(guard))
		logger.Info("Review idempotency guard enabled")
	}

	app.cardReviewService = card_review.NewCardReviewService(
		db, cardStore, reviewStore, eng.srs, logger, reviewOpts...)

	app.readinessService = readiness.NewReadinessService(readiness.Stores{
		Cards:       cardStore,
		Reviews:     reviewStore,
		Assessments: postgres.NewPostgresAssessmentStore(db, logger),
		Exams:       examStore,
		Snapshots:   postgres.NewPostgresSnapshotStore(db, logger),
	}, eng.scorer, nil, logger)

	app.gapService = gapsvc.NewGapService(cardStore, examStore, eng.analyzer, nil, logger)

	app.studyPlanService = study_plan.NewStudyPlanService(db, study_plan.Stores{
		Curricula: postgres.NewPostgresCurriculumStore(db, logger),
		Plans:     postgres.NewPostgresPlanStore(db, logger),
		Learners:  postgres.NewPostgresLearnerStore(db, logger),
		Exams:     examStore,
	}, eng.generator, nil, logger)

	if cfg.Jobs.Enabled {
		if err := app.startJobs(reviewStore); err != nil {
			app.cleanup()
			return nil, err
		}
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// startJobs starts the worker pool and the daily readiness refresh.
func (app *application) startJobs(reviews *postgres.PostgresReviewLogStore) error {
	cfg := app.config.Jobs
	app.taskQueue = task.NewTaskQueue(cfg.QueueSize, app.logger)

	poolCfg := task.DefaultWorkerPoolConfig()
	poolCfg.WorkerCount = cfg.WorkerCount
	app.workerPool = task.NewWorkerPool(app.taskQueue, poolCfg, app.logger)
	app.workerPool.SetErrorHandler(func(t task.Task, err error) {
		app.logger.Warn("readiness refresh failed",
			slog.String("task_id", t.ID().String()),
			slog.String("error", err.Error()))
	})
	app.workerPool.Start()

	factory := task.NewReadinessRefreshTaskFactory(app.readinessService, app.logger)
	if cfg.RefreshOnReview > 0 {
		app.events.RegisterHandler(
			task.NewRefreshOnReviewHandler(app.taskQueue, factory, cfg.RefreshOnReview, app.logger))
	}

	app.scheduler = schedule.New(schedule.Config{
		RefreshAt:    cfg.RefreshAt,
		ActiveWindow: cfg.ActiveWindow,
	}, reviews, factory, app.taskQueue, app.logger)
	if err := app.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start readiness scheduler: %w", err)
	}

	app.logger.Info("Readiness refresh scheduled",
		slog.String("refresh_at", cfg.RefreshAt),
		slog.Int("workers", cfg.WorkerCount))
	return nil
}

// Run serves HTTP until ctx is canceled, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()
	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup handles graceful shutdown of application resources.
// Jobs stop before the stores they use are closed.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.taskQueue != nil {
		app.taskQueue.Close()
	}
	if app.workerPool != nil {
		app.workerPool.Stop()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis connection", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("Application shutdown completed")
}

func shutdownContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
