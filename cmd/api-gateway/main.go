package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/OnlyAmFo/LMSWithAIFinal/api/swagger"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/analysis"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/handler"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/repository"
	"github.com/OnlyAmFo/LMSWithAIFinal/internal/service"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/cache"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/config"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/database"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/jobs"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/logger"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/storage"
	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/tracing"
)

// @title LMS Insights API
// @version 1.0.0
// @description Performance analytics and risk classification for LMS students and classes.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, cfg.Env, os.Stdout)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logr.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	metrics := service.NewMetricsService()
	var checks []handler.ReadinessCheck

	queue := jobs.NewQueue("insights", jobs.QueueConfig{
		Workers:    cfg.Exports.Workers,
		MaxRetries: cfg.Exports.Retries,
		Logger:     logr,
	})

	var (
		source   service.AssessmentSource
		fileRepo *repository.AssessmentFileRepository
	)
	switch cfg.Assessments.Source {
	case config.SourceDatabase:
		db, err := database.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close() //nolint:errcheck
		source = repository.NewAssessmentRepository(db, logr, metrics)
		checks = append(checks, handler.ReadinessCheck{Name: "database", Check: db.PingContext})
	default:
		fileRepo = repository.NewAssessmentFileRepository(cfg.Assessments.DataFile, logr, metrics)
		source = fileRepo
		checks = append(checks, handler.ReadinessCheck{Name: "assessment_data", Check: func(context.Context) error {
			_, err := os.Stat(fileRepo.Path())
			return err
		}})
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.Connect(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, insight cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	if cacheRepo.Enabled() {
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: cacheRepo.Ping})
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Insights.CacheTTL, logr, cfg.Insights.CacheEnabled && cacheRepo.Enabled())

	rules, err := analysis.LoadRulebook(cfg.Insights.RulesFile)
	if err != nil {
		return fmt.Errorf("load recommendation rules: %w", err)
	}
	engine, err := analysis.NewEngine(rules.WithLogger(logr))
	if err != nil {
		return fmt.Errorf("build analysis engine: %w", err)
	}

	var scorer service.Scorer
	if cfg.Scoring.Enabled {
		scorer = service.NewScoringClient(cfg.Scoring, metrics, logr)
	} else {
		logr.Info("scoring service disabled, serving local analysis only")
	}
	insights := service.NewInsightsService(source, scorer, engine, cacheSvc, metrics, logr)

	queue.Start(ctx)
	defer queue.Stop()

	classes := handler.NewClassHandler(insights, nil)
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			return err
		}
		secret := cfg.Exports.SignedURLSecret
		if secret == "" {
			if secret, err = storage.DeriveSecret(cfg.JWT.Secret, "exports.download"); err != nil {
				return fmt.Errorf("export signing secret: %w", err)
			}
		}
		signer := storage.NewSignedURLSigner(secret, cfg.Exports.SignedURLTTL)
		exporter := service.NewExportService(insights, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			Retention: cfg.Exports.Retention,
		}, metrics, logr)
		if err := exporter.ScheduleCleanup(queue, cfg.Exports.CleanupInterval); err != nil {
			return fmt.Errorf("schedule export cleanup: %w", err)
		}
		classes = handler.NewClassHandler(insights, exporter)
	}

	if fileRepo != nil && cfg.Assessments.Watch {
		watcher := service.NewAssessmentWatcher(fileRepo, insights, queue, logr)
		if err := watcher.Start(ctx); err != nil {
			logr.Warn("assessment data watch disabled", zap.Error(err))
		} else {
			defer watcher.Close() //nolint:errcheck
		}
	}

	deps := routerDeps{
		cfg:      cfg,
		logger:   logr,
		metrics:  metrics,
		students: handler.NewInsightsHandler(insights),
		classes:  classes,
		ops:      handler.NewMetricsHandler(metrics, insights, checks...),
	}
	if cfg.JWT.Enabled {
		deps.auth = service.NewAuthService(cfg.JWT.Secret, logr)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("assessment_source", cfg.Assessments.Source))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
