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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/leveling-api/api/swagger"
	"github.com/noah-isme/leveling-api/internal/engine"
	"github.com/noah-isme/leveling-api/internal/handler"
	"github.com/noah-isme/leveling-api/internal/middleware"
	"github.com/noah-isme/leveling-api/internal/models"
	"github.com/noah-isme/leveling-api/internal/repository"
	"github.com/noah-isme/leveling-api/internal/service"
	"github.com/noah-isme/leveling-api/pkg/cache"
	"github.com/noah-isme/leveling-api/pkg/config"
	"github.com/noah-isme/leveling-api/pkg/database"
	"github.com/noah-isme/leveling-api/pkg/jobs"
	"github.com/noah-isme/leveling-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/leveling-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/leveling-api/pkg/middleware/requestid"
)

// @title Leveling API
// @version 1.0.0
// @description Activity scoring and temporal aggregation service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	loc, err := time.LoadLocation(cfg.Analytics.Timezone)
	if err != nil {
		logr.Sugar().Warnw("invalid timezone, falling back to UTC", "timezone", cfg.Analytics.Timezone)
		loc = time.UTC
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	improvementRepo := repository.NewImprovementRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	attributeRepo := repository.NewAttributeRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "leveling-api",
	})
	userSvc := service.NewUserService(userRepo, logr)
	activitySvc := service.NewActivityService(activityRepo, cacheSvc, validate, logr)

	aggregator := engine.NewAggregator(engine.AggregatorConfig{
		ActiveStartHour: cfg.Analytics.ActiveStartHour,
		ActiveEndHour:   cfg.Analytics.ActiveEndHour,
		TargetMinutes:   cfg.Analytics.TargetMinutes,
		TopCategories:   cfg.Analytics.TopCategories,
		WindowDays:      cfg.Analytics.WindowDays,
		Location:        loc,
	})
	analyticsSvc := service.NewAnalyticsService(entryRepo, aggregator, cacheSvc, metricsSvc, logr, cfg.Analytics.CacheTTL, loc)

	progressionSvc := service.NewProgressionService(entryRepo, attributeRepo, cacheSvc, metricsSvc, logr, service.ProgressionConfig{
		DefaultThreshold:       cfg.Progression.DefaultThreshold,
		DefaultPointsPerUnit:   cfg.Progression.DefaultPointsPerUnit,
		DefaultDailySaturation: cfg.Progression.DefaultDailySaturation,
		Location:               loc,
	})
	scheduler := service.NewRebuildScheduler(progressionSvc, jobs.QueueConfig{
		Workers:    cfg.Progression.RebuildWorkers,
		MaxRetries: cfg.Progression.RebuildMaxRetries,
		RetryDelay: cfg.Progression.RebuildRetryDelay,
		Logger:     logr,
	})

	entrySvc := service.NewEntryService(entryRepo, activityRepo, scheduler, cacheSvc, validate, logr)
	attributeSvc := service.NewAttributeService(attributeRepo, cacheSvc, validate, logr)
	taskSvc := service.NewTaskService(taskRepo, validate, logr)
	improvementSvc := service.NewImprovementService(improvementRepo, validate, logr)
	exportSvc := service.NewExportService(analyticsSvc, progressionSvc, logr, nil, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := buildRouter(cfg, logr, metricsSvc, handlers{
		auth:         handler.NewAuthHandler(authSvc),
		users:        handler.NewUserHandler(userSvc),
		activities:   handler.NewActivityHandler(activitySvc),
		entries:      handler.NewEntryHandler(entrySvc),
		tasks:        handler.NewTaskHandler(taskSvc),
		improvements: handler.NewImprovementHandler(improvementSvc),
		attributes:   handler.NewAttributeHandler(attributeSvc),
		progression:  handler.NewProgressionHandler(progressionSvc),
		analytics:    handler.NewAnalyticsHandler(analyticsSvc),
		export:       handler.NewExportHandler(exportSvc),
		metrics:      handler.NewMetricsHandler(metricsSvc),
	}, authSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

type handlers struct {
	auth         *handler.AuthHandler
	users        *handler.UserHandler
	activities   *handler.ActivityHandler
	entries      *handler.EntryHandler
	tasks        *handler.TaskHandler
	improvements *handler.ImprovementHandler
	attributes   *handler.AttributeHandler
	progression  *handler.ProgressionHandler
	analytics    *handler.AnalyticsHandler
	export       *handler.ExportHandler
	metrics      *handler.MetricsHandler
}

func buildRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, h handlers, authSvc *service.AuthService) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Health)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.auth.Register)
		auth.POST("/login", h.auth.Login)
		auth.POST("/refresh", h.auth.Refresh)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))
	{
		secured.GET("/auth/me", h.auth.Me)
		secured.POST("/auth/logout", h.auth.Logout)
		secured.POST("/auth/change-password", h.auth.ChangePassword)

		secured.GET("/activities", h.activities.List)
		secured.POST("/activities", h.activities.Create)
		secured.GET("/activities/:id", h.activities.Get)
		secured.PUT("/activities/:id", h.activities.Update)
		secured.DELETE("/activities/:id", h.activities.Delete)

		secured.GET("/entries", h.entries.List)
		secured.POST("/entries", h.entries.Create)
		secured.GET("/entries/:id", h.entries.Get)
		secured.PUT("/entries/:id", h.entries.Update)
		secured.DELETE("/entries/:id", h.entries.Delete)

		secured.GET("/tasks", h.tasks.List)
		secured.POST("/tasks", h.tasks.Create)
		secured.GET("/tasks/:id", h.tasks.Get)
		secured.PATCH("/tasks/:id", h.tasks.Update)
		secured.DELETE("/tasks/:id", h.tasks.Delete)

		secured.GET("/improvements", h.improvements.List)
		secured.POST("/improvements", h.improvements.Create)
		secured.PUT("/improvements/:id", h.improvements.Update)
		secured.DELETE("/improvements/:id", h.improvements.Delete)

		secured.GET("/analytics/month", h.analytics.Month)
		secured.GET("/analytics/day", h.analytics.Day)
		secured.GET("/analytics/system", h.analytics.System)

		secured.GET("/progression", h.progression.Snapshot)
		secured.GET("/progression/thresholds", h.progression.Thresholds)
		secured.POST("/progression/rebuild", h.progression.Rebuild)
		secured.DELETE("/progression", h.progression.Reset)

		secured.GET("/attributes", h.attributes.List)

		if cfg.Export.Enabled {
			secured.GET("/export/month", h.export.Month)
			secured.GET("/export/progression", h.export.Progression)
		}

		admin := secured.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		{
			admin.PUT("/attributes", h.attributes.Upsert)
			admin.GET("/users", h.users.List)
			admin.GET("/users/:id", h.users.Get)
			admin.DELETE("/users/:id/sessions", h.users.RevokeSessions)
		}
	}

	return r
}
