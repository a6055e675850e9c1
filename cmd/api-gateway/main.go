package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/gradetrack-api/api/swagger"
	"github.com/noah-isme/gradetrack-api/internal/handler"
	"github.com/noah-isme/gradetrack-api/internal/middleware"
	"github.com/noah-isme/gradetrack-api/internal/repository"
	"github.com/noah-isme/gradetrack-api/internal/service"
	"github.com/noah-isme/gradetrack-api/pkg/cache"
	"github.com/noah-isme/gradetrack-api/pkg/config"
	"github.com/noah-isme/gradetrack-api/pkg/database"
	"github.com/noah-isme/gradetrack-api/pkg/jobs"
	"github.com/noah-isme/gradetrack-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gradetrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gradetrack-api/pkg/middleware/requestid"
	"github.com/noah-isme/gradetrack-api/pkg/storage"
)

// @title GradeTrack API
// @version 1.0.0
// @description Gradebook aggregation and persistence service
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.Snapshot.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, running without snapshots", "error", err)
			redisClient = nil
		}
	}
	snapshots := repository.NewSnapshotRepository(redisClient, cfg.Snapshot.TTL, logr)
	defer snapshots.Close() //nolint:errcheck

	gradebookRepo := repository.NewGradebookRepository(db)

	ctx := context.Background()

	var gradebookSvc *service.GradebookService
	persistQueue := jobs.NewQueue("gradebook_persist", func(ctx context.Context, job jobs.Job) error {
		return gradebookSvc.HandlePersistJob(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Persist.WorkerConcurrency,
		MaxRetries: cfg.Persist.WorkerRetries,
		Logger:     logr,
	})
	gradebookSvc = service.NewGradebookService(gradebookRepo, snapshots, persistQueue, metricsSvc, nil, logr)
	persistQueue.Start(ctx)
	defer persistQueue.Stop()

	statsSvc := service.NewStatsService(gradebookSvc, logr)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration)

	gradebookHandler := handler.NewGradebookHandler(gradebookSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc))
	api.Use(middleware.WithResponseMeta())

	gb := api.Group("/gradebook")
	gb.GET("", gradebookHandler.Get)
	gb.DELETE("", gradebookHandler.Clear)
	gb.GET("/overview", statsHandler.Overview)
	gb.GET("/scale", statsHandler.Scale)
	gb.POST("/semesters", gradebookHandler.AddSemester)
	gb.DELETE("/semesters/:semesterID", gradebookHandler.DeleteSemester)
	gb.GET("/semesters/:semesterID/stats", statsHandler.Semester)
	gb.POST("/semesters/:semesterID/courses", gradebookHandler.AddCourse)
	gb.PATCH("/semesters/:semesterID/courses/:courseID", gradebookHandler.UpdateCourse)
	gb.DELETE("/semesters/:semesterID/courses/:courseID", gradebookHandler.DeleteCourse)
	gb.GET("/semesters/:semesterID/courses/:courseID/stats", statsHandler.Course)
	gb.POST("/semesters/:semesterID/courses/:courseID/assessments", gradebookHandler.AddAssessment)
	gb.PATCH("/semesters/:semesterID/courses/:courseID/assessments/:assessmentID", gradebookHandler.UpdateAssessment)
	gb.DELETE("/semesters/:semesterID/courses/:courseID/assessments/:assessmentID", gradebookHandler.DeleteAssessment)

	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc := service.NewExportService(gradebookSvc, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)

		var transcriptSvc *service.TranscriptService
		exportQueue := jobs.NewQueue("transcript_export", func(ctx context.Context, job jobs.Job) error {
			return transcriptSvc.Handle(ctx, job)
		}, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		transcriptSvc = service.NewTranscriptService(exportQueue, exportSvc, logr, service.TranscriptServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		exportQueue.Start(ctx)
		defer exportQueue.Stop()
		transcriptSvc.StartCleanup(ctx)

		exportHandler := handler.NewExportHandler(transcriptSvc)
		exp := api.Group("/exports")
		exp.POST("", exportHandler.Create)
		exp.GET("/:jobID", exportHandler.Status)

		// Download authenticates via the signed token instead of a bearer token.
		r.GET(cfg.APIPrefix+"/exports/:jobID/download", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
