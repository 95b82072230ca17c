package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/credilocker/credilocker-api/api/swagger"
	"github.com/credilocker/credilocker-api/internal/access"
	"github.com/credilocker/credilocker-api/internal/handler"
	"github.com/credilocker/credilocker-api/internal/middleware"
	"github.com/credilocker/credilocker-api/internal/models"
	"github.com/credilocker/credilocker-api/internal/repository"
	"github.com/credilocker/credilocker-api/internal/service"
	"github.com/credilocker/credilocker-api/pkg/cache"
	"github.com/credilocker/credilocker-api/pkg/config"
	"github.com/credilocker/credilocker-api/pkg/database"
	"github.com/credilocker/credilocker-api/pkg/logger"
	corsmiddleware "github.com/credilocker/credilocker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/credilocker/credilocker-api/pkg/middleware/requestid"
	"github.com/credilocker/credilocker-api/pkg/storage"
)

// @title CrediLocker API
// @version 1.0.0
// @description Academic record tracker for Field Project, CEP and Co-Curricular tracks
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	// Redis is optional; the dashboard cache degrades to pass-through without it.
	var cacheRepo *repository.CacheRepository
	cacheEnabled := false
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	} else {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		cacheEnabled = cfg.Dashboard.Enabled
		defer cacheRepo.Close() //nolint:errcheck
	}

	uploadStore, err := storage.NewLocalStorage(cfg.Storage.BaseDir, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL)
	if err != nil {
		logr.Fatal("failed to init upload storage", zap.Error(err))
	}
	reportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir, "reports", cfg.Storage.PublicBaseURL)
	if err != nil {
		logr.Fatal("failed to init report storage", zap.Error(err))
	}

	previewSigner := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.PreviewTTL)
	reportSigner := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	resolver := storage.NewPreviewResolver(previewSigner, cfg.Storage.Bucket, cfg.APIPrefix)

	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	cepRepo := repository.NewCEPRepository(db)
	fpRepo := repository.NewFieldProjectRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cacheEnabled)

	authSvc := service.NewAuthService(studentRepo, teacherRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	activitySvc := service.NewActivityService(activityRepo, attendanceRepo, validate, logr)
	cepSvc := service.NewCEPService(cepRepo, studentRepo, uploadStore, resolver, validate, logr)
	fpSvc := service.NewFieldProjectService(fpRepo, studentRepo, uploadStore, resolver, validate, logr)
	reportSvc := service.NewReportService(studentRepo, cepRepo, fpRepo, activityRepo, attendanceRepo, reportStore, reportSigner, cfg.APIPrefix, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cepRepo, fpRepo, cacheSvc, logr, service.DashboardServiceConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
	})

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	cepHandler := handler.NewCEPHandler(cepSvc, metricsSvc)
	fpHandler := handler.NewFieldProjectHandler(fpSvc, metricsSvc)
	reportHandler := handler.NewReportHandler(reportSvc, metricsSvc)
	filesHandler := handler.NewFilesHandler(resolver, previewSigner, uploadStore)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, metricsSvc)

	r := gin.New()
	r.MaxMultipartMemory = cfg.Storage.MaxFileSize
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/student/login", authHandler.StudentLogin)
	auth.POST("/teacher/login", authHandler.TeacherLogin)
	auth.GET("/pages", middleware.JWT(authSvc), authHandler.Pages)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	// Signed tokens carry their own authorization.
	api.GET("/files/signed/:token", filesHandler.Signed)
	api.GET("/reports/download/:token", reportHandler.Download)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.POST("/files/preview", filesHandler.Preview)

	teacherOnly := authed.Group("", middleware.RequireRoles(models.RoleTeacher))
	{
		teacherOnly.GET("/students", studentHandler.List)
		teacherOnly.POST("/students", studentHandler.Create)
		teacherOnly.POST("/students/promote", studentHandler.Promote)
		teacherOnly.GET("/students/:uid", studentHandler.Get)
		teacherOnly.PUT("/students/:uid", studentHandler.Update)
		teacherOnly.DELETE("/students/:uid", studentHandler.Delete)

		teacherOnly.GET("/teachers", teacherHandler.List)
		teacherOnly.POST("/teachers", teacherHandler.Create)
		teacherOnly.GET("/teachers/:code", teacherHandler.Get)
		teacherOnly.PUT("/teachers/:code", teacherHandler.Update)
		teacherOnly.DELETE("/teachers/:code", teacherHandler.Delete)

		teacherOnly.POST("/activities", activityHandler.Create)
		teacherOnly.PUT("/activities/:id", activityHandler.Update)
		teacherOnly.DELETE("/activities/:id", activityHandler.Delete)
		teacherOnly.GET("/activities/:id/attendance", activityHandler.Attendance)
		teacherOnly.POST("/activities/:id/attendance", activityHandler.MarkAttendance)

		teacherOnly.GET("/cep/requirements", cepHandler.ListRequirements)
		teacherOnly.POST("/cep/requirements", cepHandler.CreateRequirement)
		teacherOnly.PUT("/cep/requirements/:id", cepHandler.UpdateRequirement)
		teacherOnly.DELETE("/cep/requirements/:id", cepHandler.DeleteRequirement)
		teacherOnly.GET("/cep/review/:class", cepHandler.ClassReview)
		teacherOnly.POST("/cep/evaluate", cepHandler.Evaluate)

		teacherOnly.GET("/field-project/review/:class", fpHandler.ClassReview)
		teacherOnly.POST("/field-project/evaluate", fpHandler.Evaluate)

		teacherOnly.POST("/reports/:track", reportHandler.Generate)

		teacherOnly.GET("/dashboard", dashboardHandler.Summary)
		teacherOnly.DELETE("/dashboard/cache", dashboardHandler.Invalidate)
		teacherOnly.GET("/dashboard/metrics", dashboardHandler.SystemMetrics)
	}

	fieldProject := authed.Group("", middleware.RequireRoles(models.RoleStudent), middleware.RequirePage(access.PageFieldProject))
	{
		fieldProject.POST("/field-project/documents/:type", fpHandler.Upload)
		fieldProject.DELETE("/field-project/documents/:type", fpHandler.DeleteDocument)
		fieldProject.GET("/field-project/me", fpHandler.MySubmissions)
	}

	cep := authed.Group("", middleware.RequireRoles(models.RoleStudent), middleware.RequirePage(access.PageCommunityEngagement))
	{
		cep.POST("/cep/submissions", cepHandler.Submit)
		cep.DELETE("/cep/submissions/:id", cepHandler.DeleteSubmission)
		cep.GET("/cep/me", cepHandler.Overview)
		cep.GET("/cep/requirements/me", cepHandler.MyRequirement)
	}

	coCurricular := authed.Group("", middleware.RequirePage(access.PageCoCurricular))
	{
		coCurricular.GET("/activities", activityHandler.List)
		coCurricular.GET("/activities/:id", activityHandler.Get)
		coCurricular.GET("/attendance/me", activityHandler.MyAttendance)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(cfg.Reports.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reportSvc.Cleanup(cfg.Reports.SignedURLTTL)
			}
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown incomplete", zap.Error(err))
	}
}
