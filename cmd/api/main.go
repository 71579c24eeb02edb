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

	_ "github.com/gympoint/gympoint-api/api/swagger"
	"github.com/gympoint/gympoint-api/internal/handler"
	"github.com/gympoint/gympoint-api/internal/middleware"
	"github.com/gympoint/gympoint-api/internal/repository"
	"github.com/gympoint/gympoint-api/internal/service"
	"github.com/gympoint/gympoint-api/pkg/cache"
	"github.com/gympoint/gympoint-api/pkg/config"
	"github.com/gympoint/gympoint-api/pkg/database"
	"github.com/gympoint/gympoint-api/pkg/jobs"
	"github.com/gympoint/gympoint-api/pkg/logger"
	"github.com/gympoint/gympoint-api/pkg/mailer"
	corsmiddleware "github.com/gympoint/gympoint-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gympoint/gympoint-api/pkg/middleware/requestid"
)

// @title GymPoint API
// @version 1.0.0
// @description Gym management backend: members, plans, subscriptions, check-ins and help orders
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Repositories
	studentRepo := repository.NewStudentRepository(db)
	planRepo := repository.NewPlanRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	checkInRepo := repository.NewCheckInRepository(db)
	helpOrderRepo := repository.NewHelpOrderRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Plan catalog cache is optional; the service reads straight from the
	// database when redis is absent or unreachable.
	var planCache *repository.CacheRepository
	if cfg.Plans.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, plan cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			planCache = repository.NewCacheRepository(redisClient, "gympoint")
		}
	}

	// Mail pipeline
	sender := mailer.NewSMTPSender(cfg.SMTP, cfg.Mail)
	mailSvc := service.NewMailService(sender, metricsSvc, logr)
	mailQueue := jobs.NewQueue("mail", mailSvc.HandleJob, jobs.Config{
		Workers:    cfg.Queue.Workers,
		BufferSize: cfg.Queue.BufferSize,
		Logger:     logr,
		DepthHook:  metricsSvc.SetQueueDepth,
	})
	mailQueue.Start(ctx)
	defer mailQueue.Stop()

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	planSvc := service.NewPlanService(planRepo, planCacheArg(planCache), cfg.Plans.CacheTTL, validate, logr)
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, studentRepo, planRepo, mailQueue, validate, logr)
	checkInSvc := service.NewCheckInService(checkInRepo, studentRepo, logr)
	helpOrderSvc := service.NewHelpOrderService(helpOrderRepo, studentRepo, mailQueue, validate, logr)
	exportSvc := service.NewExportService(subscriptionRepo, logr)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	planHandler := handler.NewPlanHandler(planSvc)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionSvc, exportSvc)
	checkInHandler := handler.NewCheckInHandler(checkInSvc)
	helpOrderHandler := handler.NewHelpOrderHandler(helpOrderSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Open routes: staff registration, login and the member profile the
	// mobile app reads before authenticating.
	r.POST("/users", authHandler.Register)
	r.POST("/sessions", authHandler.Login)
	r.GET("/students/:id", studentHandler.Get)

	auth := r.Group("/", middleware.JWT(authSvc))

	auth.PUT("/users", authHandler.Update)

	auth.GET("/students", studentHandler.List)
	auth.POST("/students", studentHandler.Create)
	auth.PUT("/students/:id", studentHandler.Update)
	auth.DELETE("/students/:id", studentHandler.Delete)

	auth.GET("/plans", planHandler.List)
	auth.GET("/plans/:id", planHandler.Get)
	auth.POST("/plans", planHandler.Create)
	auth.PUT("/plans/:id", planHandler.Update)
	auth.DELETE("/plans/:id", planHandler.Delete)

	auth.GET("/subscriptions", subscriptionHandler.List)
	auth.GET("/subscriptions/export", subscriptionHandler.Export)
	auth.GET("/subscriptions/:id", subscriptionHandler.Get)
	auth.POST("/subscriptions", subscriptionHandler.Create)
	auth.PUT("/subscriptions/:id", subscriptionHandler.Update)
	auth.DELETE("/subscriptions/:id", subscriptionHandler.Delete)

	auth.POST("/students/:id/checkins", checkInHandler.Create)
	auth.GET("/students/:id/checkins", checkInHandler.List)

	auth.POST("/students/:id/help-orders", helpOrderHandler.Ask)
	auth.GET("/students/:id/help-orders", helpOrderHandler.ListForStudent)
	auth.GET("/help-orders", helpOrderHandler.ListUnanswered)
	auth.PUT("/help-orders/:id", helpOrderHandler.Answer)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}

// planCacheArg keeps the nil-interface semantics the plan service expects: a
// typed nil pointer must not masquerade as a usable cache.
func planCacheArg(c *repository.CacheRepository) service.PlanCache {
	if c == nil {
		return nil
	}
	return c
}
