package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"swachhsetu/docs" // swagger docs

	"swachhsetu/internal/ai"
	"swachhsetu/internal/auth"
	"swachhsetu/internal/cache"
	"swachhsetu/internal/config"
	"swachhsetu/internal/db"
	"swachhsetu/internal/events"
	"swachhsetu/internal/export"
	"swachhsetu/internal/geocoding"
	"swachhsetu/internal/handler"
	"swachhsetu/internal/logger"
	"swachhsetu/internal/realtime"
	"swachhsetu/internal/repository"
	"swachhsetu/internal/router"
	"swachhsetu/internal/service"
)

const shutdownTimeout = 15 * time.Second

// @title SwachhSetu API
// @version 1.0
// @description Civic hygiene reporting API with realtime notifications, garbage collection schedules and AI-assisted analysis.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("")
		bootLog.Fatal().Err(err).Msg("config load")
	}
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.IsDevelopment())
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}
	if cfg.ResetDB {
		log.Warn().Msg("RESET_DB=true detected, dropping all tables")
		db.Reset(gormDB, log)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	hub := realtime.NewHub(log, cfg.CORSOrigins)
	go hub.Run(ctx)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			log.Error().Err(err).Msg("event bus unavailable, domain events will not be published")
		} else {
			publisher = amqpPublisher
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	reportRepo := repository.NewReportRepository(gormDB)
	notificationRepo := repository.NewNotificationRepository(gormDB)
	scheduleRepo := repository.NewScheduleRepository(gormDB)
	txManager := repository.NewTxManager(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	notificationService := service.NewNotificationService(notificationRepo, cacheClient, hub, nil, log)
	reportService := service.NewReportService(service.ReportServiceDeps{
		Reports:       reportRepo,
		Tx:            txManager,
		Notifications: notificationService,
		Hub:           hub,
		Publisher:     publisher,
		Exporter:      export.NewGenerator(cfg.Location()),
		Log:           log,
	})
	userService := service.NewUserService(userRepo, cacheClient)
	dashboardService := service.NewDashboardService(userRepo, reportRepo, notificationRepo, cacheClient, nil)
	scheduleService := service.NewScheduleService(scheduleRepo, nil, cfg.Location())
	aiService := service.NewAIService(
		ai.NewClient(cfg.AI.BaseURL, cfg.AI.Timeout, cfg.AI.LinguisticTimeout),
		notificationService,
		hub,
		log,
	)

	if cfg.AMQP.URL != "" {
		subscriber := events.NewSubscriber(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.AIQueue, map[string]events.Handler{
			events.KeyAIProgress: func(ctx context.Context, body []byte) error {
				var progress events.AIProgress
				if err := events.DecodeJSON(body, &progress); err != nil {
					return err
				}
				return aiService.HandleProgress(ctx, progress)
			},
		}, log)
		go subscriber.Run(ctx)
	}

	e := echo.New()
	e.HideBanner = true

	router.Register(e, cfg, log, authService, router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Reports:       handler.NewReportHandler(reportService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Garbage:       handler.NewGarbageHandler(scheduleService),
		Geocoding:     handler.NewGeocodingHandler(geocoding.NewClient(cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent)),
		AI:            handler.NewAIHandler(aiService),
		Users:         handler.NewUserHandler(userService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
		Realtime:      handler.NewRealtimeHandler(hub, cacheClient, db.NewPinger(gormDB)),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	log.Info().Str("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html").Msg("swagger documentation available")

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info().Str("addr", addr).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	reportService.Close()
	if err := publisher.Close(); err != nil {
		log.Warn().Err(err).Msg("close publisher")
	}
	if err := cacheClient.Close(); err != nil {
		log.Warn().Err(err).Msg("close cache")
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
