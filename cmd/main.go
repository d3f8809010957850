package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/shenikar/station_dashboard/internal/config"
	v1 "github.com/shenikar/station_dashboard/internal/handler/http/v1"
	"github.com/shenikar/station_dashboard/internal/hub"
	"github.com/shenikar/station_dashboard/internal/metrics"
	"github.com/shenikar/station_dashboard/internal/repository"
	"github.com/shenikar/station_dashboard/internal/scheduler"
	"github.com/shenikar/station_dashboard/internal/service"
	"github.com/shenikar/station_dashboard/internal/webhook"
	"github.com/shenikar/station_dashboard/pkg/logger"
	"github.com/shenikar/station_dashboard/pkg/postgres"
	redisclient "github.com/shenikar/station_dashboard/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/station_dashboard/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Station Dashboard API
// @version 1.0
// @description Live CAD incident view and alerting for a single fire station.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	appMetrics := metrics.New()

	// Журнал оповещений в PostgreSQL, только при заданном DATABASE_URL
	var history service.AlertLogRepository
	if cfg.DatabaseURL != "" {
		if err := runMigrations(cfg, log); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}

		dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer dbpool.Close()
		log.Info("Successfully connected to PostgreSQL")

		history = repository.NewAlertLogRepository(dbpool)
	} else {
		log.Info("DATABASE_URL is empty, alert history is disabled")
	}

	// Вебхуки оповещений через очередь Redis, только при заданном REDIS_ADDR
	var publisher service.AlertPublisher
	if cfg.RedisAddr != "" {
		redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")

		publisher = webhook.NewRedisWebhookPublisher(redisClient)

		// Инициализация и запуск воркера вебхуков
		webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg)
		webhookWorker.Start(ctx)
	} else {
		log.Info("REDIS_ADDR is empty, alert webhooks are disabled")
	}

	fanout := service.NewAlertFanout(publisher, history, log, appMetrics)
	wg.Add(1)
	go func() {
		defer wg.Done()
		fanout.Run(ctx)
	}()

	// Клиент хаба CAD
	header := http.Header{}
	if cfg.HubAccessToken != "" {
		header.Set("Authorization", "Bearer "+cfg.HubAccessToken)
	}
	gateway := hub.NewClient(hub.Options{
		URL:             cfg.HubURL,
		SkipNegotiation: cfg.HubSkipNegotiation,
		Header:          header,
	}, log)

	snapshots := repository.NewSnapshotRepository(
		&http.Client{Timeout: cfg.SnapshotTimeout},
		cfg.IncidentsURL,
		cfg.UnitsURL,
		cfg.SnapshotAPIKey,
	)

	// Сессия панели станции
	dashboard := service.NewDashboard(service.Settings{
		Station:              cfg.Station,
		AlertTimeout:         cfg.AlertTimeout,
		AlertForAllIncidents: cfg.AlertForAllIncidents,
		SubscribeGroups:      cfg.SubscribeGroups,
		SnapshotTimeout:      cfg.SnapshotTimeout,
		ReconnectBackoff:     cfg.ReconnectBackoff,
	}, service.Deps{
		Gateway:   gateway,
		Snapshots: snapshots,
		History:   history,
		Notifier:  fanout,
		Observer:  appMetrics,
	}, log)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := dashboard.Run(ctx); err != nil {
			log.WithError(err).Error("Dashboard session failed")
		}
	}()

	// Периодическая перезагрузка снимков
	if cfg.SnapshotResyncSchedule != "" {
		resyncScheduler := scheduler.NewScheduler(dashboard, cfg.SnapshotResyncSchedule, cfg.SnapshotTimeout, log)
		if err := resyncScheduler.Start(); err != nil {
			log.Fatalf("Failed to start resync scheduler: %v", err)
		}
		defer resyncScheduler.Stop()
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(dashboard, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Метрики Prometheus
	router.GET("/metrics", gin.WrapH(appMetrics.Handler()))

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	// Останавливаем сессию, воркеры и раздачу оповещений
	cancel()
	wg.Wait()

	log.Info("Server gracefully stopped")
}
