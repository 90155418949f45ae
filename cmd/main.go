package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"claims-service/internal/carrier"
	"claims-service/internal/config"
	"claims-service/internal/database/minio"
	"claims-service/internal/database/postgres"
	"claims-service/internal/database/redis"
	"claims-service/internal/event"
	"claims-service/internal/handlers"
	"claims-service/internal/repository"
	"claims-service/internal/services"

	"github.com/gofiber/fiber/v3"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/var", "log", "claims_service")
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	slog.SetDefault(slog.New(slog.NewJSONHandler(file, nil)))

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()

	log.Printf("Connecting to PostgreSQL with: host=%s, port=%s, user=%s, dbname=%s",
		cfg.PostgresCfg.Host, cfg.PostgresCfg.Port, cfg.PostgresCfg.Username, cfg.PostgresCfg.DBname)
	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		// Claims cannot be served without Postgres, so the repositories are
		// only wired once a connection exists. The retry blocks startup; the
		// service does not listen until it succeeds.
		log.Printf("error connect to database: %s, retrying until available", err)
		postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	redisClient, err := redis.NewRedisClient(
		cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		// Cache only; the service degrades to Postgres-only reads.
		slog.Warn("Redis unavailable, claim cache disabled", "error", err)
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			redisClient.Close()
		}
	}()

	minioClient, err := minio.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		slog.Warn("MinIO unavailable, photo attachments disabled", "error", err)
		minioClient = nil
	}

	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		slog.Warn("RabbitMQ unavailable, claim events disabled", "error", err)
		rabbitConn = nil
	}
	defer func() {
		if rabbitConn != nil {
			rabbitConn.Close()
		}
	}()
	publisher := event.NewClaimEventPublisher(rabbitConn)

	registry, err := carrier.BuildRegistry(cfg.CarrierCfg)
	if err != nil {
		log.Fatalf("Failed to build carrier registry: %v", err)
	}

	claimRepo := repository.NewClaimRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	locks := services.NewClaimLocker()

	var cache services.ClaimCache
	if redisClient != nil {
		cache = redisClient
	}
	var photos services.PhotoResolver
	if minioClient != nil {
		photos = minioClient
	}

	claimService := services.NewClaimService(claimRepo, customerRepo, cache, locks, publisher)
	syncOrchestrator := services.NewSyncOrchestrator(
		claimRepo, registry, locks, cache, publisher, cfg.CarrierCfg.RequestTimeout)
	filingOrchestrator := services.NewFilingOrchestrator(
		claimRepo, customerRepo, photos, registry, locks, cache, publisher, cfg.CarrierCfg.RequestTimeout)
	sweeper := services.NewSyncSweeper(
		claimRepo, syncOrchestrator,
		cfg.SyncCfg.SweepWorkers, cfg.SyncCfg.MaxRetries, cfg.SyncCfg.RetryBackoff)

	sweepCtx, stopSweeps := context.WithCancel(context.Background())
	defer stopSweeps()
	go runScheduledSweeps(sweepCtx, sweeper, cfg.SyncCfg.SweepInterval)

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Claims service is healthy")
	})

	claimHandler := handlers.NewClaimHandler(claimService, filingOrchestrator, syncOrchestrator, sweeper)
	claimHandler.Register(app)
	carrierHandler := handlers.NewCarrierHandler(registry)
	carrierHandler.Register(app)

	slog.Info("Claims service starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// runScheduledSweeps drives the periodic batch sync until the context ends.
// Manual sweeps through the API run the same code path.
func runScheduledSweeps(ctx context.Context, sweeper *services.SyncSweeper, interval time.Duration) {
	if interval <= 0 {
		slog.Warn("Scheduled sync sweeps disabled", "interval", interval)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sweeper.Run(ctx); err != nil {
				slog.Error("Scheduled sync sweep failed", "error", err)
			}
		}
	}
}
