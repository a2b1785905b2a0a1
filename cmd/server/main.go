package main

import (
	"log"
	"net/http"
	"os"

	appservice "github.com/arnoldphilip/task-payment-system/internal/application/service"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/cache"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/config"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/db"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/gateway"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/handler"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/logger"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/middleware"
	"github.com/dgraph-io/badger/v3"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewJSONLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	logger.SetDefaultLogger(appLogger)

	appLogger.Info("Starting task payment system", map[string]interface{}{
		"port":    cfg.Port,
		"db_path": cfg.DBPath,
	})

	// Setup BadgerDB
	if err := os.MkdirAll(cfg.DBPath, 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	badgerOpts := badger.DefaultOptions(cfg.DBPath)
	badgerOpts.Logger = nil // Disable Badger's default logger

	badgerDB, err := badger.Open(badgerOpts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	defer func() {
		if err := badgerDB.Close(); err != nil {
			appLogger.Error("Error closing BadgerDB", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Initialize repositories
	txRepo := db.NewBadgerTransactionRepository(badgerDB)
	taskRepo := db.NewBadgerTaskRepository(badgerDB)
	idemRepo := db.NewBadgerIdempotencyRepository(badgerDB)

	// Initialize the simulated payment provider
	paymentGateway := gateway.NewSimulatedGateway(
		cfg.GatewayLatency,
		cfg.GatewaySuccessRate,
		cfg.GatewayUnavailableRate,
		nil,
		appLogger,
	)

	// Initialize services
	taskService := appservice.NewTaskService(taskRepo, appLogger)
	paymentService := appservice.NewPaymentService(
		txRepo, taskRepo, paymentGateway,
		cfg.GatewayMaxAttempts, cfg.GatewayRetryBackoff,
		appLogger,
	)

	// Initialize handlers
	taskHandler := handler.NewTaskHandler(taskService, appLogger)
	paymentHandler := handler.NewPaymentHandler(paymentService, idemRepo, appLogger)

	// Setup router with the idempotency interceptor wrapping every
	// mutating request
	replayCache := cache.NewReplayCache(cfg.ReplayCacheTTL)

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.IdempotencyMiddleware(idemRepo, replayCache, appLogger))

	taskHandler.RegisterRoutes(router)
	paymentHandler.RegisterRoutes(router)

	// Start server
	appLogger.Info("Server listening", map[string]interface{}{
		"addr": ":" + cfg.Port,
	})
	log.Fatal(http.ListenAndServe(":"+cfg.Port, router))
}
