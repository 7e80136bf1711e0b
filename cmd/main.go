package main

import (
	"fmt"
	"os"

	"github.com/nettalink/insights-backend/internal/config"
	"github.com/nettalink/insights-backend/internal/db"
	"github.com/nettalink/insights-backend/internal/handlers"
	"github.com/nettalink/insights-backend/internal/ingest"
	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/repos"
	"github.com/nettalink/insights-backend/internal/server"
	"github.com/nettalink/insights-backend/internal/services"
	"github.com/nettalink/insights-backend/internal/sop"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading configuration...")
	cfg := config.Load()

	// SQLite (snapshot history)
	sqliteService, err := db.NewSQLiteService(cfg.HistoryDBFile, log)
	if err != nil {
		log.Error("SQLite init failed", "error", err)
		os.Exit(1)
	}
	if err := sqliteService.AutoMigrateAll(); err != nil {
		log.Error("SQLite auto migration failed", "error", err)
		os.Exit(1)
	}
	theDB := sqliteService.DB()

	// Repos
	log.Info("Setting up repos...")
	snapshotRepo := repos.NewSnapshotRepo(theDB, log)

	// Stores
	dataset := ingest.NewDataset(cfg.DataFile, log)
	reader := ingest.NewReader(log)
	sopStore := sop.NewStore(cfg.SOPRulesFile, log)

	// Services
	log.Info("Setting up services...")
	historyService := services.NewHistoryService(cfg, dataset, snapshotRepo, log)
	uploadService := services.NewUploadService(reader, dataset, historyService, log)
	analyticsService := services.NewAnalyticsService(cfg, dataset, log)
	customerService := services.NewCustomerService(cfg, dataset, log)
	sopService := services.NewSOPService(sopStore, dataset, log)

	// Handlers
	log.Info("Setting up handlers...")
	uploadHandler := handlers.NewUploadHandler(cfg, uploadService, log)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, log)
	customerHandler := handlers.NewCustomerHandler(customerService, log)
	sopHandler := handlers.NewSOPHandler(sopService, log)
	historyHandler := handlers.NewHistoryHandler(historyService, log)

	// Router
	router := server.NewRouter(server.RouterConfig{
		Log:              log,
		UploadHandler:    uploadHandler,
		AnalyticsHandler: analyticsHandler,
		CustomerHandler:  customerHandler,
		SOPHandler:       sopHandler,
		HistoryHandler:   historyHandler,
	})
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
