package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nettalink/insights-backend/internal/handlers"
	"github.com/nettalink/insights-backend/internal/middleware"
	"github.com/nettalink/insights-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log              *logger.Logger
	UploadHandler    *handlers.UploadHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	CustomerHandler  *handlers.CustomerHandler
	SOPHandler       *handlers.SOPHandler
	HistoryHandler   *handlers.HistoryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Ingestion
		api.POST("/upload", cfg.UploadHandler.Upload)

		// Reports
		api.GET("/overview", cfg.AnalyticsHandler.Overview)
		api.GET("/revenue-analysis", cfg.AnalyticsHandler.RevenueAnalysis)
		api.GET("/customer-segmentation", cfg.AnalyticsHandler.CustomerSegmentation)
		api.GET("/profitability-analysis", cfg.AnalyticsHandler.ProfitabilityAnalysis)
		api.GET("/churn-analysis", cfg.AnalyticsHandler.ChurnAnalysis)
		api.GET("/registration-analysis", cfg.AnalyticsHandler.RegistrationAnalysis)

		// Customers
		api.GET("/customers", cfg.CustomerHandler.List)
		api.GET("/psb-check", cfg.CustomerHandler.PSBCheck)
		api.GET("/blacklist", cfg.CustomerHandler.Blacklist)
		api.GET("/map-data", cfg.CustomerHandler.MapData)
		api.GET("/filters", cfg.CustomerHandler.Filters)
		api.GET("/locations", cfg.CustomerHandler.Locations)

		// SOP rules
		api.GET("/sop-rules", cfg.SOPHandler.List)
		api.POST("/sop-rules", cfg.SOPHandler.Create)
		api.PUT("/sop-rules/:sales", cfg.SOPHandler.Update)
		api.DELETE("/sop-rules/:sales", cfg.SOPHandler.Delete)
		api.GET("/violations", cfg.SOPHandler.Validate)

		// History
		api.GET("/history", cfg.HistoryHandler.List)
		api.GET("/history/compare", cfg.HistoryHandler.Compare)
		api.GET("/history/trend", cfg.HistoryHandler.Trend)
		api.GET("/history/:date", cfg.HistoryHandler.GetByDate)
		api.POST("/history/save", cfg.HistoryHandler.Save)
		api.POST("/history/cleanup", cfg.HistoryHandler.Cleanup)
	}

	return router
}
