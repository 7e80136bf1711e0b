package handlers

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/services"
)

type AnalyticsHandler struct {
	log              *logger.Logger
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService, baseLog *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		log:              baseLog.With("handler", "AnalyticsHandler"),
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) respond(c *gin.Context, payload services.M, err error) {
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			RespondError(c, http.StatusNotFound, "NO_DATASET", err)
			return
		}
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, payload)
}

// GET /api/overview
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	payload, err := h.analyticsService.Overview()
	h.respond(c, payload, err)
}

// GET /api/revenue-analysis
func (h *AnalyticsHandler) RevenueAnalysis(c *gin.Context) {
	payload, err := h.analyticsService.RevenueAnalysis()
	h.respond(c, payload, err)
}

// GET /api/customer-segmentation
func (h *AnalyticsHandler) CustomerSegmentation(c *gin.Context) {
	payload, err := h.analyticsService.CustomerSegmentation()
	h.respond(c, payload, err)
}

// GET /api/profitability-analysis
func (h *AnalyticsHandler) ProfitabilityAnalysis(c *gin.Context) {
	payload, err := h.analyticsService.ProfitabilityAnalysis()
	h.respond(c, payload, err)
}

// GET /api/churn-analysis
func (h *AnalyticsHandler) ChurnAnalysis(c *gin.Context) {
	payload, err := h.analyticsService.ChurnAnalysis()
	h.respond(c, payload, err)
}

// GET /api/registration-analysis
func (h *AnalyticsHandler) RegistrationAnalysis(c *gin.Context) {
	payload, err := h.analyticsService.RegistrationAnalysis()
	h.respond(c, payload, err)
}
