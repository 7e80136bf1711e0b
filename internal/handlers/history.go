package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/services"
)

type HistoryHandler struct {
	log            *logger.Logger
	historyService *services.HistoryService
}

func NewHistoryHandler(historyService *services.HistoryService, baseLog *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		log:            baseLog.With("handler", "HistoryHandler"),
		historyService: historyService,
	}
}

// GET /api/history
// Query param: limit (default 30).
func (h *HistoryHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	snaps, err := h.historyService.List(c.Request.Context(), limit)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"count": len(snaps), "snapshots": snaps})
}

// GET /api/history/:date
func (h *HistoryHandler) GetByDate(c *gin.Context) {
	date := c.Param("date")
	snap, err := h.historyService.GetByDate(c.Request.Context(), date)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	if snap == nil {
		RespondError(c, http.StatusNotFound, "SNAPSHOT_NOT_FOUND",
			errors.New("no snapshot for "+date))
		return
	}
	RespondOK(c, snap)
}

// POST /api/history/save
// Forces a snapshot of the current dataset outside the upload flow.
func (h *HistoryHandler) Save(c *gin.Context) {
	snap, err := h.historyService.SaveSnapshot(c.Request.Context())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			RespondError(c, http.StatusNotFound, "NO_DATASET", err)
			return
		}
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "Snapshot tersimpan", "snapshot": snap})
}

// GET /api/history/compare
// Query params: date1, date2 (YYYY-MM-DD).
func (h *HistoryHandler) Compare(c *gin.Context) {
	date1 := c.Query("date1")
	date2 := c.Query("date2")
	if date1 == "" || date2 == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_DATES",
			errors.New("date1 and date2 query params are required"))
		return
	}
	result, err := h.historyService.Compare(c.Request.Context(), date1, date2)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	if result == nil {
		RespondError(c, http.StatusNotFound, "SNAPSHOT_NOT_FOUND",
			errors.New("no snapshot for one or both dates"))
		return
	}
	RespondOK(c, result)
}

// GET /api/history/trend
// Query param: days (default 30).
func (h *HistoryHandler) Trend(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	result, err := h.historyService.Trend(c.Request.Context(), days)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, result)
}

// POST /api/history/cleanup
// Query param: keep (default 30).
func (h *HistoryHandler) Cleanup(c *gin.Context) {
	keep, _ := strconv.Atoi(c.DefaultQuery("keep", "30"))
	deleted, err := h.historyService.Cleanup(c.Request.Context(), keep)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": deleted, "kept": keep})
}
