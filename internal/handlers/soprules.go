package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/services"
	"github.com/nettalink/insights-backend/internal/sop"
)

// intList accepts either a single JSON number or an array of numbers. The
// dashboard sends a bare number when a salesperson has one incentive tier.
type intList []int

func (l *intList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var values []int
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*l = values
		return nil
	}
	var single int
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = []int{single}
	return nil
}

type sopCreateRequest struct {
	Sales      string   `json:"nama_sales"`
	DueDay     int      `json:"jatuh_tempo"`
	Incentives intList  `json:"insentif"`
	Locations  []string `json:"lokasi"`
}

type sopUpdateRequest struct {
	DueDay     *int     `json:"jatuh_tempo"`
	Incentives *intList `json:"insentif"`
	Locations  []string `json:"lokasi"`
	Active     *bool    `json:"active"`
}

type SOPHandler struct {
	log        *logger.Logger
	sopService *services.SOPService
}

func NewSOPHandler(sopService *services.SOPService, baseLog *logger.Logger) *SOPHandler {
	return &SOPHandler{
		log:        baseLog.With("handler", "SOPHandler"),
		sopService: sopService,
	}
}

// GET /api/sop-rules
func (h *SOPHandler) List(c *gin.Context) {
	rules, err := h.sopService.Rules()
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"count": len(rules), "rules": rules})
}

// POST /api/sop-rules
func (h *SOPHandler) Create(c *gin.Context) {
	var req sopCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_BODY", err)
		return
	}
	req.Sales = strings.TrimSpace(req.Sales)
	if req.Sales == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_SALES", errors.New("nama_sales is required"))
		return
	}
	if err := h.sopService.Create(req.Sales, req.DueDay, req.Incentives, req.Locations); err != nil {
		RespondAPIError(c, err)
		return
	}
	h.log.Info("sop rule created", "sales", req.Sales)
	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Aturan SOP untuk %s berhasil dibuat", req.Sales),
	})
}

// PUT /api/sop-rules/:sales
func (h *SOPHandler) Update(c *gin.Context) {
	sales := c.Param("sales")
	var req sopUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_BODY", err)
		return
	}
	upd := sop.RuleUpdate{
		DueDay:    req.DueDay,
		Locations: req.Locations,
		Active:    req.Active,
	}
	if req.Incentives != nil {
		upd.Incentives = *req.Incentives
	}
	if err := h.sopService.Update(sales, upd); err != nil {
		RespondAPIError(c, err)
		return
	}
	h.log.Info("sop rule updated", "sales", sales)
	RespondOK(c, gin.H{
		"message": fmt.Sprintf("Aturan SOP untuk %s berhasil diperbarui", sales),
	})
}

// DELETE /api/sop-rules/:sales
func (h *SOPHandler) Delete(c *gin.Context) {
	sales := c.Param("sales")
	if err := h.sopService.Delete(sales); err != nil {
		RespondAPIError(c, err)
		return
	}
	h.log.Info("sop rule deleted", "sales", sales)
	RespondOK(c, gin.H{
		"message": fmt.Sprintf("Aturan SOP untuk %s berhasil dihapus", sales),
	})
}

// GET /api/violations
func (h *SOPHandler) Validate(c *gin.Context) {
	result, err := h.sopService.Validate()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			RespondError(c, http.StatusNotFound, "NO_DATASET", err)
			return
		}
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, result)
}
