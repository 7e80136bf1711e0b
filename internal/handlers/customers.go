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

type CustomerHandler struct {
	log             *logger.Logger
	customerService *services.CustomerService
}

func NewCustomerHandler(customerService *services.CustomerService, baseLog *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		log:             baseLog.With("handler", "CustomerHandler"),
		customerService: customerService,
	}
}

func (h *CustomerHandler) respond(c *gin.Context, payload services.M, err error) {
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

// GET /api/customers
// Optional query filters: status, package, location, sales, search.
func (h *CustomerHandler) List(c *gin.Context) {
	filter := services.CustomerFilter{
		Status:   c.Query("status"),
		Package:  c.Query("package"),
		Location: c.Query("location"),
		Sales:    c.Query("sales"),
		Search:   c.Query("search"),
	}
	payload, err := h.customerService.List(filter)
	h.respond(c, payload, err)
}

// GET /api/psb-check
// Query params: start_date, end_date (YYYY-MM-DD), sales.
func (h *CustomerHandler) PSBCheck(c *gin.Context) {
	payload, err := h.customerService.PSBCheck(
		c.Query("start_date"), c.Query("end_date"), c.Query("sales"))
	h.respond(c, payload, err)
}

// GET /api/blacklist
// Query params: min_months (default 3), sales.
func (h *CustomerHandler) Blacklist(c *gin.Context) {
	minMonths := 3
	if raw := c.Query("min_months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			RespondError(c, http.StatusBadRequest, "BAD_MIN_MONTHS",
				errors.New("min_months must be a positive integer"))
			return
		}
		minMonths = n
	}
	payload, err := h.customerService.Blacklist(minMonths, c.Query("sales"))
	h.respond(c, payload, err)
}

// GET /api/map-data
func (h *CustomerHandler) MapData(c *gin.Context) {
	payload, err := h.customerService.MapData()
	h.respond(c, payload, err)
}

// GET /api/filters
func (h *CustomerHandler) Filters(c *gin.Context) {
	payload, err := h.customerService.Filters()
	h.respond(c, payload, err)
}

// GET /api/locations
func (h *CustomerHandler) Locations(c *gin.Context) {
	payload, err := h.customerService.Locations()
	h.respond(c, payload, err)
}
