package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nettalink/insights-backend/internal/config"
	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/services"
)

var allowedUploadExts = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

type UploadHandler struct {
	log           *logger.Logger
	cfg           config.Config
	uploadService *services.UploadService
}

func NewUploadHandler(cfg config.Config, uploadService *services.UploadService, baseLog *logger.Logger) *UploadHandler {
	return &UploadHandler{
		log:           baseLog.With("handler", "UploadHandler"),
		cfg:           cfg,
		uploadService: uploadService,
	}
}

// POST /api/upload
// Accepts one or more export files under the "files" multipart field.
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_MULTIPART", err)
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		RespondError(c, http.StatusBadRequest, "NO_FILES", fmt.Errorf("no files in request"))
		return
	}

	var stored []services.UploadFile
	defer func() {
		for _, f := range stored {
			if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
				h.log.Warn("temp file cleanup failed", "path", f.Path, "error", err)
			}
		}
	}()

	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !allowedUploadExts[ext] {
			RespondError(c, http.StatusBadRequest, "UNSUPPORTED_TYPE",
				fmt.Errorf("file %q: unsupported type %q, use csv, xlsx or xls", fh.Filename, ext))
			return
		}
		if fh.Size > h.cfg.MaxUploadBytes {
			RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
				fmt.Errorf("file %q exceeds %d bytes", fh.Filename, h.cfg.MaxUploadBytes))
			return
		}

		tmpPath := filepath.Join(h.cfg.UploadDir, uuid.NewString()+ext)
		if err := c.SaveUploadedFile(fh, tmpPath); err != nil {
			RespondError(c, http.StatusInternalServerError, "SAVE_FAILED", err)
			return
		}
		stored = append(stored, services.UploadFile{Path: tmpPath, Filename: fh.Filename})
	}

	result, err := h.uploadService.Process(c.Request.Context(), stored)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, result)
}
