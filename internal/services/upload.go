package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nettalink/insights-backend/internal/ingest"
	"github.com/nettalink/insights-backend/internal/platform/apierr"
	"github.com/nettalink/insights-backend/internal/platform/logger"
)

// UploadFile pairs a stored temp path with the name the client uploaded
// under. The extension of Filename decides the parse strategies.
type UploadFile struct {
	Path     string
	Filename string
}

// UploadService turns one or more raw export files into the new canonical
// dataset: parse each, merge with key-based dedup, back up the previous
// dataset, write the merged one, then snapshot the result.
type UploadService struct {
	log     *logger.Logger
	reader  *ingest.Reader
	dataset *ingest.Dataset
	history *HistoryService
}

func NewUploadService(reader *ingest.Reader, dataset *ingest.Dataset, history *HistoryService, baseLog *logger.Logger) *UploadService {
	return &UploadService{
		log:     baseLog.With("service", "UploadService"),
		reader:  reader,
		dataset: dataset,
		history: history,
	}
}

// Process ingests the uploaded files and replaces the canonical dataset.
// The whole batch fails if any single file fails to parse; the previous
// dataset stays untouched in that case.
func (s *UploadService) Process(ctx context.Context, files []UploadFile) (M, error) {
	if len(files) == 0 {
		return nil, apierr.Newf(400, "NO_FILES", "no files provided")
	}

	tables := make([]*ingest.Table, 0, len(files))
	infos := make([]ingest.FileInfo, 0, len(files))
	for i, f := range files {
		t, err := s.reader.Read(f.Path)
		if err != nil {
			return nil, apierr.Newf(400, "PARSE_FAILED",
				"file %q: %w", filepath.Base(f.Filename), err)
		}
		tables = append(tables, t)
		infos = append(infos, ingest.FileInfo{
			FileNum:  i + 1,
			Filename: filepath.Base(f.Filename),
			Rows:     len(t.Rows),
			Columns:  len(t.Columns),
		})
		s.log.Info("file parsed", "filename", f.Filename, "rows", len(t.Rows))
	}

	merged, stats, err := ingest.Merge(tables)
	if err != nil {
		return nil, apierr.New(400, "MERGE_FAILED", err)
	}
	stats.FileInfo = infos

	backup, err := s.dataset.Save(merged)
	if err != nil {
		return nil, apierr.New(500, "SAVE_FAILED", err)
	}

	result := M{
		"message":     fmt.Sprintf("%d file berhasil diproses", len(files)),
		"merge_stats": stats,
	}
	if backup != "" {
		result["backup_file"] = filepath.Base(backup)
	}

	// Snapshot failure must not fail the upload; the dataset is already
	// written.
	if snap, err := s.history.SaveSnapshot(ctx); err != nil {
		s.log.Warn("snapshot after upload failed", "error", err)
	} else {
		result["snapshot_date"] = snap.UploadDate
	}

	return result, nil
}
