package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/types"
)

// SQLiteService owns the embedded history database.
type SQLiteService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSQLiteService(path string, log *logger.Logger) (*SQLiteService, error) {
	serviceLog := log.With("service", "SQLiteService")

	serviceLog.Info("Opening history database...", "path", path)
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		serviceLog.Error("Failed to open history database", "error", err)
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return &SQLiteService{db: gdb, log: serviceLog}, nil
}

func (s *SQLiteService) AutoMigrateAll() error {
	s.log.Info("Auto migrating history tables...")
	err := s.db.AutoMigrate(
		&types.Snapshot{},
		&types.SalesSnapshot{},
		&types.PackageSnapshot{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for history tables", "error", err)
		return err
	}
	return nil
}

func (s *SQLiteService) DB() *gorm.DB { return s.db }
