package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/types"
)

type SnapshotRepo interface {
	Save(ctx context.Context, snap *types.Snapshot) (*types.Snapshot, error)
	SaveSalesBreakdown(ctx context.Context, snapshotID uint, rows []types.SalesSnapshot) error
	SavePackageBreakdown(ctx context.Context, snapshotID uint, rows []types.PackageSnapshot) error
	List(ctx context.Context, limit int) ([]types.Snapshot, error)
	GetByDate(ctx context.Context, date string) (*types.Snapshot, error)
	Trend(ctx context.Context, days int) ([]types.Snapshot, error)
	Cleanup(ctx context.Context, keepCount int) (int64, error)
}

type snapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	return &snapshotRepo{db: db, log: baseLog.With("repo", "SnapshotRepo")}
}

// Save upserts by upload_date: one snapshot per calendar day, a second
// save on the same date replaces the first.
func (sr *snapshotRepo) Save(ctx context.Context, snap *types.Snapshot) (*types.Snapshot, error) {
	err := sr.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "upload_date"}},
			UpdateAll: true,
		}).
		Create(snap).Error
	if err != nil {
		return nil, err
	}
	// Re-read by date: on conflict the inserted struct keeps a stale ID.
	var saved types.Snapshot
	if err := sr.db.WithContext(ctx).Where("upload_date = ?", snap.UploadDate).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (sr *snapshotRepo) SaveSalesBreakdown(ctx context.Context, snapshotID uint, rows []types.SalesSnapshot) error {
	if err := sr.db.WithContext(ctx).Where("snapshot_id = ?", snapshotID).Delete(&types.SalesSnapshot{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].SnapshotID = snapshotID
	}
	return sr.db.WithContext(ctx).Create(&rows).Error
}

func (sr *snapshotRepo) SavePackageBreakdown(ctx context.Context, snapshotID uint, rows []types.PackageSnapshot) error {
	if err := sr.db.WithContext(ctx).Where("snapshot_id = ?", snapshotID).Delete(&types.PackageSnapshot{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].SnapshotID = snapshotID
	}
	return sr.db.WithContext(ctx).Create(&rows).Error
}

func (sr *snapshotRepo) List(ctx context.Context, limit int) ([]types.Snapshot, error) {
	var results []types.Snapshot
	if err := sr.db.WithContext(ctx).
		Order("upload_date DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *snapshotRepo) GetByDate(ctx context.Context, date string) (*types.Snapshot, error) {
	var snap types.Snapshot
	err := sr.db.WithContext(ctx).Where("upload_date = ?", date).First(&snap).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (sr *snapshotRepo) Trend(ctx context.Context, days int) ([]types.Snapshot, error) {
	var results []types.Snapshot
	if err := sr.db.WithContext(ctx).
		Order("upload_date ASC").
		Limit(days).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Cleanup deletes everything but the keepCount most recent snapshots.
func (sr *snapshotRepo) Cleanup(ctx context.Context, keepCount int) (int64, error) {
	var keepIDs []uint
	if err := sr.db.WithContext(ctx).
		Model(&types.Snapshot{}).
		Order("upload_date DESC").
		Limit(keepCount).
		Pluck("id", &keepIDs).Error; err != nil {
		return 0, err
	}
	if len(keepIDs) == 0 {
		return 0, nil
	}
	res := sr.db.WithContext(ctx).
		Where("id NOT IN ?", keepIDs).
		Delete(&types.Snapshot{})
	if res.Error != nil {
		return 0, res.Error
	}
	sr.log.Info("snapshots cleaned up", "deleted", res.RowsAffected, "kept", keepCount)
	return res.RowsAffected, nil
}
