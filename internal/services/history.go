package services

import (
	"context"
	"time"

	"github.com/nettalink/insights-backend/internal/config"
	"github.com/nettalink/insights-backend/internal/ingest"
	"github.com/nettalink/insights-backend/internal/normalize"
	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/repos"
	"github.com/nettalink/insights-backend/internal/types"
)

// HistoryService captures dashboard snapshots after each upload and serves
// the comparison and trend endpoints on top of the snapshot store.
type HistoryService struct {
	log     *logger.Logger
	cfg     config.Config
	dataset *ingest.Dataset
	repo    repos.SnapshotRepo
}

func NewHistoryService(cfg config.Config, dataset *ingest.Dataset, repo repos.SnapshotRepo, baseLog *logger.Logger) *HistoryService {
	return &HistoryService{
		log:     baseLog.With("service", "HistoryService"),
		cfg:     cfg,
		dataset: dataset,
		repo:    repo,
	}
}

// BuildSnapshot computes the snapshot metrics from the current dataset
// without persisting anything.
func (s *HistoryService) BuildSnapshot(now time.Time) (*types.Snapshot, []types.SalesSnapshot, []types.PackageSnapshot, error) {
	customers, err := s.dataset.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	snap := &types.Snapshot{
		Timestamp:      now,
		UploadDate:     now.Format("2006-01-02"),
		TotalCustomers: len(customers),
	}

	salesAgg := bucketMap{}
	packageAgg := bucketMap{}
	locationRevenue := bucketMap{}
	packages := map[string]bool{}
	psbCutoff := now.AddDate(0, 0, -30)

	for i := range customers {
		c := &customers[i]
		price := normalize.CleanPrice(c.Price)

		if c.Active() {
			snap.ActiveCustomers++
			snap.TotalRevenue += price
			if c.Location != "" {
				locationRevenue.get(c.Location).Revenue += price
			}
		}
		if c.Package != "" {
			packages[c.Package] = true
			b := packageAgg.get(c.Package)
			b.Count++
			if c.Active() {
				b.Revenue += price
			}
		}
		if c.Sales != "" {
			b := salesAgg.get(c.Sales)
			b.Count++
			if c.Active() {
				b.Revenue += price
			}
		}

		issues := 0
		if normalize.IsKTPMissing(c.KTPPhoto, s.cfg.BaseKTPURL) {
			snap.MissingKTPCount++
			issues++
		}
		if normalize.IsPhoneInvalid(c.Phone, s.cfg.MinPhoneDigits) {
			snap.InvalidPhoneCount++
			issues++
		}
		if normalize.IsCoordinateMissing(c.Coordinate) {
			snap.MissingCoordsCount++
			issues++
		}
		if issues > 0 {
			snap.QualityIssuesCount++
		}

		if reg, ok := normalize.ParseFlexibleDate(c.Registration); ok && !reg.Before(psbCutoff) {
			snap.TotalPSBCount++
		}
	}

	snap.InactiveCustomers = snap.TotalCustomers - snap.ActiveCustomers
	snap.TotalPackages = len(packages)
	snap.AvgRevenue = round2(meanOrZero(float64(snap.TotalRevenue), snap.ActiveCustomers))
	snap.ActiveSalesCount = len(salesAgg)

	if top := packageAgg.sortedBy(byCountDesc, 1); len(top) > 0 {
		snap.TopPackage = top[0].Name
		snap.TopPackageCount = top[0].Count
	}
	if top := locationRevenue.sortedBy(byRevenueDesc, 1); len(top) > 0 {
		snap.TopLocation = top[0].Name
		snap.TopLocationRevenue = top[0].Revenue
	}

	salesRows := make([]types.SalesSnapshot, 0, len(salesAgg))
	for _, b := range salesAgg.sortedBy(byRevenueDesc, 0) {
		salesRows = append(salesRows, types.SalesSnapshot{
			SalesName:     b.Name,
			CustomerCount: b.Count,
			Revenue:       b.Revenue,
			AvgRevenue:    round2(meanOrZero(float64(b.Revenue), b.Count)),
		})
	}
	packageRows := make([]types.PackageSnapshot, 0, len(packageAgg))
	for _, b := range packageAgg.sortedBy(byRevenueDesc, 0) {
		packageRows = append(packageRows, types.PackageSnapshot{
			PackageName:   b.Name,
			CustomerCount: b.Count,
			Revenue:       b.Revenue,
			AvgRevenue:    round2(meanOrZero(float64(b.Revenue), b.Count)),
		})
	}

	return snap, salesRows, packageRows, nil
}

// SaveSnapshot builds and persists today's snapshot with its breakdowns.
func (s *HistoryService) SaveSnapshot(ctx context.Context) (*types.Snapshot, error) {
	snap, salesRows, packageRows, err := s.BuildSnapshot(time.Now())
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.Save(ctx, snap)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveSalesBreakdown(ctx, saved.ID, salesRows); err != nil {
		return nil, err
	}
	if err := s.repo.SavePackageBreakdown(ctx, saved.ID, packageRows); err != nil {
		return nil, err
	}
	s.log.Info("snapshot saved", "date", saved.UploadDate, "customers", saved.TotalCustomers)
	return saved, nil
}

// List returns the most recent snapshots, newest first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]types.Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	return s.repo.List(ctx, limit)
}

// GetByDate returns the snapshot for one date, nil when none exists.
func (s *HistoryService) GetByDate(ctx context.Context, date string) (*types.Snapshot, error) {
	return s.repo.GetByDate(ctx, date)
}

// Compare diffs the metrics of two snapshot dates.
func (s *HistoryService) Compare(ctx context.Context, date1, date2 string) (M, error) {
	snap1, err := s.repo.GetByDate(ctx, date1)
	if err != nil {
		return nil, err
	}
	snap2, err := s.repo.GetByDate(ctx, date2)
	if err != nil {
		return nil, err
	}
	if snap1 == nil || snap2 == nil {
		return nil, nil
	}

	return M{
		"snapshot1": snap1,
		"snapshot2": snap2,
		"changes": M{
			"customers":        calcChange(snap1.TotalCustomers, snap2.TotalCustomers),
			"active_customers": calcChange(snap1.ActiveCustomers, snap2.ActiveCustomers),
			"revenue":          calcChange(snap1.TotalRevenue, snap2.TotalRevenue),
			"quality_issues":   calcChange(snap1.QualityIssuesCount, snap2.QualityIssuesCount),
		},
	}, nil
}

// calcChange reports old, new, absolute and percentage change. From zero,
// any growth reads as 100% and staying at zero as 0%.
func calcChange(prev, curr int) M {
	pct := 0.0
	switch {
	case prev != 0:
		pct = round2((float64(curr) - float64(prev)) / float64(prev) * 100)
	case curr != 0:
		pct = 100
	}
	return M{
		"old":        prev,
		"new":        curr,
		"change":     curr - prev,
		"change_pct": pct,
	}
}

// Trend returns snapshots oldest first with day-over-day deltas attached.
func (s *HistoryService) Trend(ctx context.Context, days int) (M, error) {
	if days <= 0 {
		days = 30
	}
	snaps, err := s.repo.Trend(ctx, days)
	if err != nil {
		return nil, err
	}

	points := []M{}
	for i, snap := range snaps {
		p := M{
			"upload_date":      snap.UploadDate,
			"total_customers":  snap.TotalCustomers,
			"active_customers": snap.ActiveCustomers,
			"total_revenue":    snap.TotalRevenue,
			"quality_issues":   snap.QualityIssuesCount,
		}
		if i > 0 {
			p["customer_change"] = snap.TotalCustomers - snaps[i-1].TotalCustomers
			p["revenue_change"] = snap.TotalRevenue - snaps[i-1].TotalRevenue
		}
		points = append(points, p)
	}

	return M{
		"days":  days,
		"count": len(points),
		"trend": points,
	}, nil
}

// Cleanup trims the store down to the keepCount most recent snapshots.
func (s *HistoryService) Cleanup(ctx context.Context, keepCount int) (int64, error) {
	if keepCount <= 0 {
		keepCount = 30
	}
	return s.repo.Cleanup(ctx, keepCount)
}
