package repos

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nettalink/insights-backend/internal/db"
	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/types"
)

func testRepo(t *testing.T) SnapshotRepo {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	// A named shared-cache memory DB: plain :memory: would give every
	// pooled connection its own empty database.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	svc, err := db.NewSQLiteService(dsn, log)
	if err != nil {
		t.Fatalf("sqlite init: %v", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSnapshotRepo(svc.DB(), log)
}

func snapshotFor(date string, customers int) *types.Snapshot {
	return &types.Snapshot{
		Timestamp:       time.Now(),
		UploadDate:      date,
		TotalCustomers:  customers,
		ActiveCustomers: customers,
		TotalRevenue:    customers * 150000,
	}
}

func TestSnapshotSaveUpsertsByDate(t *testing.T) {
	t.Parallel()

	repo := testRepo(t)
	ctx := context.Background()

	first, err := repo.Save(ctx, snapshotFor("2025-06-01", 100))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Same date replaces, same row.
	second, err := repo.Save(ctx, snapshotFor("2025-06-01", 120))
	if err != nil {
		t.Fatalf("Save again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created new row: first=%d second=%d", first.ID, second.ID)
	}
	if second.TotalCustomers != 120 {
		t.Fatalf("upsert did not update: got=%d want=120", second.TotalCustomers)
	}

	snaps, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("rows: got=%d want=1", len(snaps))
	}
}

func TestSnapshotGetByDate(t *testing.T) {
	t.Parallel()

	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.Save(ctx, snapshotFor("2025-06-01", 100)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, err := repo.GetByDate(ctx, "2025-06-01")
	if err != nil {
		t.Fatalf("GetByDate: %v", err)
	}
	if snap == nil || snap.TotalCustomers != 100 {
		t.Fatalf("snapshot: %+v", snap)
	}

	// A missing date is nil, not an error.
	snap, err = repo.GetByDate(ctx, "1999-01-01")
	if err != nil {
		t.Fatalf("GetByDate missing: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil for missing date, got %+v", snap)
	}
}

func TestSnapshotListAndTrendOrder(t *testing.T) {
	t.Parallel()

	repo := testRepo(t)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		date := fmt.Sprintf("2025-06-%02d", day)
		if _, err := repo.Save(ctx, snapshotFor(date, 100+day)); err != nil {
			t.Fatalf("Save %s: %v", date, err)
		}
	}

	snaps, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if snaps[0].UploadDate != "2025-06-03" {
		t.Fatalf("List should be newest first, got=%q", snaps[0].UploadDate)
	}

	trend, err := repo.Trend(ctx, 10)
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if trend[0].UploadDate != "2025-06-01" {
		t.Fatalf("Trend should be oldest first, got=%q", trend[0].UploadDate)
	}
}

func TestSnapshotBreakdownsReplaced(t *testing.T) {
	t.Parallel()

	repo := testRepo(t)
	ctx := context.Background()

	snap, err := repo.Save(ctx, snapshotFor("2025-06-01", 100))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	rows := []types.SalesSnapshot{
		{SalesName: "Sales A", CustomerCount: 60, Revenue: 9000000},
		{SalesName: "Sales B", CustomerCount: 40, Revenue: 6000000},
	}
	if err := repo.SaveSalesBreakdown(ctx, snap.ID, rows); err != nil {
		t.Fatalf("SaveSalesBreakdown: %v", err)
	}
	// A second save replaces, not appends.
	if err := repo.SaveSalesBreakdown(ctx, snap.ID, rows[:1]); err != nil {
		t.Fatalf("SaveSalesBreakdown again: %v", err)
	}

	pkgRows := []types.PackageSnapshot{
		{PackageName: "Home 20M", CustomerCount: 100, Revenue: 15000000},
	}
	if err := repo.SavePackageBreakdown(ctx, snap.ID, pkgRows); err != nil {
		t.Fatalf("SavePackageBreakdown: %v", err)
	}
}

func TestSnapshotCleanup(t *testing.T) {
	t.Parallel()

	repo := testRepo(t)
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		date := fmt.Sprintf("2025-06-%02d", day)
		if _, err := repo.Save(ctx, snapshotFor(date, 100)); err != nil {
			t.Fatalf("Save %s: %v", date, err)
		}
	}

	deleted, err := repo.Cleanup(ctx, 3)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted: got=%d want=2", deleted)
	}

	snaps, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(snaps) != 3 || snaps[len(snaps)-1].UploadDate != "2025-06-03" {
		t.Fatalf("cleanup kept wrong rows: %d remaining", len(snaps))
	}
}
