package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	content := "ID Pelanggan,Nama Pelanggan,Harga\nC001,Andi,150000\nC002,Budi,100000\n"
	path := writeFile(t, t.TempDir(), "export.csv", content)

	table, err := NewReader(testLogger(t)).Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows: got=%d want=2", len(table.Rows))
	}
	if got := table.Cell(table.Rows[0], types.ColCustomerID); got != "C001" {
		t.Fatalf("key cell: got=%q want=C001", got)
	}
}

func TestReadCSVWithBOM(t *testing.T) {
	t.Parallel()

	content := "\xEF\xBB\xBFID Pelanggan,Nama Pelanggan\nC001,Andi\n"
	path := writeFile(t, t.TempDir(), "export.csv", content)

	table, err := NewReader(testLogger(t)).Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if table.Columns[0] != types.ColCustomerID {
		t.Fatalf("BOM not stripped from first column: %q", table.Columns[0])
	}
}

func TestReadCSVLatin1(t *testing.T) {
	t.Parallel()

	// "José" with an ISO 8859-1 e-acute (0xE9), not valid UTF-8.
	content := "ID Pelanggan,Nama Pelanggan\nC001,Jos\xE9\n"
	path := writeFile(t, t.TempDir(), "export.csv", content)

	table, err := NewReader(testLogger(t)).Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := table.Cell(table.Rows[0], "Nama Pelanggan"); got != "José" {
		t.Fatalf("latin-1 decode: got=%q want=José", got)
	}
}

func TestReadCSVSkipsBannerRows(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"Laporan Pelanggan WiFi",
		"Dicetak: 2025-06-01",
		"ID Pelanggan,Nama Pelanggan,Harga",
		"C001,Andi,150000",
	}, "\n")
	path := writeFile(t, t.TempDir(), "export.csv", content)

	table, err := NewReader(testLogger(t)).Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if table.ColumnIndex(types.ColCustomerID) != 0 {
		t.Fatalf("header row not detected, columns: %v", table.Columns)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("rows: got=%d want=1", len(table.Rows))
	}
}

func TestReadMissingKeyColumn(t *testing.T) {
	t.Parallel()

	content := "Customer ID,Nama\nC001,Andi\n"
	path := writeFile(t, t.TempDir(), "export.csv", content)

	_, err := NewReader(testLogger(t)).Read(path)
	if err == nil {
		t.Fatalf("expected missing key column error")
	}
	if !strings.Contains(err.Error(), "Customer ID") {
		t.Fatalf("error should name similar columns: %v", err)
	}
}

func TestReadUnsupportedFormat(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "export.txt", "whatever")
	if _, err := NewReader(testLogger(t)).Read(path); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func tableOf(cols []string, rows ...[]string) *Table {
	return &Table{Columns: cols, Rows: rows}
}

func TestMergeDeduplicates(t *testing.T) {
	t.Parallel()

	t1 := tableOf([]string{"ID Pelanggan", "Nama Pelanggan"},
		[]string{"C001", "Andi"},
		[]string{"C002", "Budi"},
	)
	t2 := tableOf([]string{"ID Pelanggan", "Nama Pelanggan"},
		[]string{"C002", "Budi (duplikat)"},
		[]string{"C003", "Citra"},
	)

	merged, stats, err := Merge([]*Table{t1, t2})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if stats.TotalRowsBeforeMerge != 4 || stats.FinalRows != 3 || stats.DuplicatesRemoved != 1 {
		t.Fatalf("stats: %+v", stats)
	}
	// First occurrence wins: C002 keeps the first file's name.
	if got := merged.Cell(merged.Rows[1], "Nama Pelanggan"); got != "Budi" {
		t.Fatalf("dedup kept wrong row: got=%q want=Budi", got)
	}
}

func TestMergeUnionsColumns(t *testing.T) {
	t.Parallel()

	t1 := tableOf([]string{"ID Pelanggan", "Nama Pelanggan"}, []string{"C001", "Andi"})
	t2 := tableOf([]string{"ID Pelanggan", "Harga"}, []string{"C002", "150000"})

	merged, _, err := Merge([]*Table{t1, t2})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(merged.Columns) != 3 {
		t.Fatalf("columns: got=%v", merged.Columns)
	}
	if got := merged.Cell(merged.Rows[0], "Harga"); got != "" {
		t.Fatalf("missing cell should stay empty, got=%q", got)
	}
	if got := merged.Cell(merged.Rows[1], "Harga"); got != "150000" {
		t.Fatalf("aligned cell: got=%q want=150000", got)
	}
}

func TestMergeRequiresKeyColumn(t *testing.T) {
	t.Parallel()

	t1 := tableOf([]string{"Nama Pelanggan"}, []string{"Andi"})
	if _, _, err := Merge([]*Table{t1}); err == nil {
		t.Fatalf("expected error for missing key column")
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ds := NewDataset(filepath.Join(dir, "data.csv"), testLogger(t))

	table := tableOf(
		[]string{"ID Pelanggan", "Nama Pelanggan", "Status Langganan"},
		[]string{"C001", "Andi", "On"},
		[]string{"", "tanpa kunci", "On"},
	)

	backup, err := ds.Save(table)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if backup != "" {
		t.Fatalf("first save should not back up, got=%q", backup)
	}

	// The canonical file carries a BOM for the source tooling.
	data, err := os.ReadFile(ds.Path())
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasPrefix(string(data), "\xEF\xBB\xBF") {
		t.Fatalf("dataset file missing BOM")
	}

	customers, err := ds.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// The keyless row is dropped on load.
	if len(customers) != 1 {
		t.Fatalf("customers: got=%d want=1", len(customers))
	}
	if customers[0].CustomerID != "C001" || customers[0].Status != "On" {
		t.Fatalf("customer: %+v", customers[0])
	}

	backup, err = ds.Save(table)
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if backup == "" {
		t.Fatalf("second save should create a backup")
	}
	if !strings.Contains(filepath.Base(backup), "data_backup_") {
		t.Fatalf("backup name: got=%q", backup)
	}
	if _, err := os.Stat(backup); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}
}
