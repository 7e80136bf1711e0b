package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/types"
)

// Dataset owns the canonical on-disk dataset: a single CSV written with a
// UTF-8 byte-order mark so the source billing tools can round-trip it.
// Saves are backup-then-overwrite; the file is never partially written.
type Dataset struct {
	path string
	log  *logger.Logger
}

func NewDataset(path string, log *logger.Logger) *Dataset {
	return &Dataset{path: path, log: log.With("component", "ingest.Dataset")}
}

func (d *Dataset) Path() string { return d.path }

func (d *Dataset) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// Save backs up any existing canonical file under a timestamped name, then
// writes the table. Returns the backup path, empty when nothing existed.
func (d *Dataset) Save(t *Table) (string, error) {
	backup := ""
	if d.Exists() {
		base := strings.TrimSuffix(d.path, ".csv")
		backup = fmt.Sprintf("%s_backup_%s.csv", base, time.Now().Format("20060102_150405"))
		if err := copyFile(d.path, backup); err != nil {
			return "", fmt.Errorf("backup failed: %w", err)
		}
		d.log.Info("backup created", "backup", backup)
	}

	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return "", err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	if err := os.WriteFile(d.path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing dataset: %w", err)
	}
	d.log.Info("dataset saved", "rows", len(t.Rows), "columns", len(t.Columns))
	return backup, nil
}

// LoadTable reads the canonical dataset back as a raw table.
func (d *Dataset) LoadTable() (*Table, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	raw, err := parseCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}
	return tableFromRaw(raw), nil
}

// Load parses the canonical dataset into typed customer records. This is
// the single point where loose export columns become struct fields; rows
// without a business key are dropped here.
func (d *Dataset) Load() ([]types.Customer, error) {
	t, err := d.LoadTable()
	if err != nil {
		return nil, err
	}
	customers := make([]types.Customer, 0, len(t.Rows))
	for _, row := range t.Rows {
		c := types.Customer{
			No:             t.Cell(row, types.ColNo),
			CustomerID:     strings.TrimSpace(t.Cell(row, types.ColCustomerID)),
			Name:           t.Cell(row, types.ColName),
			Phone:          t.Cell(row, types.ColPhone),
			Package:        t.Cell(row, types.ColPackage),
			Price:          t.Cell(row, types.ColPrice),
			Status:         strings.TrimSpace(t.Cell(row, types.ColStatus)),
			Location:       strings.TrimSpace(t.Cell(row, types.ColLocation)),
			Sales:          strings.TrimSpace(t.Cell(row, types.ColSales)),
			Registration:   t.Cell(row, types.ColRegistration),
			LastPayment:    t.Cell(row, types.ColLastPayment),
			DueDay:         t.Cell(row, types.ColDueDay),
			Incentive:      t.Cell(row, types.ColIncentive),
			IncentiveMode:  t.Cell(row, types.ColIncentiveMode),
			KTPPhoto:       t.Cell(row, types.ColKTPPhoto),
			Coordinate:     t.Cell(row, types.ColCoordinate),
			Address:        t.Cell(row, types.ColAddress),
			ConnectionType: t.Cell(row, types.ColConnectionType),
			Router:         t.Cell(row, types.ColRouter),
		}
		if c.CustomerID == "" {
			continue
		}
		customers = append(customers, c)
	}
	return customers, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
