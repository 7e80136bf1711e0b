package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/types"
)

// headerSniffRows is how many leading raw rows are scanned for the
// business-key column marker.
const headerSniffRows = 10

// Reader parses an uploaded export of unknown exact layout. Files are
// routinely mislabeled (an .xls that is really a CSV, a CSV exported with a
// BOM, two banner rows above the real header), so reading is a fallback
// chain that stops at the first strategy that works.
type Reader struct {
	log *logger.Logger
}

func NewReader(log *logger.Logger) *Reader {
	return &Reader{log: log.With("component", "ingest.Reader")}
}

type readStrategy struct {
	name string
	read func(path string) ([][]string, error)
}

func strategiesFor(ext string) []readStrategy {
	csvUTF8 := readStrategy{"csv (utf-8-sig)", readCSVUTF8}
	csvLatin1 := readStrategy{"csv (latin-1)", readCSVLatin1}
	xlsxStrat := readStrategy{"excelize", readXLSX}
	xlsStrat := readStrategy{"xls", readXLS}

	switch ext {
	case "csv":
		return []readStrategy{csvUTF8, csvLatin1}
	case "xlsx":
		// Mislabeled spreadsheets are common enough that CSV is a real
		// fallback, not a corruption case.
		return []readStrategy{xlsxStrat, csvUTF8}
	case "xls":
		return []readStrategy{xlsStrat, xlsxStrat, csvUTF8}
	default:
		return nil
	}
}

// Read parses the file at path into a Table, or returns a descriptive
// error naming every strategy that failed.
func (r *Reader) Read(path string) (*Table, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	strategies := strategiesFor(ext)
	if strategies == nil {
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}

	headerRow := r.findHeaderRow(path, strategies)
	r.log.Debug("header row detected", "path", filepath.Base(path), "row", headerRow)

	var raw [][]string
	var attemptErrs []string
	for _, s := range strategies {
		rows, err := s.read(path)
		if err != nil {
			attemptErrs = append(attemptErrs, fmt.Sprintf("%s: %v", s.name, err))
			continue
		}
		raw = rows
		r.log.Debug("read ok", "strategy", s.name, "rows", len(rows))
		break
	}
	if raw == nil {
		return nil, fmt.Errorf("unable to read file %s: %s", filepath.Base(path), strings.Join(attemptErrs, "; "))
	}

	if headerRow < len(raw) {
		raw = raw[headerRow:]
	}
	table := tableFromRaw(raw)

	if table.ColumnIndex(types.ColCustomerID) < 0 {
		return nil, missingKeyColumnError(table.Columns)
	}
	return table, nil
}

// findHeaderRow scans the first few raw rows for the business-key column
// name and returns its index, or 0 when no row matches.
func (r *Reader) findHeaderRow(path string, strategies []readStrategy) int {
	var raw [][]string
	for _, s := range strategies {
		rows, err := s.read(path)
		if err != nil {
			continue
		}
		raw = rows
		break
	}
	for i, row := range raw {
		if i >= headerSniffRows {
			break
		}
		for _, cell := range row {
			if strings.Contains(cell, types.ColCustomerID) {
				return i
			}
		}
	}
	return 0
}

// missingKeyColumnError reports the absent business-key column together
// with near matches, or the available columns when nothing resembles it.
func missingKeyColumnError(columns []string) error {
	var similar []string
	for _, c := range columns {
		upper := strings.ToUpper(c)
		if strings.Contains(upper, "ID") || strings.Contains(upper, "PELANGGAN") || strings.Contains(upper, "CUSTOMER") {
			similar = append(similar, c)
		}
	}
	if len(similar) > 0 {
		if len(similar) > 5 {
			similar = similar[:5]
		}
		return fmt.Errorf("column %q not found; similar columns: %s", types.ColCustomerID, strings.Join(similar, ", "))
	}
	avail := columns
	if len(avail) > 10 {
		avail = avail[:10]
	}
	return fmt.Errorf("column %q not found; available columns: %s", types.ColCustomerID, strings.Join(avail, ", "))
}

func readCSVUTF8(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	// encoding/csv passes invalid bytes through, so a legacy-encoded file
	// would otherwise "succeed" here with mojibake instead of reaching the
	// latin-1 strategy.
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("not valid utf-8")
	}
	return parseCSV(bytes.NewReader(data))
}

func readCSVLatin1(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(charmap.ISO8859_1.NewDecoder().Reader(f))
}

func parseCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	return rows, nil
}

func readXLS(path string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}
	rows := wb.ReadAllCells(1 << 20)
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook is empty")
	}
	return rows, nil
}
