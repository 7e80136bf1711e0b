package ingest

import "strings"

// Table is a parsed tabular file: trimmed column names plus string cells.
// Rows are padded or truncated to the column count.
type Table struct {
	Columns []string
	Rows    [][]string
}

func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *Table) Cell(row []string, col string) string {
	idx := t.ColumnIndex(col)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// tableFromRaw builds a Table from raw rows where the first row is the
// header. Column names are whitespace-trimmed; data rows are aligned to the
// header width.
func tableFromRaw(raw [][]string) *Table {
	if len(raw) == 0 {
		return &Table{}
	}
	cols := make([]string, len(raw[0]))
	for i, c := range raw[0] {
		cols[i] = strings.TrimSpace(c)
	}
	rows := make([][]string, 0, len(raw)-1)
	for _, r := range raw[1:] {
		row := make([]string, len(cols))
		for i := range cols {
			if i < len(r) {
				row[i] = r[i]
			}
		}
		rows = append(rows, row)
	}
	return &Table{Columns: cols, Rows: rows}
}
