package ingest

import (
	"fmt"

	"github.com/nettalink/insights-backend/internal/types"
)

type FileInfo struct {
	FileNum  int    `json:"file_num"`
	Filename string `json:"filename"`
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
}

type MergeStats struct {
	FilesCount           int        `json:"files_count"`
	FileInfo             []FileInfo `json:"file_info"`
	TotalRowsBeforeMerge int        `json:"total_rows_before_merge"`
	TotalRowsAfterMerge  int        `json:"total_rows_after_merge"`
	DuplicatesRemoved    int        `json:"duplicates_removed"`
	FinalRows            int        `json:"final_rows"`
	Columns              int        `json:"columns"`
}

// Merge concatenates tables in input order, then drops rows whose
// business key was already seen (first occurrence wins, so earlier files
// take precedence). Column sets are unioned; missing cells stay empty.
func Merge(tables []*Table) (*Table, *MergeStats, error) {
	if len(tables) == 0 {
		return nil, nil, fmt.Errorf("no tables to merge")
	}

	var columns []string
	seen := map[string]bool{}
	for _, t := range tables {
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	colIdx := make(map[string]int, len(columns))
	for i, c := range columns {
		colIdx[c] = i
	}
	keyIdx, ok := colIdx[types.ColCustomerID]
	if !ok {
		return nil, nil, fmt.Errorf("column %q not found in uploaded files", types.ColCustomerID)
	}

	totalBefore := 0
	seenKeys := map[string]bool{}
	merged := &Table{Columns: columns}
	for _, t := range tables {
		totalBefore += len(t.Rows)
		for _, row := range t.Rows {
			aligned := make([]string, len(columns))
			for i, c := range t.Columns {
				if i < len(row) {
					aligned[colIdx[c]] = row[i]
				}
			}
			key := aligned[keyIdx]
			if seenKeys[key] {
				continue
			}
			seenKeys[key] = true
			merged.Rows = append(merged.Rows, aligned)
		}
	}

	stats := &MergeStats{
		FilesCount:           len(tables),
		TotalRowsBeforeMerge: totalBefore,
		TotalRowsAfterMerge:  len(merged.Rows),
		DuplicatesRemoved:    totalBefore - len(merged.Rows),
		FinalRows:            len(merged.Rows),
		Columns:              len(columns),
	}
	return merged, stats, nil
}
