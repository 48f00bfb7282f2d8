package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/finreports/insightd/internal/dataset"
)

// decodeExcel reads the first sheet of a workbook: first row as header,
// every following row as one record. Cells come back as display strings;
// blank cells and short rows become nil values.
func decodeExcel(r io.Reader) ([]*dataset.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("ingest: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("ingest: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("ingest: sheet %q is empty", sheets[0])
	}

	header := rows[0]
	var records []*dataset.Record
	for _, row := range rows[1:] {
		rec := dataset.NewRecord()
		for i, h := range header {
			if h == "" {
				continue
			}
			if i >= len(row) || row[i] == "" {
				rec.Set(h, nil)
				continue
			}
			rec.Set(h, row[i])
		}
		if rec.Len() > 0 {
			records = append(records, rec)
		}
	}
	return records, nil
}
