package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/finreports/insightd/internal/dataset"
)

// decodeCSV reads a header row and one record per data row. Empty cells
// become nil, the missing-value sentinel the normalizer expects. A BOM on
// the first header cell is stripped.
func decodeCSV(r io.Reader) ([]*dataset.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read csv header: %w", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		header[i] = h
	}

	var records []*dataset.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read csv row: %w", err)
		}
		rec := dataset.NewRecord()
		for i, h := range header {
			if i >= len(row) || row[i] == "" {
				rec.Set(h, nil)
				continue
			}
			rec.Set(h, row[i])
		}
		records = append(records, rec)
	}
	return records, nil
}
