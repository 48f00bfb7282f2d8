package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/finreports/insightd/internal/dataset"
)

// decodeJSON accepts three document shapes: a top-level array of objects, an
// envelope object whose "data" field holds an array, and a bare object which
// becomes a one-record set. Key order of each object is preserved.
func decodeJSON(r io.Reader) ([]*dataset.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: read json: %w", err)
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("ingest: empty json payload")
	}

	switch trimmed[0] {
	case '[':
		return decodeJSONArray(trimmed)
	case '{':
		// Envelope with a "data" array, otherwise a single record.
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("ingest: parse json object: %w", err)
		}
		if len(envelope.Data) > 0 && bytes.TrimLeft(envelope.Data, " \t\r\n")[0] == '[' {
			return decodeJSONArray(envelope.Data)
		}
		rec := dataset.NewRecord()
		if err := rec.UnmarshalJSON(trimmed); err != nil {
			return nil, fmt.Errorf("ingest: parse json record: %w", err)
		}
		return []*dataset.Record{rec}, nil
	default:
		return nil, fmt.Errorf("ingest: json payload must be an object or array")
	}
}

func decodeJSONArray(data []byte) ([]*dataset.Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ingest: parse json array: %w", err)
	}
	records := make([]*dataset.Record, 0, len(raw))
	for i, el := range raw {
		rec := dataset.NewRecord()
		if err := rec.UnmarshalJSON(el); err != nil {
			return nil, fmt.Errorf("ingest: parse json element %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
