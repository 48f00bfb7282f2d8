// Package ingest turns uploaded CSV, Excel and JSON payloads into the
// record shape the analysis engine consumes. Unsupported or undecodable
// input is a hard failure; everything downstream degrades gracefully.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/finreports/insightd/internal/dataset"
)

// ErrUnsupportedFormat is returned for a file type no decoder handles.
var ErrUnsupportedFormat = errors.New("ingest: unsupported file format")

// Format extracts the lowercased extension of a filename, without the dot.
func Format(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// ValidExtension reports whether the filename carries one of the allowed
// extensions.
func ValidExtension(filename string, allowed map[string]bool) bool {
	f := Format(filename)
	return f != "" && allowed[f]
}

// Decode reads the payload according to the format hint ("csv", "xlsx",
// "xls", "json") and returns raw records ready for normalization.
func Decode(r io.Reader, format string) ([]*dataset.Record, error) {
	switch strings.ToLower(format) {
	case "csv":
		return decodeCSV(r)
	case "xlsx", "xls":
		return decodeExcel(r)
	case "json":
		return decodeJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
