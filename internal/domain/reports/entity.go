package reports

import (
	"time"
)

// FileID identifies one uploaded data file.
type FileID string

// ReportID identifies one generated report.
type ReportID string

// Status enum for report generation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusGenerated Status = "generated"
	StatusFailed    Status = "failed"
)

// DataFile represents an uploaded tabular source. RecordsKey points at the
// normalized record snapshot stashed in the artifact store; every analysis
// re-reads that snapshot.
type DataFile struct {
	ID         FileID    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	RowCount   int       `json:"row_count"`
	RecordsKey string    `json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Aggregate root: Report. PDF and Excel artifacts live in the artifact
// store under PDFKey/ExcelKey; Narrative is the optional AI summary.
type Report struct {
	ID          ReportID  `json:"id"`
	TenantID    string    `json:"tenant_id"`
	DataFileID  FileID    `json:"data_file_id"`
	Title       string    `json:"title"`
	ReportType  string    `json:"report_type"`
	Status      Status    `json:"status"`
	PDFKey      string    `json:"pdf_key,omitempty"`
	ExcelKey    string    `json:"excel_key,omitempty"`
	Narrative   string    `json:"narrative,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Insight is one derived natural-language statement tied to a report.
type Insight struct {
	ID         int64    `json:"id"`
	ReportID   ReportID `json:"report_id"`
	Text       string   `json:"text"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Position   int      `json:"position"`
}

// Visualization is one persisted chart spec; DataJSON carries the full
// renderer-agnostic spec document.
type Visualization struct {
	ID          int64    `json:"id"`
	ReportID    ReportID `json:"report_id"`
	Title       string   `json:"title"`
	ChartType   string   `json:"chart_type"`
	DataJSON    string   `json:"data_json"`
	Description string   `json:"description"`
	Position    int      `json:"position"`
}
