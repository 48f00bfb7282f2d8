package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finreports/insightd/internal/application"
	"github.com/finreports/insightd/internal/charts"
	"github.com/finreports/insightd/internal/dataset"
	domain "github.com/finreports/insightd/internal/domain/reports"
	"github.com/finreports/insightd/internal/ingest"
	"github.com/finreports/insightd/internal/insights"
	"github.com/finreports/insightd/internal/render"
)

const (
	contentTypeJSON = "application/json"
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// Confidence recorded for heuristic insights; the engine does not
	// score individual statements.
	defaultConfidence = 0.85
)

// Service implements the report use-cases. It is safe for concurrent use;
// every invocation works on its own record-set snapshot.
type Service struct {
	Files     domain.FileRepository
	Reports   domain.Repository
	Artifacts domain.ArtifactStore
	Clock     application.Clock

	// AllowedExtensions gates uploads; lowercased extensions without dot.
	AllowedExtensions map[string]bool
}

//
// ==== USE CASES ====
//

type UploadFileCommand struct {
	TenantID string
	Filename string
	Size     int64
	Data     io.Reader
}

type UploadFileResult struct {
	ID             domain.FileID `json:"id"`
	Filename       string        `json:"filename"`
	FileType       string        `json:"file_type"`
	RowCount       int           `json:"row_count"`
	NumericFields  []string      `json:"numeric_fields"`
	DateFields     []string      `json:"date_fields"`
	CategoryFields []string      `json:"category_fields"`
}

// UploadFile validates, decodes and normalizes an uploaded data file, then
// stashes the normalized records as a JSON snapshot in the artifact store
// and persists the file row. Later analyses re-read the snapshot.
func (s *Service) UploadFile(ctx context.Context, cmd UploadFileCommand) (UploadFileResult, error) {
	if !ingest.ValidExtension(cmd.Filename, s.AllowedExtensions) {
		return UploadFileResult{}, fmt.Errorf("%w: file type not allowed: %s", domain.ErrInvalidInput, cmd.Filename)
	}

	raw, err := ingest.Decode(cmd.Data, ingest.Format(cmd.Filename))
	if err != nil {
		return UploadFileResult{}, err
	}
	records := dataset.Normalize(raw)

	snapshot, err := json.Marshal(records)
	if err != nil {
		return UploadFileResult{}, fmt.Errorf("marshal records: %w", err)
	}

	id := domain.FileID(uuid.New().String())
	key := fmt.Sprintf("%s/files/%s/records.json", cmd.TenantID, id)
	if _, err := s.Artifacts.UploadBytes(ctx, key, snapshot, contentTypeJSON); err != nil {
		return UploadFileResult{}, fmt.Errorf("stash records: %w", err)
	}

	file := &domain.DataFile{
		ID:         id,
		TenantID:   cmd.TenantID,
		Filename:   cmd.Filename,
		FileType:   ingest.Format(cmd.Filename),
		FileSize:   cmd.Size,
		RowCount:   len(records),
		RecordsKey: key,
		UploadedAt: s.Clock.Now(),
	}
	if err := s.Files.SaveFile(ctx, file); err != nil {
		return UploadFileResult{}, err
	}

	fields := dataset.ClassifyFields(records)
	return UploadFileResult{
		ID:             id,
		Filename:       file.Filename,
		FileType:       file.FileType,
		RowCount:       file.RowCount,
		NumericFields:  fields.Numeric,
		DateFields:     fields.Date,
		CategoryFields: fields.Category,
	}, nil
}

type PreviewResult struct {
	File           *domain.DataFile  `json:"file"`
	NumericFields  []string          `json:"numeric_fields"`
	DateFields     []string          `json:"date_fields"`
	CategoryFields []string          `json:"category_fields"`
	Insights       []string          `json:"insights"`
	Charts         []charts.Spec     `json:"charts"`
	Sample         []*dataset.Record `json:"sample"`
}

// Preview runs a fresh analysis over an uploaded file without persisting a
// report, mirroring the interactive dashboard of the original system.
func (s *Service) Preview(ctx context.Context, tenant string, id domain.FileID) (PreviewResult, error) {
	file, err := s.Files.GetFile(ctx, tenant, id)
	if err != nil {
		return PreviewResult{}, err
	}
	records, err := s.loadRecords(ctx, file)
	if err != nil {
		return PreviewResult{}, err
	}

	fields := dataset.ClassifyFields(records)
	sample := records
	if len(sample) > 5 {
		sample = sample[:5]
	}

	return PreviewResult{
		File:           file,
		NumericFields:  fields.Numeric,
		DateFields:     fields.Date,
		CategoryFields: fields.Category,
		Insights:       insights.Analyze(records),
		Charts:         charts.Build(records),
		Sample:         sample,
	}, nil
}

type GenerateReportCommand struct {
	TenantID   string
	FileID     domain.FileID
	Title      string
	ReportType string
}

// GenerateReport runs the full pipeline for one uploaded file: analyze,
// derive charts, render the PDF and spreadsheet, upload both artifacts and
// persist the report with its insights and visualizations.
func (s *Service) GenerateReport(ctx context.Context, cmd GenerateReportCommand) (*domain.Report, error) {
	file, err := s.Files.GetFile(ctx, cmd.TenantID, cmd.FileID)
	if err != nil {
		return nil, err
	}
	records, err := s.loadRecords(ctx, file)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	title := cmd.Title
	if title == "" {
		title = fmt.Sprintf("Business Report - %s", now.Format("2006-01-02"))
	}
	reportType := cmd.ReportType
	if reportType == "" {
		reportType = "financial"
	}

	id := domain.ReportID(uuid.New().String())
	report := &domain.Report{
		ID:          id,
		TenantID:    cmd.TenantID,
		DataFileID:  file.ID,
		Title:       title,
		ReportType:  reportType,
		Status:      domain.StatusPending,
		GeneratedAt: now,
	}
	if err := s.Reports.SaveReport(ctx, report); err != nil {
		return nil, err
	}

	generated := insights.Generate(records)
	specs := charts.Build(records)
	meta := render.Meta{Title: title, ReportType: reportType, GeneratedAt: now}

	texts := make([]string, len(generated))
	rows := make([]domain.Insight, len(generated))
	for i, in := range generated {
		texts[i] = in.Text
		rows[i] = domain.Insight{
			ReportID:   id,
			Text:       in.Text,
			Category:   in.Category,
			Confidence: defaultConfidence,
			Position:   i,
		}
	}
	if err := s.Reports.SaveInsights(ctx, id, rows); err != nil {
		return nil, err
	}

	vizs := make([]domain.Visualization, len(specs))
	for i, spec := range specs {
		doc, err := json.Marshal(spec)
		if err != nil {
			return nil, fmt.Errorf("marshal chart spec: %w", err)
		}
		vizs[i] = domain.Visualization{
			ReportID:    id,
			Title:       fmt.Sprintf("Chart %d: %s", i+1, spec.Title),
			ChartType:   string(spec.Kind),
			DataJSON:    string(doc),
			Description: spec.Description,
			Position:    i,
		}
	}
	if err := s.Reports.SaveVisualizations(ctx, id, vizs); err != nil {
		return nil, err
	}

	pdfBytes, err := render.Document(meta, texts, specs, records)
	if err != nil {
		report.Status = domain.StatusFailed
		_ = s.Reports.SaveReport(ctx, report)
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	pdfKey := fmt.Sprintf("%s/reports/%s/report.pdf", cmd.TenantID, id)
	if _, err := s.Artifacts.UploadBytes(ctx, pdfKey, pdfBytes, contentTypePDF); err != nil {
		report.Status = domain.StatusFailed
		_ = s.Reports.SaveReport(ctx, report)
		return nil, fmt.Errorf("upload pdf: %w", err)
	}

	xlsxBytes, err := render.Spreadsheet(meta, records)
	if err != nil {
		report.Status = domain.StatusFailed
		_ = s.Reports.SaveReport(ctx, report)
		return nil, fmt.Errorf("render spreadsheet: %w", err)
	}
	xlsxKey := fmt.Sprintf("%s/reports/%s/report.xlsx", cmd.TenantID, id)
	if _, err := s.Artifacts.UploadBytes(ctx, xlsxKey, xlsxBytes, contentTypeXLSX); err != nil {
		report.Status = domain.StatusFailed
		_ = s.Reports.SaveReport(ctx, report)
		return nil, fmt.Errorf("upload spreadsheet: %w", err)
	}

	report.Status = domain.StatusGenerated
	report.PDFKey = pdfKey
	report.ExcelKey = xlsxKey
	if err := s.Reports.SaveReport(ctx, report); err != nil {
		return nil, err
	}

	slog.Info("report generated",
		"tenant", cmd.TenantID,
		"report_id", id,
		"insights", len(generated),
		"charts", len(specs),
	)
	return report, nil
}

// Get returns one report for the tenant.
func (s *Service) Get(ctx context.Context, tenant string, id domain.ReportID) (*domain.Report, error) {
	return s.Reports.Get(ctx, tenant, id)
}

// Insights returns the persisted insight rows of a report.
func (s *Service) Insights(ctx context.Context, id domain.ReportID) ([]domain.Insight, error) {
	return s.Reports.Insights(ctx, id)
}

// Visualizations returns the persisted chart specs of a report.
func (s *Service) Visualizations(ctx context.Context, id domain.ReportID) ([]domain.Visualization, error) {
	return s.Reports.Visualizations(ctx, id)
}

// Latest returns the most recent reports for the tenant.
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Report, error) {
	return s.Reports.Latest(ctx, tenant, limit)
}

// Paginate returns one page of the tenant's reports.
func (s *Service) Paginate(ctx context.Context, tenant string, page, pageSize int) (domain.PaginatedResult, error) {
	return s.Reports.Paginate(ctx, tenant, page, pageSize)
}

// Artifact describes one downloadable rendered document.
type Artifact struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
	Filename    string
}

// Download streams a rendered report artifact. Kind is "pdf" or "excel".
func (s *Service) Download(ctx context.Context, tenant string, id domain.ReportID, kind string) (*Artifact, error) {
	report, err := s.Reports.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}

	var key, contentType, filename string
	switch kind {
	case "pdf":
		key, contentType = report.PDFKey, contentTypePDF
		filename = fmt.Sprintf("report_%s.pdf", id)
	case "excel":
		key, contentType = report.ExcelKey, contentTypeXLSX
		filename = fmt.Sprintf("report_%s.xlsx", id)
	default:
		return nil, fmt.Errorf("%w: unknown artifact kind: %s", domain.ErrInvalidInput, kind)
	}
	if key == "" {
		return nil, fmt.Errorf("%w: artifact not generated", domain.ErrNotFound)
	}

	body, size, err := s.Artifacts.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Artifact{Body: body, Size: size, ContentType: contentType, Filename: filename}, nil
}

func (s *Service) loadRecords(ctx context.Context, file *domain.DataFile) ([]*dataset.Record, error) {
	body, _, err := s.Artifacts.Fetch(ctx, file.RecordsKey)
	if err != nil {
		return nil, fmt.Errorf("fetch records snapshot: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read records snapshot: %w", err)
	}
	var records []*dataset.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records snapshot: %w", err)
	}
	return records, nil
}
