package reports

import (
	"context"
	"io"
)

// FileRepository persists uploaded file metadata.
type FileRepository interface {
	SaveFile(ctx context.Context, f *DataFile) error
	GetFile(ctx context.Context, tenant string, id FileID) (*DataFile, error)
}

// Repository persists reports with their insights and visualizations.
type Repository interface {
	SaveReport(ctx context.Context, r *Report) error
	SaveInsights(ctx context.Context, id ReportID, insights []Insight) error
	SaveVisualizations(ctx context.Context, id ReportID, vizs []Visualization) error

	Get(ctx context.Context, tenant string, id ReportID) (*Report, error)
	Insights(ctx context.Context, id ReportID) ([]Insight, error)
	Visualizations(ctx context.Context, id ReportID) ([]Visualization, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Report, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int) (PaginatedResult, error)
	UpdateNarrative(ctx context.Context, tenant string, id ReportID, narrative string) error
}

// ArtifactStore keeps rendered documents and record snapshots.
type ArtifactStore interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Fetch(ctx context.Context, key string) (io.ReadCloser, int64, error)
}
