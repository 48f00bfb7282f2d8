package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/finreports/insightd/internal/domain/reports"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type memFileRepo struct {
	files map[domain.FileID]*domain.DataFile
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{files: make(map[domain.FileID]*domain.DataFile)}
}

func (r *memFileRepo) SaveFile(_ context.Context, f *domain.DataFile) error {
	r.files[f.ID] = f
	return nil
}

func (r *memFileRepo) GetFile(_ context.Context, tenant string, id domain.FileID) (*domain.DataFile, error) {
	f, ok := r.files[id]
	if !ok || f.TenantID != tenant {
		return nil, fmt.Errorf("%w: data file %s", domain.ErrNotFound, id)
	}
	return f, nil
}

type memReportRepo struct {
	reports map[domain.ReportID]*domain.Report
	ins     map[domain.ReportID][]domain.Insight
	vizs    map[domain.ReportID][]domain.Visualization
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{
		reports: make(map[domain.ReportID]*domain.Report),
		ins:     make(map[domain.ReportID][]domain.Insight),
		vizs:    make(map[domain.ReportID][]domain.Visualization),
	}
}

func (r *memReportRepo) SaveReport(_ context.Context, rep *domain.Report) error {
	clone := *rep
	r.reports[rep.ID] = &clone
	return nil
}

func (r *memReportRepo) SaveInsights(_ context.Context, id domain.ReportID, ins []domain.Insight) error {
	r.ins[id] = ins
	return nil
}

func (r *memReportRepo) SaveVisualizations(_ context.Context, id domain.ReportID, vizs []domain.Visualization) error {
	r.vizs[id] = vizs
	return nil
}

func (r *memReportRepo) Get(_ context.Context, tenant string, id domain.ReportID) (*domain.Report, error) {
	rep, ok := r.reports[id]
	if !ok || rep.TenantID != tenant {
		return nil, fmt.Errorf("%w: report %s", domain.ErrNotFound, id)
	}
	return rep, nil
}

func (r *memReportRepo) Insights(_ context.Context, id domain.ReportID) ([]domain.Insight, error) {
	return r.ins[id], nil
}

func (r *memReportRepo) Visualizations(_ context.Context, id domain.ReportID) ([]domain.Visualization, error) {
	return r.vizs[id], nil
}

func (r *memReportRepo) Latest(_ context.Context, tenant string, limit int) ([]*domain.Report, error) {
	var out []*domain.Report
	for _, rep := range r.reports {
		if rep.TenantID == tenant {
			out = append(out, rep)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memReportRepo) Paginate(_ context.Context, tenant string, page, pageSize int) (domain.PaginatedResult, error) {
	list, _ := r.Latest(context.Background(), tenant, pageSize)
	return domain.PaginatedResult{Data: list, Page: page, PageSize: pageSize, Total: int64(len(list)), TotalPages: 1}, nil
}

func (r *memReportRepo) UpdateNarrative(_ context.Context, tenant string, id domain.ReportID, narrative string) error {
	rep, ok := r.reports[id]
	if !ok || rep.TenantID != tenant {
		return fmt.Errorf("%w: report %s", domain.ErrNotFound, id)
	}
	rep.Narrative = narrative
	return nil
}

type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore { return &memStore{objects: make(map[string][]byte)} }

func (s *memStore) UploadBytes(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.objects[key] = data
	return "mem://" + key, nil
}

func (s *memStore) Fetch(_ context.Context, key string) (io.ReadCloser, int64, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, 0, fmt.Errorf("%w: object %s", domain.ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func newTestService() (*Service, *memReportRepo, *memStore) {
	repo := newMemReportRepo()
	store := newMemStore()
	svc := &Service{
		Files:             newMemFileRepo(),
		Reports:           repo,
		Artifacts:         store,
		Clock:             fixedClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)},
		AllowedExtensions: map[string]bool{"csv": true, "json": true, "xlsx": true},
	}
	return svc, repo, store
}

const sampleCSV = `Date,Monthly Sales,Operating Costs,Category
2024-01,100,40,alpha
2024-02,150,60,beta
2024-03,200,80,alpha
2024-04,250,100,beta
`

func uploadSample(t *testing.T, svc *Service) UploadFileResult {
	t.Helper()
	result, err := svc.UploadFile(context.Background(), UploadFileCommand{
		TenantID: "acme",
		Filename: "sales.csv",
		Size:     int64(len(sampleCSV)),
		Data:     strings.NewReader(sampleCSV),
	})
	require.NoError(t, err)
	return result
}

func TestUploadFileNormalizesAndClassifies(t *testing.T) {
	svc, _, store := newTestService()
	result := uploadSample(t, svc)

	assert.Equal(t, 4, result.RowCount)
	assert.Equal(t, "csv", result.FileType)
	// "Monthly Sales" and "Operating Costs" are remapped onto the
	// canonical schema before classification
	assert.Equal(t, []string{"revenue", "expenses"}, result.NumericFields)
	assert.Equal(t, []string{"date"}, result.DateFields)
	assert.Equal(t, []string{"category"}, result.CategoryFields)

	key := fmt.Sprintf("acme/files/%s/records.json", result.ID)
	assert.Contains(t, store.objects, key)
}

func TestUploadFileRejectsExtension(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.UploadFile(context.Background(), UploadFileCommand{
		TenantID: "acme",
		Filename: "malware.exe",
		Data:     strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPreviewRunsAnalysis(t *testing.T) {
	svc, _, _ := newTestService()
	uploaded := uploadSample(t, svc)

	preview, err := svc.Preview(context.Background(), "acme", uploaded.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, preview.Insights)
	assert.NotEmpty(t, preview.Charts)
	assert.LessOrEqual(t, len(preview.Sample), 5)
	assert.Contains(t, preview.Insights, "The total revenue is 700.00.")
}

func TestPreviewUnknownTenant(t *testing.T) {
	svc, _, _ := newTestService()
	uploaded := uploadSample(t, svc)

	_, err := svc.Preview(context.Background(), "other", uploaded.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerateReportFullPipeline(t *testing.T) {
	svc, repo, store := newTestService()
	uploaded := uploadSample(t, svc)

	report, err := svc.GenerateReport(context.Background(), GenerateReportCommand{
		TenantID: "acme",
		FileID:   uploaded.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusGenerated, report.Status)
	assert.Equal(t, "Business Report - 2024-06-01", report.Title)
	assert.Equal(t, "financial", report.ReportType)
	assert.NotEmpty(t, report.PDFKey)
	assert.NotEmpty(t, report.ExcelKey)

	// both artifacts exist in the store
	assert.True(t, bytes.HasPrefix(store.objects[report.PDFKey], []byte("%PDF")))
	assert.NotEmpty(t, store.objects[report.ExcelKey])

	// insights and visualizations are persisted in order
	ins := repo.ins[report.ID]
	require.NotEmpty(t, ins)
	for i, in := range ins {
		assert.Equal(t, i, in.Position)
		assert.Equal(t, defaultConfidence, in.Confidence)
	}
	vizs := repo.vizs[report.ID]
	require.NotEmpty(t, vizs)
	assert.Contains(t, vizs[0].Title, "Chart 1:")
}

func TestDownloadArtifact(t *testing.T) {
	svc, _, _ := newTestService()
	uploaded := uploadSample(t, svc)
	report, err := svc.GenerateReport(context.Background(), GenerateReportCommand{
		TenantID: "acme",
		FileID:   uploaded.ID,
	})
	require.NoError(t, err)

	artifact, err := svc.Download(context.Background(), "acme", report.ID, "pdf")
	require.NoError(t, err)
	defer artifact.Body.Close()
	assert.Equal(t, contentTypePDF, artifact.ContentType)
	data, err := io.ReadAll(artifact.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, err = svc.Download(context.Background(), "acme", report.ID, "docx")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
