package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appnarrative "github.com/finreports/insightd/internal/application/narrative"
	appreports "github.com/finreports/insightd/internal/application/reports"
	domain "github.com/finreports/insightd/internal/domain/reports"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type memFileRepo struct {
	files map[domain.FileID]*domain.DataFile
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

func newTestHandler() http.Handler {
	reportsSvc := &appreports.Service{
		Files:             &memFileRepo{files: make(map[domain.FileID]*domain.DataFile)},
		Reports:           &memReportRepo{reports: make(map[domain.ReportID]*domain.Report), ins: make(map[domain.ReportID][]domain.Insight), vizs: make(map[domain.ReportID][]domain.Visualization)},
		Artifacts:         &memStore{objects: make(map[string][]byte)},
		Clock:             fixedClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)},
		AllowedExtensions: map[string]bool{"csv": true, "json": true, "xlsx": true},
	}
	narrativeSvc := &appnarrative.Service{Reports: reportsSvc.Reports}
	health := func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) }
	return NewRouter(reportsSvc, narrativeSvc, 16<<20, health)
}

func uploadCSV(t *testing.T, h http.Handler, tenant, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/"+tenant+"/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

const csvPayload = "date,revenue,category\n2024-01,100,a\n2024-02,150,b\n2024-03,200,a\n"

func TestUploadAndGenerateFlow(t *testing.T) {
	h := newTestHandler()

	rr := uploadCSV(t, h, "acme", "sales.csv", csvPayload)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var uploaded struct {
		ID       string `json:"id"`
		RowCount int    `json:"row_count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &uploaded))
	assert.Equal(t, 3, uploaded.RowCount)

	// preview
	req := httptest.NewRequest(http.MethodGet, "/v1/acme/files/"+uploaded.ID+"/preview", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var preview struct {
		Insights []string `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &preview))
	assert.NotEmpty(t, preview.Insights)

	// generate
	body := strings.NewReader(fmt.Sprintf(`{"file_id":%q,"title":"Q2"}`, uploaded.ID))
	req = httptest.NewRequest(http.MethodPost, "/v1/acme/reports", body)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var report struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, "generated", report.Status)

	// fetch with insights inlined
	req = httptest.NewRequest(http.MethodGet, "/v1/acme/reports/"+report.ID, nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var detail struct {
		Insights []struct {
			Text string `json:"text"`
		} `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.NotEmpty(t, detail.Insights)

	// download pdf
	req = httptest.NewRequest(http.MethodGet, "/v1/acme/reports/"+report.ID+"/download/pdf", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))
}

func TestUploadRejectsBadExtension(t *testing.T) {
	h := newTestHandler()
	rr := uploadCSV(t, h, "acme", "payload.exe", "whatever")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPreviewUnknownFile(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/v1/acme/files/123e4567-e89b-42d3-a456-426614174000/preview", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGenerateRejectsBadReportType(t *testing.T) {
	h := newTestHandler()
	body := strings.NewReader(`{"file_id":"123e4567-e89b-42d3-a456-426614174000","report_type":"weird"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/acme/reports", body)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNarrativeNotConfigured(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/v1/acme/reports/123e4567-e89b-42d3-a456-426614174000/narrative", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestInvalidTenantRejected(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/v1/bad%20tenant/reports/latest", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProbeEndpoints(t *testing.T) {
	h := newTestHandler()
	for _, path := range []string{"/health", "/ready", "/live", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}
