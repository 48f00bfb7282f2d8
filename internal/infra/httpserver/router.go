package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appnarrative "github.com/finreports/insightd/internal/application/narrative"
	appreports "github.com/finreports/insightd/internal/application/reports"
	domnarr "github.com/finreports/insightd/internal/domain/narrative"
	domain "github.com/finreports/insightd/internal/domain/reports"
	"github.com/finreports/insightd/internal/ingest"
	"github.com/finreports/insightd/internal/middleware"
)

type Router struct {
	reportsSvc   *appreports.Service
	narrativeSvc *appnarrative.Service
	maxUpload    int64
}

func NewRouter(reportsSvc *appreports.Service, narrativeSvc *appnarrative.Service, maxUploadBytes int64, health http.HandlerFunc) http.Handler {
	r := &Router{reportsSvc: reportsSvc, narrativeSvc: narrativeSvc, maxUpload: maxUploadBytes}
	mux := chi.NewRouter()

	mux.Get("/health", health)
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/files", r.wrap(r.handleUploadFile))
		rt.Get("/files/{id}/preview", r.wrap(r.handlePreview))
		rt.Post("/reports", r.wrap(r.handleGenerateReport))
		rt.Get("/reports", r.wrap(r.handleListReports))
		rt.Get("/reports/latest", r.wrap(r.handleLatest))
		rt.Get("/reports/{id}", r.wrap(r.handleGetReport))
		rt.Get("/reports/{id}/download/{kind}", r.wrap(r.handleDownload))
		rt.Post("/reports/{id}/narrative", r.wrap(r.handleNarrative))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, ingest.ErrUnsupportedFormat):
				http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
			case errors.Is(err, domain.ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domnarr.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			case errors.Is(err, domnarr.ErrNotConfigured):
				http.Error(w, "narrative summarizer not configured", http.StatusServiceUnavailable)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

func tenantParam(req *http.Request) (string, error) {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return tenant, nil
}

// POST /v1/{tenant}/files
// Multipart form with one "file" part.
func (r *Router) handleUploadFile(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}

	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		return fmt.Errorf("%w: parsing upload: %v", domain.ErrInvalidInput, err)
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: missing file part", domain.ErrInvalidInput)
	}
	defer file.Close()

	filename := middleware.SanitizeString(header.Filename)
	if err := middleware.ValidateFilename(filename); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	result, err := r.reportsSvc.UploadFile(req.Context(), appreports.UploadFileCommand{
		TenantID: tenant,
		Filename: filename,
		Size:     header.Size,
		Data:     file,
	})
	if err != nil {
		return err
	}
	middleware.IncrementUploads()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(result)
}

// GET /v1/{tenant}/files/{id}/preview
func (r *Router) handlePreview(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateResourceID(id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	preview, err := r.reportsSvc.Preview(req.Context(), tenant, domain.FileID(id))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(preview)
}

// POST /v1/{tenant}/reports
// Body: {"file_id": "...", "title": "...", "report_type": "..."}
func (r *Router) handleGenerateReport(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}

	var body struct {
		FileID     string `json:"file_id"`
		Title      string `json:"title"`
		ReportType string `json:"report_type"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: decoding body: %v", domain.ErrInvalidInput, err)
	}
	if body.FileID == "" {
		return fmt.Errorf("%w: file_id is required", domain.ErrInvalidInput)
	}
	if err := middleware.ValidateResourceID(body.FileID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := middleware.ValidateReportType(body.ReportType); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	report, err := r.reportsSvc.GenerateReport(req.Context(), appreports.GenerateReportCommand{
		TenantID:   tenant,
		FileID:     domain.FileID(body.FileID),
		Title:      middleware.SanitizeString(body.Title),
		ReportType: body.ReportType,
	})
	if err != nil {
		middleware.IncrementReportsFailed()
		return err
	}
	middleware.IncrementReports()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(report)
}

// GET /v1/{tenant}/reports?page=&page_size=
func (r *Router) handleListReports(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.reportsSvc.Paginate(req.Context(), tenant, page, middleware.ValidatePageSize(size))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/reports/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.reportsSvc.Latest(req.Context(), tenant, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/reports/{id}
// Returns the report with its insights and visualizations inlined.
func (r *Router) handleGetReport(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateResourceID(id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	report, err := r.reportsSvc.Get(req.Context(), tenant, domain.ReportID(id))
	if err != nil {
		return err
	}
	insights, err := r.reportsSvc.Insights(req.Context(), report.ID)
	if err != nil {
		return err
	}
	vizs, err := r.reportsSvc.Visualizations(req.Context(), report.ID)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"report":         report,
		"insights":       insights,
		"visualizations": vizs,
	})
}

// GET /v1/{tenant}/reports/{id}/download/{kind}
func (r *Router) handleDownload(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateResourceID(id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	kind := chi.URLParam(req, "kind")

	artifact, err := r.reportsSvc.Download(req.Context(), tenant, domain.ReportID(id), kind)
	if err != nil {
		return err
	}
	defer artifact.Body.Close()

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	if artifact.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(artifact.Size, 10))
	}
	_, err = io.Copy(w, artifact.Body)
	return err
}

// POST /v1/{tenant}/reports/{id}/narrative
func (r *Router) handleNarrative(w http.ResponseWriter, req *http.Request) error {
	tenant, err := tenantParam(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateResourceID(id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	summary, err := r.narrativeSvc.Summarize(req.Context(), tenant, domain.ReportID(id))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]string{"narrative": summary})
}
