package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	domain "github.com/finreports/insightd/internal/domain/reports"
)

type ReportRepository struct{ db *sql.DB }

func NewReportRepository(db *sql.DB) *ReportRepository { return &ReportRepository{db: db} }

// SaveReport insert/update Report record
func (r *ReportRepository) SaveReport(ctx context.Context, rep *domain.Report) error {
	const q = `
INSERT INTO reports
(id, tenant_id, data_file_id, title, report_type, status, pdf_key, excel_key, narrative, generated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 pdf_key = EXCLUDED.pdf_key,
 excel_key = EXCLUDED.excel_key,
 narrative = EXCLUDED.narrative;`
	_, err := r.db.ExecContext(ctx, q,
		rep.ID, rep.TenantID, rep.DataFileID, rep.Title, rep.ReportType, rep.Status,
		rep.PDFKey, rep.ExcelKey, rep.Narrative, rep.GeneratedAt,
	)
	return err
}

// SaveInsights replaces the insight rows of a report.
func (r *ReportRepository) SaveInsights(ctx context.Context, id domain.ReportID, insights []domain.Insight) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM insights WHERE report_id=$1`, id); err != nil {
		return err
	}
	const q = `
INSERT INTO insights (report_id, text, category, confidence, position)
VALUES ($1,$2,$3,$4,$5);`
	for _, in := range insights {
		if _, err := tx.ExecContext(ctx, q, id, in.Text, in.Category, in.Confidence, in.Position); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveVisualizations replaces the chart rows of a report.
func (r *ReportRepository) SaveVisualizations(ctx context.Context, id domain.ReportID, vizs []domain.Visualization) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM visualizations WHERE report_id=$1`, id); err != nil {
		return err
	}
	const q = `
INSERT INTO visualizations (report_id, title, chart_type, data_json, description, position)
VALUES ($1,$2,$3,$4,$5,$6);`
	for _, v := range vizs {
		if _, err := tx.ExecContext(ctx, q, id, v.Title, v.ChartType, v.DataJSON, v.Description, v.Position); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Get by ID + Tenant
func (r *ReportRepository) Get(ctx context.Context, tenant string, id domain.ReportID) (*domain.Report, error) {
	const q = `
SELECT id, tenant_id, data_file_id, title, report_type, status, pdf_key, excel_key, narrative, generated_at
FROM reports
WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	rep, err := scanReport(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: report %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return rep, nil
}

// Insights rows ordered by position
func (r *ReportRepository) Insights(ctx context.Context, id domain.ReportID) ([]domain.Insight, error) {
	const q = `
SELECT id, report_id, text, category, confidence, position
FROM insights
WHERE report_id=$1 ORDER BY position ASC;`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Insight
	for rows.Next() {
		var in domain.Insight
		if err := rows.Scan(&in.ID, &in.ReportID, &in.Text, &in.Category, &in.Confidence, &in.Position); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// Visualizations rows ordered by position
func (r *ReportRepository) Visualizations(ctx context.Context, id domain.ReportID) ([]domain.Visualization, error) {
	const q = `
SELECT id, report_id, title, chart_type, data_json, description, position
FROM visualizations
WHERE report_id=$1 ORDER BY position ASC;`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Visualization
	for rows.Next() {
		var v domain.Visualization
		var desc sql.NullString
		if err := rows.Scan(&v.ID, &v.ReportID, &v.Title, &v.ChartType, &v.DataJSON, &desc, &v.Position); err != nil {
			return nil, err
		}
		v.Description = desc.String
		out = append(out, v)
	}
	return out, rows.Err()
}

// Latest reports per tenant
func (r *ReportRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, data_file_id, title, report_type, status, pdf_key, excel_key, narrative, generated_at
FROM reports
WHERE tenant_id=$1 ORDER BY generated_at DESC LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Report
	for rows.Next() {
		rep, err := scanReport(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// Paginate with offset + limit (classic pagination)
func (r *ReportRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, tenant_id, data_file_id, title, report_type, status, pdf_key, excel_key, narrative, generated_at
FROM reports
WHERE tenant_id=$1
ORDER BY generated_at DESC
LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.Report
	for rows.Next() {
		rep, err := scanReport(rows.Scan)
		if err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		reports = append(reports, rep)
	}
	if err = rows.Err(); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("iterating rows: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports WHERE tenant_id=$1`, tenant).Scan(&total); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Data:       reports,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// UpdateNarrative only updates the narrative column
func (r *ReportRepository) UpdateNarrative(ctx context.Context, tenant string, id domain.ReportID, narrative string) error {
	const q = `
UPDATE reports
SET narrative = $1
WHERE tenant_id = $2 AND id = $3;`
	res, err := r.db.ExecContext(ctx, q, narrative, tenant, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: report %s", domain.ErrNotFound, id)
	}
	return nil
}

func scanReport(scan func(dest ...any) error) (*domain.Report, error) {
	var rep domain.Report
	var narrative sql.NullString
	if err := scan(
		&rep.ID, &rep.TenantID, &rep.DataFileID, &rep.Title, &rep.ReportType, &rep.Status,
		&rep.PDFKey, &rep.ExcelKey, &narrative, &rep.GeneratedAt,
	); err != nil {
		return nil, err
	}
	rep.Narrative = narrative.String
	return &rep, nil
}
