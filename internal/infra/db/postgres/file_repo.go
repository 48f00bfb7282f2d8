package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/finreports/insightd/internal/domain/reports"
)

type FileRepository struct{ db *sql.DB }

func NewFileRepository(db *sql.DB) *FileRepository { return &FileRepository{db: db} }

// SaveFile insert/update DataFile record
func (r *FileRepository) SaveFile(ctx context.Context, f *domain.DataFile) error {
	const q = `
INSERT INTO data_files
(id, tenant_id, filename, file_type, file_size, row_count, records_key, uploaded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
 filename = EXCLUDED.filename,
 file_type = EXCLUDED.file_type,
 file_size = EXCLUDED.file_size,
 row_count = EXCLUDED.row_count,
 records_key = EXCLUDED.records_key;`
	_, err := r.db.ExecContext(ctx, q,
		f.ID, f.TenantID, f.Filename, f.FileType, f.FileSize, f.RowCount, f.RecordsKey, f.UploadedAt,
	)
	return err
}

// GetFile by ID + Tenant
func (r *FileRepository) GetFile(ctx context.Context, tenant string, id domain.FileID) (*domain.DataFile, error) {
	const q = `
SELECT id, tenant_id, filename, file_type, file_size, row_count, records_key, uploaded_at
FROM data_files
WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)

	var f domain.DataFile
	if err := row.Scan(
		&f.ID, &f.TenantID, &f.Filename, &f.FileType, &f.FileSize, &f.RowCount, &f.RecordsKey, &f.UploadedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: data file %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &f, nil
}
