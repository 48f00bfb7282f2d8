package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables on first boot. Idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS data_files (
  id          VARCHAR(64)  PRIMARY KEY,
  tenant_id   VARCHAR(128) NOT NULL,
  filename    VARCHAR(255) NOT NULL,
  file_type   VARCHAR(16)  NOT NULL,
  file_size   BIGINT       NOT NULL DEFAULT 0,
  row_count   INT          NOT NULL DEFAULT 0,
  records_key VARCHAR(512) NOT NULL,
  uploaded_at TIMESTAMPTZ  NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_data_files_tenant ON data_files (tenant_id, uploaded_at);`,
		`CREATE TABLE IF NOT EXISTS reports (
  id           VARCHAR(64)  PRIMARY KEY,
  tenant_id    VARCHAR(128) NOT NULL,
  data_file_id VARCHAR(64)  NOT NULL,
  title        VARCHAR(255) NOT NULL,
  report_type  VARCHAR(32)  NOT NULL,
  status       VARCHAR(16)  NOT NULL,
  pdf_key      VARCHAR(512) NOT NULL DEFAULT '',
  excel_key    VARCHAR(512) NOT NULL DEFAULT '',
  narrative    TEXT,
  generated_at TIMESTAMPTZ  NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_tenant ON reports (tenant_id, generated_at);`,
		`CREATE TABLE IF NOT EXISTS insights (
  id         BIGSERIAL    PRIMARY KEY,
  report_id  VARCHAR(64)  NOT NULL,
  text       TEXT         NOT NULL,
  category   VARCHAR(32)  NOT NULL,
  confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
  position   INT          NOT NULL DEFAULT 0
);`,
		`CREATE INDEX IF NOT EXISTS idx_insights_report ON insights (report_id, position);`,
		`CREATE TABLE IF NOT EXISTS visualizations (
  id          BIGSERIAL    PRIMARY KEY,
  report_id   VARCHAR(64)  NOT NULL,
  title       VARCHAR(255) NOT NULL,
  chart_type  VARCHAR(16)  NOT NULL,
  data_json   TEXT         NOT NULL,
  description TEXT,
  position    INT          NOT NULL DEFAULT 0
);`,
		`CREATE INDEX IF NOT EXISTS idx_vizs_report ON visualizations (report_id, position);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
