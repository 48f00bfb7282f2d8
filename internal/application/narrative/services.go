package narrative

import (
	"context"
	"fmt"

	domainnarr "github.com/finreports/insightd/internal/domain/narrative"
	domain "github.com/finreports/insightd/internal/domain/reports"
)

// Service produces AI executive summaries for generated reports. The
// summarizer is optional; when no client is configured Summarize fails
// with ErrNotConfigured and the rest of the system is unaffected.
type Service struct {
	Client  domainnarr.Client
	Reports domain.Repository
}

// Summarize asks the configured language model for an executive summary of
// the report's insights and persists it on the report.
func (s *Service) Summarize(ctx context.Context, tenant string, id domain.ReportID) (string, error) {
	if s.Client == nil {
		return "", domainnarr.ErrNotConfigured
	}

	report, err := s.Reports.Get(ctx, tenant, id)
	if err != nil {
		return "", err
	}
	rows, err := s.Reports.Insights(ctx, id)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: report has no insights", domain.ErrInvalidInput)
	}

	texts := make([]string, len(rows))
	for i, r := range rows {
		texts[i] = r.Text
	}

	summary, err := s.Client.Summarize(ctx, report.Title, texts)
	if err != nil {
		return "", err
	}
	if err := s.Reports.UpdateNarrative(ctx, tenant, id, summary); err != nil {
		return "", err
	}
	return summary, nil
}
