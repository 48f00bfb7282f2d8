package narrative

import "errors"

var (
	// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
	ErrQuotaExceeded = errors.New("narrative: quota exceeded")

	// ErrNotConfigured indicates no AI client was configured for this deployment.
	ErrNotConfigured = errors.New("narrative: summarizer not configured")
)
