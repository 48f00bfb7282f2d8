package narrative

import "context"

// Client produces an executive-summary narrative from a report's insight
// statements.
type Client interface {
	Summarize(ctx context.Context, title string, insights []string) (string, error)
}
