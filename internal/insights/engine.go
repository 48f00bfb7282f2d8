// Package insights derives natural-language observations from a normalized
// record set. Four generators run in sequence (statistical, trend, category
// comparison, cross-dimensional) and their output is deduplicated by exact
// text, keeping first-emission order. The engine never fails: a generator
// whose preconditions are not met is skipped, and a field that cannot be
// coerced is logged and dropped.
package insights

import (
	"github.com/finreports/insightd/internal/dataset"
)

// Insight categories used for downstream storage. Deduplication ignores
// them and works on the text alone.
const (
	CategoryStatistical    = "statistical"
	CategoryTrend          = "trend"
	CategoryCategory       = "category"
	CategoryComplex        = "complex"
	CategoryRecommendation = "recommendation"
)

type Insight struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Generate runs all generators over the record set and returns the ordered,
// deduplicated insights. An empty record set yields the single fallback
// insight; fewer than three unique insights trigger the static
// recommendation list.
func Generate(records []*dataset.Record) []Insight {
	if len(records) == 0 {
		return []Insight{{Text: "Insufficient data for analysis.", Category: CategoryStatistical}}
	}

	fields := dataset.ClassifyFields(records)

	var out []Insight
	out = append(out, statisticalInsights(records, fields.Numeric)...)
	if len(fields.Date) > 0 {
		out = append(out, trendInsights(records, fields.Date, fields.Numeric)...)
	}
	if len(fields.Category) > 0 {
		out = append(out, categoryInsights(records, fields.Category, fields.Numeric)...)
	}
	if len(fields.Date) > 0 && len(fields.Category) > 0 {
		out = append(out, complexInsights(records, fields.Date, fields.Category, fields.Numeric)...)
	}

	unique := dedupe(out)
	if len(unique) < 3 {
		unique = append(unique, Recommendations()...)
	}
	return unique
}

// Analyze is the text-only contract: the deduplicated insight strings in
// stable order.
func Analyze(records []*dataset.Record) []string {
	insights := Generate(records)
	texts := make([]string, len(insights))
	for i, in := range insights {
		texts[i] = in.Text
	}
	return texts
}

// dedupe keeps the first occurrence of each text so output order follows
// emission order.
func dedupe(in []Insight) []Insight {
	seen := make(map[string]bool, len(in))
	out := make([]Insight, 0, len(in))
	for _, ins := range in {
		if seen[ins.Text] {
			continue
		}
		seen[ins.Text] = true
		out = append(out, ins)
	}
	return out
}
