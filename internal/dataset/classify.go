package dataset

import "strings"

// Name fragments that flag a column as date-like or category-like. Matching
// is by substring against the first record's keys only; a column absent from
// the first row is never classified. That first-row blind spot is inherited
// behavior and kept on purpose.
var (
	dateIndicators     = []string{"date", "period", "month", "year", "quarter", "day", "week"}
	categoryIndicators = []string{"category", "type", "department", "division", "segment", "product", "region", "country"}
)

// numericCoverage is the fraction of records in which a candidate column
// must be present with a numeric value to be confirmed numeric.
const numericCoverage = 0.8

// Fields holds the classified column names of a record set, each list in
// first-seen order.
type Fields struct {
	Numeric  []string
	Date     []string
	Category []string
}

// ClassifyFields inspects a record set and assigns each column a role.
// Numeric candidates are taken from the first record and confirmed against
// coverage across the whole set; date and category roles come from name
// heuristics alone.
func ClassifyFields(records []*Record) Fields {
	var f Fields
	if len(records) == 0 {
		return f
	}

	sample := records[0]

	var candidates []string
	for _, key := range sample.Fields() {
		if IsNumericValue(sample.Value(key)) {
			candidates = append(candidates, key)
		}
	}
	for _, field := range candidates {
		count := 0
		for _, rec := range records {
			if v, ok := rec.Get(field); ok && IsNumericValue(v) {
				count++
			}
		}
		if float64(count)/float64(len(records)) >= numericCoverage {
			f.Numeric = append(f.Numeric, field)
		}
	}

	for _, key := range sample.Fields() {
		if containsAny(strings.ToLower(key), dateIndicators) {
			f.Date = append(f.Date, key)
		}
	}
	for _, key := range sample.Fields() {
		if containsAny(strings.ToLower(key), categoryIndicators) {
			f.Category = append(f.Category, key)
		}
	}
	return f
}

// Columns returns every column name seen anywhere in the record set, in
// first-seen order. The chart builder scans all rows, unlike the classifier.
func Columns(records []*Record) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, key := range rec.Fields() {
			if !seen[key] {
				seen[key] = true
				cols = append(cols, key)
			}
		}
	}
	return cols
}

// NumericColumns returns the columns whose decoded representation is
// numeric: at least one non-nil value, and every non-nil value a number.
// This is the dtype-style detection used by charting and the spreadsheet
// summary, distinct from the classifier's coverage threshold.
func NumericColumns(records []*Record) []string {
	var out []string
	for _, col := range Columns(records) {
		numeric := false
		ok := true
		for _, rec := range records {
			v, present := rec.Get(col)
			if !present || v == nil {
				continue
			}
			switch v.(type) {
			case float64, int, int64, float32:
				numeric = true
			default:
				ok = false
			}
			if !ok {
				break
			}
		}
		if ok && numeric {
			out = append(out, col)
		}
	}
	return out
}
