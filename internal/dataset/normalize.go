package dataset

import (
	"math"
	"strings"
)

// canonicalField pairs a canonical financial field with the name fragments
// that map a source column onto it. Order matters: targets are claimed in
// declaration order, first matching source column wins per target.
type canonicalField struct {
	name    string
	matches []string
}

var financialFields = []canonicalField{
	{"revenue", []string{"revenue", "sales", "income", "earnings", "amt", "amount", "total"}},
	{"expenses", []string{"expenses", "costs", "expenditure", "expense"}},
	{"profit", []string{"profit", "net_income", "net_profit", "gross_profit"}},
	{"date", []string{"date", "period", "month", "year", "quarter"}},
	{"category", []string{"category", "department", "division", "segment", "product_line", "product"}},
}

// Normalize cleans raw decoded records and, when the first row looks like
// financial data, remaps its columns onto the canonical schema.
func Normalize(records []*Record) []*Record {
	return DetectFinancialStructure(Clean(records))
}

// Clean rewrites every record with normalized keys (trimmed, lowercased,
// spaces to underscores) and normalized values: NaN becomes nil, strings of
// digits with at most one decimal point become float64. Everything else is
// left as-is.
func Clean(records []*Record) []*Record {
	out := make([]*Record, 0, len(records))
	for _, rec := range records {
		clean := NewRecord()
		for _, key := range rec.Fields() {
			ck := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
			clean.Set(ck, cleanValue(rec.Value(key)))
		}
		out = append(out, clean)
	}
	return out
}

func cleanValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(t) {
			return nil
		}
		return t
	case string:
		if isNumericString(t) {
			f, err := Float(t)
			if err == nil {
				return f
			}
		}
		return t
	}
	return v
}

// DetectFinancialStructure samples the first record for columns whose names
// contain a known financial fragment and remaps them onto the canonical
// field names. When fewer than two canonical targets match, the heuristic is
// considered low-confidence and records are returned unchanged.
//
// Mapped canonical keys come first in target-declaration order, then the
// unclaimed original columns in their original order. A source column named
// like an existing canonical key overwrites it; that collision policy is
// deliberate.
func DetectFinancialStructure(records []*Record) []*Record {
	if len(records) == 0 {
		return records
	}

	sample := records[0]
	mapping := make(map[string]string) // original key -> canonical name
	var mappedOrder []string

	for _, target := range financialFields {
		for _, key := range sample.Fields() {
			if containsAny(strings.ToLower(key), target.matches) {
				if _, claimed := mapping[key]; !claimed {
					mappedOrder = append(mappedOrder, key)
				}
				mapping[key] = target.name
				break
			}
		}
	}

	if len(mapping) < 2 {
		return records
	}

	out := make([]*Record, 0, len(records))
	for _, rec := range records {
		mapped := NewRecord()
		for _, orig := range mappedOrder {
			if v, ok := rec.Get(orig); ok {
				mapped.Set(mapping[orig], v)
			}
		}
		for _, key := range rec.Fields() {
			if _, claimed := mapping[key]; !claimed {
				mapped.Set(key, rec.Value(key))
			}
		}
		out = append(out, mapped)
	}
	return out
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
