package insights

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/finreports/insightd/internal/dataset"
)

type growthEntry struct {
	category string
	rate     float64
}

// complexInsights crosses the first category field with the first date
// field: per-category growth from the earliest to the latest period, then
// fastest/slowest growers and the gap between them.
func complexInsights(records []*dataset.Record, dateFields, categoryFields, numericFields []string) []Insight {
	var out []Insight
	if len(dateFields) == 0 || len(categoryFields) == 0 || len(numericFields) == 0 {
		return out
	}
	dateField := dateFields[0]
	categoryField := categoryFields[0]

	for _, field := range numericFields {
		organized, order, err := groupByCategoryAndDate(records, dateField, categoryField, field)
		if err != nil {
			slog.Warn("cross-dimensional insights skipped for field", "field", field, "error", err)
			continue
		}
		if len(organized) < 2 {
			continue
		}

		var growth []growthEntry
		for _, category := range order {
			byDate := organized[category]
			if len(byDate.dates) < 2 {
				continue
			}
			dates := append([]any(nil), byDate.dates...)
			sort.SliceStable(dates, func(i, j int) bool {
				return dataset.CompareValues(dates[i], dates[j]) < 0
			})
			earliest := byDate.values[dateKey(dates[0])]
			latest := byDate.values[dateKey(dates[len(dates)-1])]

			earliestAvg := sum(earliest) / float64(len(earliest))
			latestAvg := sum(latest) / float64(len(latest))
			rate := 0.0
			if earliestAvg > 0 {
				rate = (latestAvg - earliestAvg) / earliestAvg * 100
			}
			growth = append(growth, growthEntry{category: category, rate: rate})
		}
		if len(growth) < 2 {
			continue
		}

		sort.SliceStable(growth, func(i, j int) bool { return growth[i].rate > growth[j].rate })
		fastest := growth[0]
		slowest := growth[len(growth)-1]
		label := fieldLabel(field)

		out = append(out, Insight{
			fmt.Sprintf("The fastest growing category for %s is '%s' with a growth rate of %.1f%%.", label, fastest.category, fastest.rate),
			CategoryComplex,
		})
		if slowest.rate < 0 {
			out = append(out, Insight{
				fmt.Sprintf("The category '%s' is showing a decline of %.1f%% in %s.", slowest.category, -slowest.rate, label),
				CategoryComplex,
			})
		} else {
			out = append(out, Insight{
				fmt.Sprintf("The slowest growing category for %s is '%s' with a growth rate of %.1f%%.", label, slowest.category, slowest.rate),
				CategoryComplex,
			})
		}

		if diff := fastest.rate - slowest.rate; diff > 50 {
			out = append(out, Insight{
				fmt.Sprintf("There is a significant growth gap of %.1f%% between the best and worst performing categories for %s.", diff, label),
				CategoryComplex,
			})
		}
	}
	return out
}

// dateBuckets keeps per-date value lists for one category. Dates are tracked
// both as raw values (for ordering) and by key (for lookup). The key carries
// the dynamic type so a raw 2023 and the string "2023" stay separate buckets.
type dateBuckets struct {
	dates  []any
	values map[string][]float64
}

func dateKey(v any) string {
	return fmt.Sprintf("%T\x00%s", v, dataset.Stringify(v))
}

func groupByCategoryAndDate(records []*dataset.Record, dateField, categoryField, numericField string) (map[string]*dateBuckets, []string, error) {
	organized := make(map[string]*dateBuckets)
	var order []string

	for _, rec := range records {
		d, dok := rec.Get(dateField)
		c, cok := rec.Get(categoryField)
		v, vok := rec.Get(numericField)
		if !dok || !cok || !vok || d == nil || c == nil || v == nil {
			continue
		}
		f, err := dataset.Float(v)
		if err != nil {
			return nil, nil, err
		}

		category := dataset.Stringify(c)
		bucket, seen := organized[category]
		if !seen {
			bucket = &dateBuckets{values: make(map[string][]float64)}
			organized[category] = bucket
			order = append(order, category)
		}
		key := dateKey(d)
		if _, dseen := bucket.values[key]; !dseen {
			bucket.dates = append(bucket.dates, d)
		}
		bucket.values[key] = append(bucket.values[key], f)
	}
	return organized, order, nil
}
