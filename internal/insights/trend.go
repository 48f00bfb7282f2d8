package insights

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/finreports/insightd/internal/dataset"
)

type datedValue struct {
	date  any
	value float64
}

// trendInsights looks at each numeric field against the first date field,
// sorts the pairs by the raw date value and reports overall and recent
// movement. No calendar parsing: dates order however their representation
// orders.
func trendInsights(records []*dataset.Record, dateFields, numericFields []string) []Insight {
	var out []Insight
	if len(dateFields) == 0 || len(numericFields) == 0 {
		return out
	}
	dateField := dateFields[0]

	for _, field := range numericFields {
		points, err := datedValues(records, dateField, field)
		if err != nil {
			slog.Warn("trend skipped for field", "field", field, "error", err)
			continue
		}
		if len(points) < 3 {
			continue
		}

		sort.SliceStable(points, func(i, j int) bool {
			return dataset.CompareValues(points[i].date, points[j].date) < 0
		})

		first := points[0].value
		last := points[len(points)-1].value
		change := 0.0
		if first > 0 {
			change = (last - first) / first * 100
		}

		label := fieldLabel(field)
		switch {
		case change > 10:
			out = append(out, Insight{
				fmt.Sprintf("The %s shows an increasing trend of %.1f%% over the analyzed period.", label, change),
				CategoryTrend,
			})
		case change < -10:
			out = append(out, Insight{
				fmt.Sprintf("The %s shows a decreasing trend of %.1f%% over the analyzed period.", label, -change),
				CategoryTrend,
			})
		default:
			out = append(out, Insight{
				fmt.Sprintf("The %s remains relatively stable over the analyzed period (change: %.1f%%).", label, change),
				CategoryTrend,
			})
		}

		// Segment comparison: split chronologically into up to 4 equal-ish
		// parts, last segment absorbs the remainder.
		if len(points) >= 6 {
			segments := len(points) / 2
			if segments > 4 {
				segments = 4
			}
			size := len(points) / segments

			averages := make([]float64, 0, segments)
			for i := 0; i < segments; i++ {
				start := i * size
				end := start + size
				if i == segments-1 {
					end = len(points)
				}
				var s float64
				for _, p := range points[start:end] {
					s += p.value
				}
				averages = append(averages, s/float64(end-start))
			}

			segChange := 0.0
			if averages[0] > 0 {
				segChange = (averages[len(averages)-1] - averages[0]) / averages[0] * 100
			}
			switch {
			case segChange > 15:
				out = append(out, Insight{
					fmt.Sprintf("The %s shows a strong positive trend in the most recent period (change: %.1f%%).", label, segChange),
					CategoryTrend,
				})
			case segChange < -15:
				out = append(out, Insight{
					fmt.Sprintf("The %s shows a concerning downward trend in the most recent period (change: %.1f%%).", label, -segChange),
					CategoryTrend,
				})
			}
		}
	}
	return out
}

// datedValues pairs a usable date with a non-null numeric value per record.
// Empty or zero dates are not usable.
func datedValues(records []*dataset.Record, dateField, numericField string) ([]datedValue, error) {
	var points []datedValue
	for _, rec := range records {
		d, dok := rec.Get(dateField)
		v, vok := rec.Get(numericField)
		if !dok || !vok || !dataset.Truthy(d) || v == nil {
			continue
		}
		f, err := dataset.Float(v)
		if err != nil {
			return nil, err
		}
		points = append(points, datedValue{date: d, value: f})
	}
	return points, nil
}
