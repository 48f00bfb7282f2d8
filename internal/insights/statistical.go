package insights

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/finreports/insightd/internal/dataset"
)

var moneyTerms = []string{"revenue", "profit", "sales", "income"}

// statisticalInsights emits total/average/max/min per numeric field, plus a
// spread line for money-like fields and a variability line when enough
// values exist. Fields with fewer than three usable values are skipped.
func statisticalInsights(records []*dataset.Record, numericFields []string) []Insight {
	var out []Insight

	for _, field := range numericFields {
		values, err := fieldValues(records, field)
		if err != nil {
			slog.Warn("statistics skipped for field", "field", field, "error", err)
			continue
		}
		if len(values) < 3 {
			continue
		}

		total := sum(values)
		average := total / float64(len(values))
		maximum := maxOf(values)
		minimum := minOf(values)
		label := fieldLabel(field)

		out = append(out,
			Insight{fmt.Sprintf("The total %s is %.2f.", label, total), CategoryStatistical},
			Insight{fmt.Sprintf("The average %s is %.2f.", label, average), CategoryStatistical},
			Insight{fmt.Sprintf("The maximum %s recorded is %.2f.", label, maximum), CategoryStatistical},
			Insight{fmt.Sprintf("The minimum %s recorded is %.2f.", label, minimum), CategoryStatistical},
		)

		if containsAnyTerm(field, moneyTerms) {
			spread := 0.0
			if minimum > 0 {
				spread = (maximum - minimum) / minimum * 100
			}
			out = append(out, Insight{
				fmt.Sprintf("There is a %.1f%% difference between the highest and lowest %s.", spread, label),
				CategoryStatistical,
			})
		}

		if len(values) >= 5 {
			variability := 0.0
			if average > 0 {
				variability = sampleStdev(values, average) / average * 100
			}
			switch {
			case variability > 30:
				out = append(out, Insight{
					fmt.Sprintf("There is high variability in %s (coefficient of variation: %.1f%%).", label, variability),
					CategoryStatistical,
				})
			case variability < 10:
				out = append(out, Insight{
					fmt.Sprintf("There is low variability in %s (coefficient of variation: %.1f%%).", label, variability),
					CategoryStatistical,
				})
			}
		}
	}
	return out
}

// fieldValues collects the present, non-null values of a field as floats.
// A value that will not coerce fails the whole field.
func fieldValues(records []*dataset.Record, field string) ([]float64, error) {
	var values []float64
	for _, rec := range records {
		v, ok := rec.Get(field)
		if !ok || v == nil {
			continue
		}
		f, err := dataset.Float(v)
		if err != nil {
			return nil, err
		}
		values = append(values, f)
	}
	return values, nil
}

func fieldLabel(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func containsAnyTerm(field string, terms []string) bool {
	lower := strings.ToLower(field)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// sampleStdev is the n-1 standard deviation.
func sampleStdev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
