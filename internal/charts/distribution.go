package charts

import (
	"fmt"

	"github.com/finreports/insightd/internal/dataset"
)

// distributionChart buckets the first numeric column into equal-width bins
// over its observed range and counts the second numeric column against the
// identical edges, emitting a two-series histogram.
func distributionChart(records []*dataset.Record, numericCols []string) (Spec, bool) {
	if len(numericCols) < 2 {
		return Spec{}, false
	}
	col1, col2 := numericCols[0], numericCols[1]

	values1 := columnFloats(records, col1)
	values2 := columnFloats(records, col2)
	if len(values1) == 0 {
		return Spec{}, false
	}

	bins := 5
	if len(records) > 10 {
		bins = len(records) / 5
		if bins > 10 {
			bins = 10
		}
	}
	if bins < 1 {
		bins = 1
	}

	lo := minFloat(values1)
	hi := maxFloat(values1)
	if hi == lo {
		// Zero-width range cannot be binned.
		return Spec{}, false
	}

	edges := make([]float64, bins+1)
	width := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi

	counts1 := bucketCounts(values1, edges)
	counts2 := bucketCounts(values2, edges)

	labels := make([]string, bins)
	for i := 0; i < bins; i++ {
		labels[i] = fmt.Sprintf("%.1f-%.1f", edges[i], edges[i+1])
	}

	return Spec{
		Kind:        KindBar,
		Title:       "Distribution Comparison",
		Description: fmt.Sprintf("This chart shows the distribution of %s and %s.", col1, col2),
		Labels:      labels,
		Series: []Series{
			{Label: col1, Data: counts1},
			{Label: col2, Data: counts2},
		},
	}, true
}

// bucketCounts drops values outside the edge range, matching how reused bin
// edges behave when the second column's range is wider than the first's.
func bucketCounts(values []float64, edges []float64) []float64 {
	bins := len(edges) - 1
	counts := make([]float64, bins)
	lo, hi := edges[0], edges[bins]
	width := (hi - lo) / float64(bins)
	for _, v := range values {
		if v < lo || v > hi {
			continue
		}
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	return counts
}

func columnFloats(records []*dataset.Record, col string) []float64 {
	var out []float64
	for _, rec := range records {
		v, ok := rec.Get(col)
		if !ok || v == nil {
			continue
		}
		f, err := dataset.Float(v)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

func minFloat(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxFloat(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
