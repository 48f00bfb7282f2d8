package charts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/finreports/insightd/internal/dataset"
)

// Column-name fragments used to pick chart dimensions. These lists are the
// chart builder's own and intentionally differ slightly from the insight
// classifier's.
var (
	dateColumnTerms     = []string{"date", "month", "year", "quarter", "period"}
	categoryColumnTerms = []string{"category", "type", "segment", "department", "division", "product"}
)

// maxCharts caps the number of specs one build emits.
const maxCharts = 5

// Build derives chart specs from a record set: time series, category
// comparison, distribution, composition, and a correlation scatter when the
// other generators produced fewer than two charts. Each generator is
// optional; a build over unusable data returns an empty list rather than an
// error.
func Build(records []*dataset.Record) []Spec {
	var specs []Spec
	if len(records) == 0 {
		return specs
	}

	columns := dataset.Columns(records)
	dateCols := matchColumns(columns, dateColumnTerms)
	categoryCols := matchColumns(columns, categoryColumnTerms)
	numericCols := dataset.NumericColumns(records)

	if s, ok := timeSeriesChart(records, dateCols, numericCols); ok {
		specs = append(specs, s)
	}
	if s, ok := categoryComparisonChart(records, categoryCols, numericCols); ok {
		specs = append(specs, s)
	}
	if s, ok := distributionChart(records, numericCols); ok {
		specs = append(specs, s)
	}
	if s, ok := compositionChart(records, categoryCols, numericCols); ok {
		specs = append(specs, s)
	}
	if len(specs) < 2 {
		if s, ok := correlationChart(records, numericCols); ok {
			specs = append(specs, s)
		}
	}

	if len(specs) > maxCharts {
		specs = specs[:maxCharts]
	}
	return specs
}

func matchColumns(columns, terms []string) []string {
	var out []string
	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, t := range terms {
			if strings.Contains(lower, t) {
				out = append(out, col)
				break
			}
		}
	}
	return out
}

type categoryTotal struct {
	name  string
	total float64
}

// sumByCategory aggregates a numeric column by category value, descending
// by total; ties keep first-seen order.
func sumByCategory(records []*dataset.Record, categoryCol, numericCol string) []categoryTotal {
	totals := make(map[string]float64)
	var order []string
	for _, rec := range records {
		c, cok := rec.Get(categoryCol)
		v, vok := rec.Get(numericCol)
		if !cok || !vok || c == nil || v == nil {
			continue
		}
		f, err := dataset.Float(v)
		if err != nil {
			continue
		}
		name := dataset.Stringify(c)
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		totals[name] += f
	}

	out := make([]categoryTotal, 0, len(order))
	for _, name := range order {
		out = append(out, categoryTotal{name: name, total: totals[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].total > out[j].total })
	return out
}

// categoryComparisonChart is a bar chart of the first numeric column summed
// over the first category column, capped at the top 10 categories.
func categoryComparisonChart(records []*dataset.Record, categoryCols, numericCols []string) (Spec, bool) {
	if len(categoryCols) == 0 || len(numericCols) == 0 {
		return Spec{}, false
	}
	categoryCol := categoryCols[0]
	numericCol := numericCols[0]

	grouped := sumByCategory(records, categoryCol, numericCol)
	if len(grouped) == 0 {
		return Spec{}, false
	}
	if len(grouped) > 10 {
		grouped = grouped[:10]
	}

	labels := make([]string, len(grouped))
	values := make([]float64, len(grouped))
	for i, g := range grouped {
		labels[i] = g.name
		values[i] = g.total
	}

	return Spec{
		Kind:        KindBar,
		Title:       fmt.Sprintf("%s by %s", numericCol, categoryCol),
		Description: fmt.Sprintf("This chart compares %s across different %s categories.", numericCol, categoryCol),
		Labels:      labels,
		Series:      []Series{{Label: numericCol, Data: values}},
	}, true
}

// compositionChart is a pie over the same aggregation; more than 8 slices
// folds everything past the top 7 into "Other".
func compositionChart(records []*dataset.Record, categoryCols, numericCols []string) (Spec, bool) {
	if len(categoryCols) == 0 || len(numericCols) == 0 {
		return Spec{}, false
	}
	categoryCol := categoryCols[0]
	numericCol := numericCols[0]

	grouped := sumByCategory(records, categoryCol, numericCol)
	if len(grouped) == 0 {
		return Spec{}, false
	}
	if len(grouped) > 8 {
		var other float64
		for _, g := range grouped[7:] {
			other += g.total
		}
		grouped = append(grouped[:7:7], categoryTotal{name: "Other", total: other})
	}

	labels := make([]string, len(grouped))
	values := make([]float64, len(grouped))
	for i, g := range grouped {
		labels[i] = g.name
		values[i] = g.total
	}

	return Spec{
		Kind:        KindPie,
		Title:       fmt.Sprintf("Composition of %s by %s", numericCol, categoryCol),
		Description: fmt.Sprintf("This chart shows the proportion of %s by different %s categories.", numericCol, categoryCol),
		Labels:      labels,
		Series:      []Series{{Label: numericCol, Data: values}},
	}, true
}

// correlationChart pairs the first two numeric columns row-by-row into a
// scatter; rows missing either value are skipped.
func correlationChart(records []*dataset.Record, numericCols []string) (Spec, bool) {
	if len(numericCols) < 2 {
		return Spec{}, false
	}
	xCol, yCol := numericCols[0], numericCols[1]

	var xs, ys []float64
	for _, rec := range records {
		xv, xok := rec.Get(xCol)
		yv, yok := rec.Get(yCol)
		if !xok || !yok || xv == nil || yv == nil {
			continue
		}
		x, xerr := dataset.Float(xv)
		y, yerr := dataset.Float(yv)
		if xerr != nil || yerr != nil {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) == 0 {
		return Spec{}, false
	}

	return Spec{
		Kind:        KindScatter,
		Title:       fmt.Sprintf("Correlation: %s vs %s", xCol, yCol),
		Description: fmt.Sprintf("This scatter plot shows the relationship between %s and %s.", xCol, yCol),
		Labels:      []string{xCol, yCol},
		Series:      []Series{{Label: "Data Points", X: xs, Y: ys}},
	}, true
}
