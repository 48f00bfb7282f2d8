package charts

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/finreports/insightd/internal/dataset"
)

// Layouts tried when coercing a date column chronologically. An entry that
// parses with none of them keeps its raw string form and sorts after the
// parsed dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006",
}

type dateGroup struct {
	label  string
	when   time.Time
	parsed bool
	sums   []float64
	counts []int
}

// timeSeriesChart groups rows by the first date-like column and averages up
// to three numeric columns per date, one line series per column.
func timeSeriesChart(records []*dataset.Record, dateCols, numericCols []string) (Spec, bool) {
	if len(dateCols) == 0 || len(numericCols) == 0 {
		return Spec{}, false
	}
	dateCol := dateCols[0]
	selected := numericCols
	if len(selected) > 3 {
		selected = selected[:3]
	}

	groups := make(map[string]*dateGroup)
	var order []*dateGroup
	for _, rec := range records {
		dv, ok := rec.Get(dateCol)
		if !ok || dv == nil {
			continue
		}
		label, when, parsed := parseDateValue(dv)
		g, seen := groups[label]
		if !seen {
			g = &dateGroup{
				label:  label,
				when:   when,
				parsed: parsed,
				sums:   make([]float64, len(selected)),
				counts: make([]int, len(selected)),
			}
			groups[label] = g
			order = append(order, g)
		}
		for i, col := range selected {
			v, vok := rec.Get(col)
			if !vok || v == nil {
				continue
			}
			f, err := dataset.Float(v)
			if err != nil {
				continue
			}
			g.sums[i] += f
			g.counts[i]++
		}
	}
	if len(order) == 0 {
		return Spec{}, false
	}

	// Chronological when parseable; unparsed labels go last, lexically.
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.parsed && b.parsed {
			return a.when.Before(b.when)
		}
		if a.parsed != b.parsed {
			return a.parsed
		}
		return a.label < b.label
	})

	labels := make([]string, len(order))
	series := make([]Series, len(selected))
	for i, col := range selected {
		series[i] = Series{Label: col, Data: make([]float64, len(order))}
	}
	for gi, g := range order {
		labels[gi] = g.label
		for si := range selected {
			if g.counts[si] > 0 {
				series[si].Data[gi] = g.sums[si] / float64(g.counts[si])
			}
		}
	}

	return Spec{
		Kind:        KindLine,
		Title:       "Time Series Analysis",
		Description: fmt.Sprintf("This chart shows the trend of %s over time.", strings.Join(selected, ", ")),
		Labels:      labels,
		Series:      series,
	}, true
}

// parseDateValue attempts calendar parsing of a raw date cell. Unparseable
// values become their own opaque label rather than failing the chart.
func parseDateValue(v any) (label string, when time.Time, parsed bool) {
	s := strings.TrimSpace(dataset.Stringify(v))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), t, true
		}
	}
	return s, time.Time{}, false
}
