package insights

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/finreports/insightd/internal/dataset"
)

type rankedGroup struct {
	name    string
	average float64
}

// categoryInsights compares group averages of each numeric field across the
// first category field: best/worst performer, performance gap, dominance
// and concentration.
func categoryInsights(records []*dataset.Record, categoryFields, numericFields []string) []Insight {
	var out []Insight
	if len(categoryFields) == 0 || len(numericFields) == 0 {
		return out
	}
	categoryField := categoryFields[0]

	for _, field := range numericFields {
		groups, order, err := groupByCategory(records, categoryField, field)
		if err != nil {
			slog.Warn("category comparison skipped for field", "field", field, "error", err)
			continue
		}
		if len(groups) < 2 {
			continue
		}

		ranked := make([]rankedGroup, 0, len(groups))
		for _, name := range order {
			values := groups[name]
			ranked = append(ranked, rankedGroup{name: name, average: sum(values) / float64(len(values))})
		}
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].average > ranked[j].average })

		top := ranked[0]
		bottom := ranked[len(ranked)-1]
		label := fieldLabel(field)

		out = append(out,
			Insight{fmt.Sprintf("The best performing category in terms of %s is '%s' with an average of %.2f.", label, top.name, top.average), CategoryCategory},
			Insight{fmt.Sprintf("The lowest performing category in terms of %s is '%s' with an average of %.2f.", label, bottom.name, bottom.average), CategoryCategory},
		)

		gap := 0.0
		if bottom.average > 0 {
			gap = (top.average - bottom.average) / bottom.average * 100
		}
		if gap > 50 {
			out = append(out, Insight{
				fmt.Sprintf("There is a significant performance gap of %.1f%% between the top and bottom categories for %s.", gap, label),
				CategoryCategory,
			})
		}

		if len(ranked) >= 3 {
			var total float64
			for _, g := range ranked {
				total += g.average
			}
			for _, g := range ranked {
				contribution := 0.0
				if total > 0 {
					contribution = g.average / total * 100
				}
				if contribution > 40 {
					out = append(out, Insight{
						fmt.Sprintf("The '%s' category dominates with %.1f%% of the total %s.", g.name, contribution, label),
						CategoryCategory,
					})
					break
				}
			}
			if len(ranked) >= 4 && total > 0 {
				topTwo := (ranked[0].average + ranked[1].average) / total * 100
				if topTwo > 70 {
					out = append(out, Insight{
						fmt.Sprintf("Top two categories represent %.1f%% of the total %s, indicating high concentration.", topTwo, label),
						CategoryCategory,
					})
				}
			}
		}
	}
	return out
}

// groupByCategory buckets non-null values by the stringified category,
// remembering first-seen group order so ranking ties stay deterministic.
func groupByCategory(records []*dataset.Record, categoryField, numericField string) (map[string][]float64, []string, error) {
	groups := make(map[string][]float64)
	var order []string
	for _, rec := range records {
		c, cok := rec.Get(categoryField)
		v, vok := rec.Get(numericField)
		if !cok || !vok || c == nil || v == nil {
			continue
		}
		f, err := dataset.Float(v)
		if err != nil {
			return nil, nil, err
		}
		name := dataset.Stringify(c)
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], f)
	}
	return groups, order, nil
}
