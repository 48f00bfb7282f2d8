package charts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finreports/insightd/internal/dataset"
)

func rec(pairs ...any) *dataset.Record {
	r := dataset.NewRecord()
	for i := 0; i < len(pairs); i += 2 {
		r.Set(pairs[i].(string), pairs[i+1])
	}
	return r
}

func richRecords() []*dataset.Record {
	var records []*dataset.Record
	for i := 0; i < 12; i++ {
		records = append(records, rec(
			"month", fmt.Sprintf("2024-%02d", i+1),
			"category", fmt.Sprintf("cat%d", i%3),
			"revenue", float64(100+i*10),
			"expenses", float64(40+i*5),
		))
	}
	return records
}

func TestBuildCapsAtFive(t *testing.T) {
	specs := Build(richRecords())
	assert.LessOrEqual(t, len(specs), 5)
	assert.NotEmpty(t, specs)
	for _, s := range specs {
		if s.Kind != KindScatter {
			for _, series := range s.Series {
				assert.Len(t, series.Data, len(s.Labels), "series length must match labels in %q", s.Title)
			}
		}
	}
}

func TestBuildEmptyRecords(t *testing.T) {
	assert.Empty(t, Build(nil))
}

func TestScatterOnlyWhenFewCharts(t *testing.T) {
	// two numeric columns, no date or category names: distribution and
	// correlation are the only candidates
	var records []*dataset.Record
	for i := 0; i < 6; i++ {
		records = append(records, rec("alpha", float64(i), "beta", float64(i*2)))
	}
	specs := Build(records)
	require.Len(t, specs, 2)
	assert.Equal(t, "Distribution Comparison", specs[0].Title)
	assert.Equal(t, KindScatter, specs[1].Kind)
	assert.Equal(t, []string{"alpha", "beta"}, specs[1].Labels)
	assert.Len(t, specs[1].Series[0].X, 6)
}

func TestCompositionFoldsIntoOther(t *testing.T) {
	var records []*dataset.Record
	for i := 0; i < 9; i++ {
		records = append(records, rec(
			"category", fmt.Sprintf("c%d", i),
			"revenue", float64((9-i)*10),
		))
	}
	spec, ok := compositionChart(records, []string{"category"}, []string{"revenue"})
	require.True(t, ok)
	require.Len(t, spec.Labels, 8)
	assert.Equal(t, "Other", spec.Labels[7])

	// the folded slice carries the sum of everything past the top seven
	var total float64
	for _, v := range spec.Series[0].Data {
		total += v
	}
	assert.InDelta(t, 450.0, total, 1e-9)
	assert.InDelta(t, 30.0, spec.Series[0].Data[7], 1e-9) // 20 + 10
}

func TestCategoryComparisonSortsDescending(t *testing.T) {
	records := []*dataset.Record{
		rec("category", "small", "revenue", 10.0),
		rec("category", "big", "revenue", 100.0),
		rec("category", "big", "revenue", 50.0),
	}
	spec, ok := categoryComparisonChart(records, []string{"category"}, []string{"revenue"})
	require.True(t, ok)
	assert.Equal(t, KindBar, spec.Kind)
	assert.Equal(t, []string{"big", "small"}, spec.Labels)
	assert.Equal(t, []float64{150, 10}, spec.Series[0].Data)
}

func TestDistributionSkipsZeroWidthRange(t *testing.T) {
	records := []*dataset.Record{
		rec("alpha", 5.0, "beta", 1.0),
		rec("alpha", 5.0, "beta", 2.0),
	}
	_, ok := distributionChart(records, []string{"alpha", "beta"})
	assert.False(t, ok)
}

func TestTimeSeriesSortsChronologically(t *testing.T) {
	records := []*dataset.Record{
		rec("date", "2024-03-01", "revenue", 30.0),
		rec("date", "2024-01-01", "revenue", 10.0),
		rec("date", "2024-02-01", "revenue", 20.0),
	}
	spec, ok := timeSeriesChart(records, []string{"date"}, []string{"revenue"})
	require.True(t, ok)
	assert.Equal(t, KindLine, spec.Kind)
	assert.Equal(t, []string{"2024-01-01", "2024-02-01", "2024-03-01"}, spec.Labels)
	assert.Equal(t, []float64{10, 20, 30}, spec.Series[0].Data)
}
