package insights

import (
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

func TestGenerateEmptyRecordSet(t *testing.T) {
	out := Generate(nil)
	require.Len(t, out, 1)
	assert.Equal(t, "Insufficient data for analysis.", out[0].Text)
}

func TestGenerateStatisticalTexts(t *testing.T) {
	records := []*dataset.Record{
		rec("revenue", 100.0),
		rec("revenue", 120.0),
		rec("revenue", 120.0),
	}
	texts := Analyze(records)
	assert.Contains(t, texts, "The total revenue is 340.00.")
	assert.Contains(t, texts, "The average revenue is 113.33.")
	assert.Contains(t, texts, "The maximum revenue recorded is 120.00.")
	assert.Contains(t, texts, "The minimum revenue recorded is 100.00.")
	assert.Contains(t, texts, "There is a 20.0% difference between the highest and lowest revenue.")
}

func TestGenerateAppendsRecommendationsWhenSparse(t *testing.T) {
	// two usable values only: no statistics, no trend, nothing else
	records := []*dataset.Record{
		rec("revenue", 10.0),
		rec("revenue", 20.0),
	}
	out := Generate(records)
	recs := Recommendations()
	require.GreaterOrEqual(t, len(out), len(recs))
	tail := out[len(out)-len(recs):]
	for i, in := range tail {
		assert.Equal(t, recs[i].Text, in.Text)
		assert.Equal(t, CategoryRecommendation, in.Category)
	}
}

func TestTrendBoundaryIsStable(t *testing.T) {
	// exactly -10% change stays "stable"
	records := []*dataset.Record{
		rec("month", "2024-01", "revenue", 100.0),
		rec("month", "2024-02", "revenue", 95.0),
		rec("month", "2024-03", "revenue", 90.0),
	}
	out := trendInsights(records, []string{"month"}, []string{"revenue"})
	require.Len(t, out, 1)
	assert.Equal(t, "The revenue remains relatively stable over the analyzed period (change: -10.0%).", out[0].Text)
}

func TestTrendIncreasing(t *testing.T) {
	records := []*dataset.Record{
		rec("month", "2024-01", "revenue", 100.0),
		rec("month", "2024-02", "revenue", 110.0),
		rec("month", "2024-03", "revenue", 150.0),
	}
	out := trendInsights(records, []string{"month"}, []string{"revenue"})
	require.Len(t, out, 1)
	assert.Equal(t, "The revenue shows an increasing trend of 50.0% over the analyzed period.", out[0].Text)
}

func TestTrendSkipsZeroDates(t *testing.T) {
	records := []*dataset.Record{
		rec("month", "", "revenue", 100.0),
		rec("month", "2024-01", "revenue", 100.0),
		rec("month", "2024-02", "revenue", 200.0),
	}
	out := trendInsights(records, []string{"month"}, []string{"revenue"})
	// only two usable points remain
	assert.Empty(t, out)
}

func TestCategoryBestWorst(t *testing.T) {
	records := []*dataset.Record{
		rec("category", "a", "revenue", 10.0),
		rec("category", "a", "revenue", 20.0),
		rec("category", "b", "revenue", 100.0),
		rec("category", "b", "revenue", 200.0),
	}
	out := categoryInsights(records, []string{"category"}, []string{"revenue"})
	texts := make([]string, len(out))
	for i, in := range out {
		texts[i] = in.Text
	}
	assert.Contains(t, texts, "The best performing category in terms of revenue is 'b' with an average of 150.00.")
}

func TestDedupeKeepsFirstOrder(t *testing.T) {
	in := []Insight{
		{Text: "a", Category: CategoryStatistical},
		{Text: "b", Category: CategoryTrend},
		{Text: "a", Category: CategoryCategory},
	}
	out := dedupe(in)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Text)
	assert.Equal(t, CategoryStatistical, out[0].Category)
	assert.Equal(t, "b", out[1].Text)
}

func TestGenerateDropsUncoercibleField(t *testing.T) {
	// classifier confirms "revenue" numeric from coverage, but one value
	// cannot be coerced; the field is dropped without failing the run
	records := []*dataset.Record{
		rec("revenue", 1.0),
		rec("revenue", 2.0),
		rec("revenue", 3.0),
		rec("revenue", 4.0),
		rec("revenue", 5.0),
		rec("revenue", 6.0),
		rec("revenue", 7.0),
		rec("revenue", 8.0),
		rec("revenue", 9.0),
		rec("revenue", "12.5.3"),
	}
	out := Generate(records)
	for _, in := range out {
		assert.NotContains(t, in.Text, "total revenue")
	}
}

func TestGroupByCategoryAndDateKeepsMixedTypeDates(t *testing.T) {
	records := []*dataset.Record{
		rec("date", 2023.0, "category", "north", "revenue", 100.0),
		rec("date", "2023", "category", "north", "revenue", 50.0),
	}
	organized, order, err := groupByCategoryAndDate(records, "date", "category", "revenue")
	require.NoError(t, err)
	require.Equal(t, []string{"north"}, order)
	// a raw 2023 and the string "2023" stay separate buckets
	bucket := organized["north"]
	assert.Len(t, bucket.dates, 2)
	assert.Equal(t, []float64{100}, bucket.values[dateKey(2023.0)])
	assert.Equal(t, []float64{50}, bucket.values[dateKey("2023")])
}
