package insights

// Static business recommendations appended when the generators produce too
// few insights. Literal data, not logic.
var recommendations = []string{
	"Consider conducting a detailed analysis of your best performing segments to identify success factors that can be applied elsewhere.",
	"Regular financial monitoring and reporting can help identify trends earlier and improve decision-making.",
	"Diversify revenue streams to reduce dependency on any single source and increase business resilience.",
	"Implement forecasting models to better predict future performance and prepare accordingly.",
	"Review cost structures periodically to identify opportunities for optimization and improved margins.",
}

// Recommendations returns the five generic recommendation insights.
func Recommendations() []Insight {
	out := make([]Insight, len(recommendations))
	for i, text := range recommendations {
		out[i] = Insight{Text: text, Category: CategoryRecommendation}
	}
	return out
}
