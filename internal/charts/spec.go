// Package charts derives renderer-agnostic chart specifications from a
// record set. It re-derives its own dimension candidates by scanning every
// column name, independent of the insight classifier.
package charts

// Kind of chart a spec describes.
type Kind string

const (
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindPie     Kind = "pie"
	KindScatter Kind = "scatter"
)

// Series is one labeled sequence of values. For scatter charts Data is
// empty and the X/Y coordinate arrays are used instead.
type Series struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data,omitempty"`
	X     []float64 `json:"x,omitempty"`
	Y     []float64 `json:"y,omitempty"`
}

// Spec is one chart: labels are shared by every series, and every non-
// scatter series has exactly len(Labels) values.
type Spec struct {
	Kind        Kind     `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
	Series      []Series `json:"datasets"`
}
