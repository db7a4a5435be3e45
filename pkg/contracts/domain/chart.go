// Package domain holds the data contracts shared between the service layer
// and external consumers of the API.
package domain

// SeriesKind distinguishes how a metric series is meant to be drawn.
type SeriesKind string

const (
	// SeriesBar is a count-type metric drawn as grouped bars on the
	// primary axis.
	SeriesBar SeriesKind = "bar"
	// SeriesLine is a rate or duration metric drawn as an overlaid line
	// on the secondary axis.
	SeriesLine SeriesKind = "line"
)

// Series is one named metric column aligned with ChartData.Labels.
type Series struct {
	Name   string     `json:"name"`
	Kind   SeriesKind `json:"kind"`
	Values []float64  `json:"values"`
}

// ChartData is the dual-axis chart payload for one major category: rows
// filtered to the category, sorted descending by store count, with up to
// two bar series and up to two line series depending on which metric
// columns exist in the source file.
type ChartData struct {
	Category     string   `json:"category"`
	Labels       []string `json:"labels"`
	Bars         []Series `json:"bars"`
	Lines        []Series `json:"lines"`
	RowCount     int      `json:"row_count"`
	HideSubtotal bool     `json:"hide_subtotal"`
}
