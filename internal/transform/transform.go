package transform

import "RetailPulse/internal/model"

// Display colours for waterfall bars.
const (
	ColorSuccess = "#10b981"
	ColorDanger  = "#ef4444"
	ColorInfo    = "#3b82f6"
)

// ParetoLimit is the number of leading Pareto entries a chart shows.
const ParetoLimit = 10

// KPI passes the summary through unchanged. Formatting belongs to the
// presentation boundary.
func KPI(s model.KPISummary) model.KPISummary {
	return s
}

// WaterfallSeries holds the aligned bar data of a waterfall chart.
type WaterfallSeries struct {
	Labels []string
	Values []float64
	Colors []string
}

// ColorForKind maps a step kind to its bar colour.
func ColorForKind(k model.StepKind) string {
	switch k {
	case model.StepPositive:
		return ColorSuccess
	case model.StepNegative:
		return ColorDanger
	default:
		return ColorInfo
	}
}

// Waterfall converts steps to bars in input order. Values are passed through
// as given; the kind only selects the colour.
func Waterfall(steps []model.WaterfallStep) WaterfallSeries {
	out := WaterfallSeries{
		Labels: make([]string, len(steps)),
		Values: make([]float64, len(steps)),
		Colors: make([]string, len(steps)),
	}
	for i, s := range steps {
		out.Labels[i] = s.Label
		out.Values[i] = s.Value
		out.Colors[i] = ColorForKind(s.Kind)
	}
	return out
}

// ParetoSeries holds three sequences aligned by index.
type ParetoSeries struct {
	Categories []string
	Profits    []float64
	Cumulative []float64
}

// Pareto keeps the first ParetoLimit entries of an already sorted sequence.
// Nothing is re-sorted and truncation leaves no marker.
func Pareto(entries []model.ParetoEntry) ParetoSeries {
	n := len(entries)
	if n > ParetoLimit {
		n = ParetoLimit
	}
	out := ParetoSeries{
		Categories: make([]string, n),
		Profits:    make([]float64, n),
		Cumulative: make([]float64, n),
	}
	for i, e := range entries[:n] {
		out.Categories[i] = e.Category
		out.Profits[i] = e.Profit
		out.Cumulative[i] = e.CumulativePercentage
	}
	return out
}

// ForecastSeries holds the forecast line and its confidence band. Lower only
// anchors the band's fill and is not drawn.
type ForecastSeries struct {
	Dates    []string
	Forecast []float64
	Upper    []float64
	Lower    []float64
}

// Forecast splits points into aligned sequences; index i of every sequence
// refers to points[i]. The interval ordering is not checked.
func Forecast(points []model.ForecastPoint) ForecastSeries {
	out := ForecastSeries{
		Dates:    make([]string, len(points)),
		Forecast: make([]float64, len(points)),
		Upper:    make([]float64, len(points)),
		Lower:    make([]float64, len(points)),
	}
	for i, p := range points {
		out.Dates[i] = p.Date
		out.Forecast[i] = p.Forecast
		out.Upper[i] = p.UpperCI
		out.Lower[i] = p.LowerCI
	}
	return out
}
