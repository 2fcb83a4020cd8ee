package model

// KPISummary is the headline metric snapshot for a filter scope.
type KPISummary struct {
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
	Margin  float64 `json:"margin"`
	Volume  float64 `json:"volume"`
}

// StepKind classifies a waterfall step. It drives colour only, never the sign.
type StepKind string

const (
	StepPositive StepKind = "positive"
	StepNegative StepKind = "negative"
	StepTotal    StepKind = "total"
)

// WaterfallStep is one bar of the revenue-to-profit decomposition.
type WaterfallStep struct {
	Label string   `json:"label"`
	Value float64  `json:"value"`
	Kind  StepKind `json:"kind"`
}

// ParetoEntry is one category of the profit concentration ranking.
type ParetoEntry struct {
	Category             string  `json:"category"`
	Profit               float64 `json:"profit"`
	CumulativePercentage float64 `json:"cumulative_percentage"`
}

// ProfitDiagnostic is the decoded profit-diagnostic payload.
type ProfitDiagnostic struct {
	Waterfall []WaterfallStep `json:"waterfall"`
	Pareto    []ParetoEntry   `json:"pareto"`
}

// ForecastPoint is one day of the demand forecast horizon.
type ForecastPoint struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Forecast float64 `json:"forecast"`
	UpperCI  float64 `json:"upper_ci"`
	LowerCI  float64 `json:"lower_ci"`
}
