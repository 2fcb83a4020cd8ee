package collector

import (
	"bytes"
	"encoding/json"

	"RetailPulse/internal/model"
	"RetailPulse/internal/query"
)

// Wire shapes of the analytics service. Pointer fields distinguish a missing
// field from a zero value.

type wireKPIs struct {
	Revenue *float64 `json:"revenue"`
	Profit  *float64 `json:"profit"`
	Margin  *float64 `json:"margin"`
	Volume  *float64 `json:"volume"`
}

type wireStep struct {
	Label *string  `json:"label"`
	Value *float64 `json:"value"`
	Type  string   `json:"type"`
}

type wireParetoEntry struct {
	Category   *string  `json:"category"`
	Profit     *float64 `json:"profit"`
	Cumulative *float64 `json:"cumulative_percentage"`
}

type wireProfitDiagnostic struct {
	Waterfall *[]wireStep        `json:"waterfall"`
	Pareto    *[]wireParetoEntry `json:"pareto"`
}

type wireForecastPoint struct {
	Date     *string  `json:"date"`
	Forecast *float64 `json:"forecast"`
	UpperCI  *float64 `json:"upper_ci"`
	LowerCI  *float64 `json:"lower_ci"`
}

type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

// serviceErrorMessage reports the message of an explicit {"error": ...}
// payload. Arrays and objects without an error field yield ok == false.
func serviceErrorMessage(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}
	var env errorEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return "", false
	}
	if len(env.Error) == 0 || string(env.Error) == "null" {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(env.Error, &msg); err != nil {
		msg = string(env.Error)
	}
	if msg == "" {
		msg = "service reported an error"
	}
	return msg, true
}

func decodeKPIs(body []byte) (model.KPISummary, error) {
	const ep = query.EndpointKPIs
	var w wireKPIs
	if err := json.Unmarshal(body, &w); err != nil {
		return model.KPISummary{}, malformed(ep, "decode kpis: %v", err)
	}
	switch {
	case w.Revenue == nil:
		return model.KPISummary{}, malformed(ep, "missing field revenue")
	case w.Profit == nil:
		return model.KPISummary{}, malformed(ep, "missing field profit")
	case w.Margin == nil:
		return model.KPISummary{}, malformed(ep, "missing field margin")
	case w.Volume == nil:
		return model.KPISummary{}, malformed(ep, "missing field volume")
	}
	return model.KPISummary{
		Revenue: *w.Revenue,
		Profit:  *w.Profit,
		Margin:  *w.Margin,
		Volume:  *w.Volume,
	}, nil
}

func decodeProfitDiagnostic(body []byte) (model.ProfitDiagnostic, error) {
	const ep = query.EndpointProfit
	var w wireProfitDiagnostic
	if err := json.Unmarshal(body, &w); err != nil {
		return model.ProfitDiagnostic{}, malformed(ep, "decode profit diagnostic: %v", err)
	}
	if w.Waterfall == nil {
		return model.ProfitDiagnostic{}, malformed(ep, "missing field waterfall")
	}
	if w.Pareto == nil {
		return model.ProfitDiagnostic{}, malformed(ep, "missing field pareto")
	}

	out := model.ProfitDiagnostic{
		Waterfall: make([]model.WaterfallStep, len(*w.Waterfall)),
		Pareto:    make([]model.ParetoEntry, len(*w.Pareto)),
	}
	for i, s := range *w.Waterfall {
		if s.Label == nil || s.Value == nil {
			return model.ProfitDiagnostic{}, malformed(ep, "waterfall[%d]: missing label or value", i)
		}
		out.Waterfall[i] = model.WaterfallStep{Label: *s.Label, Value: *s.Value, Kind: model.StepKind(s.Type)}
	}
	for i, p := range *w.Pareto {
		if p.Category == nil || p.Profit == nil || p.Cumulative == nil {
			return model.ProfitDiagnostic{}, malformed(ep, "pareto[%d]: missing category, profit or cumulative_percentage", i)
		}
		out.Pareto[i] = model.ParetoEntry{Category: *p.Category, Profit: *p.Profit, CumulativePercentage: *p.Cumulative}
	}
	return out, nil
}

func decodeDemandForecast(body []byte) ([]model.ForecastPoint, error) {
	const ep = query.EndpointForecast
	var w []wireForecastPoint
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, malformed(ep, "decode demand forecast: %v", err)
	}
	if w == nil {
		return nil, malformed(ep, "expected an array of forecast points")
	}
	out := make([]model.ForecastPoint, len(w))
	for i, p := range w {
		if p.Date == nil || p.Forecast == nil || p.UpperCI == nil || p.LowerCI == nil {
			return nil, malformed(ep, "forecast[%d]: missing date, forecast, upper_ci or lower_ci", i)
		}
		out[i] = model.ForecastPoint{Date: *p.Date, Forecast: *p.Forecast, UpperCI: *p.UpperCI, LowerCI: *p.LowerCI}
	}
	return out, nil
}
