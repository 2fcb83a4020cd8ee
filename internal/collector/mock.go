package collector

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"RetailPulse/internal/model"
	"RetailPulse/internal/query"
)

// MockFetcher returns controllable fixed data for development and testing.
// Zero-valued payload fields are replaced with generated sample data.
type MockFetcher struct {
	KPIs     *model.KPISummary
	Profit   *model.ProfitDiagnostic
	Forecast []model.ForecastPoint
	// Errs forces a failure for the given endpoint.
	Errs map[string]error
	// Now anchors generated forecast dates; defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex
	calls []query.ViewQuery
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns the queries received so far.
func (m *MockFetcher) Calls() []query.ViewQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]query.ViewQuery, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockFetcher) record(q query.ViewQuery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, q)
	if err, ok := m.Errs[q.Endpoint]; ok {
		return err
	}
	return nil
}

func (m *MockFetcher) FetchKPIs(_ context.Context, q query.ViewQuery) (model.KPISummary, error) {
	if err := m.record(q); err != nil {
		return model.KPISummary{}, err
	}
	if m.KPIs != nil {
		return *m.KPIs, nil
	}
	return model.KPISummary{Revenue: 2297200.86, Profit: 286397.02, Margin: 12.5, Volume: 37873}, nil
}

func (m *MockFetcher) FetchProfitDiagnostic(_ context.Context, q query.ViewQuery) (model.ProfitDiagnostic, error) {
	if err := m.record(q); err != nil {
		return model.ProfitDiagnostic{}, err
	}
	if m.Profit != nil {
		return *m.Profit, nil
	}
	return generateMockDiagnostic(), nil
}

func (m *MockFetcher) FetchDemandForecast(_ context.Context, q query.ViewQuery) ([]model.ForecastPoint, error) {
	if err := m.record(q); err != nil {
		return nil, err
	}
	if m.Forecast != nil {
		return m.Forecast, nil
	}
	days, err := strconv.Atoi(q.Params["days"])
	if err != nil || days <= 0 {
		days = query.DefaultForecastDays
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return generateMockForecast(now(), days), nil
}

func generateMockDiagnostic() model.ProfitDiagnostic {
	revenue := 2297200.86
	cogs := revenue * 0.6
	discounts := revenue * 0.08
	promo := revenue * 0.02
	net := revenue - cogs - discounts - promo

	subCategories := []struct {
		name   string
		profit float64
	}{
		{"Copiers", 55617.82}, {"Phones", 44515.73}, {"Accessories", 41936.64},
		{"Paper", 34053.57}, {"Binders", 30221.76}, {"Chairs", 26590.17},
		{"Storage", 21278.83}, {"Appliances", 18138.01}, {"Furnishings", 13059.14},
		{"Envelopes", 6964.18}, {"Art", 6527.79}, {"Labels", 5546.25},
		{"Machines", 3384.76}, {"Fasteners", 949.52}, {"Supplies", 412.30},
	}
	var total float64
	for _, s := range subCategories {
		total += s.profit
	}

	pareto := make([]model.ParetoEntry, len(subCategories))
	var cumulative float64
	for i, s := range subCategories {
		cumulative += s.profit
		pareto[i] = model.ParetoEntry{
			Category:             s.name,
			Profit:               s.profit,
			CumulativePercentage: math.Round(cumulative/total*1000) / 10,
		}
	}

	return model.ProfitDiagnostic{
		Waterfall: []model.WaterfallStep{
			{Label: "Gross Revenue", Value: revenue, Kind: model.StepPositive},
			{Label: "COGS", Value: -cogs, Kind: model.StepNegative},
			{Label: "Discounts", Value: -discounts, Kind: model.StepNegative},
			{Label: "Promo Impact", Value: -promo, Kind: model.StepNegative},
			{Label: "Net Profit", Value: net, Kind: model.StepTotal},
		},
		Pareto: pareto,
	}
}

func generateMockForecast(start time.Time, days int) []model.ForecastPoint {
	points := make([]model.ForecastPoint, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		base := 40 + 8*math.Sin(float64(d.Weekday())/7*2*math.Pi)
		f := math.Round(base*10) / 10
		points[i] = model.ForecastPoint{
			Date:     query.FormatDate(d),
			Forecast: f,
			LowerCI:  math.Round(f*0.8*10) / 10,
			UpperCI:  math.Round(f*1.2*10) / 10,
		}
	}
	return points
}
