package transform

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RetailPulse/internal/model"
)

func TestKPI_Identity(t *testing.T) {
	s := model.KPISummary{Revenue: 1234.5, Profit: -10, Margin: 12.5, Volume: 9}
	assert.Equal(t, s, KPI(s))
}

func TestWaterfall_PreservesOrderAndColours(t *testing.T) {
	steps := []model.WaterfallStep{
		{Label: "Net Profit", Value: 400, Kind: model.StepTotal},
		{Label: "Gross Revenue", Value: 1000, Kind: model.StepPositive},
		{Label: "COGS", Value: -600, Kind: model.StepNegative},
		{Label: "Other", Value: 5, Kind: "mystery"},
		{Label: "Refunds", Value: 20, Kind: model.StepNegative},
	}
	out := Waterfall(steps)

	require.Len(t, out.Labels, len(steps))
	require.Len(t, out.Values, len(steps))
	require.Len(t, out.Colors, len(steps))
	for i, s := range steps {
		assert.Equal(t, s.Label, out.Labels[i])
		assert.Equal(t, s.Value, out.Values[i])
	}
	assert.Equal(t, []string{ColorInfo, ColorSuccess, ColorDanger, ColorInfo, ColorDanger}, out.Colors)
	// Sign is not enforced by kind.
	assert.Equal(t, 20.0, out.Values[4])
}

func TestWaterfall_Empty(t *testing.T) {
	out := Waterfall(nil)
	assert.NotNil(t, out.Labels)
	assert.Empty(t, out.Labels)
}

func paretoEntries(n int) []model.ParetoEntry {
	entries := make([]model.ParetoEntry, n)
	for i := range entries {
		entries[i] = model.ParetoEntry{
			Category:             fmt.Sprintf("cat-%02d", i+1),
			Profit:               float64(1000 - i*50),
			CumulativePercentage: float64(i+1) * 100 / float64(n),
		}
	}
	return entries
}

func TestPareto_FifteenEntriesKeepsFirstTen(t *testing.T) {
	entries := paretoEntries(15)
	out := Pareto(entries)

	require.Len(t, out.Categories, 10)
	require.Len(t, out.Profits, 10)
	require.Len(t, out.Cumulative, 10)
	for i := 0; i < 10; i++ {
		assert.Equal(t, entries[i].Category, out.Categories[i])
		assert.Equal(t, entries[i].Profit, out.Profits[i])
		assert.Equal(t, entries[i].CumulativePercentage, out.Cumulative[i])
	}
	assert.Equal(t, "cat-10", out.Categories[9])
}

func TestPareto_DoesNotResort(t *testing.T) {
	entries := []model.ParetoEntry{
		{Category: "b", Profit: 1, CumulativePercentage: 10},
		{Category: "a", Profit: 5, CumulativePercentage: 60},
	}
	out := Pareto(entries)
	assert.Equal(t, []string{"b", "a"}, out.Categories)
	assert.Equal(t, []float64{1, 5}, out.Profits)
}

func TestPareto_ShortInputs(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10} {
		out := Pareto(paretoEntries(n))
		assert.Len(t, out.Categories, n)
		assert.Len(t, out.Profits, n)
		assert.Len(t, out.Cumulative, n)
	}
}

func TestPareto_DoesNotAliasInput(t *testing.T) {
	entries := paretoEntries(12)
	out := Pareto(entries)
	entries[0].Category = "changed"
	assert.Equal(t, "cat-01", out.Categories[0])
}

func TestForecast_Alignment(t *testing.T) {
	points := []model.ForecastPoint{
		{Date: "2025-01-01", Forecast: 10, UpperCI: 12, LowerCI: 8},
		{Date: "2025-01-02", Forecast: 11, UpperCI: 13.2, LowerCI: 8.8},
		// Inverted band passes through untouched.
		{Date: "2025-01-03", Forecast: 9, UpperCI: 7, LowerCI: 10},
	}
	out := Forecast(points)

	for _, s := range [][]float64{out.Forecast, out.Upper, out.Lower} {
		assert.Len(t, s, len(points))
	}
	require.Len(t, out.Dates, len(points))
	for i, p := range points {
		assert.Equal(t, p.Date, out.Dates[i])
		assert.Equal(t, p.Forecast, out.Forecast[i])
		assert.Equal(t, p.UpperCI, out.Upper[i])
		assert.Equal(t, p.LowerCI, out.Lower[i])
	}
}

func TestForecast_Empty(t *testing.T) {
	out := Forecast([]model.ForecastPoint{})
	assert.Empty(t, out.Dates)
	assert.NotNil(t, out.Lower)
}
