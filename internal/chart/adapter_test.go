package chart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RetailPulse/internal/model"
	"RetailPulse/internal/transform"
)

func TestWaterfall(t *testing.T) {
	series := transform.Waterfall([]model.WaterfallStep{
		{Label: "Gross Revenue", Value: 1000, Kind: model.StepPositive},
		{Label: "COGS", Value: -600, Kind: model.StepNegative},
		{Label: "Net Profit", Value: 400, Kind: model.StepTotal},
	})
	cfg := Waterfall(series)

	assert.Equal(t, "bar", cfg.Type)
	assert.Equal(t, []string{"Gross Revenue", "COGS", "Net Profit"}, cfg.Data.Labels)
	require.Len(t, cfg.Data.Datasets, 1)
	ds := cfg.Data.Datasets[0]
	assert.Equal(t, LabelWaterfall, ds.Label)
	assert.Equal(t, []float64{1000, -600, 400}, ds.Data)
	assert.Equal(t, Paint{"#10b981", "#ef4444", "#3b82f6"}, ds.BackgroundColor)
	assert.True(t, cfg.Options.Responsive)
	assert.False(t, cfg.Options.MaintainAspectRatio)
}

func TestPareto_DualAxis(t *testing.T) {
	cfg := Pareto(transform.ParetoSeries{
		Categories: []string{"Phones", "Chairs"},
		Profits:    []float64{300, 100},
		Cumulative: []float64{75, 100},
	})

	require.Len(t, cfg.Data.Datasets, 2)
	bars, line := cfg.Data.Datasets[0], cfg.Data.Datasets[1]
	assert.Equal(t, "bar", bars.Type)
	assert.Equal(t, "y", bars.YAxisID)
	assert.Equal(t, "line", line.Type)
	assert.Equal(t, "y1", line.YAxisID)
	assert.Equal(t, 2, line.BorderWidth)
	assert.Greater(t, bars.Order, line.Order, "bars render beneath the line")

	assert.Equal(t, "left", cfg.Options.Scales["y"].Position)
	right := cfg.Options.Scales["y1"]
	assert.Equal(t, "right", right.Position)
	require.NotNil(t, right.Grid)
	assert.False(t, right.Grid.DrawOnChartArea)
}

func TestForecast(t *testing.T) {
	series := transform.Forecast([]model.ForecastPoint{
		{Date: "2025-01-01", Forecast: 10, UpperCI: 12, LowerCI: 8},
		{Date: "2025-01-02", Forecast: 11, UpperCI: 13, LowerCI: 9},
	})
	cfg := Forecast(series, ForecastScope{Region: "North", Category: "Furniture", SubCategory: "Chairs"})

	assert.Equal(t, "line", cfg.Type)
	require.NotNil(t, cfg.Options.Plugins)
	assert.Equal(t, "Demand Forecast: Furniture - Chairs (North)", cfg.Options.Plugins.Title.Text)
	assert.True(t, cfg.Options.Scales["y"].BeginAtZero)
	assert.Equal(t, "Quantity", cfg.Options.Scales["y"].Title.Text)

	require.Len(t, cfg.Data.Datasets, 3)
	assert.Equal(t, []string{LabelForecast, LabelUpperCI, LabelLowerCI},
		[]string{cfg.Data.Datasets[0].Label, cfg.Data.Datasets[1].Label, cfg.Data.Datasets[2].Label})
	assert.Equal(t, []float64{8, 9}, cfg.Data.Datasets[2].Data)
	for _, ds := range cfg.Data.Datasets {
		assert.Len(t, ds.Data, len(cfg.Data.Labels))
	}
}

func TestForecast_JSONShape(t *testing.T) {
	cfg := Forecast(transform.Forecast(nil), ForecastScope{Region: "All", Category: "Technology", SubCategory: "Phones"})
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	var decoded struct {
		Data struct {
			Labels   []string         `json:"labels"`
			Datasets []map[string]any `json:"datasets"`
		} `json:"data"`
		Options map[string]any `json:"options"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.NotNil(t, decoded.Data.Labels)
	line, upper, lower := decoded.Data.Datasets[0], decoded.Data.Datasets[1], decoded.Data.Datasets[2]
	assert.NotContains(t, line, "fill")
	assert.NotContains(t, line, "pointRadius")
	assert.Equal(t, 0.4, line["tension"])
	assert.Equal(t, "#3b82f6", line["backgroundColor"])

	assert.Equal(t, "+1", upper["fill"])
	assert.Equal(t, 0.0, upper["pointRadius"])
	assert.Equal(t, "rgba(59, 130, 246, 0.1)", upper["backgroundColor"])

	assert.Equal(t, false, lower["fill"])
	assert.Equal(t, "transparent", lower["borderColor"])

	assert.Equal(t, true, decoded.Options["responsive"])
	assert.Equal(t, false, decoded.Options["maintainAspectRatio"])
}

func TestPaint_JSON(t *testing.T) {
	raw, err := json.Marshal(Solid("#fff"))
	require.NoError(t, err)
	assert.JSONEq(t, `"#fff"`, string(raw))

	raw, err = json.Marshal(Paint{"#000", "#fff"})
	require.NoError(t, err)
	assert.JSONEq(t, `["#000","#fff"]`, string(raw))

	raw, err = json.Marshal(Paint{})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}
