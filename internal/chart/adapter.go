package chart

import (
	"fmt"

	"RetailPulse/internal/transform"
)

const (
	colorPrimary     = "#3b82f6"
	colorAccent      = "#f59e0b"
	colorBand        = "rgba(59, 130, 246, 0.1)"
	colorTransparent = "transparent"
)

// Dataset labels.
const (
	LabelWaterfall    = "Profit Waterfall"
	LabelContribution = "Profit Contribution"
	LabelCumulative   = "Cumulative %"
	LabelForecast     = "Forecast Demand"
	LabelUpperCI      = "Upper CI (95%)"
	LabelLowerCI      = "Lower CI (95%)"
)

func baseOptions() Options {
	return Options{Responsive: true, MaintainAspectRatio: false}
}

// Waterfall renders the profit waterfall as a single bar dataset coloured
// per step.
func Waterfall(s transform.WaterfallSeries) Config {
	return Config{
		Type: "bar",
		Data: Data{
			Labels: s.Labels,
			Datasets: []Dataset{{
				Type:            "bar",
				Label:           LabelWaterfall,
				Data:            s.Values,
				BackgroundColor: Paint(s.Colors),
			}},
		},
		Options: baseOptions(),
	}
}

// Pareto renders contribution bars on the left axis and the cumulative
// percentage line on the right axis. The line is drawn above the bars and
// the right axis draws no gridlines over the chart area.
func Pareto(s transform.ParetoSeries) Config {
	opts := baseOptions()
	opts.Scales = map[string]Scale{
		"y":  {Type: "linear", Display: true, Position: "left"},
		"y1": {Type: "linear", Display: true, Position: "right", Grid: &Grid{DrawOnChartArea: false}},
	}
	return Config{
		Type: "bar",
		Data: Data{
			Labels: s.Categories,
			Datasets: []Dataset{
				{
					Type:            "bar",
					Label:           LabelContribution,
					Data:            s.Profits,
					BackgroundColor: Solid(colorPrimary),
					YAxisID:         "y",
					Order:           2,
				},
				{
					Type:        "line",
					Label:       LabelCumulative,
					Data:        s.Cumulative,
					BorderColor: colorAccent,
					BorderWidth: 2,
					YAxisID:     "y1",
					Order:       1,
				},
			},
		},
		Options: opts,
	}
}

// ForecastScope identifies what a forecast chart shows.
type ForecastScope struct {
	Region      string
	Category    string
	SubCategory string
}

func ForecastTitle(sc ForecastScope) string {
	return fmt.Sprintf("Demand Forecast: %s - %s (%s)", sc.Category, sc.SubCategory, sc.Region)
}

// Forecast renders the forecast line with its confidence band. The upper
// band fills down to the lower band, which itself stays invisible.
func Forecast(s transform.ForecastSeries, sc ForecastScope) Config {
	noPoints := 0
	opts := baseOptions()
	opts.Plugins = &Plugins{
		Legend: &Legend{Position: "top"},
		Title:  &Title{Display: true, Text: ForecastTitle(sc)},
	}
	opts.Scales = map[string]Scale{
		"y": {BeginAtZero: true, Title: &Title{Display: true, Text: "Quantity"}},
	}
	return Config{
		Type: "line",
		Data: Data{
			Labels: s.Dates,
			Datasets: []Dataset{
				{
					Label:           LabelForecast,
					Data:            s.Forecast,
					BorderColor:     colorPrimary,
					BackgroundColor: Solid(colorPrimary),
					Tension:         0.4,
				},
				{
					Label:           LabelUpperCI,
					Data:            s.Upper,
					BorderColor:     colorTransparent,
					BackgroundColor: Solid(colorBand),
					Fill:            FillNext,
					PointRadius:     &noPoints,
				},
				{
					Label:           LabelLowerCI,
					Data:            s.Lower,
					BorderColor:     colorTransparent,
					BackgroundColor: Solid(colorTransparent),
					Fill:            NoFill,
					PointRadius:     &noPoints,
				},
			},
		},
		Options: opts,
	}
}
