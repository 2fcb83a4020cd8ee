package view

import (
	"context"
	"sync"

	"RetailPulse/internal/chart"
	"RetailPulse/internal/collector"
	"RetailPulse/internal/filter"
	"RetailPulse/internal/model"
	"RetailPulse/internal/orchestrator"
	"RetailPulse/internal/query"
	"RetailPulse/internal/transform"
)

// ForecastData is the payload of a ready forecast view.
type ForecastData struct {
	Chart  chart.Config `json:"chart"`
	Points int          `json:"points"`
}

// Forecast shows the demand forecast for one sub-category in the selected
// region. It ignores the date range; category and sub-category are local
// controls.
type Forecast struct {
	orch    *orchestrator.Orchestrator[ForecastData]
	catalog *Catalog
	days    int

	// mu also serialises query issuance so that concurrent region and
	// control changes reach the orchestrator in the order they were made.
	mu       sync.Mutex
	region   string
	controls model.ForecastControls
}

type ForecastConfig struct {
	Catalog  *Catalog
	Controls model.ForecastControls
	Days     int
}

func NewForecast(f collector.Fetcher, cfg ForecastConfig, opts orchestrator.Options) (*Forecast, error) {
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	category := cfg.Controls.Category
	if category == "" {
		category = catalog.categories[0].Name
	}
	controls, err := catalog.Resolve(cfg.Controls, category, cfg.Controls.SubCategory)
	if err != nil {
		return nil, err
	}
	days := cfg.Days
	if days <= 0 {
		days = query.DefaultForecastDays
	}

	fetch := func(ctx context.Context, q query.ViewQuery) (ForecastData, error) {
		points, err := f.FetchDemandForecast(ctx, q)
		if err != nil {
			return ForecastData{}, err
		}
		scope := chart.ForecastScope{
			Region:      q.Params["region"],
			Category:    q.Params["category"],
			SubCategory: q.Params["sub_category"],
		}
		return ForecastData{
			Chart:  chart.Forecast(transform.Forecast(points), scope),
			Points: len(points),
		}, nil
	}

	return &Forecast{
		orch:     orchestrator.New[ForecastData](NameForecast, fetch, opts),
		catalog:  catalog,
		days:     days,
		region:   model.AllRegions,
		controls: controls,
	}, nil
}

func (v *Forecast) Name() string               { return NameForecast }
func (v *Forecast) Dependencies() filter.Field { return filter.FieldRegion }

func (v *Forecast) Evaluate(state model.FilterState) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.region = state.Region
	return v.requestLocked()
}

// Controls returns the current category and sub-category.
func (v *Forecast) Controls() model.ForecastControls {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.controls
}

// SetControls changes category and sub-category together, issuing at most
// one fetch. An empty subCategory keeps the current one if the category lists
// it and otherwise selects the category's first sub-category.
func (v *Forecast) SetControls(category, subCategory string) (model.ForecastControls, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	controls, err := v.catalog.Resolve(v.controls, category, subCategory)
	if err != nil {
		return v.controls, err
	}
	v.controls = controls
	v.requestLocked()
	return controls, nil
}

func (v *Forecast) requestLocked() bool {
	return v.orch.Request(query.BuildForecastQuery(v.region, v.controls.Category, v.controls.SubCategory, v.days))
}

func (v *Forecast) Refresh() bool  { return v.orch.Refresh() }
func (v *Forecast) Status() Status { return statusOf(NameForecast, v.orch.Snapshot()) }
func (v *Forecast) Wait()          { v.orch.Wait() }

func (v *Forecast) Snapshot() orchestrator.Snapshot[ForecastData] { return v.orch.Snapshot() }
