package view

import (
	"context"

	"RetailPulse/internal/collector"
	"RetailPulse/internal/filter"
	"RetailPulse/internal/model"
	"RetailPulse/internal/orchestrator"
	"RetailPulse/internal/query"
	"RetailPulse/internal/report"
	"RetailPulse/internal/transform"
)

// KPIData is the payload of a ready KPI view.
type KPIData struct {
	Values  model.KPISummary `json:"values"`
	Display report.KPICards  `json:"display"`
}

// KPI shows the four headline figures for the date range and region.
type KPI struct {
	orch *orchestrator.Orchestrator[KPIData]
}

func NewKPI(f collector.Fetcher, opts orchestrator.Options) *KPI {
	fetch := func(ctx context.Context, q query.ViewQuery) (KPIData, error) {
		s, err := f.FetchKPIs(ctx, q)
		if err != nil {
			return KPIData{}, err
		}
		s = transform.KPI(s)
		return KPIData{Values: s, Display: report.FormatKPICards(s)}, nil
	}
	return &KPI{orch: orchestrator.New[KPIData](NameKPI, fetch, opts)}
}

func (v *KPI) Name() string               { return NameKPI }
func (v *KPI) Dependencies() filter.Field { return filter.FieldAll }

func (v *KPI) Evaluate(state model.FilterState) bool {
	return v.orch.Request(query.BuildKPIQuery(state.DateRange, state.Region))
}

func (v *KPI) Refresh() bool  { return v.orch.Refresh() }
func (v *KPI) Status() Status { return statusOf(NameKPI, v.orch.Snapshot()) }
func (v *KPI) Wait()          { v.orch.Wait() }

// Snapshot exposes the typed state.
func (v *KPI) Snapshot() orchestrator.Snapshot[KPIData] { return v.orch.Snapshot() }
