package view

import (
	"context"

	"RetailPulse/internal/chart"
	"RetailPulse/internal/collector"
	"RetailPulse/internal/filter"
	"RetailPulse/internal/model"
	"RetailPulse/internal/orchestrator"
	"RetailPulse/internal/query"
	"RetailPulse/internal/transform"
)

// ProfitData is the payload of a ready profit view. ParetoTotal is the number
// of entries the service returned; only the first ParetoShown are charted.
type ProfitData struct {
	Waterfall   chart.Config `json:"waterfall"`
	Pareto      chart.Config `json:"pareto"`
	ParetoShown int          `json:"pareto_shown"`
	ParetoTotal int          `json:"pareto_total"`
}

// Profit shows the profit waterfall and Pareto analysis. It ignores the
// region filter.
type Profit struct {
	orch *orchestrator.Orchestrator[ProfitData]
}

func NewProfit(f collector.Fetcher, opts orchestrator.Options) *Profit {
	fetch := func(ctx context.Context, q query.ViewQuery) (ProfitData, error) {
		diag, err := f.FetchProfitDiagnostic(ctx, q)
		if err != nil {
			return ProfitData{}, err
		}
		pareto := transform.Pareto(diag.Pareto)
		return ProfitData{
			Waterfall:   chart.Waterfall(transform.Waterfall(diag.Waterfall)),
			Pareto:      chart.Pareto(pareto),
			ParetoShown: len(pareto.Categories),
			ParetoTotal: len(diag.Pareto),
		}, nil
	}
	return &Profit{orch: orchestrator.New[ProfitData](NameProfit, fetch, opts)}
}

func (v *Profit) Name() string               { return NameProfit }
func (v *Profit) Dependencies() filter.Field { return filter.FieldDateRange }

func (v *Profit) Evaluate(state model.FilterState) bool {
	return v.orch.Request(query.BuildProfitQuery(state.DateRange))
}

func (v *Profit) Refresh() bool  { return v.orch.Refresh() }
func (v *Profit) Status() Status { return statusOf(NameProfit, v.orch.Snapshot()) }
func (v *Profit) Wait()          { v.orch.Wait() }

func (v *Profit) Snapshot() orchestrator.Snapshot[ProfitData] { return v.orch.Snapshot() }
