package view

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"RetailPulse/internal/cache"
	"RetailPulse/internal/collector"
	"RetailPulse/internal/filter"
	"RetailPulse/internal/model"
	"RetailPulse/internal/orchestrator"
	"RetailPulse/internal/query"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func defaultState() model.FilterState {
	return model.FilterState{
		DateRange: model.DateRange{Start: day(2023, 1, 1), End: day(2025, 12, 31)},
		Region:    model.AllRegions,
	}
}

func countByEndpoint(calls []query.ViewQuery) map[string]int {
	out := make(map[string]int)
	for _, q := range calls {
		out[q.Endpoint]++
	}
	return out
}

type fixture struct {
	store    *filter.Store
	fetcher  *collector.MockFetcher
	kpi      *KPI
	profit   *Profit
	forecast *Forecast
}

func newFixture(t *testing.T, m *collector.MockFetcher) *fixture {
	t.Helper()
	opts := orchestrator.Options{Logger: zaptest.NewLogger(t)}
	fc, err := NewForecast(m, ForecastConfig{Controls: model.ForecastControls{Category: "Furniture", SubCategory: "Chairs"}}, opts)
	require.NoError(t, err)
	fx := &fixture{
		store:    filter.NewStore(defaultState()),
		fetcher:  m,
		kpi:      NewKPI(m, opts),
		profit:   NewProfit(m, opts),
		forecast: fc,
	}
	for _, v := range []View{fx.kpi, fx.profit, fx.forecast} {
		t.Cleanup(Bind(fx.store, v))
	}
	fx.wait()
	return fx
}

func (fx *fixture) wait() {
	fx.kpi.Wait()
	fx.profit.Wait()
	fx.forecast.Wait()
}

func TestBind_InitialEvaluation(t *testing.T) {
	fx := newFixture(t, &collector.MockFetcher{})

	counts := countByEndpoint(fx.fetcher.Calls())
	assert.Equal(t, 1, counts[query.EndpointKPIs])
	assert.Equal(t, 1, counts[query.EndpointProfit])
	assert.Equal(t, 1, counts[query.EndpointForecast])

	for _, v := range []View{fx.kpi, fx.profit, fx.forecast} {
		assert.Equal(t, orchestrator.Ready, v.Status().State, v.Name())
	}
}

func TestDependencies_RegionChange(t *testing.T) {
	fx := newFixture(t, &collector.MockFetcher{})

	fx.store.SetRegion("West")
	fx.wait()

	counts := countByEndpoint(fx.fetcher.Calls())
	assert.Equal(t, 2, counts[query.EndpointKPIs])
	assert.Equal(t, 1, counts[query.EndpointProfit], "profit ignores region")
	assert.Equal(t, 2, counts[query.EndpointForecast])
}

func TestDependencies_DateRangeChange(t *testing.T) {
	fx := newFixture(t, &collector.MockFetcher{})

	fx.store.SetDateRange(model.DateRange{Start: day(2024, 1, 1), End: day(2024, 1, 31)})
	fx.wait()

	counts := countByEndpoint(fx.fetcher.Calls())
	assert.Equal(t, 2, counts[query.EndpointKPIs])
	assert.Equal(t, 2, counts[query.EndpointProfit])
	assert.Equal(t, 1, counts[query.EndpointForecast], "forecast ignores date range")
}

func TestDependencies_UnchangedValueDoesNotRefetch(t *testing.T) {
	fx := newFixture(t, &collector.MockFetcher{})

	fx.store.SetRegion(model.AllRegions)
	fx.wait()

	assert.Len(t, fx.fetcher.Calls(), 3)
}

func TestKPI_Scenario(t *testing.T) {
	want := model.KPISummary{Revenue: 150000, Profit: 22500, Margin: 15, Volume: 1200}
	fx := newFixture(t, &collector.MockFetcher{KPIs: &want})

	fx.store.SetDateRange(model.DateRange{Start: day(2024, 1, 1), End: day(2024, 1, 31)})
	fx.store.SetRegion("West")
	fx.wait()

	snap := fx.kpi.Snapshot()
	require.Equal(t, orchestrator.Ready, snap.State)
	assert.Equal(t, map[string]string{"start_date": "2024-01-01", "end_date": "2024-01-31", "region": "West"}, snap.Query.Params)
	assert.Equal(t, want, snap.Data.Values)
	assert.Equal(t, "$150,000.00", snap.Data.Display.Revenue)
	assert.Equal(t, "15.0%", snap.Data.Display.Margin)
}

func TestProfit_FifteenEntryPareto(t *testing.T) {
	entries := make([]model.ParetoEntry, 15)
	for i := range entries {
		entries[i] = model.ParetoEntry{
			Category:             fmt.Sprintf("sub-%d", i+1),
			Profit:               float64(1500 - i*100),
			CumulativePercentage: float64(i+1) * 100 / 15,
		}
	}
	diag := model.ProfitDiagnostic{
		Waterfall: []model.WaterfallStep{
			{Label: "Gross Revenue", Value: 1000, Kind: model.StepPositive},
			{Label: "Net Profit", Value: 1000, Kind: model.StepTotal},
		},
		Pareto: entries,
	}
	fx := newFixture(t, &collector.MockFetcher{Profit: &diag})

	snap := fx.profit.Snapshot()
	require.Equal(t, orchestrator.Ready, snap.State)
	assert.Equal(t, 10, snap.Data.ParetoShown)
	assert.Equal(t, 15, snap.Data.ParetoTotal)

	pareto := snap.Data.Pareto.Data
	require.Len(t, pareto.Labels, 10)
	for i := 0; i < 10; i++ {
		assert.Equal(t, entries[i].Category, pareto.Labels[i])
		assert.Equal(t, entries[i].Profit, pareto.Datasets[0].Data[i])
		assert.Equal(t, entries[i].CumulativePercentage, pareto.Datasets[1].Data[i])
	}
	assert.Equal(t, []string{"Gross Revenue", "Net Profit"}, snap.Data.Waterfall.Data.Labels)
}

func TestForecast_ErrorPayloadFailsOnlyForecast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case query.EndpointForecast:
			w.Write([]byte(`{"error": "no data"}`))
		case query.EndpointKPIs:
			w.Write([]byte(`{"revenue": 1, "profit": 2, "margin": 3, "volume": 4}`))
		default:
			w.Write([]byte(`{"waterfall": [], "pareto": []}`))
		}
	}))
	defer server.Close()

	f := collector.NewHTTPFetcher(collector.HTTPConfig{BaseURL: server.URL}, nil, zaptest.NewLogger(t))
	opts := orchestrator.Options{Logger: zaptest.NewLogger(t)}
	store := filter.NewStore(defaultState())
	fc, err := NewForecast(f, ForecastConfig{}, opts)
	require.NoError(t, err)
	kpi := NewKPI(f, opts)
	defer Bind(store, kpi)()
	defer Bind(store, fc)()
	kpi.Wait()
	fc.Wait()

	st := fc.Status()
	assert.Equal(t, orchestrator.Failed, st.State)
	assert.Nil(t, st.Data)
	require.NotNil(t, st.Error)
	assert.Equal(t, string(collector.KindService), st.Error.Kind)
	assert.Contains(t, st.Error.Message, "no data")

	assert.Equal(t, orchestrator.Ready, kpi.Status().State)
}

func TestForecast_Controls(t *testing.T) {
	fx := newFixture(t, &collector.MockFetcher{})

	controls, err := fx.forecast.SetControls("Technology", "")
	require.NoError(t, err)
	assert.Equal(t, model.ForecastControls{Category: "Technology", SubCategory: "Phones"}, controls)
	fx.wait()

	snap := fx.forecast.Snapshot()
	require.Equal(t, orchestrator.Ready, snap.State)
	assert.Equal(t, "Technology", snap.Query.Params["category"])
	assert.Equal(t, "Phones", snap.Query.Params["sub_category"])
	assert.Equal(t, "90", snap.Query.Params["days"])
	assert.Equal(t, "Demand Forecast: Technology - Phones (All)", snap.Data.Chart.Options.Plugins.Title.Text)
	assert.Equal(t, 90, snap.Data.Points)

	_, err = fx.forecast.SetControls("Technology", "Chairs")
	assert.Error(t, err)
	_, err = fx.forecast.SetControls("Garden", "")
	assert.Error(t, err)
	assert.Equal(t, model.ForecastControls{Category: "Technology", SubCategory: "Phones"}, fx.forecast.Controls())

	assert.Equal(t, 2, countByEndpoint(fx.fetcher.Calls())[query.EndpointForecast])
}

func TestRefresh(t *testing.T) {
	fx := newFixture(t, &collector.MockFetcher{})

	assert.True(t, fx.profit.Refresh())
	fx.wait()

	assert.Equal(t, uint64(2), fx.profit.Status().Seq)
	assert.Equal(t, 2, countByEndpoint(fx.fetcher.Calls())[query.EndpointProfit])
}

func TestRefresh_ReachesServiceWhenCached(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		fmt.Fprintf(w, `{"revenue": %d, "profit": 1, "margin": 1, "volume": 1}`, n)
	}))
	defer server.Close()

	logger := zaptest.NewLogger(t)
	f := collector.NewHTTPFetcher(collector.HTTPConfig{BaseURL: server.URL}, cache.NewMemoryCache(0, 0), logger)
	store := filter.NewStore(defaultState())
	kpi := NewKPI(f, orchestrator.Options{Logger: logger})
	t.Cleanup(Bind(store, kpi))
	kpi.Wait()
	require.Equal(t, 1.0, kpi.Snapshot().Data.Values.Revenue)

	require.True(t, kpi.Refresh())
	kpi.Wait()

	snap := kpi.Snapshot()
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Equal(t, uint64(2), snap.Seq)
	assert.Equal(t, 2.0, snap.Data.Values.Revenue)

	// The refreshed body replaces the cached one for later requests.
	store.SetRegion("West")
	kpi.Wait()
	store.SetRegion(model.AllRegions)
	kpi.Wait()
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	assert.Equal(t, 2.0, kpi.Snapshot().Data.Values.Revenue)
}

func TestStatus_Idle(t *testing.T) {
	kpi := NewKPI(&collector.MockFetcher{}, orchestrator.Options{})
	st := kpi.Status()
	assert.Equal(t, orchestrator.Idle, st.State)
	assert.Empty(t, st.Query)
	assert.Nil(t, st.UpdatedAt)
}

func TestCatalog_Resolve(t *testing.T) {
	c := DefaultCatalog()
	current := model.ForecastControls{Category: "Furniture", SubCategory: "Chairs"}

	got, err := c.Resolve(current, "Office Supplies", "")
	require.NoError(t, err)
	assert.Equal(t, "Binders", got.SubCategory)

	got, err = c.Resolve(current, "Furniture", "")
	require.NoError(t, err)
	assert.Equal(t, "Chairs", got.SubCategory)

	got, err = c.Resolve(current, "Office Supplies", "Paper")
	require.NoError(t, err)
	assert.Equal(t, model.ForecastControls{Category: "Office Supplies", SubCategory: "Paper"}, got)

	_, err = NewCatalog([]Category{{Name: "Empty"}})
	assert.Error(t, err)

	cats := c.Categories()
	cats[0].SubCategories[0] = "mutated"
	assert.Equal(t, "Bookcases", c.Categories()[0].SubCategories[0])
}
