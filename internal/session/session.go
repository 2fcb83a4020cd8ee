package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"RetailPulse/internal/collector"
	"RetailPulse/internal/filter"
	"RetailPulse/internal/model"
	"RetailPulse/internal/orchestrator"
	"RetailPulse/internal/query"
	"RetailPulse/internal/recorder"
	"RetailPulse/internal/report"
	"RetailPulse/internal/view"
)

var (
	ErrUnknownView   = errors.New("unknown view")
	ErrUnknownRegion = errors.New("unknown region")
)

type Config struct {
	// Initial is the filter state the session starts with.
	Initial model.FilterState
	// Regions lists the selectable regions besides model.AllRegions.
	Regions  []string
	Forecast view.ForecastConfig
	// FetchTimeout bounds every view fetch; zero leaves it to the fetcher.
	FetchTimeout time.Duration
}

// Session is one dashboard: a filter store shared by the KPI, profit and
// forecast views.
type Session struct {
	id       string
	store    *filter.Store
	kpi      *view.KPI
	profit   *view.Profit
	forecast *view.Forecast
	views    []view.View
	regions  []string
	catalog  *view.Catalog
	recorder recorder.Recorder
	logger   *zap.Logger
	cancel   context.CancelFunc

	mu      sync.Mutex
	started bool
	unbind  []func()
}

func New(ctx context.Context, cfg Config, f collector.Fetcher, rec recorder.Recorder, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if cfg.Forecast.Catalog == nil {
		cfg.Forecast.Catalog = view.DefaultCatalog()
	}

	id := uuid.NewString()
	logger = logger.With(zap.String("session", id))
	ctx, cancel := context.WithCancel(ctx)

	s := &Session{
		id:       id,
		store:    filter.NewStore(cfg.Initial),
		regions:  slices.Clone(cfg.Regions),
		catalog:  cfg.Forecast.Catalog,
		recorder: rec,
		logger:   logger,
		cancel:   cancel,
	}

	opts := orchestrator.Options{
		Logger:   logger,
		Observer: s.recordFetch,
		Timeout:  cfg.FetchTimeout,
		Context:  ctx,
	}
	forecast, err := view.NewForecast(f, cfg.Forecast, opts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("forecast view: %w", err)
	}
	s.kpi = view.NewKPI(f, opts)
	s.profit = view.NewProfit(f, opts)
	s.forecast = forecast
	s.views = []view.View{s.kpi, s.profit, s.forecast}
	return s, nil
}

// Start binds every view to the filter store, which issues the initial
// fetches. Calling Start again has no effect.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.unbind = append(s.unbind, s.store.Subscribe(filter.FieldAll, s.recordFilterChange))
	for _, v := range s.views {
		s.unbind = append(s.unbind, view.Bind(s.store, v))
	}
	s.logger.Info("session started", zap.String("region", s.store.Region()))
}

// Close unsubscribes the views and waits for in-flight fetches.
func (s *Session) Close() {
	s.mu.Lock()
	unbind := s.unbind
	s.unbind = nil
	s.mu.Unlock()

	for _, fn := range unbind {
		fn()
	}
	s.cancel()
	s.Wait()
}

func (s *Session) ID() string { return s.id }

func (s *Session) Filters() model.FilterState { return s.store.State() }

// SetDateRange replaces the date range. The range is not validated here.
func (s *Session) SetDateRange(r model.DateRange) {
	s.store.SetDateRange(r)
}

func (s *Session) ApplyPreset(name string, now time.Time) error {
	p, err := filter.ParsePreset(name)
	if err != nil {
		return err
	}
	return s.store.ApplyPreset(p, now)
}

// Roll advances the active relative preset to now.
func (s *Session) Roll(now time.Time) (bool, error) {
	return s.store.Roll(now)
}

// Regions returns the selectable regions, model.AllRegions first.
func (s *Session) Regions() []string {
	return append([]string{model.AllRegions}, s.regions...)
}

func (s *Session) SetRegion(region string) error {
	if !slices.Contains(s.Regions(), region) {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	s.store.SetRegion(region)
	return nil
}

func (s *Session) Catalog() *view.Catalog { return s.catalog }

func (s *Session) ForecastControls() model.ForecastControls { return s.forecast.Controls() }

func (s *Session) SetForecastControls(category, subCategory string) (model.ForecastControls, error) {
	return s.forecast.SetControls(category, subCategory)
}

func (s *Session) View(name string) (view.View, error) {
	for _, v := range s.views {
		if v.Name() == name {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownView, name)
}

func (s *Session) Statuses() []view.Status {
	out := make([]view.Status, len(s.views))
	for i, v := range s.views {
		out[i] = v.Status()
	}
	return out
}

func (s *Session) Refresh(name string) (bool, error) {
	v, err := s.View(name)
	if err != nil {
		return false, err
	}
	return v.Refresh(), nil
}

func (s *Session) History(name string, limit int) ([]recorder.FetchEvent, error) {
	if _, err := s.View(name); err != nil {
		return nil, err
	}
	return s.recorder.RecentFetches(name, limit)
}

// Report renders the session as plain text.
func (s *Session) Report(now time.Time) string {
	var kpis *model.KPISummary
	if snap := s.kpi.Snapshot(); snap.HasData {
		kpis = &snap.Data.Values
	}
	lines := make([]report.ViewLine, 0, len(s.views))
	for _, st := range s.Statuses() {
		line := report.ViewLine{Name: st.View, State: st.State.String()}
		if st.UpdatedAt != nil {
			line.UpdatedAt = *st.UpdatedAt
		}
		if st.Error != nil {
			line.Error = st.Error.Message
		}
		lines = append(lines, line)
	}
	return report.FormatStatus(s.store.State(), kpis, lines, now)
}

// Wait blocks until every view's issued fetches have completed.
func (s *Session) Wait() {
	for _, v := range s.views {
		v.Wait()
	}
}

func (s *Session) recordFetch(ev orchestrator.Event) {
	evt := &recorder.FetchEvent{
		View:      ev.View,
		Seq:       ev.Seq,
		Query:     ev.Query.Key(),
		Outcome:   string(ev.Outcome),
		StartedAt: ev.Started,
		Duration:  ev.Duration,
	}
	if ev.Err != nil {
		evt.ErrorKind = string(collector.KindOf(ev.Err))
		evt.Error = ev.Err.Error()
	}
	if err := s.recorder.RecordFetch(evt); err != nil {
		s.logger.Error("record fetch", zap.String("view", ev.View), zap.Error(err))
	}
}

func (s *Session) recordFilterChange(changed filter.Field, state model.FilterState) {
	s.logger.Info("filters changed",
		zap.Stringer("field", changed),
		zap.String("start", query.FormatDate(state.DateRange.Start)),
		zap.String("end", query.FormatDate(state.DateRange.End)),
		zap.String("region", state.Region),
		zap.String("preset", state.Preset))

	if err := s.recorder.RecordFilterChange(&recorder.FilterEvent{
		Field:  changed.String(),
		Start:  query.FormatDate(state.DateRange.Start),
		End:    query.FormatDate(state.DateRange.End),
		Region: state.Region,
		Preset: state.Preset,
	}); err != nil {
		s.logger.Error("record filter change", zap.Error(err))
	}
}
