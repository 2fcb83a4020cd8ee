package orchestrator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"RetailPulse/internal/collector"
	"RetailPulse/internal/metrics"
	"RetailPulse/internal/query"
)

// State is the lifecycle state of a view.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Outcome of a completed fetch.
type Outcome string

const (
	OutcomeReady     Outcome = "ready"
	OutcomeFailed    Outcome = "failed"
	OutcomeDiscarded Outcome = "discarded" // superseded by a later request
)

// Event describes one completed fetch.
type Event struct {
	View     string
	Seq      uint64
	Query    query.ViewQuery
	Outcome  Outcome
	Err      error
	Started  time.Time
	Duration time.Duration
}

// Observer is notified after every completed fetch, outside the lock.
type Observer func(Event)

// FetchFunc loads the payload for a query.
type FetchFunc[T any] func(ctx context.Context, q query.ViewQuery) (T, error)

// Snapshot is a consistent copy of an orchestrator's state.
type Snapshot[T any] struct {
	State     State
	Seq       uint64
	Query     query.ViewQuery
	Data      T
	HasData   bool
	Err       error
	UpdatedAt time.Time
}

type Options struct {
	Logger   *zap.Logger
	Observer Observer
	// Timeout bounds each fetch; zero leaves it to the fetcher.
	Timeout time.Duration
	// Context is the parent of every fetch context.
	Context context.Context
}

// Orchestrator owns the fetch lifecycle of one view. Every request gets the
// next sequence number; a result is applied only when its number is still the
// latest issued, so responses arriving out of order can never overwrite a
// newer request's result. Superseded fetches run to completion and are
// discarded.
type Orchestrator[T any] struct {
	name     string
	fetch    FetchFunc[T]
	logger   *zap.Logger
	observer Observer
	timeout  time.Duration
	ctx      context.Context

	mu        sync.Mutex
	seq       uint64
	state     State
	query     query.ViewQuery
	key       string
	issued    bool
	data      T
	hasData   bool
	err       error
	updatedAt time.Time

	wg sync.WaitGroup
}

func New[T any](name string, fetch FetchFunc[T], opts Options) *Orchestrator[T] {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	metrics.ViewStateGauge.WithLabelValues(name).Set(float64(Idle))
	return &Orchestrator[T]{
		name:     name,
		fetch:    fetch,
		logger:   logger.With(zap.String("view", name)),
		observer: opts.Observer,
		timeout:  opts.Timeout,
		ctx:      ctx,
	}
}

func (o *Orchestrator[T]) Name() string { return o.name }

// Request issues q unless it equals the query already issued. It reports
// whether a fetch was started.
func (o *Orchestrator[T]) Request(q query.ViewQuery) bool {
	key := q.Key()
	o.mu.Lock()
	if o.issued && key == o.key {
		o.mu.Unlock()
		return false
	}
	seq := o.issueLocked(q, key)
	o.mu.Unlock()

	o.start(seq, q, false)
	return true
}

// Refresh reissues the current query with a new sequence number, bypassing
// any payload cache. It returns false when nothing has been requested yet.
func (o *Orchestrator[T]) Refresh() bool {
	o.mu.Lock()
	if !o.issued {
		o.mu.Unlock()
		return false
	}
	q := o.query
	seq := o.issueLocked(q, o.key)
	o.mu.Unlock()

	o.start(seq, q, true)
	return true
}

func (o *Orchestrator[T]) issueLocked(q query.ViewQuery, key string) uint64 {
	o.seq++
	o.query = q
	o.key = key
	o.issued = true
	o.state = Loading
	o.err = nil
	o.updatedAt = time.Now()
	o.wg.Add(1)
	metrics.ViewStateGauge.WithLabelValues(o.name).Set(float64(Loading))
	return o.seq
}

func (o *Orchestrator[T]) start(seq uint64, q query.ViewQuery, fresh bool) {
	o.logger.Debug("fetch issued", zap.Uint64("seq", seq), zap.String("query", q.Key()), zap.Bool("fresh", fresh))
	go o.run(seq, q, fresh)
}

func (o *Orchestrator[T]) run(seq uint64, q query.ViewQuery, fresh bool) {
	defer o.wg.Done()

	ctx := o.ctx
	if fresh {
		ctx = collector.WithCacheBypass(ctx)
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	started := time.Now()
	data, err := o.fetch(ctx, q)
	ev := Event{
		View:     o.name,
		Seq:      seq,
		Query:    q,
		Err:      err,
		Started:  started,
		Duration: time.Since(started),
	}
	ev.Outcome = o.apply(seq, data, err)

	metrics.ViewFetchesTotal.WithLabelValues(o.name, string(ev.Outcome)).Inc()
	metrics.ViewFetchDuration.WithLabelValues(o.name).Observe(ev.Duration.Seconds())

	switch ev.Outcome {
	case OutcomeDiscarded:
		o.logger.Debug("stale result discarded", zap.Uint64("seq", seq))
	case OutcomeFailed:
		o.logger.Warn("fetch failed",
			zap.Uint64("seq", seq),
			zap.String("endpoint", q.Endpoint),
			zap.String("kind", string(collector.KindOf(err))),
			zap.Error(err))
	default:
		o.logger.Debug("fetch applied", zap.Uint64("seq", seq), zap.Duration("duration", ev.Duration))
	}

	if o.observer != nil {
		o.observer(ev)
	}
}

func (o *Orchestrator[T]) apply(seq uint64, data T, err error) Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.seq {
		return OutcomeDiscarded
	}
	o.updatedAt = time.Now()
	if err != nil {
		var zero T
		o.state = Failed
		o.data = zero
		o.hasData = false
		o.err = err
		metrics.ViewStateGauge.WithLabelValues(o.name).Set(float64(Failed))
		return OutcomeFailed
	}
	o.state = Ready
	o.data = data
	o.hasData = true
	o.err = nil
	metrics.ViewStateGauge.WithLabelValues(o.name).Set(float64(Ready))
	return OutcomeReady
}

// Snapshot returns the current state. While Loading, the last Ready payload
// (if any) is still reported.
func (o *Orchestrator[T]) Snapshot() Snapshot[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot[T]{
		State:     o.state,
		Seq:       o.seq,
		Query:     o.query,
		Data:      o.data,
		HasData:   o.hasData,
		Err:       o.err,
		UpdatedAt: o.updatedAt,
	}
}

// Wait blocks until every fetch issued so far has completed.
func (o *Orchestrator[T]) Wait() {
	o.wg.Wait()
}
