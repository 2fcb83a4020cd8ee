package filter

import (
	"sync"
	"time"

	"RetailPulse/internal/metrics"
	"RetailPulse/internal/model"
)

// Field identifies a global filter field. Values combine as a bitmask to
// describe a view's dependency set.
type Field uint8

const (
	FieldDateRange Field = 1 << iota
	FieldRegion

	FieldNone Field = 0
	FieldAll        = FieldDateRange | FieldRegion
)

// Has reports whether any bit of o is set in f.
func (f Field) Has(o Field) bool { return f&o != 0 }

func (f Field) String() string {
	switch f {
	case FieldNone:
		return "none"
	case FieldDateRange:
		return "date_range"
	case FieldRegion:
		return "region"
	case FieldAll:
		return "date_range|region"
	default:
		return "unknown"
	}
}

// Listener receives the changed field and the state after the change.
// Listeners run synchronously on the setter's goroutine and must not call
// back into the store's setters.
type Listener func(changed Field, state model.FilterState)

type subscription struct {
	id   int
	deps Field
	fn   Listener
}

// Store is the session-scoped filter state. One Store is created per
// dashboard session and injected into every view that depends on it.
type Store struct {
	// writeMu serialises setters together with their notifications so that
	// listeners observe changes in the order they were made.
	writeMu sync.Mutex

	mu     sync.RWMutex
	state  model.FilterState
	origin time.Time
	subs   []subscription
	nextID int
}

// NewStore creates a Store holding initial. The start of the initial range is
// the origin used by the "all" preset.
func NewStore(initial model.FilterState) *Store {
	if initial.Region == "" {
		initial.Region = model.AllRegions
	}
	return &Store{state: initial, origin: initial.DateRange.Start}
}

// State returns a copy of the current filter state.
func (s *Store) State() model.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// DateRange returns the current date range.
func (s *Store) DateRange() model.DateRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.DateRange
}

// Region returns the current region.
func (s *Store) Region() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Region
}

// SetDateRange replaces the date range and clears any active preset.
// The range is stored as given; start <= end is the caller's concern.
func (s *Store) SetDateRange(r model.DateRange) {
	s.update(FieldDateRange, func(st *model.FilterState) bool {
		st.DateRange = r
		st.Preset = ""
		return true
	})
}

// SetRegion replaces the region.
func (s *Store) SetRegion(region string) {
	s.update(FieldRegion, func(st *model.FilterState) bool {
		st.Region = region
		return true
	})
}

// ApplyPreset replaces the date range with the range preset p yields at now
// and remembers p so that Roll can advance it later.
func (s *Store) ApplyPreset(p Preset, now time.Time) error {
	s.mu.RLock()
	origin := s.origin
	s.mu.RUnlock()

	r, err := RangeFor(p, now, origin)
	if err != nil {
		return err
	}
	s.update(FieldDateRange, func(st *model.FilterState) bool {
		st.DateRange = r
		st.Preset = string(p)
		return true
	})
	return nil
}

// Roll re-applies the active preset at now. It reports false when the range
// was set explicitly and there is nothing to roll. The preset check and the
// new range are applied as one write, so a concurrent explicit range is
// never overwritten.
func (s *Store) Roll(now time.Time) (bool, error) {
	var (
		rolled bool
		err    error
	)
	s.update(FieldDateRange, func(st *model.FilterState) bool {
		if st.Preset == "" {
			return false
		}
		r, rerr := RangeFor(Preset(st.Preset), now, s.origin)
		if rerr != nil {
			err = rerr
			return false
		}
		st.DateRange = r
		rolled = true
		return true
	})
	return rolled, err
}

// Subscribe registers fn for changes to any field in deps. The returned
// function removes the subscription.
func (s *Store) Subscribe(deps Field, fn Listener) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, deps: deps, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// update applies mutate and notifies the subscribers of changed. A mutate
// that returns false leaves the state untouched and notifies no one.
func (s *Store) update(changed Field, mutate func(*model.FilterState) bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := s.state
	if !mutate(&next) {
		s.mu.Unlock()
		return
	}
	s.state = next
	state := s.state
	var targets []Listener
	for _, sub := range s.subs {
		if sub.deps.Has(changed) {
			targets = append(targets, sub.fn)
		}
	}
	s.mu.Unlock()

	metrics.FilterChangesTotal.WithLabelValues(changed.String()).Inc()
	for _, fn := range targets {
		fn(changed, state)
	}
}
