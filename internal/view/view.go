package view

import (
	"time"

	"RetailPulse/internal/collector"
	"RetailPulse/internal/filter"
	"RetailPulse/internal/model"
	"RetailPulse/internal/orchestrator"
)

// View names.
const (
	NameKPI      = "kpi"
	NameProfit   = "profit"
	NameForecast = "forecast"
)

// View is a dashboard panel driven by the global filters.
type View interface {
	Name() string
	// Dependencies is the set of filter fields whose change re-evaluates the view.
	Dependencies() filter.Field
	// Evaluate derives the view's query from state and issues it when it changed.
	Evaluate(state model.FilterState) bool
	// Refresh reissues the current query.
	Refresh() bool
	Status() Status
	// Wait blocks until every issued fetch has completed.
	Wait()
}

type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Status is the externally visible state of a view.
type Status struct {
	View      string             `json:"view"`
	State     orchestrator.State `json:"state"`
	Seq       uint64             `json:"seq"`
	Query     string             `json:"query,omitempty"`
	Data      any                `json:"data,omitempty"`
	Error     *ErrorInfo         `json:"error,omitempty"`
	UpdatedAt *time.Time         `json:"updated_at,omitempty"`
}

func statusOf[T any](name string, snap orchestrator.Snapshot[T]) Status {
	st := Status{View: name, State: snap.State, Seq: snap.Seq}
	if snap.State != orchestrator.Idle {
		st.Query = snap.Query.Key()
		t := snap.UpdatedAt
		st.UpdatedAt = &t
	}
	if snap.HasData {
		st.Data = snap.Data
	}
	if snap.Err != nil {
		st.Error = &ErrorInfo{Kind: string(collector.KindOf(snap.Err)), Message: snap.Err.Error()}
	}
	return st
}

// Bind subscribes v to the store's changes in v's dependency set and
// evaluates it once against the current state. The returned function
// unsubscribes.
func Bind(store *filter.Store, v View) func() {
	unsubscribe := store.Subscribe(v.Dependencies(), func(_ filter.Field, state model.FilterState) {
		v.Evaluate(state)
	})
	v.Evaluate(store.State())
	return unsubscribe
}
