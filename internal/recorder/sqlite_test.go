package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_Fetches(t *testing.T) {
	r := newTestRecorder(t)
	started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordFetch(&FetchEvent{
		View: "kpi", Seq: 1, Query: "/api/kpis?region=All", Outcome: "discarded",
		StartedAt: started, Duration: 120 * time.Millisecond,
	}))
	require.NoError(t, r.RecordFetch(&FetchEvent{
		View: "kpi", Seq: 2, Query: "/api/kpis?region=West", Outcome: "failed",
		ErrorKind: "service", Error: "no data", StartedAt: started.Add(time.Second), Duration: 80 * time.Millisecond,
	}))
	require.NoError(t, r.RecordFetch(&FetchEvent{View: "profit", Seq: 1, Outcome: "ready", StartedAt: started}))

	got, err := r.RecentFetches("kpi", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[0].Seq)
	assert.Equal(t, "failed", got[0].Outcome)
	assert.Equal(t, "service", got[0].ErrorKind)
	assert.Equal(t, "no data", got[0].Error)
	assert.Equal(t, started.Add(time.Second), got[0].StartedAt)
	assert.Equal(t, 80*time.Millisecond, got[0].Duration)
	assert.Equal(t, "discarded", got[1].Outcome)

	got, err = r.RecentFetches("kpi", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = r.RecentFetches("forecast", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteRecorder_FilterChanges(t *testing.T) {
	r := newTestRecorder(t)
	require.NoError(t, r.RecordFilterChange(&FilterEvent{
		Field: "date_range", Start: "2025-05-02", End: "2025-06-01", Region: "All", Preset: "30",
	}))

	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM filter_changes WHERE preset = '30'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLiteRecorder_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	r, err := NewSQLiteRecorder(path, nil)
	require.NoError(t, err)
	require.NoError(t, r.RecordFetch(&FetchEvent{View: "kpi", Seq: 1, Outcome: "ready"}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path, nil)
	require.NoError(t, err)
	defer r.Close()
	got, err := r.RecentFetches("kpi", 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordFetch(&FetchEvent{}))
	assert.NoError(t, r.RecordFilterChange(&FilterEvent{}))
	got, err := r.RecentFetches("kpi", 5)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, r.Close())
}
