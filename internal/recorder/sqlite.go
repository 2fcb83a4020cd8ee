package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS view_fetches (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			view        TEXT NOT NULL,
			seq         INTEGER NOT NULL,
			query       TEXT,
			outcome     TEXT NOT NULL,
			error_kind  TEXT,
			error       TEXT,
			started_at  INTEGER,
			duration_ms REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetches_view_ts ON view_fetches(view, timestamp)`,

		`CREATE TABLE IF NOT EXISTS filter_changes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			field      TEXT NOT NULL,
			start_date TEXT,
			end_date   TEXT,
			region     TEXT,
			preset     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_filter_ts ON filter_changes(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordFetch(evt *FetchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO view_fetches
		(timestamp, view, seq, query, outcome, error_kind, error, started_at, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.View, int64(evt.Seq), evt.Query, evt.Outcome,
		evt.ErrorKind, evt.Error, evt.StartedAt.UnixMilli(),
		float64(evt.Duration)/float64(time.Millisecond),
	)
	return err
}

func (r *SQLiteRecorder) RecordFilterChange(evt *FilterEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO filter_changes
		(timestamp, field, start_date, end_date, region, preset)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Field, evt.Start, evt.End, evt.Region, evt.Preset,
	)
	return err
}

func (r *SQLiteRecorder) RecentFetches(view string, limit int) ([]FetchEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT view, seq, query, outcome, error_kind, error, started_at, duration_ms
		FROM view_fetches WHERE view = ? ORDER BY id DESC LIMIT ?`, view, limit)
	if err != nil {
		return nil, fmt.Errorf("query fetches: %w", err)
	}
	defer rows.Close()

	var out []FetchEvent
	for rows.Next() {
		var (
			evt        FetchEvent
			seq        int64
			startedAt  int64
			durationMs float64
		)
		if err := rows.Scan(&evt.View, &seq, &evt.Query, &evt.Outcome, &evt.ErrorKind, &evt.Error, &startedAt, &durationMs); err != nil {
			return nil, fmt.Errorf("scan fetch: %w", err)
		}
		evt.Seq = uint64(seq)
		evt.StartedAt = time.UnixMilli(startedAt).UTC()
		evt.Duration = time.Duration(durationMs * float64(time.Millisecond))
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
