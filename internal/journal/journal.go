// Package journal records track lifecycle events in SQLite, one row per
// event, grouped by run.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"trackrunner/internal/track"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
  id          TEXT PRIMARY KEY,
  seed        INTEGER NOT NULL,
  started_at  INTEGER NOT NULL,
  ended_at    INTEGER,
  distance    REAL NOT NULL DEFAULT 0,
  outcome     TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS events (
  run_id  TEXT NOT NULL REFERENCES runs(id),
  seq     INTEGER NOT NULL,
  type    TEXT NOT NULL,
  handle  INTEGER NOT NULL,
  name    TEXT NOT NULL,
  theme   TEXT NOT NULL,
  x       REAL NOT NULL,
  z       REAL NOT NULL,
  dx      REAL NOT NULL,
  dz      REAL NOT NULL,
  data    INTEGER NOT NULL,
  PRIMARY KEY (run_id, seq)
);
`

var ErrNoRun = errors.New("journal: no run in progress")

// Run is one row of the runs table.
type Run struct {
	ID        string
	Seed      uint64
	StartedAt time.Time
	EndedAt   time.Time // zero while the run is open
	Distance  float64
	Outcome   string
}

// Summary is a run with its event counts by type.
type Summary struct {
	Run
	Counts map[string]int
	Total  int
}

// Journal buffers events in memory and writes them on Flush. It is used
// from the game loop goroutine only.
type Journal struct {
	db      *sql.DB
	logger  *slog.Logger
	runID   string
	seq     int64
	pending []track.Event
}

// Open opens (creating if needed) the journal database at path.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Journal{db: db, logger: logger}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// RunID is the id of the open run, or "".
func (j *Journal) RunID() string {
	return j.runID
}

// BeginRun opens a new run. Events recorded before the next BeginRun
// belong to it.
func (j *Journal) BeginRun(ctx context.Context, seed uint64) (string, error) {
	if j.runID != "" {
		if err := j.EndRun(ctx, 0, "abandoned"); err != nil {
			return "", err
		}
	}
	id := uuid.NewString()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, seed, started_at) VALUES (?, ?, ?)`,
		id, int64(seed), time.Now().UTC().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	j.runID = id
	j.seq = 0
	j.pending = j.pending[:0]
	j.logger.Debug("journal run started", "run", id, "seed", seed)
	return id, nil
}

// Record queues ev for the open run. Events outside a run are dropped.
func (j *Journal) Record(ev track.Event) {
	if j.runID == "" {
		return
	}
	j.pending = append(j.pending, ev)
}

// Attach records every event published on bus.
func (j *Journal) Attach(bus *track.EventBus) {
	bus.SubscribeAll(j.Record)
}

// Pending is the number of queued events.
func (j *Journal) Pending() int {
	return len(j.pending)
}

// Flush writes queued events in one transaction.
func (j *Journal) Flush(ctx context.Context) error {
	if len(j.pending) == 0 {
		return nil
	}
	if j.runID == "" {
		return ErrNoRun
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin flush: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (run_id, seq, type, handle, name, theme, x, z, dx, dz, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	seq := j.seq
	for _, ev := range j.pending {
		seq++
		if _, err := stmt.ExecContext(ctx, j.runID, seq, ev.Type.String(), int64(ev.Handle), ev.Name, ev.Theme,
			ev.Position.X, ev.Position.Z, ev.Direction.X, ev.Direction.Z, ev.Data); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert event %d: %w", seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit flush: %w", err)
	}
	j.seq = seq
	j.pending = j.pending[:0]
	return nil
}

// EndRun flushes and closes the open run.
func (j *Journal) EndRun(ctx context.Context, distance float64, outcome string) error {
	if j.runID == "" {
		return ErrNoRun
	}
	if err := j.Flush(ctx); err != nil {
		return err
	}
	_, err := j.db.ExecContext(ctx,
		`UPDATE runs SET ended_at = ?, distance = ?, outcome = ? WHERE id = ?`,
		time.Now().UTC().UnixMilli(), distance, outcome, j.runID)
	if err != nil {
		return fmt.Errorf("close run: %w", err)
	}
	j.logger.Debug("journal run ended", "run", j.runID, "events", j.seq, "outcome", outcome)
	j.runID = ""
	return nil
}

// Runs lists runs, newest first.
func (j *Journal) Runs(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, seed, started_at, ended_at, distance, outcome FROM runs ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r       Run
		seed    int64
		started int64
		ended   sql.NullInt64
	)
	if err := s.Scan(&r.ID, &seed, &started, &ended, &r.Distance, &r.Outcome); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	r.Seed = uint64(seed)
	r.StartedAt = time.UnixMilli(started).UTC()
	if ended.Valid {
		r.EndedAt = time.UnixMilli(ended.Int64).UTC()
	}
	return r, nil
}

// Summary returns the run with id and how many events of each type it
// recorded. Unflushed events are not counted.
func (j *Journal) Summary(ctx context.Context, id string) (Summary, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id, seed, started_at, ended_at, distance, outcome FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Summary{}, fmt.Errorf("run %s: %w", id, sql.ErrNoRows)
		}
		return Summary{}, err
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM events WHERE run_id = ? GROUP BY type`, id)
	if err != nil {
		return Summary{}, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	sum := Summary{Run: r, Counts: make(map[string]int)}
	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return Summary{}, fmt.Errorf("scan count: %w", err)
		}
		sum.Counts[typ] = n
		sum.Total += n
	}
	return sum, rows.Err()
}
