package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matijazezelj/roadplan/pkg/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
    id TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS roads (
    from_id  TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
    to_id    TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
    distance INTEGER NOT NULL,
    PRIMARY KEY (from_id, to_id, distance)
);

CREATE INDEX IF NOT EXISTS idx_roads_to ON roads(to_id);

CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    roads_file  TEXT NOT NULL,
    routes_file TEXT NOT NULL,
    result_file TEXT NOT NULL,
    started_at  DATETIME NOT NULL,
    finished_at DATETIME,
    routed      INTEGER DEFAULT 0,
    unknown     INTEGER DEFAULT 0,
    unreachable INTEGER DEFAULT 0,
    skipped     INTEGER DEFAULT 0,
    status      TEXT DEFAULT 'running'
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Init creates the database schema if it doesn't exist.
func (s *SQLiteStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplaceNetwork stores g in a single transaction, removing whatever
// network was stored before.
func (s *SQLiteStore) ReplaceNetwork(ctx context.Context, g *Graph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM roads`); err != nil {
		return fmt.Errorf("clearing roads: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return fmt.Errorf("clearing nodes: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `INSERT INTO nodes (id) VALUES (?)`)
	if err != nil {
		return err
	}
	defer nodeStmt.Close() //nolint:errcheck // best-effort cleanup

	for _, id := range g.Nodes() {
		if _, err := nodeStmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("inserting node %s: %w", id, err)
		}
	}

	roadStmt, err := tx.PrepareContext(ctx, `INSERT INTO roads (from_id, to_id, distance) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer roadStmt.Close() //nolint:errcheck // best-effort cleanup

	for _, r := range g.Roads() {
		if _, err := roadStmt.ExecContext(ctx, r.From, r.To, r.Distance); err != nil {
			return fmt.Errorf("inserting road %s->%s: %w", r.From, r.To, err)
		}
	}

	return tx.Commit()
}

// LoadGraph rebuilds the stored network, including locations without roads.
func (s *SQLiteStore) LoadGraph(ctx context.Context) (*Graph, error) {
	g := New()

	rows, err := s.db.QueryContext(ctx, `SELECT from_id, to_id, distance FROM roads ORDER BY from_id, to_id, distance`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // best-effort cleanup

	for rows.Next() {
		var r models.Road
		if err := rows.Scan(&r.From, &r.To, &r.Distance); err != nil {
			return nil, err
		}
		g.AddEdge(r.From, r.To, r.Distance)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// the node table stays authoritative for locations without roads
	nodeRows, err := s.db.QueryContext(ctx, `SELECT id FROM nodes`)
	if err != nil {
		return nil, err
	}
	defer nodeRows.Close() //nolint:errcheck // best-effort cleanup

	for nodeRows.Next() {
		var id string
		if err := nodeRows.Scan(&id); err != nil {
			return nil, err
		}
		if _, ok := g.adjacency[id]; !ok {
			g.adjacency[id] = nil
		}
	}
	return g, nodeRows.Err()
}

// NodeCount returns the total number of locations.
func (s *SQLiteStore) NodeCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&count)
	return count, err
}

// RoadCount returns the total number of roads.
func (s *SQLiteStore) RoadCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roads`).Scan(&count)
	return count, err
}

// RecordRun inserts a new run record.
func (s *SQLiteStore) RecordRun(ctx context.Context, run models.Run) error {
	status := run.Status
	if status == "" {
		status = "running"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, roads_file, routes_file, result_file, started_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.RoadsFile, run.RoutesFile, run.ResultFile, run.StartedAt.Format(time.RFC3339), status)
	return err
}

// FinishRun updates a run record with its final status and counters.
func (s *SQLiteStore) FinishRun(ctx context.Context, run models.Run) error {
	finished := time.Now()
	if run.FinishedAt != nil {
		finished = *run.FinishedAt
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, routed = ?, unknown = ?, unreachable = ?, skipped = ?, finished_at = ?
		WHERE id = ?
	`, run.Status, run.Routed, run.Unknown, run.Unreachable, run.Skipped, finished.Format(time.RFC3339), run.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

const runColumns = `id, roads_file, routes_file, result_file, started_at, finished_at, routed, unknown, unreachable, skipped, status`

// GetRun retrieves a single run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*models.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// ListRuns returns the most recent run records, up to limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // best-effort cleanup

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(row interface{ Scan(dest ...any) error }) (*models.Run, error) {
	var r models.Run
	var startedAt string
	var finishedAt sql.NullString

	err := row.Scan(&r.ID, &r.RoadsFile, &r.RoutesFile, &r.ResultFile, &startedAt, &finishedAt,
		&r.Routed, &r.Unknown, &r.Unreachable, &r.Skipped, &r.Status)
	if err != nil {
		return nil, err
	}

	r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if finishedAt.Valid {
		t, err := time.Parse(time.RFC3339, finishedAt.String)
		if err == nil {
			r.FinishedAt = &t
		}
	}
	return &r, nil
}
