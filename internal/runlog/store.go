package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	mgotel "github.com/veridex-io/mailguard/internal/otel"
)

var tracer = mgotel.Tracer("github.com/veridex-io/mailguard/internal/runlog")

// Store persists run artifacts in SQLite.
type Store struct {
	db *sql.DB
}

// Summary is the index view of a persisted run.
type Summary struct {
	WorkflowID string    `json:"workflow_id"`
	StartedAt  time.Time `json:"started_at"`
	Status     string    `json:"status"`
	Route      string    `json:"route"`
	Verdict    string    `json:"verdict"`
	TotalTime  float64   `json:"total_time"`
	ToolCalls  int       `json:"tool_calls"`
	Errors     int       `json:"errors"`
}

// NewStore opens (and if needed creates) the run store at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening run database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		workflow_id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		route TEXT NOT NULL,
		verdict TEXT NOT NULL,
		total_time REAL NOT NULL,
		tool_calls INTEGER NOT NULL,
		errors INTEGER NOT NULL,
		artifact_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_verdict ON runs(verdict);
	CREATE INDEX IF NOT EXISTS idx_runs_route ON runs(route);
	`

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		return nil, fmt.Errorf("creating run schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists a completed artifact. Saving the same workflow id again
// replaces the stored artifact.
func (s *Store) Save(ctx context.Context, a *Artifact) error {
	ctx, span := tracer.Start(ctx, "runlog.save",
		trace.WithAttributes(
			attribute.String("workflow.id", a.WorkflowID),
			attribute.String("workflow.route", a.Route),
		))
	defer span.End()

	artifactJSON, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshaling run artifact: %w", err)
	}

	query := `INSERT OR REPLACE INTO runs
	          (workflow_id, started_at, status, route, verdict, total_time, tool_calls, errors, artifact_json)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		a.WorkflowID, a.StartedAt, a.Status, a.Route, a.Verdict,
		a.TotalTime, len(a.ToolCalls), len(a.Errors), string(artifactJSON),
	)
	if err != nil {
		return fmt.Errorf("storing run artifact: %w", err)
	}
	return nil
}

// Get retrieves the full artifact for a workflow id.
func (s *Store) Get(ctx context.Context, workflowID string) (*Artifact, error) {
	ctx, span := tracer.Start(ctx, "runlog.get",
		trace.WithAttributes(attribute.String("workflow.id", workflowID)))
	defer span.End()

	var artifactJSON string
	query := `SELECT artifact_json FROM runs WHERE workflow_id = ?`
	err := s.db.QueryRowContext(ctx, query, workflowID).Scan(&artifactJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", workflowID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal([]byte(artifactJSON), &a); err != nil {
		return nil, fmt.Errorf("unmarshaling run artifact: %w", err)
	}
	return &a, nil
}

// List returns run summaries matching the given filters, newest first.
func (s *Store) List(ctx context.Context, route, verdict string, from, to time.Time, limit int) ([]Summary, error) {
	ctx, span := tracer.Start(ctx, "runlog.list",
		trace.WithAttributes(
			attribute.String("workflow.route", route),
			attribute.String("workflow.verdict", verdict),
		))
	defer span.End()

	query := `SELECT workflow_id, started_at, status, route, verdict, total_time, tool_calls, errors
	          FROM runs WHERE 1=1`
	args := []interface{}{}

	if route != "" {
		query += ` AND route = ?`
		args = append(args, route)
	}
	if verdict != "" {
		query += ` AND verdict = ?`
		args = append(args, verdict)
	}
	if !from.IsZero() {
		query += ` AND started_at >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		query += ` AND started_at < ?`
		args = append(args, to)
	}

	query += ` ORDER BY started_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var results []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.WorkflowID, &sum.StartedAt, &sum.Status, &sum.Route,
			&sum.Verdict, &sum.TotalTime, &sum.ToolCalls, &sum.Errors); err != nil {
			continue
		}
		results = append(results, sum)
	}
	return results, rows.Err()
}

// VerdictCounts returns how many stored runs ended in each verdict within
// the half-open time range [from, to).
func (s *Store) VerdictCounts(ctx context.Context, from, to time.Time) (map[string]int, error) {
	ctx, span := tracer.Start(ctx, "runlog.verdict_counts")
	defer span.End()

	query := `SELECT verdict, COUNT(*) FROM runs WHERE 1=1`
	args := []interface{}{}
	if !from.IsZero() {
		query += ` AND started_at >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		query += ` AND started_at < ?`
		args = append(args, to)
	}
	query += ` GROUP BY verdict`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("counting runs: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var verdict string
		var n int
		if err := rows.Scan(&verdict, &n); err != nil {
			continue
		}
		counts[verdict] = n
	}
	return counts, rows.Err()
}
