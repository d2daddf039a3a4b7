package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"feedrebuild/internal/rebuild"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded rebuild invocation.
type Run struct {
	ID           string        `json:"id"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	ManifestPath string        `json:"manifest_path"`
	OutputPath   string        `json:"output_path,omitempty"`
	DryRun       bool          `json:"dry_run"`
	Stats        rebuild.Stats `json:"stats"`
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RecordRun stores run and its ordered outcomes in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, outcomes []rebuild.Outcome) error {
	if run.ID == "" {
		return errors.New("record run: id required")
	}
	return retryOnBusy(ctx, func() error {
		return s.recordRunTx(ctx, run, outcomes)
	})
}

func (s *Store) recordRunTx(ctx context.Context, run Run, outcomes []rebuild.Outcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (
        id, started_at, finished_at, manifest_path, output_path, dry_run,
        feeds, recorded, unresolved, malformed, fetch_failed, max_last_seen
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.ManifestPath,
		run.OutputPath,
		boolToInt(run.DryRun),
		run.Stats.Feeds,
		run.Stats.Recorded,
		run.Stats.Unresolved,
		run.Stats.Malformed,
		run.Stats.FetchFailed,
		run.Stats.MaxLastSeen,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO outcomes (
        run_id, position, url, status, folder, title, messages, last_seen_time, candidates, detail
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range outcomes {
		candidates, err := json.Marshal(nonNil(o.Candidates))
		if err != nil {
			return fmt.Errorf("encode candidates: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID, i, o.URL, string(o.Status), o.Folder, o.Title,
			o.Messages, o.LastSeenTime, string(candidates), o.Detail,
		); err != nil {
			return fmt.Errorf("insert outcome %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, manifest_path, output_path, dry_run,
    feeds, recorded, unresolved, malformed, fetch_failed, max_last_seen`

// RecentRuns returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single run by id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Outcomes returns the per-feed outcomes of a run in manifest order.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]rebuild.Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url, status, folder, title, messages, last_seen_time, candidates, detail
        FROM outcomes WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []rebuild.Outcome
	for rows.Next() {
		var (
			o          rebuild.Outcome
			status     string
			candidates string
		)
		if err := rows.Scan(&o.URL, &status, &o.Folder, &o.Title, &o.Messages, &o.LastSeenTime, &candidates, &o.Detail); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Status = rebuild.Status(status)
		if err := json.Unmarshal([]byte(candidates), &o.Candidates); err != nil {
			return nil, fmt.Errorf("decode candidates: %w", err)
		}
		if len(o.Candidates) == 0 {
			o.Candidates = nil
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return outcomes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		started, finished string
		dryRun            int
	)
	err := row.Scan(
		&run.ID, &started, &finished, &run.ManifestPath, &run.OutputPath, &dryRun,
		&run.Stats.Feeds, &run.Stats.Recorded, &run.Stats.Unresolved,
		&run.Stats.Malformed, &run.Stats.FetchFailed, &run.Stats.MaxLastSeen,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}
	run.DryRun = dryRun != 0
	return run, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
