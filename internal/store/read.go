package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when no run matches an ID.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRunID is returned when an ID prefix matches several runs.
var ErrAmbiguousRunID = errors.New("run ID prefix is ambiguous")

const runColumns = `id, seq, target, source, total, failures, fingerprint, created_at`

// ListRuns returns every run ordered by seq ASC, id ASC.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
}

// FindRunsByFingerprint returns runs whose failure reports are identical
// to the one with the given fingerprint.
func (s *Store) FindRunsByFingerprint(ctx context.Context, fingerprint string) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE fingerprint = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, fingerprint)
}

// ReadRun returns a run and its failure cases ordered by index. id may be
// a unique prefix of the run ID.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, []Case, error) {
	runs, err := s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE id = ? OR substr(id, 1, length(?)) = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, id, id, id)
	if err != nil {
		return Run{}, nil, err
	}

	var run Run
	switch {
	case len(runs) == 0:
		return Run{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case len(runs) == 1:
		run = runs[0]
	default:
		exact := false
		for _, r := range runs {
			if r.ID == id {
				run, exact = r, true
			}
		}
		if !exact {
			return Run{}, nil, fmt.Errorf("%w: %s matches %d runs", ErrAmbiguousRunID, id, len(runs))
		}
	}

	cases, err := s.readCases(ctx, run.ID)
	if err != nil {
		return Run{}, nil, err
	}
	return run, cases, nil
}

func (s *Store) readCases(ctx context.Context, runID string) ([]Case, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, value
		FROM failure_cases
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failure cases: %w", err)
	}
	defer rows.Close()

	cases := []Case{}
	for rows.Next() {
		var c Case
		if err := rows.Scan(&c.Index, &c.Value); err != nil {
			return nil, fmt.Errorf("scan failure case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failure cases: %w", err)
	}
	return cases, nil
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
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

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run       Run
		createdAt string
	)
	if err := rows.Scan(&run.ID, &run.Seq, &run.Target, &run.Source, &run.Total, &run.Failures, &run.Fingerprint, &createdAt); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("scan run %s: created_at: %w", run.ID, err)
	}
	run.CreatedAt = ts
	return run, nil
}
