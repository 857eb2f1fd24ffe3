package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/dtengine/internal/canon"
	"github.com/roach88/dtengine/internal/coerce"
	"github.com/roach88/dtengine/internal/dtype"
)

// Run is a recorded coercion run.
type Run struct {
	ID          string
	Seq         int64
	Target      string
	Source      string
	Total       int
	Failures    int
	Fingerprint string
	CreatedAt   time.Time
}

// Case is a stored failure case. Value holds the canonical JSON of the
// original element.
type Case struct {
	Index int
	Value string
}

// RunInput describes a run to record.
type RunInput struct {
	// Source names the input, e.g. a file path and column.
	Source string

	// Target is the type coerced to.
	Target dtype.Type

	// Total is the number of elements coerced.
	Total int

	// Report lists the failing elements. Nil records a clean run.
	Report *coerce.FailureReport
}

// WriteRun records a run and its failure cases in one transaction and
// returns the stored run with its generated ID.
func (s *Store) WriteRun(ctx context.Context, in RunInput) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Target:    in.Target.String(),
		Source:    in.Source,
		Total:     in.Total,
		Failures:  in.Report.Len(),
		CreatedAt: s.now().UTC(),
	}
	if in.Report != nil {
		fp, err := in.Report.Fingerprint()
		if err != nil {
			return Run{}, fmt.Errorf("write run: %w", err)
		}
		run.Fingerprint = fp
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, target, source, total, failures, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Target,
		run.Source,
		run.Total,
		run.Failures,
		run.Fingerprint,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	if run.Seq, err = res.LastInsertId(); err != nil {
		return Run{}, fmt.Errorf("write run: seq: %w", err)
	}

	if in.Report != nil {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO failure_cases (run_id, idx, value) VALUES (?, ?, ?)`)
		if err != nil {
			return Run{}, fmt.Errorf("write failure cases: %w", err)
		}
		defer stmt.Close()

		for _, fc := range in.Report.Cases {
			if _, err := stmt.ExecContext(ctx, run.ID, fc.Index, canon.Render(fc.Value)); err != nil {
				return Run{}, fmt.Errorf("write failure case %d: %w", fc.Index, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}
