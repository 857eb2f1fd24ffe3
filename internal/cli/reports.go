package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dtengine/internal/store"
)

// ReportsOptions holds flags for the reports command.
type ReportsOptions struct {
	*RootOptions
	DB          string
	Fingerprint string
}

// RunSummary is a stored run in reports output.
type RunSummary struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	Target      string `json:"target"`
	Source      string `json:"source"`
	Total       int    `json:"total"`
	Failures    int    `json:"failures"`
	Fingerprint string `json:"fingerprint,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// RunDetail is a stored run with its failure cases.
type RunDetail struct {
	RunSummary
	Cases []StoredCase `json:"cases"`
}

// StoredCase is a stored failure case.
type StoredCase struct {
	Index int             `json:"index"`
	Value json.RawMessage `json:"value"`
}

// NewReportsCommand creates the reports command.
func NewReportsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reports [run-id]",
		Short: "List or show recorded coercion runs",
		Long: `List the runs recorded by coerce --db, or show one run and its failure
cases. A run ID may be abbreviated to any unique prefix.

Example:
  dtengine reports --db reports.db
  dtengine reports --db reports.db 3f2a9c1e`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runReports(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to SQLite report store")
	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "list only runs with this report fingerprint")

	return cmd
}

func runReports(opts *ReportsOptions, runID string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	path := opts.DB
	if path == "" {
		path = opts.Config.DB
	}
	if path == "" {
		return formatter.fail(ExitCommandError, ErrCodeUsage, "--db is required (or set db in the config file)", nil, nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, "failed to open database", nil, err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if runID != "" {
		return showRun(ctx, formatter, st, runID)
	}
	return listRuns(ctx, formatter, st, opts.Fingerprint)
}

func listRuns(ctx context.Context, formatter *OutputFormatter, st *store.Store, fingerprint string) error {
	var (
		runs []store.Run
		err  error
	)
	if fingerprint != "" {
		runs, err = st.FindRunsByFingerprint(ctx, fingerprint)
	} else {
		runs, err = st.ListRuns(ctx)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to list runs", nil, err)
	}

	summaries := make([]RunSummary, len(runs))
	for i, r := range runs {
		summaries[i] = summarize(r)
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tTARGET\tSOURCE\tFAILURES\tCREATED")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d/%d\t%s\n",
			s.Seq, shortID(s.ID), s.Target, s.Source, s.Failures, s.Total, s.CreatedAt)
	}
	return tw.Flush()
}

func showRun(ctx context.Context, formatter *OutputFormatter, st *store.Store, runID string) error {
	run, cases, err := st.ReadRun(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) || errors.Is(err, store.ErrAmbiguousRunID) {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil, err)
		}
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to read run", nil, err)
	}

	detail := RunDetail{RunSummary: summarize(run), Cases: make([]StoredCase, len(cases))}
	for i, c := range cases {
		detail.Cases[i] = StoredCase{Index: c.Index, Value: json.RawMessage(c.Value)}
	}

	if formatter.Format == "json" {
		return formatter.Success(detail)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run:      %s\n", detail.ID)
	fmt.Fprintf(w, "Target:   %s\n", detail.Target)
	fmt.Fprintf(w, "Source:   %s\n", detail.Source)
	fmt.Fprintf(w, "Created:  %s\n", detail.CreatedAt)
	fmt.Fprintf(w, "Failures: %d of %d\n", detail.Failures, detail.Total)
	if detail.Fingerprint != "" {
		fmt.Fprintf(w, "Report:   %s\n", detail.Fingerprint)
	}
	for _, c := range detail.Cases {
		fmt.Fprintf(w, "[%d] %s\n", c.Index, c.Value)
	}
	return nil
}

func summarize(r store.Run) RunSummary {
	return RunSummary{
		ID:          r.ID,
		Seq:         r.Seq,
		Target:      r.Target,
		Source:      r.Source,
		Total:       r.Total,
		Failures:    r.Failures,
		Fingerprint: r.Fingerprint,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}

// shortID abbreviates a run ID for tables.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
