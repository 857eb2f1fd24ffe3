package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/dtengine/internal/canon"
	"github.com/roach88/dtengine/internal/coerce"
	"github.com/roach88/dtengine/internal/column"
	"github.com/roach88/dtengine/internal/dtype"
	"github.com/roach88/dtengine/internal/record"
	"github.com/roach88/dtengine/internal/store"
)

// CoerceOptions holds flags for the coerce command.
type CoerceOptions struct {
	*RootOptions
	Type       string
	Input      string
	CSVColumn  string
	Schema     string
	Definition string
	DB         string
	Metrics    string
}

// CoerceResult is the JSON payload of a successful coercion.
type CoerceResult struct {
	Target string            `json:"target"`
	Count  int               `json:"count"`
	Values []json.RawMessage `json:"values"`
	RunID  string            `json:"run_id,omitempty"`
}

// CoerceFailure is the JSON error detail of a failed coercion.
type CoerceFailure struct {
	Target   string          `json:"target"`
	Total    int             `json:"total"`
	Failures []FailureDetail `json:"failures"`
	RunID    string          `json:"run_id,omitempty"`
}

// FailureDetail is one failing element. Errors is set for rows rejected
// by a row model.
type FailureDetail struct {
	Index  int               `json:"index"`
	Value  json.RawMessage   `json:"value"`
	Errors map[string]string `json:"errors,omitempty"`
}

// NewCoerceCommand creates the coerce command.
func NewCoerceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CoerceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "coerce",
		Short: "Coerce a column of values to a type",
		Long: `Coerce a column of values to a canonical type and report every element
that could not be converted.

Input is a JSON array of values, a column of a CSV file (--csv-column), or
a JSON array of rows validated against a CUE definition (--schema and
--definition). Exits 1 when any element fails.

Example:
  echo '[1, 2, "x", 4]' | dtengine coerce --type int64
  dtengine coerce --type 'decimal(10,2)' --input prices.csv --csv-column price --db reports.db
  dtengine coerce --schema order.cue --definition '#Order' --input orders.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoerce(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "target type descriptor")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "-", "input file (- for stdin)")
	cmd.Flags().StringVar(&opts.CSVColumn, "csv-column", "", "read this column of a CSV input")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE file defining the row model")
	cmd.Flags().StringVar(&opts.Definition, "definition", "", "CUE definition of the row model, e.g. #Order")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record the run in this SQLite report store")
	cmd.Flags().StringVar(&opts.Metrics, "metrics", "", "write Prometheus metrics to this file")

	return cmd
}

func runCoerce(opts *CoerceOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if err := opts.validate(); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeUsage, err.Error(), nil, nil)
	}

	data, err := readInput(opts.Input, cmd.InOrStdin())
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeReadFailed, "failed to read input", nil, err)
	}

	var (
		values     []any
		descriptor any = opts.Type
	)
	switch {
	case opts.Schema != "":
		var model *record.Model
		if model, err = record.CompileFile(opts.Schema, opts.Definition); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeSchema, err.Error(), nil, err)
		}
		if descriptor, err = dtype.NewRecord(model); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeSchema, err.Error(), nil, err)
		}
		values, err = decodeRows(data)
	case opts.CSVColumn != "":
		values, err = readCSVColumn(data, opts.CSVColumn)
	default:
		values, err = decodeValues(data)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeReadFailed, err.Error(), nil, err)
	}
	formatter.VerboseLog("Read %d value(s) from %s", len(values), sourceName(opts.Input, opts.CSVColumn))

	var (
		metrics  *coerce.Metrics
		gatherer *prometheus.Registry
	)
	if opts.Metrics != "" {
		gatherer = prometheus.NewRegistry()
		if metrics, err = coerce.NewMetrics(gatherer); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to create metrics", nil, err)
		}
	}

	eng, err := opts.newEngine(metrics)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to initialize engine", nil, err)
	}

	target, err := eng.Registry().Resolve(descriptor)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeUnresolved, err.Error(), nil, err)
	}

	in := column.New(sourceName(opts.Input, opts.CSVColumn), values)
	out, coerceErr := eng.TryCoerce(target, in)

	if gatherer != nil {
		if err := prometheus.WriteToTextfile(opts.Metrics, gatherer); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "failed to write metrics", nil, err)
		}
	}

	report, hasReport := coerce.FailureCases(coerceErr)
	if coerceErr != nil && !hasReport {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, coerceErr.Error(), nil, coerceErr)
	}

	runID, err := opts.record(cmd, target, in, report)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "failed to record run", nil, err)
	}

	if hasReport {
		return outputCoerceFailure(formatter, target, in.Len(), report, coerceErr, runID)
	}
	return outputCoerceSuccess(formatter, target, coerce.Values(out), runID)
}

func (o *CoerceOptions) validate() error {
	switch {
	case o.Type == "" && o.Schema == "":
		return errors.New("one of --type or --schema is required")
	case o.Type != "" && o.Schema != "":
		return errors.New("--type and --schema are mutually exclusive")
	case o.Schema != "" && o.Definition == "":
		return errors.New("--schema requires --definition")
	case o.Schema != "" && o.CSVColumn != "":
		return errors.New("--csv-column cannot be used with --schema")
	}
	return nil
}

// record stores the run when a report store is configured. It returns
// the run ID, or "" when persistence is off.
func (o *CoerceOptions) record(cmd *cobra.Command, target dtype.Type, in *column.Column, report *coerce.FailureReport) (string, error) {
	path := o.DB
	if path == "" {
		path = o.Config.DB
	}
	if path == "" {
		return "", nil
	}

	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	// Use command's context if available (for testing), otherwise create one
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	run, err := st.WriteRun(ctx, store.RunInput{
		Source: in.Name(),
		Target: target,
		Total:  in.Len(),
		Report: report,
	})
	if err != nil {
		return "", err
	}
	o.logger().Info("run recorded", "run_id", run.ID, "db", path, "failures", run.Failures)
	return run.ID, nil
}

func outputCoerceSuccess(formatter *OutputFormatter, target dtype.Type, values []any, runID string) error {
	rendered := make([]json.RawMessage, len(values))
	for i, v := range values {
		rendered[i] = json.RawMessage(canon.Render(v))
	}

	if formatter.Format == "json" {
		return formatter.Success(CoerceResult{
			Target: target.String(),
			Count:  len(values),
			Values: rendered,
			RunID:  runID,
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ Coerced %d value(s) to %s\n", len(values), target)
	for i, v := range rendered {
		fmt.Fprintf(formatter.Writer, "[%d] %s\n", i, v)
	}
	if runID != "" {
		fmt.Fprintf(formatter.Writer, "Recorded run %s\n", runID)
	}
	return nil
}

func outputCoerceFailure(formatter *OutputFormatter, target dtype.Type, total int, report *coerce.FailureReport, cause error, runID string) error {
	rowErrors := map[int]map[string]string{}
	var verr *coerce.ValidationError
	if errors.As(cause, &verr) {
		for _, row := range verr.Rows {
			msgs := make(map[string]string, len(row.Errors))
			for _, fe := range row.Errors {
				msgs[fe.Field] = fe.Message
			}
			rowErrors[row.Index] = msgs
		}
	}

	details := CoerceFailure{
		Target:   target.String(),
		Total:    total,
		Failures: make([]FailureDetail, report.Len()),
		RunID:    runID,
	}
	for i, fc := range report.Cases {
		details.Failures[i] = FailureDetail{
			Index:  fc.Index,
			Value:  json.RawMessage(canon.Render(fc.Value)),
			Errors: rowErrors[fc.Index],
		}
	}

	code, message := ErrCodeCoercion,
		fmt.Sprintf("%d of %d value(s) could not be coerced to %s", report.Len(), total, target)
	if verr != nil {
		code, message = ErrCodeValidation,
			fmt.Sprintf("%d of %d row(s) failed validation against %s", report.Len(), total, verr.Model)
	}

	if formatter.Format == "json" {
		return formatter.fail(ExitFailure, code, message, details, cause)
	}

	fmt.Fprintf(formatter.Writer, "✗ %s\n", message)
	for _, d := range details.Failures {
		if len(d.Errors) == 0 {
			fmt.Fprintf(formatter.Writer, "[%d] %s\n", d.Index, d.Value)
			continue
		}
		for _, field := range canon.SortedKeys(d.Errors) {
			fmt.Fprintf(formatter.Writer, "[%d] %s: %s\n", d.Index, field, d.Errors[field])
		}
	}
	if runID != "" {
		fmt.Fprintf(formatter.Writer, "Recorded run %s\n", runID)
	}
	return WrapExitError(ExitFailure, message, cause)
}
