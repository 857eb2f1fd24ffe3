package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Resolution is the outcome of resolving one descriptor.
type Resolution struct {
	Descriptor  string `json:"descriptor"`
	Type        string `json:"type,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <descriptor>...",
		Short: "Resolve descriptors to canonical types",
		Long: `Resolve each descriptor to exactly one canonical type and print its
canonical descriptor.

Example:
  dtengine resolve int64 BIGINT 'decimal(10,2)' 'datetime64[ns, UTC]'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args, cmd)
		},
	}
}

func runResolve(opts *RootOptions, descriptors []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	reg, err := opts.newRegistry()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to initialize registry", nil, err)
	}

	results := make([]Resolution, len(descriptors))
	failed := 0
	for i, d := range descriptors {
		results[i] = Resolution{Descriptor: d}
		t, err := reg.Resolve(d)
		if err != nil {
			results[i].Error = err.Error()
			failed++
			continue
		}
		results[i].Type = t.String()
		results[i].Kind = t.Kind().String()
		results[i].Fingerprint = t.Fingerprint()
	}

	if formatter.Format == "json" {
		if failed > 0 {
			return formatter.fail(ExitCommandError, ErrCodeUnresolved,
				fmt.Sprintf("%d of %d descriptor(s) did not resolve", failed, len(descriptors)), results, nil)
		}
		return formatter.Success(results)
	}

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(formatter.Writer, "%s -> error: %s\n", r.Descriptor, r.Error)
			continue
		}
		fmt.Fprintf(formatter.Writer, "%s -> %s\n", r.Descriptor, r.Type)
		formatter.VerboseLog("%s: kind=%s fingerprint=%s", r.Descriptor, r.Kind, r.Fingerprint)
	}
	if failed > 0 {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("%d of %d descriptor(s) did not resolve", failed, len(descriptors)))
	}
	return nil
}
