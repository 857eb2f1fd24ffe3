package cli

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dtengine/internal/dtype"
)

// TypeEntry is one registered canonical type in types output.
type TypeEntry struct {
	Type        string   `json:"type"`
	Kind        string   `json:"kind"`
	Fingerprint string   `json:"fingerprint"`
	Equivalents []string `json:"equivalents"`
}

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List canonical types and their equivalent descriptors",
		Long: `List every registered canonical type in registration order, with the
string aliases, Go types and descriptor values that resolve to it.

Aliases from the config file and alias packs are included.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(rootOpts, cmd)
		},
	}
}

func runTypes(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	reg, err := opts.newRegistry()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to initialize registry", nil, err)
	}

	entries := reg.Entries()
	result := make([]TypeEntry, len(entries))
	for i, e := range entries {
		name := e.Type.String()
		equivalents := make([]string, 0, len(e.Equivalents))
		for _, d := range e.Equivalents {
			if s := describeDescriptor(d); s != name {
				equivalents = append(equivalents, s)
			}
		}
		result[i] = TypeEntry{
			Type:        name,
			Kind:        e.Type.Kind().String(),
			Fingerprint: e.Type.Fingerprint(),
			Equivalents: equivalents,
		}
	}
	formatter.VerboseLog("%d canonical type(s) registered", len(result))

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	for _, e := range result {
		fmt.Fprintf(formatter.Writer, "%s\t%s\n", e.Type, strings.Join(e.Equivalents, ", "))
	}
	return nil
}

// describeDescriptor renders a registered descriptor for display: strings
// as-is, Go types prefixed with "go:".
func describeDescriptor(d any) string {
	switch v := d.(type) {
	case string:
		return v
	case reflect.Type:
		return "go:" + v.String()
	case dtype.Type:
		return v.String()
	}
	return fmt.Sprintf("%T", d)
}
