package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/dtengine/internal/coerce"
	"github.com/roach88/dtengine/internal/config"
	"github.com/roach88/dtengine/internal/dtype"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is loaded before any subcommand runs.
	Config config.Config

	// Logger receives engine and registry logs; nil discards them.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the dtengine CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dtengine",
		Short: "dtengine - data type registry and coercion engine",
		Long: `Resolve type descriptors to canonical data types and coerce columns of
values to them, reporting every element that could not be converted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "",
		"config file (default: .dtengine/config.yaml, then ~/.config/dtengine/config.yaml)")

	cmd.AddCommand(NewTypesCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewCoerceCommand(opts))
	cmd.AddCommand(NewReportsCommand(opts))

	return cmd
}

// setup loads configuration and configures logging. Changed --format and
// --db flags take precedence over the config file and environment.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath, cmd.Flags())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.Config = cfg
	o.Format = cfg.Format

	logLevel := slog.LevelWarn
	if o.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	o.Logger = slog.New(handler)
	slog.SetDefault(o.Logger)
	return nil
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// formatter returns an OutputFormatter writing to cmd's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// newRegistry initializes and seals a registry holding the configured
// alias packs.
func (o *RootOptions) newRegistry() (*dtype.Registry, error) {
	regOpts, err := o.Config.RegistryOptions()
	if err != nil {
		return nil, err
	}
	regOpts = append(regOpts, dtype.WithLogger(o.logger()))
	return dtype.InitializeRegistry(regOpts...)
}

// newEngine builds a coercion engine over a fresh registry. metrics may
// be nil.
func (o *RootOptions) newEngine(metrics *coerce.Metrics) (*coerce.Engine, error) {
	reg, err := o.newRegistry()
	if err != nil {
		return nil, err
	}
	engOpts := append(o.Config.EngineOptions(), coerce.WithLogger(o.logger()))
	if metrics != nil {
		engOpts = append(engOpts, coerce.WithMetrics(metrics))
	}
	return coerce.New(reg, engOpts...)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
