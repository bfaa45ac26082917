package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/roach88/holdjudge/internal/config"
)

const instrumentationName = "github.com/roach88/holdjudge"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string

	// Config and Logger are resolved before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the holdjudge CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "holdjudge",
		Short: "holdjudge - hold note judging",
		Long: `Judge hold notes from scripted or recorded input.

Beatmaps are CUE files, scenarios are YAML input scripts. Played sessions
are recorded in SQLite and can be replayed to verify that judging is
deterministic.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ./holdjudge.yaml when present)")
	flags.StringVar(&opts.Database, "db", "", "SQLite database for recorded sessions (default from config)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// resolve merges the config file and environment with flags. Flags win
// when set explicitly.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = o.Format
	} else {
		o.Format = cfg.Format
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	if flags.Changed("db") {
		cfg.DB = o.Database
	} else {
		o.Database = cfg.DB
	}

	level, err := cfg.Level()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid log level", err)
	}
	if o.Verbose {
		level = slog.LevelDebug
	}

	o.Config = cfg
	o.Logger = newLogger(cmd.ErrOrStderr(), o.Format, level)
	return nil
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// meter returns the global meter when metrics are enabled. An embedding
// program installs the SDK provider; otherwise the global one is a no-op
// too.
func (o *RootOptions) meter() metric.Meter {
	if o.Config != nil && o.Config.Metrics {
		return otel.Meter(instrumentationName)
	}
	return noop.Meter{}
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
