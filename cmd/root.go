package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"clipdata/pkg/completions"
	"clipdata/pkg/config"
	"clipdata/pkg/errors"
	"clipdata/pkg/logger"

	"github.com/spf13/cobra"
)

const (
	unknownValue = "unknown"
)

var (
	Version   string
	BuildTime string
	GitCommit string
)

var defaultTimeout = 10 * time.Second
var globalTimeout time.Duration
var outputFormat string
var logLevel string
var presetFlag string
var noHistoryFlag bool
var dryRunFlag bool
var assumeYesFlag bool

// appConfig is loaded once per invocation, before any command runs.
var appConfig = config.Default()

var rootCmd = &cobra.Command{
	Use:   "clipdata",
	Short: "Move tables between the clipboard and your terminal",
	Long: `clipdata pastes tabular data from the clipboard (a range copied from a
spreadsheet, a CSV snippet, a column of numbers), prints it, saves it, and
copies tables and arrays back. It can also print minimum working examples:
a code snippet that embeds the data and parses it again, ready for a bug
report.

Transfers are kept in a local SQLite history. Settings and named presets
live in the XDG config directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if globalTimeout <= 0 {
			globalTimeout = defaultTimeout
		}
		// Set log level: explicit flag takes precedence over env var
		level := logLevel
		if !cmd.Flags().Changed("log-level") {
			if envLevel := os.Getenv("CLIPDATA_LOG_LEVEL"); envLevel != "" {
				level = envLevel
			}
		}
		logger.SetLevel(level)

		cfg, err := config.Load(presetFlag)
		if err != nil {
			// A broken config file must not lock out the commands that fix it.
			if !isConfigCommand(cmd) {
				return err
			}
			logger.Warn().Err(err).Msg("ignoring unusable config file")
			cfg = config.Default()
		}
		appConfig = cfg

		if !cmd.Flags().Changed("format") {
			outputFormat = cfg.OutputFormat
		}
		return validateFormat(outputFormat)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		ver := Version
		if ver == "" {
			ver = "dev"
		}
		bt := BuildTime
		if bt == "" {
			bt = unknownValue
		}
		gc := GitCommit
		if gc == "" {
			gc = unknownValue
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "clipdata version %s\n", ver)
		fmt.Fprintf(out, "Built: %s\n", bt)
		fmt.Fprintf(out, "Git commit: %s\n", gc)
	},
}

func Execute() {
	// Flags are registered by each command file's init, so completions are
	// attached last.
	completions.RegisterCompletions(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		exitCode := errors.HandleReturn(err)
		os.Exit(int(exitCode))
	}
}

func GetContext() (context.Context, context.CancelFunc) {
	timeout := globalTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return true
		}
	}
	return false
}

func validateFormat(format string) error {
	for _, f := range config.OutputFormats() {
		if f == format {
			return nil
		}
	}
	return errors.ValidationError(fmt.Sprintf("unknown output format %q (want one of %s)", format, strings.Join(config.OutputFormats(), ", ")))
}

func init() {
	RegisterCommands(rootCmd)

	rootCmd.PersistentFlags().DurationVar(&globalTimeout, "timeout", defaultTimeout, "Timeout for clipboard access (e.g., 5s, 1m)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", config.DefaultOutputFormat, "Output format ("+strings.Join(config.OutputFormats(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logger.DefaultLevel, "Log level (trace, debug, info, warn, error, off)")
	rootCmd.PersistentFlags().StringVar(&presetFlag, "preset", "", "Apply a named preset from the config file")
	rootCmd.PersistentFlags().BoolVar(&noHistoryFlag, "no-history", false, "Do not record this transfer in the history")
	rootCmd.PersistentFlags().BoolVar(&dryRunFlag, "dry-run", false, "Leave the clipboard alone: read stdin instead, print what would be copied")
	rootCmd.PersistentFlags().BoolVarP(&assumeYesFlag, "yes", "y", false, "Skip confirmation prompts")
}
