package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mordilloSan/go_logger/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blackwell-systems/pkgman/internal/config"
	"github.com/blackwell-systems/pkgman/internal/output"
	"github.com/blackwell-systems/pkgman/internal/pkgutil"
)

var (
	// cfg is loaded before every subcommand runs.
	cfg config.Config

	// newRunner builds the pkgutil runner for a command. Tests replace it.
	newRunner = func(c config.Config) pkgutil.Runner {
		return pkgutil.NewExecRunner(c.Timeout)
	}

	// RootCmd is the root command for pkgman
	RootCmd = newRootCmd()
)

type rootOptions struct {
	cfgFile string
	noColor bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pkgman",
		Short: "Inspect macOS installer package receipts",
		Long: `pkgman lists the installer packages macOS has receipts for and shows
what each one put on disk. It drives /usr/sbin/pkgutil and parses its
output; nothing is cached between runs.

Features:
  • Apple and third-party package listing
  • Package groups
  • Receipt metadata with install root and time
  • Installed paths with file/directory filtering
  • Existence checks for every recorded path
  • Live notification of installs and removals

Examples:
  # Third-party packages
  pkgman list

  # What did a package install?
  pkgman files com.amazon.Kindle

  # Which of those files are gone?
  pkgman files com.amazon.Kindle --check

  # Metadata as yaml
  pkgman info com.amazon.Kindle --format yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default: ~/.config/pkgman/config.yaml)")
	flags.Duration("timeout", pkgutil.DefaultTimeout, "time limit for each pkgutil invocation")
	flags.BoolP("verbose", "v", false, "log pkgutil invocations")
	flags.StringP("format", "o", config.FormatTable, "output format: table, yaml or json")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	for _, name := range []string{"timeout", "verbose", "format"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	cmd.SuggestionsMinimumDistance = 2

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newGroupsCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newFilesCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}

// setup loads configuration and initializes logging and color.
func setup(opts *rootOptions) error {
	if err := config.Setup(opts.cfgFile); err != nil {
		return err
	}
	if opts.noColor {
		viper.Set("color", false)
	}

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	mode := "production"
	if cfg.Verbose {
		mode = "development"
	}
	logger.Init(mode, cfg.Verbose)
	output.SetColor(cfg.Color)

	logger.Debugf("config: timeout=%s format=%s receipts_dir=%s", cfg.Timeout, cfg.Format, cfg.ReceiptsDir)
	return nil
}

// Execute runs the root command
func Execute() error {
	return RootCmd.ExecuteContext(context.Background())
}

// withSpinner runs fn, which makes calls pkgutil invocations, while a
// spinner runs on the command's error stream. Structured formats run
// without a spinner.
func withSpinner(cmd *cobra.Command, message string, calls int, fn func() error) error {
	if cfg.Format != config.FormatTable {
		return fn()
	}

	spinner := newSpinner(cmd, message, calls)
	spinner.Start()
	defer spinner.Stop()
	return fn()
}

// newSpinner counts down the pkgutil timeout for a single invocation. Each
// invocation has its own limit, so several in a row show elapsed time.
func newSpinner(cmd *cobra.Command, message string, calls int) *output.Spinner {
	spinner := output.NewSpinner(message)
	if calls == 1 {
		spinner.WithTimeout(cfg.Timeout)
	}
	spinner.SetWriter(cmd.ErrOrStderr())
	return spinner
}

// render writes v in the configured structured format, or calls table for
// the table format.
func render(cmd *cobra.Command, v any, table func() string) error {
	if cfg.Format == config.FormatTable {
		_, err := fmt.Fprint(cmd.OutOrStdout(), table())
		return err
	}
	return output.Encode(cmd.OutOrStdout(), cfg.Format, v)
}

// describeTimeout adds a hint to errors caused by the pkgutil time limit.
func describeTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w (limit %s, raise with --timeout)", err, cfg.Timeout.Round(time.Second))
	}
	return err
}
