package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgman/internal/output"
	"github.com/blackwell-systems/pkgman/internal/pkgutil"
	"github.com/blackwell-systems/pkgman/internal/scanner"
)

type filesOptions struct {
	onlyFiles bool
	onlyDirs  bool
	check     bool
	raw       bool
}

// filesReport is the structured form of 'pkgman files --check'.
type filesReport struct {
	Root    string              `json:"root" yaml:"root"`
	Paths   []pkgutil.PathEntry `json:"paths" yaml:"paths"`
	Summary *scanner.Summary    `json:"summary,omitempty" yaml:"summary,omitempty"`
}

func newFilesCmd() *cobra.Command {
	opts := &filesOptions{}

	cmd := &cobra.Command{
		Use:   "files <package-id>",
		Short: "List the paths a package installed",
		Long: `List the paths recorded in a package's receipt with their kind.

Paths are relative to the package root (volume + install location). With
--check every path is looked up on disk and marked present or missing;
files removed by hand or by an uninstaller show up as missing.`,
		Example: `  pkgman files com.amazon.Kindle
  pkgman files com.amazon.Kindle --dirs
  pkgman files com.amazon.Kindle --files --check

  # pkgutil's own listing
  pkgman files com.amazon.Kindle --raw`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.onlyFiles, "files", false, "show only files, executables and symlinks")
	cmd.Flags().BoolVar(&opts.onlyDirs, "dirs", false, "show only directories")
	cmd.Flags().BoolVar(&opts.check, "check", false, "check whether each path still exists")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print pkgutil's --files listing")
	cmd.MarkFlagsMutuallyExclusive("files", "dirs")
	cmd.MarkFlagsMutuallyExclusive("raw", "check")

	return cmd
}

func runFiles(cmd *cobra.Command, id string, opts *filesOptions) error {
	runner := newRunner(cfg)

	if opts.raw {
		return runFilesRaw(cmd, runner, id, opts)
	}

	detail, err := selectPackage(cmd, runner, id)
	if err != nil {
		return err
	}

	report := filesReport{Root: detail.Root()}

	if opts.check {
		progress := output.NewProgress("checking paths")
		progress.SetWriter(cmd.ErrOrStderr())
		detail.WithScanner(scanner.New().OnProgress(progress.Update))
		detail.CheckExistence()
		progress.Finish()
	}

	switch {
	case opts.onlyFiles:
		report.Paths = detail.FilesOnly()
	case opts.onlyDirs:
		report.Paths = detail.DirsOnly()
	default:
		report.Paths = detail.AllPaths()
	}

	if opts.check {
		summary := scanner.Summarize(report.Paths)
		report.Summary = &summary
	}

	return render(cmd, report, func() string {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Root: %s\n\n", report.Root))
		sb.WriteString(output.RenderPathTable(report.Paths, opts.check))
		if report.Summary != nil {
			sb.WriteString("\n" + output.RenderSummary(*report.Summary) + "\n")
		}
		return sb.String()
	})
}

// runFilesRaw prints pkgutil's own path listing, one path per line.
func runFilesRaw(cmd *cobra.Command, runner pkgutil.Runner, id string, opts *filesOptions) error {
	var out string
	err := withSpinner(cmd, "Listing files of "+id, 1, func() error {
		var err error
		out, err = pkgutil.RunCommand(cmd.Context(), runner, pkgutil.ListPaths{
			ID:        id,
			OnlyFiles: opts.onlyFiles,
			OnlyDirs:  opts.onlyDirs,
		})
		return err
	})
	if err != nil {
		return describeTimeout(fmt.Errorf("failed to list files of %s: %w", id, err))
	}

	paths := pkgutil.ParseFileList(out)
	return render(cmd, paths, func() string {
		return output.RenderList(paths, "No paths recorded.")
	})
}
