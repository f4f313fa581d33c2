package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgman/internal/catalog"
	"github.com/blackwell-systems/pkgman/internal/output"
	"github.com/blackwell-systems/pkgman/internal/pkgutil"
)

type infoOptions struct {
	raw bool
}

func newInfoCmd() *cobra.Command {
	opts := &infoOptions{}

	cmd := &cobra.Command{
		Use:   "info <package-id>",
		Short: "Show receipt metadata for a package",
		Long: `Show the id, volume, install location and install time recorded in a
package's receipt. Paths listed by 'pkgman files' are relative to the
volume followed by the install location.`,
		Example: `  pkgman info com.amazon.Kindle
  pkgman info com.amazon.Kindle -o json

  # pkgutil's own text
  pkgman info com.amazon.Kindle --raw`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print pkgutil's plain --pkg-info output")

	return cmd
}

func runInfo(cmd *cobra.Command, id string, opts *infoOptions) error {
	runner := newRunner(cfg)

	if opts.raw {
		var out string
		err := withSpinner(cmd, "Reading "+id, 1, func() error {
			var err error
			out, err = pkgutil.RunCommand(cmd.Context(), runner, pkgutil.PackageInfo{ID: id})
			return err
		})
		if err != nil {
			return describeTimeout(err)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}

	detail, err := selectPackage(cmd, runner, id)
	if err != nil {
		return err
	}

	meta := detail.Current()
	return render(cmd, meta, func() string {
		return output.RenderInfo(meta, detail.Description())
	})
}

// selectPackage refreshes the catalog so unknown ids are rejected before
// pkgutil is asked for their receipt, then selects id.
func selectPackage(cmd *cobra.Command, runner pkgutil.Runner, id string) (*catalog.Detail, error) {
	cat := catalog.New(runner)
	detail := catalog.NewDetail(runner, cat)

	err := withSpinner(cmd, "Reading receipt "+id, 3, func() error {
		ctx := cmd.Context()
		if err := cat.Refresh(ctx); err != nil {
			return err
		}
		return detail.Select(ctx, id)
	})
	if err != nil {
		return nil, describeTimeout(err)
	}
	return detail, nil
}

