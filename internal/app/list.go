package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgman/internal/catalog"
	"github.com/blackwell-systems/pkgman/internal/output"
)

type listOptions struct {
	apple    bool
	nonApple bool
	all      bool
}

func newListCmd() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		Long: `List the package ids macOS holds receipts for.

Packages whose id starts with "com.apple." are Apple packages; everything
else is third-party. Third-party packages are shown by default.`,
		Example: `  # Third-party packages
  pkgman list

  # Apple packages as json
  pkgman list --apple -o json

  # Everything
  pkgman list --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.apple, "apple", false, "show only Apple packages")
	cmd.Flags().BoolVar(&opts.nonApple, "non-apple", false, "show only third-party packages (default)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "show every package")
	cmd.MarkFlagsMutuallyExclusive("apple", "non-apple", "all")

	return cmd
}

func runList(cmd *cobra.Command, opts *listOptions) error {
	cat := catalog.New(newRunner(cfg))

	err := withSpinner(cmd, "Listing packages", 1, func() error {
		return cat.Refresh(cmd.Context())
	})
	if err != nil {
		return describeTimeout(err)
	}

	var ids []string
	switch {
	case opts.all:
		ids = cat.ListAll()
	case opts.apple:
		ids = cat.ListApple()
	default:
		ids = cat.ListNonApple()
	}

	return render(cmd, ids, func() string {
		return output.RenderPackageList(ids)
	})
}
