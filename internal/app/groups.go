package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgman/internal/catalog"
	"github.com/blackwell-systems/pkgman/internal/output"
)

func newGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups [group]",
		Short: "List package groups or the packages in a group",
		Example: `  # All groups
  pkgman groups

  # Packages in a group
  pkgman groups com.apple.FindSystemFiles.pkg-group`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGroups,
	}
}

func runGroups(cmd *cobra.Command, args []string) error {
	cat := catalog.New(newRunner(cfg))

	var (
		items []string
		empty = "No groups found."
	)
	err := withSpinner(cmd, "Reading groups", 1, func() error {
		var err error
		if len(args) == 1 {
			empty = "No packages in group " + args[0] + "."
			items, err = cat.GroupPackages(cmd.Context(), args[0])
		} else {
			items, err = cat.Groups(cmd.Context())
		}
		return err
	})
	if err != nil {
		return describeTimeout(err)
	}

	return render(cmd, items, func() string {
		return output.RenderList(items, empty)
	})
}
