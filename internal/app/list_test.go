package app

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/blackwell-systems/pkgman/internal/pkgutil"
	"github.com/blackwell-systems/pkgman/internal/pkgutil/mocks"
)

const pkgsOutput = "com.apple.pkg.Core\ncom.amazon.Kindle\norg.python.Python\ncom.apple.pkg.MobileAssets\n"

func TestListCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		contains    []string
		notContains []string
	}{
		{
			name:        "default shows third-party",
			args:        []string{"list"},
			contains:    []string{"com.amazon.Kindle", "org.python.Python"},
			notContains: []string{"com.apple.pkg.Core"},
		},
		{
			name:        "non-apple flag",
			args:        []string{"list", "--non-apple"},
			contains:    []string{"com.amazon.Kindle"},
			notContains: []string{"com.apple.pkg.MobileAssets"},
		},
		{
			name:        "apple flag",
			args:        []string{"list", "--apple"},
			contains:    []string{"com.apple.pkg.Core", "com.apple.pkg.MobileAssets"},
			notContains: []string{"com.amazon.Kindle"},
		},
		{
			name:     "all flag",
			args:     []string{"list", "--all"},
			contains: []string{"com.apple.pkg.Core", "com.amazon.Kindle", "4 packages (2 apple, 2 third-party)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := mocks.NewMockRunner(gomock.NewController(t))
			runner.EXPECT().Run(gomock.Any(), "--pkgs").Return(pkgsOutput, nil).Times(1)

			out, _, err := executeCommand(t, runner, tt.args...)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestListCommand_JSON(t *testing.T) {
	runner := mocks.NewMockRunner(gomock.NewController(t))
	runner.EXPECT().Run(gomock.Any(), "--pkgs").Return(pkgsOutput, nil)

	out, stderr, err := executeCommand(t, runner, "list", "--apple", "-o", "json")
	require.NoError(t, err)
	assert.Empty(t, stderr, "no spinner for structured output")

	var ids []string
	require.NoError(t, json.Unmarshal([]byte(out), &ids))
	assert.Equal(t, []string{"com.apple.pkg.Core", "com.apple.pkg.MobileAssets"}, ids)
}

func TestListCommand_ExclusiveFlags(t *testing.T) {
	runner := mocks.NewMockRunner(gomock.NewController(t))

	_, _, err := executeCommand(t, runner, "list", "--apple", "--all")
	assert.Error(t, err)
}

func TestListCommand_RunnerFailure(t *testing.T) {
	runner := mocks.NewMockRunner(gomock.NewController(t))
	runner.EXPECT().Run(gomock.Any(), "--pkgs").
		Return("", &pkgutil.ExecutionError{Args: []string{"--pkgs"}, ExitCode: 1})

	_, _, err := executeCommand(t, runner, "list")
	require.Error(t, err)

	var execErr *pkgutil.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, 1, execErr.ExitCode)
}

func TestGroupsCommand(t *testing.T) {
	t.Run("all groups", func(t *testing.T) {
		runner := mocks.NewMockRunner(gomock.NewController(t))
		runner.EXPECT().Run(gomock.Any(), "--groups").
			Return("com.apple.FindSystemFiles.pkg-group\ncom.apple.snowleopard-repair-permissions.pkg-group\n", nil)

		out, _, err := executeCommand(t, runner, "groups")
		require.NoError(t, err)
		assert.Equal(t, "com.apple.FindSystemFiles.pkg-group\ncom.apple.snowleopard-repair-permissions.pkg-group\n", out)
	})

	t.Run("group members", func(t *testing.T) {
		runner := mocks.NewMockRunner(gomock.NewController(t))
		runner.EXPECT().Run(gomock.Any(), "--group-pkgs", "com.apple.FindSystemFiles.pkg-group").
			Return("com.apple.pkg.Core\n", nil)

		out, _, err := executeCommand(t, runner, "groups", "com.apple.FindSystemFiles.pkg-group")
		require.NoError(t, err)
		assert.Equal(t, "com.apple.pkg.Core\n", out)
	})

	t.Run("empty group", func(t *testing.T) {
		runner := mocks.NewMockRunner(gomock.NewController(t))
		runner.EXPECT().Run(gomock.Any(), "--group-pkgs", "g").Return("", nil)

		out, _, err := executeCommand(t, runner, "groups", "g")
		require.NoError(t, err)
		assert.Equal(t, "No packages in group g.\n", out)
	})

	t.Run("blank output", func(t *testing.T) {
		runner := mocks.NewMockRunner(gomock.NewController(t))
		runner.EXPECT().Run(gomock.Any(), "--groups").Return("\n", nil)

		out, _, err := executeCommand(t, runner, "groups")
		require.NoError(t, err)
		assert.Equal(t, "No groups found.\n", out)
	})

	t.Run("too many args", func(t *testing.T) {
		runner := mocks.NewMockRunner(gomock.NewController(t))
		_, _, err := executeCommand(t, runner, "groups", "a", "b")
		assert.Error(t, err)
	})
}
