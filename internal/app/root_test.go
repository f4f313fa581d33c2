package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/spf13/cobra"
	"go.uber.org/mock/gomock"

	"github.com/blackwell-systems/pkgman/internal/pkgutil"
	"github.com/blackwell-systems/pkgman/internal/pkgutil/mocks"
)

func TestRootCommand(t *testing.T) {
	if RootCmd.Use != "pkgman" {
		t.Errorf("expected Use to be 'pkgman', got '%s'", RootCmd.Use)
	}
	if RootCmd.Short == "" {
		t.Error("expected Short description to be set")
	}
	if RootCmd.Long == "" {
		t.Error("expected Long description to be set")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		found[cmd.Name()] = true
	}

	for _, expected := range []string{"list", "groups", "info", "files", "watch"} {
		if !found[expected] {
			t.Errorf("expected command '%s' to be registered", expected)
		}
	}
}

func TestRootCommandHasPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "timeout", "verbose", "format", "no-color"} {
		flag := RootCmd.PersistentFlags().Lookup(name)
		if flag == nil {
			t.Errorf("expected --%s flag to be registered", name)
			continue
		}
		if flag.Usage == "" {
			t.Errorf("expected --%s flag to have usage text", name)
		}
	}
}

func TestSetup_InvalidFormat(t *testing.T) {
	// No expectations: the runner must not be called.
	runner := mocks.NewMockRunner(gomock.NewController(t))

	_, _, err := executeCommand(t, runner, "list", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSetup_FlagsOverrideDefaults(t *testing.T) {
	runner := mocks.NewMockRunner(gomock.NewController(t))
	runner.EXPECT().Run(gomock.Any(), "--pkgs").Return("", nil)

	_, _, err := executeCommand(t, runner, "list", "--timeout", "5s", "--no-color", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "5s", cfg.Timeout.String())
	assert.False(t, cfg.Color)
	assert.Equal(t, "json", cfg.Format)
}

func TestTimeoutHint(t *testing.T) {
	runner := mocks.NewMockRunner(gomock.NewController(t))
	runner.EXPECT().Run(gomock.Any(), "--pkgs").
		Return("", &pkgutil.ExecutionError{Args: []string{"--pkgs"}, ExitCode: -1, Err: context.DeadlineExceeded})

	_, _, err := executeCommand(t, runner, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--timeout")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewSpinner_CountdownOnlyForSingleCall(t *testing.T) {
	old := cfg
	t.Cleanup(func() { cfg = old })
	cfg.Timeout = 30 * time.Second

	cmd := &cobra.Command{}
	assert.Contains(t, newSpinner(cmd, "Listing packages", 1).String(), "remaining")
	assert.Contains(t, newSpinner(cmd, "Reading receipt", 3).String(), "elapsed")
}
