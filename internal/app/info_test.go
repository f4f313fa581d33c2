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

const kindleID = "com.amazon.Kindle"

func expectKindle(t *testing.T, runner *mocks.MockRunner, volume string, paths map[string]int) {
	t.Helper()
	runner.EXPECT().Run(gomock.Any(), "--pkgs").Return("com.apple.pkg.Core\n"+kindleID+"\n", nil).Times(1)
	runner.EXPECT().Run(gomock.Any(), "--pkg-info-plist", kindleID).
		Return(infoPayload(t, kindleID, volume, "Applications"), nil).Times(1)
	runner.EXPECT().Run(gomock.Any(), "--export-plist", kindleID).
		Return(receiptPayload(t, volume, "Applications", paths), nil).Times(1)
}

func TestInfoCommand(t *testing.T) {
	runner := mocks.NewMockRunner(gomock.NewController(t))
	expectKindle(t, runner, "/", map[string]int{"Kindle.app": 16877})

	out, _, err := executeCommand(t, runner, "info", kindleID)
	require.NoError(t, err)

	for _, want := range []string{
		"package-id: com.amazon.Kindle",
		"volume: /",
		"location: Applications",
		"install-time: 2022-09-19 08:00:00 +0000",
		"version: 1.39.1",
		"root /Applications",
	} {
		assert.Contains(t, out, want)
	}
}

func TestInfoCommand_JSON(t *testing.T) {
	runner := mocks.NewMockRunner(gomock.NewController(t))
	expectKindle(t, runner, "/", map[string]int{"Kindle.app": 16877})

	out, _, err := executeCommand(t, runner, "info", kindleID, "-o", "json")
	require.NoError(t, err)

	var meta pkgutil.PackageMetadata
	require.NoError(t, json.Unmarshal([]byte(out), &meta))
	assert.Equal(t, kindleID, meta.ID)
	assert.Equal(t, "/Applications", meta.Root())
	assert.Equal(t, int64(1663574400), meta.InstallTime.Unix())
}

func TestInfoCommand_UnknownPackage(t *testing.T) {
	runner := mocks.NewMockRunner(gomock.NewController(t))
	runner.EXPECT().Run(gomock.Any(), "--pkgs").Return("com.apple.pkg.Core\n", nil)

	_, _, err := executeCommand(t, runner, "info", "com.example.gone")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgutil.ErrUnknownPackage))
}

func TestInfoCommand_Raw(t *testing.T) {
	raw := "package-id: com.amazon.Kindle\nversion: 1.39.1\nvolume: /\nlocation: Applications\ninstall-time: 1663574400\n"

	runner := mocks.NewMockRunner(gomock.NewController(t))
	runner.EXPECT().Run(gomock.Any(), "--pkg-info", kindleID).Return(raw, nil)

	out, _, err := executeCommand(t, runner, "info", kindleID, "--raw")
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestInfoCommand_RequiresID(t *testing.T) {
	runner := mocks.NewMockRunner(gomock.NewController(t))
	_, _, err := executeCommand(t, runner, "info")
	assert.Error(t, err)
}
