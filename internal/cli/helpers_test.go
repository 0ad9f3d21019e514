package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/weaver/internal/config"
	"github.com/tOgg1/weaver/internal/fileio"
	"github.com/tOgg1/weaver/internal/testutil"
)

// setupCLI points the package config at a temp directory and restores the
// global flags afterwards. Tests that use it must not run in parallel.
func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Global.DataDir = filepath.Join(dir, "data")
	cfg.Global.ConfigDir = filepath.Join(dir, "config")

	prevConfig, prevJSON, prevColor := appConfig, jsonOutput, noColor
	appConfig = cfg
	jsonOutput = false
	noColor = true
	t.Cleanup(func() {
		appConfig, jsonOutput, noColor = prevConfig, prevJSON, prevColor
	})
	return dir
}

// writeTwill writes a 4x4 twill with a frame loom and returns its path.
func writeTwill(t *testing.T, dir, name string) string {
	t.Helper()
	return testutil.WriteADA(t, dir, name, testutil.FrameDocument(t, testutil.Twill(4, 4)))
}

func mustLoad(t *testing.T, path string) *fileio.Envelope {
	t.Helper()
	env, err := loadEnvelope(path)
	require.NoError(t, err)
	return env
}

func requireExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.NoError(t, err, "expected %s to exist", path)
}
