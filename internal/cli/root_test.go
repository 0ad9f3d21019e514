package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/weaver/internal/logging"
)

func TestInitConfigFromSubcommandHonorsRootFlags(t *testing.T) {
	dir := setupCLI(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n  format: json\n"), 0644))

	prevFile := cfgFile
	cfgFile = path
	flag := rootCmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, flag)
	require.NoError(t, flag.Value.Set("error"))
	flag.Changed = true
	t.Cleanup(func() {
		cfgFile = prevFile
		_ = flag.Value.Set("")
		flag.Changed = false
		logging.Init(logging.DefaultConfig())
	})

	require.NoError(t, initConfig(showCmd))

	cfg := GetConfig()
	require.Equal(t, "error", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
}
