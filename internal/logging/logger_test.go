package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestInitJSONComponent(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	log := Component("loom")
	log.Warn().Int("frames", 9).Msg("grew capacity")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "loom", entry["component"])
	require.Equal(t, "warn", entry["level"])
	require.EqualValues(t, 9, entry["frames"])
}

func TestLevelFiltering(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	var buf bytes.Buffer
	Init(Config{Level: "error", Format: "json", Output: &buf})
	log := Component("ops")
	log.Info().Msg("hidden")
	require.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.WarnLevel, parseLevel("WARNING"))
	require.Equal(t, zerolog.Disabled, parseLevel("off"))
	require.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
	require.Equal(t, zerolog.InfoLevel, parseLevel(""))
	require.Equal(t, zerolog.TraceLevel, parseLevel(" Trace "))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := WithContext(context.Background(), logger)
	got := FromContext(ctx)
	got.Error().Msg("x")
	require.NotZero(t, buf.Len())
}

func TestSetupWritesToFile(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	path := filepath.Join(t.TempDir(), "weaver.log")
	closeLog, err := Setup(Config{Level: "info", Format: "json", File: path})
	require.NoError(t, err)
	log := WithFile("twill.ada")
	log.Info().Msg("converted")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	require.Equal(t, "twill.ada", entry["file"])
}

func TestSetupWithoutFile(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	closeLog, err := Setup(Config{Level: "debug", Format: "json"})
	require.NoError(t, err)
	require.NoError(t, closeLog())

	_, err = Setup(Config{File: filepath.Join(t.TempDir(), "missing", "x.log")})
	require.Error(t, err)
}
