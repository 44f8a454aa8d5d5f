package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[puzzle.333]
inspection = true
refresh_millis = 50

[puzzle.777]
inspection = true
inspection_seconds = 20

[puzzle.333bf]
inspection = false
`

func TestParseConfigAppliesDefaults(t *testing.T) {
	cfg, err := parseConfig(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	three, err := cfg.Lookup("333")
	require.NoError(t, err)
	assert.True(t, three.Inspection)
	assert.Equal(t, int64(15), three.InspectionSeconds, "inspection length defaults to 15s")
	assert.Equal(t, int64(50), three.RefreshMillis)
	assert.Equal(t, int64(15_000), three.InspectionMillis())

	seven, err := cfg.Lookup("777")
	require.NoError(t, err)
	assert.Equal(t, int64(20), seven.InspectionSeconds)
	assert.Equal(t, int64(30), seven.RefreshMillis, "refresh period defaults")

	blind, err := cfg.Lookup("333bf")
	require.NoError(t, err)
	assert.False(t, blind.Inspection)
	assert.Equal(t, int64(0), blind.InspectionSeconds, "no inspection, no default length")
}

func TestLookupUnknownPuzzle(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.Lookup("megaminx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown puzzle")
}

func TestDefaultConfigIsUsable(t *testing.T) {
	cfg := DefaultConfig()
	spec, err := cfg.Lookup("333")
	require.NoError(t, err)
	assert.True(t, spec.Inspection)
	assert.Greater(t, spec.RefreshMillis, int64(0))
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puzzles.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	_, err = cfg.Lookup("333")
	assert.NoError(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestParseConfigRejectsBadTOML(t *testing.T) {
	_, err := parseConfig(strings.NewReader("[puzzle.333\ninspection ="))
	assert.Error(t, err)
}
