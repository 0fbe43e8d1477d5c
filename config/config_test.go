package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePhasesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPhaseBands(t *testing.T) {
	path := writePhasesFile(t, `
phases:
  - level: 1
    lower_bound: 10000
    upper_bound: 25000
    lot_factor: 1.0
  - level: 2
    lower_bound: 25000
    upper_bound: 50000
    lot_factor: 0.8
  - level: 3
    lower_bound: 50000
    lot_factor: 0.6
`)

	bands, err := LoadPhaseBands(path)
	require.NoError(t, err)
	require.Len(t, bands, 3)

	assert.Equal(t, 1, bands[0].Level)
	assert.Equal(t, 10000.0, bands[0].LowerBound)
	assert.Equal(t, 25000.0, bands[0].UpperBound)
	assert.Equal(t, 1.0, bands[0].LotFactor)

	assert.Equal(t, 2, bands[1].Level)
	assert.Equal(t, 0.8, bands[1].LotFactor)

	// The last band may omit its upper bound
	assert.Equal(t, 3, bands[2].Level)
	assert.Equal(t, 0.0, bands[2].UpperBound)
}

func TestLoadPhaseBands_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPhaseBands(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writePhasesFile(t, "phases: [not: {valid")
		_, err := LoadPhaseBands(path)
		assert.Error(t, err)
	})

	t.Run("empty phase list", func(t *testing.T) {
		path := writePhasesFile(t, "phases: []")
		_, err := LoadPhaseBands(path)
		assert.Error(t, err)
	})
}
