package soil

import (
	"os"
	"path/filepath"
	"testing"

	"soilsense/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThresholdsOverlaysDefaults(t *testing.T) {
	table, err := ParseThresholds([]byte("moisture:\n  low: 25\n  criticalLow: 10\n"))
	require.NoError(t, err)

	b, ok := table.Band(models.Moisture)
	require.True(t, ok)
	assert.Equal(t, Band{Low: 25, High: 60, CriticalLow: 10, CriticalHigh: 85}, b)

	ph, _ := table.Band(models.PH)
	assert.Equal(t, defaultBands[models.PH], ph)

	sev, dir := table.Classify(models.Moisture, 22)
	assert.Equal(t, SeverityWarning, sev)
	assert.Equal(t, DirectionLow, dir)
}

func TestParseThresholdsRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown measurement": "lead:\n  low: 1\n",
		"unknown bound":       "moisture:\n  lowest: 1\n",
		"inverted band":       "moisture:\n  low: 70\n",
		"not yaml":            "moisture: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseThresholds([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadThresholds(t *testing.T) {
	table, err := LoadThresholds("")
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds().Bands(), table.Bands())

	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pH:\n  high: 8\n"), 0o600))
	table, err = LoadThresholds(path)
	require.NoError(t, err)
	b, _ := table.Band(models.PH)
	assert.Equal(t, 8.0, b.High)

	_, err = LoadThresholds(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBandsReturnsCopy(t *testing.T) {
	table := DefaultThresholds()
	bands := table.Bands()
	bands[models.Moisture] = Band{}
	b, _ := table.Band(models.Moisture)
	assert.Equal(t, defaultBands[models.Moisture], b)
}
