package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"defaults": { "beamSpring": 5000000.0, "creakFloor": 50000.0 }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rigforge.cfg.json"), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 5000000.0, viper.GetFloat64("defaults.beamSpring"))
	assert.Equal(t, 50000.0, viper.GetFloat64("defaults.creakFloor"))
	// untouched keys keep their defaults
	assert.Equal(t, 12000.0, viper.GetFloat64("defaults.beamDamp"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rigforge.cfg.json"), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./rigforge-logs", viper.GetString("logsDir"))
	assert.Equal(t, 9000000.0, viper.GetFloat64("defaults.beamSpring"))
	assert.Equal(t, 400000.0, viper.GetFloat64("defaults.beamDeform"))
	assert.Equal(t, 100000.0, viper.GetFloat64("defaults.creakFloor"))
	assert.Equal(t, 64, viper.GetInt("limits.maxWheels"))
	assert.Equal(t, "memory", viper.GetString("export.backend"))
	assert.Equal(t, "./rigforge-out", viper.GetString("export.outputDir"))
	assert.Equal(t, false, viper.GetBool("export.compressOutput"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetBuildDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	LoadDefaults()
	d, err := GetBuildDefaults()
	require.NoError(t, err)
	assert.Equal(t, 9000000.0, d.BeamSpring)
	assert.Equal(t, 1000000.0, d.BeamStrength)
	assert.Equal(t, 50.0, d.MinimumMass)
}

func TestGetLimits_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{ "limits": { "maxWheels": 8, "maxCinecams": 1 } }`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rigforge.cfg.json"), []byte(cfg), 0644))
	require.NoError(t, Load(dir))

	l, err := GetLimits()
	require.NoError(t, err)
	assert.Equal(t, 8, l.MaxWheels)
	assert.Equal(t, 1, l.MaxCinecams)
	assert.Equal(t, 20, l.MaxAirbrakes)
}

func TestGetExport_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"export": {
			"backend": "sqlite",
			"outputDir": "/tmp/out",
			"compressOutput": true,
			"sqlitePath": "/tmp/rigs.db"
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rigforge.cfg.json"), []byte(cfg), 0644))
	require.NoError(t, Load(dir))

	e, err := GetExport()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", e.Backend)
	assert.Equal(t, "/tmp/out", e.OutputDir)
	assert.Equal(t, true, e.CompressOutput)
	assert.Equal(t, "/tmp/rigs.db", e.SqlitePath)
}
