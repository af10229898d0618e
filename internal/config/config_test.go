package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/spkline/pkg/quality"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spkline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 25.0, cfg.Calculation.AmbientC)
	assert.Equal(t, quality.DefaultProfile, cfg.Calculation.QualityProfile)
	assert.Equal(t, 100.0, cfg.Calculation.LineVoltage)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.LibraryTTL)
	assert.Equal(t, "prod", cfg.Log.Mode)
	assert.Empty(t, cfg.Database.Path)
}

func TestLoad_FileAndProfiles(t *testing.T) {
	path := writeConfig(t, `
calculation:
  ambient_temp_c: 35
  quality_profile: speech
  line_voltage: 70
profiles:
  speech:
    lowz_drop_warn: 12
    hf_check_hz: 5000
database:
  path: /tmp/devices.db
log:
  mode: dev
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 35.0, cfg.Calculation.AmbientC)
	assert.Equal(t, 70.0, cfg.Calculation.LineVoltage)
	assert.Equal(t, "/tmp/devices.db", cfg.Database.Path)

	set, err := cfg.ProfileSet()
	require.NoError(t, err)
	p, err := set.Get(quality.Speech)
	require.NoError(t, err)
	assert.Equal(t, 12.0, p.LowZDropWarn)
	assert.Equal(t, 5000.0, p.HFCheckHz)
	assert.Equal(t, 22.5, p.LowZDropErr, "unset fields keep the built-in value")
}

func TestLoad_Env(t *testing.T) {
	path := writeConfig(t, "calculation:\n  ambient_temp_c: 30\n")
	t.Setenv("SPKLINE_CALCULATION_AMBIENT_TEMP_C", "40")
	t.Setenv("SPKLINE_SERVER_ADDR", "127.0.0.1:9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40.0, cfg.Calculation.AmbientC)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "profiles:\n  studio:\n    df_warn: 30\n"))
	assert.ErrorIs(t, err, quality.ErrUnknownProfile)

	_, err = Load(writeConfig(t, "calculation:\n  quality_profile: nope\n"))
	assert.ErrorIs(t, err, quality.ErrUnknownProfile)

	_, err = Load(writeConfig(t, "log:\n  mode: verbose\n"))
	assert.Error(t, err)
}
