package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canchero/internal/slots"
	"canchero/internal/timezone"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  api_keys:
    - secret
database:
  path: `+filepath.Join(t.TempDir(), "data", "test.db")+`
booking:
  open_hour: 9
  close_hour: 21
  slot_minutes: 30
courts:
  - name: Cancha 1
    type: PADEL
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServerPort())
	assert.Equal(t, []string{"secret"}, cfg.Server.APIKeys)
	require.Len(t, cfg.Courts, 1)
	assert.Equal(t, "PADEL", cfg.Courts[0].Type)

	opts := cfg.SlotOptions()
	assert.Equal(t, 9, opts.OpenHour)
	assert.Equal(t, 21, opts.CloseHour)
	assert.Equal(t, 30, opts.SlotMinutes)
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	path := writeConfig(t, `server: {}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort())
	assert.Equal(t, timezone.DefaultZone, cfg.BookingTimezone())

	opts := cfg.SlotOptions()
	assert.Equal(t, slots.DefaultOpenHour, opts.OpenHour)
	assert.Equal(t, slots.DefaultCloseHour, opts.CloseHour)
	assert.Equal(t, slots.DefaultSlotMinutes, opts.SlotMinutes)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("CANCHERO_TEST_KEY", "from-env")
	path := writeConfig(t, `
server:
  api_keys:
    - "${CANCHERO_TEST_KEY}"
database:
  path: `+filepath.Join(t.TempDir(), "test.db")+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"from-env"}, cfg.Server.APIKeys)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
