package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
rpc_url: http://localhost:8899
program_id: FRTxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "confirmed", cfg.Commitment)
	assert.Equal(t, 3, cfg.TargetActivePools)
	assert.Equal(t, 16, cfg.RPCPoolSize)
	assert.Equal(t, 750, cfg.MinDelayMS)
	assert.Equal(t, 2000, cfg.MaxDelayMS)
}

func TestLoadConfig_OverridesWinOverYAML(t *testing.T) {
	path := writeTempConfig(t, `
rpc_url: http://localhost:8899
program_id: FRTxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx
target_active_pools: 5
`)

	cfg, err := LoadConfig(path, map[string]any{"target_active_pools": 9})
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.TargetActivePools)
}

func TestLoadConfig_MissingRPCURL(t *testing.T) {
	path := writeTempConfig(t, `
program_id: FRTxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx
`)

	_, err := LoadConfig(path, nil)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidDelayWindow(t *testing.T) {
	path := writeTempConfig(t, `
rpc_url: http://localhost:8899
program_id: FRTxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx
min_delay_ms: 3000
max_delay_ms: 1000
`)

	_, err := LoadConfig(path, nil)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"), nil)
	assert.Error(t, err)
}
