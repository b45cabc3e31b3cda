// SPDX-License-Identifier: AGPL-3.0-only

package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRoomConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rooms:
  "#ops":
    address: https://ops.grafana.example.com
    api_key: ops-key
  "#dev":
    address: https://dev.grafana.example.com
`), 0o600))

	cfg, err := LoadRoomConfig(path)
	require.NoError(t, err)

	endpoint, ok := cfg.Lookup("#ops")
	require.True(t, ok)
	assert.Equal(t, "https://ops.grafana.example.com", endpoint.Address)
	assert.Equal(t, "ops-key", endpoint.APIKey)

	endpoint, ok = cfg.Lookup("#dev")
	require.True(t, ok)
	assert.Empty(t, endpoint.APIKey)

	_, ok = cfg.Lookup("#unknown")
	assert.False(t, ok)
}

func TestLoadRoomConfig_MissingFile(t *testing.T) {
	_, err := LoadRoomConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not read room config")
}

func TestLoadRoomConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rooms: [not a map"), 0o600))

	_, err := LoadRoomConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse room config")
}
