// SPDX-License-Identifier: AGPL-3.0-only

package commands

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RoomConfig maps chat rooms to their own Grafana endpoint. It is the
// standalone equivalent of per-room endpoint storage in chat deployments:
// rooms without an entry fall back to the globally configured endpoint.
type RoomConfig struct {
	Rooms map[string]RoomEndpoint `yaml:"rooms"`
}

// RoomEndpoint is one room's Grafana endpoint.
type RoomEndpoint struct {
	Address string `yaml:"address"`
	APIKey  string `yaml:"api_key"`
}

// LoadRoomConfig reads a room configuration YAML file.
func LoadRoomConfig(path string) (*RoomConfig, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not read room config")
	}

	cfg := &RoomConfig{}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, errors.Wrap(err, "could not parse room config")
	}
	return cfg, nil
}

// Lookup returns the endpoint configured for room, if any.
func (c *RoomConfig) Lookup(room string) (RoomEndpoint, bool) {
	e, ok := c.Rooms[room]
	return e, ok
}
