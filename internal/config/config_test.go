package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.WebSocket.Address)
	assert.Equal(t, "/ws", cfg.Server.WebSocket.Path)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "data/cards.yaml", cfg.Game.DataPath)
	assert.Equal(t, 3, cfg.Rules.ActionsPerTurn)
	assert.Equal(t, 5*time.Minute, cfg.Rules.TurnTimeLimit)
	assert.True(t, cfg.Rules.ChemoautotrophHomeBypass)

	s := cfg.Rules.Settings(2)
	assert.Equal(t, 9, s.GridWidth)
	assert.Equal(t, 10, s.GridHeight)
	assert.Equal(t, 5, s.StartingHandSize)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  websocket:
    address: ":9999"
logging:
  level: debug
  format: json
rules:
  actions_per_turn: 2
  turn_time_limit: 90s
  grid_width: 12
  grid_height: 12
  opportunist_bypass: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.WebSocket.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 90*time.Second, cfg.Rules.TurnTimeLimit)

	s := cfg.Rules.Settings(2)
	assert.Equal(t, 2, s.ActionsPerTurn)
	assert.Equal(t, 12, s.GridWidth)
	assert.False(t, s.OpportunistBypass)
	assert.True(t, s.ChemoautotrophHomeBypass)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("BIOMASTERS_LOGGING_LEVEL", "warn")
	t.Setenv("BIOMASTERS_RULES_STARTING_ENERGY", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 7, cfg.Rules.StartingEnergy)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"postgres without url": "database:\n  driver: postgres\n",
		"unknown driver":       "database:\n  driver: mongo\n",
		"no actions":           "rules:\n  actions_per_turn: 0\n",
		"too many players":     "rules:\n  max_players: 9\n",
		"opening hand too big": "rules:\n  starting_hand_size: 8\n  max_hand_size: 5\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
