package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoreStation/TimberCraft/pkg/chop"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timbercraft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cc, err := cfg.TreeChopper.Chop()
	require.NoError(t, err)
	assert.Equal(t, chop.DefaultConfig(), cc)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  motd: "Lumber yard"
  seed: 42
treechopper:
  tree_chop_mode: full_chop
  full_chop_durability_usage: BREAK_AFTER_CHOP
  sneak_to_disable: true
  max_logs: 256
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Lumber yard", cfg.Server.MOTD)
	assert.Equal(t, int64(42), cfg.Server.Seed)
	assert.Equal(t, ":25565", cfg.Server.Address, "unset keys keep their default")

	cc, err := cfg.TreeChopper.Chop()
	require.NoError(t, err)
	assert.Equal(t, chop.FullChop, cc.Mode)
	assert.Equal(t, chop.BreakAfterChop, cc.Durability)
	assert.True(t, cc.SneakToDisable)
	assert.True(t, cc.RequireLeavesToChop)
	assert.True(t, cc.FastLeafDecay)
	assert.Equal(t, 256, cc.MaxLogs)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "server:\n  max_players: 5\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Server.MaxPlayers)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "server: [not, a, map]\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "treechopper:\n  tree_chop_mode: timber\n"))
	assert.ErrorContains(t, err, "tree_chop_mode")

	_, err = Load(writeConfig(t, "server:\n  max_players: 0\n"))
	assert.ErrorContains(t, err, "max_players")
}

func TestMetricsAddr(t *testing.T) {
	t.Setenv(EnvMetricsAddr, "")
	assert.Empty(t, MetricsConfig{}.MetricsAddr())
	assert.Equal(t, ":2112", MetricsConfig{Enabled: true}.MetricsAddr())
	assert.Equal(t, "127.0.0.1:9000", MetricsConfig{Enabled: true, Address: "127.0.0.1:9000"}.MetricsAddr())

	t.Setenv(EnvMetricsAddr, ":9100")
	assert.Equal(t, ":9100", MetricsConfig{Enabled: true}.MetricsAddr())
}
