package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/particles/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runConfigCmd(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"config"}, args...))
	if err := cmd.Execute(); err != nil {
		return nil, err
	}

	cfg := &config.Config{}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), cfg))
	return cfg, nil
}

func TestConfigCmd_Defaults(t *testing.T) {
	cfg, err := runConfigCmd(t)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestConfigCmd_FlagOverrides(t *testing.T) {
	cfg, err := runConfigCmd(t, "--count", "500", "--spread", "2.5", "--seed", "9",
		"--speed", "0.2", "--debug", "--alpha-map", "disc.png", "--font", "a.ttf", "--text", "")
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Particles.Count)
	assert.Equal(t, 2.5, cfg.Particles.Spread)
	assert.Equal(t, int64(9), cfg.Particles.Seed)
	assert.Equal(t, 0.2, cfg.Animation.AngularSpeed)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "disc.png", cfg.Assets.AlphaMap)
	assert.Equal(t, "a.ttf", cfg.Text.Font)
	assert.Empty(t, cfg.Text.Content)
}

func TestConfigCmd_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "particles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("particles:\n  count: 123\n  seed: 4\n"), 0644))

	cfg, err := runConfigCmd(t, "--config", path, "--seed", "5")
	require.NoError(t, err)

	assert.Equal(t, 123, cfg.Particles.Count, "unset flags keep file values")
	assert.Equal(t, int64(5), cfg.Particles.Seed)
}

func TestConfigCmd_Invalid(t *testing.T) {
	_, err := runConfigCmd(t, "--count", "0")
	assert.ErrorIs(t, err, config.ErrInvalidConfiguration)

	_, err = runConfigCmd(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
