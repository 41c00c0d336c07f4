package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the search path at an empty temp dir and resets global state.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))

	viper.Reset()
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
		viper.Reset()
		SetConfigPath("")
		Set(nil)
	})
	return dir
}

func TestInit(t *testing.T) {
	t.Run("initializes with defaults when no config exists", func(t *testing.T) {
		isolate(t)

		require.NoError(t, Init())
		cfg := Get()
		assert.Equal(t, "Hyacinth", cfg.Window.Title)
		assert.Empty(t, cfg.Window.AppID)
		assert.Equal(t, uint32(4), cfg.Protocol.CompositorVersion)
		assert.Equal(t, uint32(4), cfg.Protocol.OutputVersion)
		assert.Equal(t, uint32(7), cfg.Protocol.WmBaseVersion)
		assert.Empty(t, cfg.Metrics.ListenAddress)
	})

	t.Run("reads the file and keeps defaults for missing keys", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "hyacinth", "hyacinth.toml")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte(`
[window]
title = "Kiosk"

[display]
name = "wayland-1"

[protocol]
xdg_wm_base_version = 5
`), 0600))

		require.NoError(t, Init())
		cfg := Get()
		assert.Equal(t, "Kiosk", cfg.Window.Title)
		assert.Equal(t, "wayland-1", cfg.Display.Name)
		assert.Equal(t, uint32(5), cfg.Protocol.WmBaseVersion)
		assert.Equal(t, uint32(4), cfg.Protocol.CompositorVersion)
		assert.Equal(t, path, GetConfigPath())
	})

	t.Run("rejects invalid TOML", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "broken.toml")
		require.NoError(t, os.WriteFile(path, []byte("[window\ntitle = 1"), 0600))
		SetConfigPath(path)

		assert.Error(t, Init())
	})

	t.Run("explicit path may not exist yet", func(t *testing.T) {
		dir := isolate(t)
		SetConfigPath(filepath.Join(dir, "new.toml"))

		require.NoError(t, Init())
		assert.Equal(t, "Hyacinth", Get().Window.Title)
	})
}

func TestGetConfigPath(t *testing.T) {
	t.Run("override wins", func(t *testing.T) {
		isolate(t)
		SetConfigPath("/tmp/custom.toml")
		assert.Equal(t, "/tmp/custom.toml", GetConfigPath())
	})

	t.Run("XDG_CONFIG_HOME", func(t *testing.T) {
		dir := isolate(t)
		assert.Equal(t, filepath.Join(dir, "hyacinth", "hyacinth.toml"), GetConfigPath())
	})

	t.Run("HOME fallback", func(t *testing.T) {
		dir := isolate(t)
		t.Setenv("XDG_CONFIG_HOME", "")
		assert.Equal(t, filepath.Join(dir, ".config", "hyacinth", "hyacinth.toml"), GetConfigPath())
	})
}

func TestUpdateRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "out", "hyacinth.toml")
	SetConfigPath(path)
	require.NoError(t, Init())

	c := *Get()
	c.Window.Title = "Saved"
	c.Window.AppID = "org.example.saved"
	c.Metrics.ListenAddress = "127.0.0.1:9464"
	require.NoError(t, Update(c))
	assert.FileExists(t, path)

	viper.Reset()
	Set(nil)
	require.NoError(t, Init())
	assert.Equal(t, "Saved", Get().Window.Title)
	assert.Equal(t, "org.example.saved", Get().Window.AppID)
	assert.Equal(t, "127.0.0.1:9464", Get().Metrics.ListenAddress)
}

func TestGetWithoutInit(t *testing.T) {
	Set(nil)
	cfg := Get()
	cfg.Window.Title = "changed"
	assert.Equal(t, "Hyacinth", DefaultConfig.Window.Title, "defaults are not mutated")
}
