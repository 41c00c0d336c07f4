package setup

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/bnema/hyacinth/internal/config"
	"github.com/charmbracelet/huh"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		title   string
		wantErr bool
	}{
		{title: "Hyacinth"},
		{title: "  padded  "},
		{title: "", wantErr: true},
		{title: "   ", wantErr: true},
		{title: "bad\x00title", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			err := ValidateTitle(tt.title)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnswersApply(t *testing.T) {
	base := config.DefaultConfig
	base.Metrics.ListenAddress = ":9464"

	a := AnswersFrom(&base)
	assert.Equal(t, "Hyacinth", a.Title)
	assert.True(t, a.Save)

	a.Title = " Kiosk "
	a.AppID = "org.example.kiosk"
	a.DisplayName = "wayland-1"
	a.LogLevel = "debug"

	got := a.Apply(base)
	assert.Equal(t, "Kiosk", got.Window.Title)
	assert.Equal(t, "org.example.kiosk", got.Window.AppID)
	assert.Equal(t, "wayland-1", got.Display.Name)
	assert.Equal(t, "debug", got.Logging.LogLevel)
	assert.Equal(t, ":9464", got.Metrics.ListenAddress, "untouched keys are kept")
	assert.Equal(t, "Hyacinth", base.Window.Title)
}

func TestRun(t *testing.T) {
	useTempConfig := func(t *testing.T) string {
		path := filepath.Join(t.TempDir(), "hyacinth.toml")
		viper.Reset()
		config.SetConfigPath(path)
		require.NoError(t, config.Init())
		t.Cleanup(func() {
			viper.Reset()
			config.SetConfigPath("")
			config.Set(nil)
		})
		return path
	}

	t.Run("saves the answers", func(t *testing.T) {
		path := useTempConfig(t)
		cs := &ConfigSetup{run: func(*huh.Form) error { return nil }}

		require.NoError(t, cs.Run())
		assert.FileExists(t, path)
	})

	t.Run("user abort", func(t *testing.T) {
		path := useTempConfig(t)
		cs := &ConfigSetup{run: func(*huh.Form) error { return huh.ErrUserAborted }}

		assert.ErrorIs(t, cs.Run(), ErrAborted)
		assert.NoFileExists(t, path)
	})

	t.Run("form error", func(t *testing.T) {
		useTempConfig(t)
		boom := errors.New("no tty")
		cs := &ConfigSetup{run: func(*huh.Form) error { return boom }}

		assert.ErrorIs(t, cs.Run(), boom)
	})
}
