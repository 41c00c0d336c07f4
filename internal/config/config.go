// Package config handles configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Window   WindowConfig   `mapstructure:"window"`
	Display  DisplayConfig  `mapstructure:"display"`
	Protocol ProtocolConfig `mapstructure:"protocol"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// WindowConfig contains the toplevel settings
type WindowConfig struct {
	Title string `mapstructure:"title"`
	AppID string `mapstructure:"app_id"` // Empty means the title
}

// DisplayConfig selects the compositor socket
type DisplayConfig struct {
	Name       string `mapstructure:"name"`        // Overrides WAYLAND_DISPLAY
	RuntimeDir string `mapstructure:"runtime_dir"` // Overrides XDG_RUNTIME_DIR
}

// ProtocolConfig holds the highest global versions to request
type ProtocolConfig struct {
	CompositorVersion uint32 `mapstructure:"compositor_version"`
	OutputVersion     uint32 `mapstructure:"output_version"`
	WmBaseVersion     uint32 `mapstructure:"xdg_wm_base_version"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

// MetricsConfig controls the prometheus endpoint
type MetricsConfig struct {
	ListenAddress string `mapstructure:"listen_address"` // Empty disables it
}

const configName = "hyacinth"

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Window: WindowConfig{
			Title: "Hyacinth",
		},
		Protocol: ProtocolConfig{
			CompositorVersion: 4,
			OutputVersion:     4,
			WmBaseVersion:     7,
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName(configName)
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		for _, dir := range searchDirs() {
			viper.AddConfigPath(dir)
		}
	}

	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit path that does not exist is also fine
		if !errors.As(err, &notFound) && !(configPathOverride != "" && errors.Is(err, os.ErrNotExist)) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("window.title", DefaultConfig.Window.Title)
	viper.SetDefault("window.app_id", DefaultConfig.Window.AppID)

	viper.SetDefault("display.name", DefaultConfig.Display.Name)
	viper.SetDefault("display.runtime_dir", DefaultConfig.Display.RuntimeDir)

	viper.SetDefault("protocol.compositor_version", DefaultConfig.Protocol.CompositorVersion)
	viper.SetDefault("protocol.output_version", DefaultConfig.Protocol.OutputVersion)
	viper.SetDefault("protocol.xdg_wm_base_version", DefaultConfig.Protocol.WmBaseVersion)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)
	viper.SetDefault("metrics.listen_address", DefaultConfig.Metrics.ListenAddress)
}

// searchDirs lists the config directories in order of precedence.
func searchDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, configName))
	}
	if home := os.Getenv("HOME"); home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", configName))
	}
	return append(dirs, ".")
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		c := DefaultConfig
		return &c
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Update replaces the active configuration and saves it.
func Update(c Config) error {
	viper.Set("window.title", c.Window.Title)
	viper.Set("window.app_id", c.Window.AppID)
	viper.Set("display.name", c.Display.Name)
	viper.Set("display.runtime_dir", c.Display.RuntimeDir)
	viper.Set("protocol.compositor_version", c.Protocol.CompositorVersion)
	viper.Set("protocol.output_version", c.Protocol.OutputVersion)
	viper.Set("protocol.xdg_wm_base_version", c.Protocol.WmBaseVersion)
	viper.Set("logging.log_level", c.Logging.LogLevel)
	viper.Set("metrics.listen_address", c.Metrics.ListenAddress)
	cfg = &c
	return Save()
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, configName, configName+".toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return configName + ".toml"
	}
	return filepath.Join(home, ".config", configName, configName+".toml")
}
