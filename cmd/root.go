package cmd

import (
	"fmt"

	"github.com/bnema/hyacinth/internal/config"
	"github.com/bnema/hyacinth/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "hyacinth",
		Short: "Hyacinth - fullscreen Wayland window",
		Long: `Hyacinth opens a single fullscreen xdg-shell toplevel on a Wayland compositor.
It speaks the Wayland wire protocol directly over the compositor socket and
keeps the window alive until the compositor or the user closes it.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

// Execute runs the root command
func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/hyacinth/hyacinth.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(globalsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// initConfig loads the configuration and applies the log level. The flag
// wins over the config file, which wins over LOG_LEVEL.
func initConfig(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		config.SetConfigPath(configPath)
	}
	if err := config.Init(); err != nil {
		return err
	}

	level := logLevel
	if level == "" {
		level = config.Get().Logging.LogLevel
	}
	if level != "" {
		if err := logger.SetLevel(level); err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
	}
	return nil
}
