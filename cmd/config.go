package cmd

import (
	"fmt"

	"github.com/bnema/hyacinth/internal/config"
	"github.com/bnema/hyacinth/internal/logger"
	"github.com/bnema/hyacinth/internal/setup"
	"github.com/bnema/hyacinth/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Hyacinth configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		out := cmd.OutOrStdout()

		appID := cfg.Window.AppID
		if appID == "" {
			appID = ui.MutedStyle.Render("(title)")
		}
		display := cfg.Display.Name
		if display == "" {
			display = ui.MutedStyle.Render("($WAYLAND_DISPLAY)")
		}
		metricsAddr := cfg.Metrics.ListenAddress
		if metricsAddr == "" {
			metricsAddr = ui.MutedStyle.Render("(disabled)")
		}

		fmt.Fprintln(out, ui.HeaderStyle.Render("Current Configuration"))
		fmt.Fprintf(out, "Config file: %s\n\n", ui.InfoStyle.Render(config.GetConfigPath()))

		fmt.Fprintln(out, ui.SubheaderStyle.Render("[window]"))
		fmt.Fprintf(out, "  Title: %s\n", cfg.Window.Title)
		fmt.Fprintf(out, "  App ID: %s\n", appID)

		fmt.Fprintln(out, ui.SubheaderStyle.Render("\n[display]"))
		fmt.Fprintf(out, "  Name: %s\n", display)
		if cfg.Display.RuntimeDir != "" {
			fmt.Fprintf(out, "  Runtime dir: %s\n", cfg.Display.RuntimeDir)
		}

		fmt.Fprintln(out, ui.SubheaderStyle.Render("\n[protocol]"))
		fmt.Fprintf(out, "  wl_compositor: v%d\n", cfg.Protocol.CompositorVersion)
		fmt.Fprintf(out, "  wl_output: v%d\n", cfg.Protocol.OutputVersion)
		fmt.Fprintf(out, "  xdg_wm_base: v%d\n", cfg.Protocol.WmBaseVersion)

		fmt.Fprintln(out, ui.SubheaderStyle.Render("\n[metrics]"))
		fmt.Fprintf(out, "  Listen address: %s\n", metricsAddr)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.GetConfigPath())
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save current configuration to file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Save(); err != nil {
			return err
		}
		logger.Infof("Configuration saved to: %s", config.GetConfigPath())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setup.NewConfigSetup().Run()
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSaveCmd)
	configCmd.AddCommand(configInitCmd)
}
