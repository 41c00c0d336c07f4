package cmd

import (
	"fmt"

	"github.com/bnema/hyacinth/internal/config"
	"github.com/bnema/hyacinth/internal/ui"
	"github.com/bnema/hyacinth/internal/window"
	"github.com/spf13/cobra"
)

var globalsCmd = &cobra.Command{
	Use:   "globals",
	Short: "List the globals advertised by the compositor",
	Long: `Connect to the compositor, enumerate the registry with one round trip and
print every advertised global. Globals the window binds are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		globals, err := window.ListGlobals(sessionOptions(config.Get(), nil))
		if err != nil {
			return fmt.Errorf("failed to list globals: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.GlobalsTable(globals))
		fmt.Fprintln(out, ui.FormatGlobalsSummary(globals))
		return nil
	},
}
