package ui

import (
	"fmt"
	"strings"

	"github.com/bnema/hyacinth/internal/protocol"
	"github.com/bnema/hyacinth/internal/window"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// GlobalsTable renders the registry globals. Globals the window binds are
// highlighted and the required ones are marked.
func GlobalsTable(globals []window.Global) string {
	rows := make([][]string, 0, len(globals))
	for _, g := range globals {
		used := ""
		if g.Bound {
			used = IconSuccess
		}
		required := ""
		if window.IsRequired(g.Interface) {
			required = "yes"
		}
		rows = append(rows, []string{fmt.Sprint(g.Name), g.Interface, fmt.Sprint(g.Version), used, required})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorSubtle)).
		Headers("NAME", "INTERFACE", "VERSION", "USED", "REQUIRED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle.BorderBottom(false).Padding(0, 1)
			}
			style := TableRowStyle.Padding(0, 1)
			if row >= 0 && row < len(globals) && globals[row].Bound {
				style = style.Foreground(ColorActive)
			}
			return style
		})

	return t.Render()
}

// MissingGlobals returns the required interfaces absent from globals.
func MissingGlobals(globals []window.Global) []string {
	seen := make(map[string]bool, len(globals))
	for _, g := range globals {
		seen[g.Interface] = true
	}
	var missing []string
	for _, iface := range []string{protocol.CompositorName, protocol.WmBaseName} {
		if !seen[iface] {
			missing = append(missing, iface)
		}
	}
	return missing
}

// FormatGlobalsSummary is the line printed under the table.
func FormatGlobalsSummary(globals []window.Global) string {
	if missing := MissingGlobals(globals); len(missing) > 0 {
		return ErrorStyle.Render(fmt.Sprintf("%s missing required globals: %s", IconError, strings.Join(missing, ", ")))
	}
	summary := SuccessStyle.Render(fmt.Sprintf("%s %d globals, a fullscreen window can be created", IconSuccess, len(globals)))
	if !hasInterface(globals, protocol.OutputName) {
		summary += "\n" + FormatWarning("no wl_output advertised, the compositor picks the fullscreen output")
	}
	return summary
}

func hasInterface(globals []window.Global, iface string) bool {
	for _, g := range globals {
		if g.Interface == iface {
			return true
		}
	}
	return false
}
