package ui

import (
	"testing"

	"github.com/bnema/hyacinth/internal/protocol"
	"github.com/bnema/hyacinth/internal/window"
	"github.com/stretchr/testify/assert"
)

func TestGlobalsTable(t *testing.T) {
	globals := []window.Global{
		{Name: 1, Interface: protocol.CompositorName, Version: 6, Bound: true},
		{Name: 2, Interface: "wl_shm", Version: 1},
		{Name: 4, Interface: protocol.WmBaseName, Version: 7, Bound: true},
	}

	out := GlobalsTable(globals)
	for _, want := range []string{"INTERFACE", "wl_compositor", "wl_shm", "xdg_wm_base", "REQUIRED", "yes"} {
		assert.Contains(t, out, want)
	}
}

func TestMissingGlobals(t *testing.T) {
	tests := []struct {
		name    string
		globals []window.Global
		want    []string
	}{
		{
			name: "complete",
			globals: []window.Global{
				{Interface: protocol.CompositorName},
				{Interface: protocol.WmBaseName},
			},
		},
		{
			name:    "no shell",
			globals: []window.Global{{Interface: protocol.CompositorName}},
			want:    []string{protocol.WmBaseName},
		},
		{
			name: "empty",
			want: []string{protocol.CompositorName, protocol.WmBaseName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MissingGlobals(tt.globals))
		})
	}
}

func TestFormatGlobalsSummary(t *testing.T) {
	tests := []struct {
		name    string
		globals []window.Global
		want    []string
		notWant []string
	}{
		{
			name: "missing required",
			want: []string{IconError, "missing required globals"},
		},
		{
			name: "complete",
			globals: []window.Global{
				{Interface: protocol.CompositorName},
				{Interface: protocol.OutputName},
				{Interface: protocol.WmBaseName},
			},
			want:    []string{IconSuccess, "3 globals"},
			notWant: []string{"no wl_output"},
		},
		{
			name: "no output",
			globals: []window.Global{
				{Interface: protocol.CompositorName},
				{Interface: protocol.WmBaseName},
			},
			want: []string{"2 globals", IconWarning, "no wl_output advertised"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatGlobalsSummary(tt.globals)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, got, w)
			}
		})
	}
}
