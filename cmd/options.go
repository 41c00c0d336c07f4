package cmd

import (
	"github.com/bnema/hyacinth/internal/config"
	"github.com/bnema/hyacinth/internal/metrics"
	"github.com/bnema/hyacinth/internal/transport"
	"github.com/bnema/hyacinth/internal/ui"
	"github.com/bnema/hyacinth/internal/window"
)

// sessionOptions maps the configuration onto window options.
func sessionOptions(cfg *config.Config, collector *metrics.Collector) window.Options {
	return window.Options{
		Title: cfg.Window.Title,
		AppID: cfg.Window.AppID,
		Versions: window.Versions{
			Compositor: cfg.Protocol.CompositorVersion,
			Output:     cfg.Protocol.OutputVersion,
			WmBase:     cfg.Protocol.WmBaseVersion,
		},
		Dial: window.DialWith(&transport.Dialer{
			Display:    cfg.Display.Name,
			RuntimeDir: cfg.Display.RuntimeDir,
		}),
		Metrics: collector,
	}
}

// statusOf snapshots a session for the TUI.
func statusOf(s *window.Session) ui.Status {
	w, h := s.FramebufferSize()
	st := ui.Status{
		Title:  s.Title(),
		State:  s.State().String(),
		Width:  w,
		Height: h,
		Scale:  1,
		Pings:  s.Pings(),
		Active: s.State() == window.ToplevelConfigured,
	}
	if out, ok := s.Output(); ok {
		st.Output = out.Name
		if st.Output == "" {
			st.Output = out.Make + " " + out.Model
		}
		st.Scale = out.Scale
	}
	return st
}
