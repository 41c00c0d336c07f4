package window

import (
	"fmt"

	"github.com/bnema/hyacinth/internal/client"
	"github.com/bnema/hyacinth/internal/logger"
	"github.com/bnema/hyacinth/internal/protocol"
	"github.com/bnema/hyacinth/internal/wire"
)

// HandleRegistryGlobal binds the globals the window needs as they are
// advertised: the first wl_compositor, wl_output and xdg_wm_base. Anything
// else is recorded and ignored.
func (s *Session) HandleRegistryGlobal(ev protocol.GlobalEvent) {
	g := Global{Name: ev.Name, Interface: ev.Interface, Version: ev.Version}

	var err error
	switch ev.Interface {
	case protocol.CompositorName:
		if s.compositor.IsNil() {
			s.compositor, err = s.bind(ev, protocol.Compositor, s.opts.Versions.Compositor, nil)
			g.Bound = err == nil
		}
	case protocol.OutputName:
		if s.output.IsNil() {
			s.output, err = s.bind(ev, protocol.Output, s.opts.Versions.Output, protocol.OutputHandler(s.out))
			if err == nil {
				s.outputName = ev.Name
				g.Bound = true
			}
		}
	case protocol.WmBaseName:
		if s.wmBase.IsNil() {
			s.wmBase, err = s.bind(ev, protocol.WmBase, s.opts.Versions.WmBase, protocol.WmBaseHandler(s))
			g.Bound = err == nil
		}
	}
	if err != nil {
		logger.Error("Failed to bind global", "interface", ev.Interface, "name", ev.Name, "error", err)
	}

	s.globals = append(s.globals, g)
}

func (s *Session) bind(ev protocol.GlobalEvent, iface *protocol.Interface, requested uint32, l protocol.Listener) (client.Proxy, error) {
	version := negotiate(requested, ev.Version, iface)
	p, err := s.conn.Bind(s.registry, ev.Name, iface, version)
	if err != nil {
		return client.Proxy{}, err
	}
	if l != nil {
		if err := s.conn.Listen(p, l); err != nil {
			return client.Proxy{}, err
		}
	}
	logger.Debug("Bound global", "interface", iface.Name, "name", ev.Name, "advertised", ev.Version, "version", version)
	return p, nil
}

// HandleRegistryGlobalRemove drops a global from the list. Losing the bound
// output releases it; fullscreen placement is then up to the compositor.
func (s *Session) HandleRegistryGlobalRemove(ev protocol.GlobalRemoveEvent) {
	for i, g := range s.globals {
		if g.Name == ev.Name {
			s.globals = append(s.globals[:i], s.globals[i+1:]...)
			logger.Debug("Global removed", "interface", g.Interface, "name", g.Name)
			break
		}
	}

	if !s.output.IsNil() && ev.Name == s.outputName {
		logger.Info("Bound output was removed", "output", s.out.info.Name)
		s.releaseOutput()
	}
}

func (s *Session) releaseOutput() {
	if s.output.Version() >= 3 {
		if err := s.conn.SendRequest(s.output, protocol.OutputRelease); err != nil {
			logger.Debug("Failed to release output", "error", err)
		}
	} else {
		s.conn.Forget(s.output)
	}
	s.output = client.Proxy{}
	s.outputName = 0
	s.out.reset()
}

// missingGlobals lists the required globals that were not bound.
func (s *Session) missingGlobals() []string {
	var missing []string
	if s.compositor.IsNil() {
		missing = append(missing, protocol.CompositorName)
	}
	if s.wmBase.IsNil() {
		missing = append(missing, protocol.WmBaseName)
	}
	return missing
}

// ListGlobals connects, enumerates the registry with one round trip and
// disconnects without binding anything.
func ListGlobals(opts Options) ([]Global, error) {
	s := NewSession(opts)
	t, err := s.opts.Dial()
	if err != nil {
		return nil, err
	}
	conn := client.NewConn(t, client.WithMetrics(opts.Metrics))
	defer func() { _ = conn.Close() }()

	var globals []Global
	registry, err := conn.CreateObject(conn.Display(), protocol.DisplayGetRegistry)
	if err != nil {
		return nil, fmt.Errorf("get registry: %w", err)
	}
	err = conn.Listen(registry, protocol.ListenerFunc(func(ev protocol.Event) {
		if g, ok := ev.(protocol.GlobalEvent); ok {
			globals = append(globals, Global{
				Name:      g.Name,
				Interface: g.Interface,
				Version:   g.Version,
				Bound:     isBoundInterface(g.Interface),
			})
		}
	}))
	if err != nil {
		return nil, err
	}
	if err := conn.Roundtrip(); err != nil {
		return nil, fmt.Errorf("registry roundtrip: %w", err)
	}
	return globals, nil
}

// isBoundInterface reports whether a session binds globals of iface.
func isBoundInterface(iface string) bool {
	switch iface {
	case protocol.CompositorName, protocol.OutputName, protocol.WmBaseName:
		return true
	}
	return false
}

// IsRequired reports whether window creation fails without a global of iface.
func IsRequired(iface string) bool {
	return iface == protocol.CompositorName || iface == protocol.WmBaseName
}

// fullscreenTarget is the output argument of set_fullscreen: the bound
// output or null.
func (s *Session) fullscreenTarget() wire.ObjectID {
	if s.output.IsNil() {
		return 0
	}
	return wire.ObjectID(s.output.ID())
}
