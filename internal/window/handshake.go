package window

import (
	"fmt"
	"strings"

	"github.com/bnema/hyacinth/internal/client"
	"github.com/bnema/hyacinth/internal/logger"
	"github.com/bnema/hyacinth/internal/protocol"
	"github.com/bnema/hyacinth/internal/wire"
)

// Create connects to the compositor and opens a fullscreen toplevel titled
// title (the configured title when empty). It returns once the initial
// configure has been acknowledged or the compositor has gone quiet after
// the second round trip. On failure the connection is closed again.
func (s *Session) Create(title string) error {
	if s.state != Disconnected {
		return ErrAlreadyCreated
	}
	if title != "" {
		s.opts.Title = title
	}

	if err := s.create(); err != nil {
		logger.Error("Failed to create window", "title", s.opts.Title, "state", s.state, "error", err)
		if s.conn != nil {
			_ = s.conn.Close()
		}
		s.reset()
		return err
	}
	return nil
}

func (s *Session) create() error {
	t, err := s.opts.Dial()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	s.transport = t
	s.conn = client.NewConn(t, client.WithMetrics(s.opts.Metrics))
	s.conn.OnDispatched(s.flushConfigure)
	s.state = Connected

	s.registry, err = s.conn.CreateObject(s.conn.Display(), protocol.DisplayGetRegistry)
	if err != nil {
		return fmt.Errorf("get registry: %w", err)
	}
	if err := s.conn.Listen(s.registry, protocol.RegistryHandler(s)); err != nil {
		return err
	}
	if err := s.conn.Roundtrip(); err != nil {
		return fmt.Errorf("registry roundtrip: %w", err)
	}
	s.state = RegistryEnumerated

	if missing := s.missingGlobals(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingGlobal, strings.Join(missing, ", "))
	}
	if s.output.IsNil() {
		logger.Warn("No wl_output advertised, the compositor picks the fullscreen output")
	}

	s.surface, err = s.conn.CreateObject(s.compositor, protocol.CompositorCreateSurface)
	if err != nil {
		return fmt.Errorf("create surface: %w", err)
	}
	if err := s.conn.Listen(s.surface, protocol.SurfaceHandler(s)); err != nil {
		return err
	}
	s.state = SurfaceCreated

	if err := s.createToplevel(); err != nil {
		return err
	}
	s.state = ShellSurfacePending

	if err := s.conn.SendRequest(s.surface, protocol.SurfaceCommit); err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}
	if err := s.conn.Roundtrip(); err != nil {
		return fmt.Errorf("configure roundtrip: %w", err)
	}

	if s.state == ShellSurfacePending {
		logger.Debug("Initial configure not received yet, waiting in Poll")
	}
	w, h := s.FramebufferSize()
	logger.Info("Window created", "title", s.opts.Title, "size", formatSize(w, h), "scale", s.out.scale(), "state", s.state)
	return nil
}

// createToplevel wraps the surface in an xdg_surface and an xdg_toplevel.
// Listeners are installed before the initial commit so no configure can be
// missed.
func (s *Session) createToplevel() error {
	var err error
	s.xdgSurface, err = s.conn.CreateObject(s.wmBase, protocol.WmBaseGetXdgSurface, wire.ObjectID(s.surface.ID()))
	if err != nil {
		return fmt.Errorf("get xdg_surface: %w", err)
	}
	if err := s.conn.Listen(s.xdgSurface, protocol.XdgSurfaceHandler(s)); err != nil {
		return err
	}

	s.toplevel, err = s.conn.CreateObject(s.xdgSurface, protocol.XdgSurfaceGetToplevel)
	if err != nil {
		return fmt.Errorf("get toplevel: %w", err)
	}
	if err := s.conn.Listen(s.toplevel, protocol.ToplevelHandler(s)); err != nil {
		return err
	}

	appID := s.opts.AppID
	if appID == "" {
		appID = s.opts.Title
	}
	if err := s.conn.SendRequest(s.toplevel, protocol.ToplevelSetTitle, s.opts.Title); err != nil {
		return fmt.Errorf("set title: %w", err)
	}
	if err := s.conn.SendRequest(s.toplevel, protocol.ToplevelSetAppID, appID); err != nil {
		return fmt.Errorf("set app id: %w", err)
	}
	if err := s.conn.SendRequest(s.toplevel, protocol.ToplevelSetFullscreen, s.fullscreenTarget()); err != nil {
		return fmt.Errorf("set fullscreen: %w", err)
	}
	return nil
}

// HandleWmBasePing answers inline, before anything else the current
// dispatch pass sends.
func (s *Session) HandleWmBasePing(ev protocol.PingEvent) {
	if err := s.conn.SendRequest(s.wmBase, protocol.WmBasePong, ev.Serial); err != nil {
		logger.Error("Failed to answer ping", "serial", ev.Serial, "error", err)
		return
	}
	s.pings++
	s.opts.Metrics.PingAnswered()
}

// HandleXdgSurfaceConfigure records the serial. Only the latest serial of a
// dispatch pass is acknowledged, by flushConfigure.
func (s *Session) HandleXdgSurfaceConfigure(ev protocol.XdgSurfaceConfigureEvent) {
	if s.hasPending {
		logger.Debug("Configure superseded", "serial", s.pendingSerial, "by", ev.Serial)
	}
	s.pendingSerial = ev.Serial
	s.hasPending = true
}

// flushConfigure runs at the end of each dispatch pass: ack the latest
// configure, then commit.
func (s *Session) flushConfigure() error {
	if !s.hasPending || s.xdgSurface.IsNil() {
		return nil
	}
	serial := s.pendingSerial
	s.hasPending = false

	if err := s.conn.SendRequest(s.xdgSurface, protocol.XdgSurfaceAckConfigure, serial); err != nil {
		return fmt.Errorf("ack configure %d: %w", serial, err)
	}
	if err := s.conn.SendRequest(s.surface, protocol.SurfaceCommit); err != nil {
		return fmt.Errorf("commit after configure %d: %w", serial, err)
	}
	s.opts.Metrics.ConfigureAcked()

	if s.state == ShellSurfacePending {
		s.state = ToplevelConfigured
		logger.Debug("Toplevel configured", "serial", serial)
	}
	return nil
}

func (s *Session) HandleToplevelConfigure(ev protocol.ToplevelConfigureEvent) {
	// Zero leaves that dimension to the client: keep what we had
	if ev.Width > 0 {
		s.window.Width = ev.Width
	}
	if ev.Height > 0 {
		s.window.Height = ev.Height
	}
	s.window.States = ev.States
	logger.Debug("Toplevel configure", "size", formatSize(ev.Width, ev.Height), "states", ev.States)
}

func (s *Session) HandleToplevelClose(protocol.ToplevelCloseEvent) {
	s.markClosed("compositor requested close")
}

// HandleToplevelConfigureBounds is advisory: a fullscreen window ignores it.
func (s *Session) HandleToplevelConfigureBounds(ev protocol.ToplevelConfigureBoundsEvent) {
	s.window.BoundsWidth = ev.Width
	s.window.BoundsHeight = ev.Height
}

func (s *Session) HandleToplevelWMCapabilities(ev protocol.ToplevelWMCapabilitiesEvent) {
	s.window.Capabilities = ev.Capabilities
	logger.Info("Compositor window capabilities", "capabilities", ev.Capabilities, "fullscreen", ev.Has(protocol.CapabilityFullscreen))
}

func (s *Session) HandleSurfaceEnter(ev protocol.SurfaceEnterEvent) {
	logger.Debug("Surface entered output", "output", ev.Output)
}

func (s *Session) HandleSurfaceLeave(ev protocol.SurfaceLeaveEvent) {
	logger.Debug("Surface left output", "output", ev.Output)
}

func (s *Session) HandleSurfacePreferredBufferScale(ev protocol.SurfacePreferredBufferScaleEvent) {
	logger.Debug("Preferred buffer scale", "factor", ev.Factor)
}

func (s *Session) HandleSurfacePreferredBufferTransform(ev protocol.SurfacePreferredBufferTransformEvent) {
	logger.Debug("Preferred buffer transform", "transform", ev.Transform)
}

// markClosed sets the close flag. It flips once and never back.
func (s *Session) markClosed(reason string) {
	if s.window.CloseRequested {
		return
	}
	s.window.CloseRequested = true
	if s.state != Destroyed && s.state != Disconnected {
		s.state = Closing
	}
	logger.Info("Window closing", "reason", reason)
}

// Poll runs one dispatch pass. It returns false once the window should
// close: after a close event, Close, or a connection error. A blocked Poll
// returns after Interrupt.
func (s *Session) Poll() bool {
	if s.conn == nil || s.window.CloseRequested {
		return false
	}
	if err := s.conn.Dispatch(); err != nil {
		if s.interrupted.Load() {
			s.markClosed("interrupted")
			return false
		}
		s.err = err
		s.markClosed(fmt.Sprintf("connection error: %v", err))
		return false
	}
	return !s.window.CloseRequested
}

// Close requests closure as if the compositor had sent close.
func (s *Session) Close() {
	s.markClosed("closed by caller")
}

// Interrupt shuts the socket down so a Poll blocked in another goroutine
// returns false. It is the only method safe to call concurrently.
func (s *Session) Interrupt() error {
	type shutdowner interface {
		Shutdown() error
	}
	s.interrupted.Store(true)
	if t, ok := s.transport.(shutdowner); ok {
		return t.Shutdown()
	}
	return nil
}

// Destroy releases the toplevel, xdg_surface, xdg_wm_base, surface, output,
// compositor and registry in that order, then closes the connection.
func (s *Session) Destroy() {
	if s.conn == nil {
		return
	}

	if s.conn.Err() == nil {
		for _, p := range []client.Proxy{s.toplevel, s.xdgSurface, s.wmBase, s.surface} {
			if p.IsNil() {
				continue
			}
			// destroy is opcode 0 on all four interfaces
			if err := s.conn.SendRequest(p, 0); err != nil {
				logger.Debug("Failed to destroy object", "object", p.String(), "error", err)
			}
		}
		if !s.output.IsNil() {
			s.releaseOutput()
		}
	}
	// wl_compositor and wl_registry have no destructor
	s.conn.Forget(s.compositor)
	s.conn.Forget(s.registry)

	if err := s.conn.Close(); err != nil {
		logger.Warn("Failed to close connection", "error", err)
	}
	s.conn = nil
	s.toplevel, s.xdgSurface, s.wmBase, s.surface = client.Proxy{}, client.Proxy{}, client.Proxy{}, client.Proxy{}
	s.compositor, s.registry = client.Proxy{}, client.Proxy{}
	s.state = Destroyed
	logger.Debug("Window destroyed")
}
