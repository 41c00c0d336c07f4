// Package window drives a fullscreen xdg-shell toplevel over the wire
// client: global binding, the configure handshake, ping/pong keep-alive and
// teardown.
package window

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/bnema/hyacinth/internal/client"
	"github.com/bnema/hyacinth/internal/metrics"
	"github.com/bnema/hyacinth/internal/protocol"
	"github.com/bnema/hyacinth/internal/transport"
)

var (
	ErrMissingGlobal  = errors.New("required global not advertised")
	ErrNotCreated     = errors.New("window not created")
	ErrAlreadyCreated = errors.New("window already created")
)

// State is the handshake state of a Session
type State int

const (
	Disconnected State = iota
	Connected
	RegistryEnumerated
	SurfaceCreated
	ShellSurfacePending
	ToplevelConfigured
	Closing
	Destroyed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case RegistryEnumerated:
		return "registry-enumerated"
	case SurfaceCreated:
		return "surface-created"
	case ShellSurfacePending:
		return "shell-surface-pending"
	case ToplevelConfigured:
		return "configured"
	case Closing:
		return "closing"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Versions are the highest versions requested when binding globals. The
// bound version is the smallest of the request, the advertised version and
// the version this package implements.
type Versions struct {
	Compositor uint32
	Output     uint32
	WmBase     uint32
}

// DefaultVersions returns the versions requested when none are configured.
func DefaultVersions() Versions {
	return Versions{Compositor: 4, Output: 4, WmBase: 7}
}

// Options configures a Session
type Options struct {
	Title string
	// AppID defaults to the title
	AppID    string
	Versions Versions
	// Dial opens the compositor connection. Defaults to a transport.Dialer
	// reading XDG_RUNTIME_DIR and WAYLAND_DISPLAY.
	Dial    func() (client.Transport, error)
	Metrics *metrics.Collector
}

// DialWith adapts a transport.Dialer to Options.Dial.
func DialWith(d *transport.Dialer) func() (client.Transport, error) {
	return func() (client.Transport, error) {
		conn, err := d.Dial()
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Global is a registry global as seen by the binder.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
	// Bound is true for the globals the session binds
	Bound bool
}

// WindowState is the toplevel state mutated by compositor events. Width and
// Height are logical; FramebufferSize applies the output scale.
type WindowState struct {
	Width          int32
	Height         int32
	States         []protocol.ToplevelState
	BoundsWidth    int32
	BoundsHeight   int32
	Capabilities   []protocol.WMCapability
	CloseRequested bool
}

// Handles are the native handles a graphics backend needs.
type Handles struct {
	DisplayFd int
	SurfaceID uint32
}

// Session owns one compositor connection and the window created on it. It
// is driven from a single goroutine; only Interrupt may be called
// concurrently.
type Session struct {
	opts      Options
	transport client.Transport
	conn      *client.Conn
	state     State

	registry   client.Proxy
	compositor client.Proxy
	wmBase     client.Proxy
	surface    client.Proxy
	xdgSurface client.Proxy
	toplevel   client.Proxy

	output     client.Proxy
	outputName uint32
	out        *outputTracker

	globals []Global
	window  WindowState

	pendingSerial uint32
	hasPending    bool
	pings         uint64

	// err is the connection error that ended Poll
	err         error
	interrupted atomic.Bool
}

// NewSession returns a disconnected session.
func NewSession(opts Options) *Session {
	if opts.Versions == (Versions{}) {
		opts.Versions = DefaultVersions()
	}
	if opts.Dial == nil {
		opts.Dial = DialWith(&transport.Dialer{})
	}
	return &Session{
		opts:  opts,
		state: Disconnected,
		out:   newOutputTracker(),
	}
}

// reset forgets everything learned on a connection. Object ids are only
// meaningful on the connection that created them.
func (s *Session) reset() {
	s.conn = nil
	s.transport = nil
	s.registry, s.compositor, s.wmBase = client.Proxy{}, client.Proxy{}, client.Proxy{}
	s.surface, s.xdgSurface, s.toplevel = client.Proxy{}, client.Proxy{}, client.Proxy{}
	s.output = client.Proxy{}
	s.outputName = 0
	s.out.reset()
	s.globals = nil
	s.window = WindowState{}
	s.pendingSerial = 0
	s.hasPending = false
	s.err = nil
	s.state = Disconnected
}

func (s *Session) State() State {
	return s.state
}

// Window returns a copy of the window state.
func (s *Session) Window() WindowState {
	w := s.window
	w.States = append([]protocol.ToplevelState(nil), s.window.States...)
	w.Capabilities = append([]protocol.WMCapability(nil), s.window.Capabilities...)
	return w
}

// Output returns what is known about the bound output. ok is false when no
// output is bound.
func (s *Session) Output() (info OutputInfo, ok bool) {
	return s.out.info, !s.output.IsNil()
}

// Globals returns the globals advertised so far.
func (s *Session) Globals() []Global {
	return append([]Global(nil), s.globals...)
}

// Err returns the connection error that ended the session, or nil when it
// was closed by the compositor, the caller or Interrupt.
func (s *Session) Err() error {
	return s.err
}

// Pings returns the number of pings answered.
func (s *Session) Pings() uint64 {
	return s.pings
}

// Title returns the title the toplevel was given.
func (s *Session) Title() string {
	return s.opts.Title
}

// FramebufferSize returns the window size in pixels: the configured logical
// size times the output scale. Before the compositor proposes a size, the
// current mode of the bound output is used.
func (s *Session) FramebufferSize() (width, height int32) {
	if s.window.Width > 0 && s.window.Height > 0 {
		scale := s.out.scale()
		return s.window.Width * scale, s.window.Height * scale
	}
	return s.out.info.ModeWidth, s.out.info.ModeHeight
}

// NativeHandles returns the connection descriptor and the surface id.
func (s *Session) NativeHandles() (Handles, error) {
	if s.conn == nil || s.surface.IsNil() {
		return Handles{}, ErrNotCreated
	}
	return Handles{DisplayFd: s.conn.Fd(), SurfaceID: s.surface.ID()}, nil
}

// negotiate picks the version to bind a global at. A zero request asks for
// the newest version both sides support.
func negotiate(requested, advertised uint32, iface *protocol.Interface) uint32 {
	if requested == 0 {
		requested = iface.Version
	}
	return max(min(requested, advertised, iface.Version), 1)
}
