package window

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/hyacinth/internal/client"
	"github.com/bnema/hyacinth/internal/logger"
	"github.com/bnema/hyacinth/internal/metrics"
	"github.com/bnema/hyacinth/internal/protocol"
	"github.com/bnema/hyacinth/internal/transport"
	"github.com/bnema/hyacinth/internal/wire"
	"github.com/bnema/hyacinth/internal/wltest"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestSession(comp *wltest.Compositor, opts Options) *Session {
	opts.Dial = func() (client.Transport, error) { return comp, nil }
	return NewSession(opts)
}

func create(t *testing.T, comp *wltest.Compositor) *Session {
	t.Helper()
	s := newTestSession(comp, Options{Title: "Test"})
	require.NoError(t, s.Create(""))
	return s
}

func TestCreateHandshake(t *testing.T) {
	comp := wltest.New()
	collector := metrics.New()
	s := newTestSession(comp, Options{Title: "Demo", Metrics: collector})

	require.NoError(t, s.Create(""))

	assert.Equal(t, []string{
		"wl_display.get_registry",
		"wl_display.sync",
		"wl_registry.bind",
		"wl_registry.bind",
		"wl_registry.bind",
		"wl_compositor.create_surface",
		"xdg_wm_base.get_xdg_surface",
		"xdg_surface.get_toplevel",
		"xdg_toplevel.set_title",
		"xdg_toplevel.set_app_id",
		"xdg_toplevel.set_fullscreen",
		"wl_surface.commit",
		"wl_display.sync",
		"xdg_surface.ack_configure",
		"wl_surface.commit",
	}, comp.Names(0))

	assert.Equal(t, ToplevelConfigured, s.State())
	assert.Equal(t, "Demo", s.Title())

	w := s.Window()
	assert.Equal(t, int32(1920), w.Width)
	assert.Equal(t, int32(1080), w.Height)
	assert.Contains(t, w.States, protocol.StateFullscreen)
	assert.False(t, w.CloseRequested)

	width, height := s.FramebufferSize()
	assert.Equal(t, int32(1920), width)
	assert.Equal(t, int32(1080), height)

	info, ok := s.Output()
	require.True(t, ok)
	assert.Equal(t, "DP-1", info.Name)
	assert.True(t, info.Done)

	titles := comp.RequestsFor(protocol.ToplevelName)
	require.Len(t, titles, 3)
	assert.Equal(t, "Demo", titles[0].Args.String(0))
	assert.Equal(t, "Demo", titles[1].Args.String(0), "app id defaults to the title")
	assert.Equal(t, wire.ObjectID(comp.ObjectID(protocol.OutputName)), titles[2].Args.Object(0))

	handles, err := s.NativeHandles()
	require.NoError(t, err)
	assert.Equal(t, 42, handles.DisplayFd)
	assert.Equal(t, comp.ObjectID(protocol.SurfaceName), handles.SurfaceID)

	expected := `
# HELP hyacinth_configures_acked_total xdg_surface configure serials acknowledged
# TYPE hyacinth_configures_acked_total counter
hyacinth_configures_acked_total 1
# HELP hyacinth_roundtrips_total Completed wl_display.sync round trips
# TYPE hyacinth_roundtrips_total counter
hyacinth_roundtrips_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected),
		"hyacinth_configures_acked_total", "hyacinth_roundtrips_total"))
}

func TestCreateBindVersions(t *testing.T) {
	comp := wltest.New()
	create(t, comp)

	versions := map[string]uint32{}
	for _, r := range comp.RequestsFor(protocol.RegistryName) {
		nid := r.Args[1].(wire.UntypedNewID)
		versions[nid.Interface] = nid.Version
	}
	assert.Equal(t, map[string]uint32{
		protocol.CompositorName: 4,
		protocol.OutputName:     4,
		protocol.WmBaseName:     7,
	}, versions)
}

func TestCreateTitleOverridesAndAppID(t *testing.T) {
	comp := wltest.New()
	s := newTestSession(comp, Options{Title: "Configured", AppID: "org.example.demo"})
	require.NoError(t, s.Create("Override"))

	reqs := comp.RequestsFor(protocol.ToplevelName)
	require.Len(t, reqs, 3)
	assert.Equal(t, "Override", reqs[0].Args.String(0))
	assert.Equal(t, "org.example.demo", reqs[1].Args.String(0))
	assert.Equal(t, "Override", s.Title())
}

func TestCreateTwice(t *testing.T) {
	s := create(t, wltest.New())
	assert.ErrorIs(t, s.Create(""), ErrAlreadyCreated)
}

func TestLatestConfigureWins(t *testing.T) {
	comp := wltest.New()
	comp.ConfigureSerials = []uint32{1, 2}
	create(t, comp)

	acks := comp.RequestsFor(protocol.XdgSurfaceName)
	var acked []uint32
	for _, r := range acks {
		if r.Name == "ack_configure" {
			acked = append(acked, r.Args.Uint(0))
		}
	}
	assert.Equal(t, []uint32{2}, acked)
}

func TestPingIsAnsweredFirst(t *testing.T) {
	comp := wltest.New()
	s := create(t, comp)

	start := len(comp.Requests)
	comp.Queue(comp.ObjectID(protocol.XdgSurfaceName), protocol.XdgSurfaceConfigureEvent{Serial: 7})
	comp.Queue(comp.ObjectID(protocol.WmBaseName), protocol.PingEvent{Serial: 55})

	require.True(t, s.Poll())
	assert.Equal(t, []string{
		"xdg_wm_base.pong",
		"xdg_surface.ack_configure",
		"wl_surface.commit",
	}, comp.Names(start))
	assert.Equal(t, uint32(55), comp.Requests[start].Args.Uint(0))
	assert.Equal(t, uint32(7), comp.Requests[start+1].Args.Uint(0))
	assert.Equal(t, uint64(1), s.Pings())
}

func TestPingDuringCreate(t *testing.T) {
	comp := wltest.New()
	comp.PingOnBind = 30
	comp.PingOnConfigure = 31
	s := create(t, comp)

	names := comp.Names(0)
	require.GreaterOrEqual(t, len(names), 5)
	assert.Equal(t, []string{
		"wl_display.sync",
		"xdg_wm_base.pong",
		"xdg_wm_base.pong",
		"xdg_surface.ack_configure",
		"wl_surface.commit",
	}, names[len(names)-5:])

	var pongs []uint32
	for _, r := range comp.RequestsFor(protocol.WmBaseName) {
		if r.Name == "pong" {
			pongs = append(pongs, r.Args.Uint(0))
		}
	}
	assert.Equal(t, []uint32{30, 31}, pongs)
	assert.Equal(t, uint64(2), s.Pings())
	assert.Equal(t, ToplevelConfigured, s.State())
}

func TestFramebufferAppliesOutputScale(t *testing.T) {
	comp := wltest.New()
	comp.Width, comp.Height = 800, 600
	comp.OutputScale = 2
	s := create(t, comp)

	w, h := s.FramebufferSize()
	assert.Equal(t, int32(1600), w)
	assert.Equal(t, int32(1200), h)
}

func TestFramebufferFallsBackToMode(t *testing.T) {
	s := NewSession(Options{})
	s.out.HandleOutputMode(protocol.OutputModeEvent{Flags: protocol.OutputModeCurrent, Width: 2560, Height: 1440})
	s.out.HandleOutputMode(protocol.OutputModeEvent{Width: 640, Height: 480})

	w, h := s.FramebufferSize()
	assert.Equal(t, int32(2560), w)
	assert.Equal(t, int32(1440), h)
}

func TestZeroSizeConfigureKeepsAxis(t *testing.T) {
	comp := wltest.New()
	s := create(t, comp)

	comp.Queue(comp.ObjectID(protocol.ToplevelName), protocol.ToplevelConfigureEvent{Width: 0, Height: 700})
	comp.Queue(comp.ObjectID(protocol.XdgSurfaceName), protocol.XdgSurfaceConfigureEvent{Serial: 9})
	require.True(t, s.Poll())

	w := s.Window()
	assert.Equal(t, int32(1920), w.Width)
	assert.Equal(t, int32(700), w.Height)
	assert.Empty(t, w.States)
}

func TestToplevelAdvisoryEvents(t *testing.T) {
	comp := wltest.New()
	s := create(t, comp)

	toplevel := comp.ObjectID(protocol.ToplevelName)
	comp.Queue(toplevel, protocol.ToplevelConfigureBoundsEvent{Width: 1900, Height: 1000})
	comp.Queue(toplevel, protocol.ToplevelWMCapabilitiesEvent{
		Capabilities: []protocol.WMCapability{protocol.CapabilityFullscreen, protocol.CapabilityMinimize},
	})
	require.True(t, s.Poll())

	w := s.Window()
	assert.Equal(t, int32(1900), w.BoundsWidth)
	assert.Equal(t, int32(1000), w.BoundsHeight)
	assert.Equal(t, []protocol.WMCapability{protocol.CapabilityFullscreen, protocol.CapabilityMinimize}, w.Capabilities)
}

func TestCloseIsSticky(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.Logger.GetLevel()
	require.NoError(t, logger.SetLevel("info"))
	logger.Logger.SetOutput(&buf)
	t.Cleanup(func() {
		logger.Logger.SetLevel(prev)
		logger.RestoreOutput()
	})

	comp := wltest.New()
	s := create(t, comp)

	toplevel := comp.ObjectID(protocol.ToplevelName)
	comp.Queue(toplevel, protocol.ToplevelCloseEvent{})
	comp.Queue(toplevel, protocol.ToplevelCloseEvent{})
	assert.False(t, s.Poll())
	assert.Equal(t, Closing, s.State())
	assert.True(t, s.Window().CloseRequested)

	receives := comp.Receives
	assert.False(t, s.Poll())
	assert.Equal(t, receives, comp.Receives, "no dispatch after close")

	s.Close()
	assert.True(t, s.Window().CloseRequested)
	assert.Equal(t, 1, strings.Count(buf.String(), "Window closing"), "close events collapse into one transition")
}

func TestCloseByCaller(t *testing.T) {
	s := create(t, wltest.New())
	s.Close()
	assert.False(t, s.Poll())
	assert.Equal(t, Closing, s.State())
}

func TestPollStopsWhenScriptIsExhausted(t *testing.T) {
	s := create(t, wltest.New())
	assert.False(t, s.Poll())
	assert.True(t, s.Window().CloseRequested)
	assert.ErrorIs(t, s.Err(), transport.ErrClosed)
}

// shutdownCompositor adds the Shutdown method of transport.Conn.
type shutdownCompositor struct {
	*wltest.Compositor
	shutdowns int
}

func (c *shutdownCompositor) Shutdown() error {
	c.shutdowns++
	return nil
}

func TestInterrupt(t *testing.T) {
	comp := &shutdownCompositor{Compositor: wltest.New()}
	s := NewSession(Options{Title: "Test", Dial: func() (client.Transport, error) { return comp, nil }})
	require.NoError(t, s.Create(""))

	require.NoError(t, s.Interrupt())
	assert.Equal(t, 1, comp.shutdowns)

	assert.False(t, s.Poll())
	assert.NoError(t, s.Err(), "an interrupted session ends cleanly")
	assert.Equal(t, Closing, s.State())
}

func TestPollWithoutConnection(t *testing.T) {
	s := NewSession(Options{})
	assert.False(t, s.Poll())
	assert.NoError(t, s.Interrupt())
	_, err := s.NativeHandles()
	assert.ErrorIs(t, err, ErrNotCreated)
}

func TestCreateWithoutRuntimeDir(t *testing.T) {
	sockets := 0
	d := &transport.Dialer{
		LookupEnv: func(string) (string, bool) { return "", false },
		Socket: func(domain, typ, proto int) (int, error) {
			sockets++
			return -1, errors.New("unexpected socket call")
		},
	}
	s := NewSession(Options{Title: "Test", Dial: DialWith(d)})

	err := s.Create("")
	assert.ErrorIs(t, err, transport.ErrNoRuntimeDir)
	assert.Zero(t, sockets)
	assert.Equal(t, Disconnected, s.State())
}

func TestCreateMissingGlobals(t *testing.T) {
	tests := []struct {
		name    string
		without string
	}{
		{name: "no xdg_wm_base", without: protocol.WmBaseName},
		{name: "no wl_compositor", without: protocol.CompositorName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp := wltest.New().WithoutGlobal(tt.without)
			s := newTestSession(comp, Options{Title: "Test"})

			err := s.Create("")
			require.ErrorIs(t, err, ErrMissingGlobal)
			assert.Contains(t, err.Error(), tt.without)
			assert.Empty(t, comp.RequestsFor(protocol.CompositorName), "no surface requested")
			assert.Equal(t, 1, comp.Closes)
			assert.Equal(t, Disconnected, s.State())
		})
	}
}

func TestCreateRetryAfterFailure(t *testing.T) {
	first := wltest.New().WithoutGlobal(protocol.WmBaseName)
	second := wltest.New()
	dials := []*wltest.Compositor{first, second}
	s := NewSession(Options{Title: "Test", Dial: func() (client.Transport, error) {
		c := dials[0]
		dials = dials[1:]
		return c, nil
	}})

	require.ErrorIs(t, s.Create(""), ErrMissingGlobal)
	assert.Empty(t, s.Globals())
	_, ok := s.Output()
	assert.False(t, ok)

	require.NoError(t, s.Create(""))
	assert.Equal(t, ToplevelConfigured, s.State())
	assert.Len(t, second.RequestsFor(protocol.RegistryName), 3, "globals are bound again on the new connection")
	assert.Len(t, s.Globals(), len(second.Globals))

	surfaces := second.RequestsFor(protocol.CompositorName)
	require.Len(t, surfaces, 1)
	assert.Equal(t, second.ObjectID(protocol.CompositorName), surfaces[0].ObjectID)

	info, ok := s.Output()
	require.True(t, ok)
	assert.Equal(t, "DP-1", info.Name)
}

func TestCreateWithoutOutput(t *testing.T) {
	comp := wltest.New().WithoutGlobal(protocol.OutputName)
	s := create(t, comp)

	var fullscreen *wltest.Request
	for _, r := range comp.RequestsFor(protocol.ToplevelName) {
		if r.Name == "set_fullscreen" {
			fullscreen = &r
		}
	}
	require.NotNil(t, fullscreen)
	assert.Equal(t, wire.ObjectID(0), fullscreen.Args.Object(0))

	_, ok := s.Output()
	assert.False(t, ok)
	w, h := s.FramebufferSize()
	assert.Equal(t, int32(1920), w)
	assert.Equal(t, int32(1080), h)
}

func TestCreateSendFailure(t *testing.T) {
	comp := wltest.New()
	comp.FailSends(transport.ErrIO)
	s := newTestSession(comp, Options{Title: "Test"})

	assert.ErrorIs(t, s.Create(""), transport.ErrIO)
	assert.Equal(t, Disconnected, s.State())
	assert.Equal(t, 1, comp.Closes)
}

func TestDestroyOrder(t *testing.T) {
	comp := wltest.New()
	s := create(t, comp)

	start := len(comp.Requests)
	s.Destroy()

	assert.Equal(t, []string{
		"xdg_toplevel.destroy",
		"xdg_surface.destroy",
		"xdg_wm_base.destroy",
		"wl_surface.destroy",
		"wl_output.release",
	}, comp.Names(start))
	assert.Equal(t, Destroyed, s.State())
	assert.Equal(t, 1, comp.Closes)

	s.Destroy()
	assert.Equal(t, 1, comp.Closes, "destroy is idempotent")
}

func TestOutputRemoved(t *testing.T) {
	comp := wltest.New()
	s := create(t, comp)

	start := len(comp.Requests)
	comp.Queue(comp.ObjectID(protocol.RegistryName), protocol.GlobalRemoveEvent{Name: 3})
	require.True(t, s.Poll())

	assert.Equal(t, []string{"wl_output.release"}, comp.Names(start))
	_, ok := s.Output()
	assert.False(t, ok)
	assert.Len(t, s.Globals(), 4)

	start = len(comp.Requests)
	s.Destroy()
	assert.NotContains(t, comp.Names(start), "wl_output.release")
}

func TestListGlobals(t *testing.T) {
	comp := wltest.New()
	globals, err := ListGlobals(Options{Dial: func() (client.Transport, error) { return comp, nil }})
	require.NoError(t, err)

	require.Len(t, globals, 5)
	assert.Equal(t, Global{Name: 1, Interface: protocol.CompositorName, Version: 6, Bound: true}, globals[0])
	assert.Equal(t, Global{Name: 2, Interface: "wl_shm", Version: 1}, globals[1])
	assert.True(t, globals[3].Bound)
	assert.False(t, globals[4].Bound)

	assert.Equal(t, []string{"wl_display.get_registry", "wl_display.sync"}, comp.Names(0))
	assert.Equal(t, 1, comp.Closes)
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name       string
		requested  uint32
		advertised uint32
		want       uint32
	}{
		{name: "request below advertised", requested: 4, advertised: 6, want: 4},
		{name: "advertised below request", requested: 7, advertised: 3, want: 3},
		{name: "capped by implementation", requested: 9, advertised: 9, want: 7},
		{name: "zero requests newest", requested: 0, advertised: 5, want: 5},
		{name: "never below one", requested: 0, advertised: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, negotiate(tt.requested, tt.advertised, protocol.WmBase))
		})
	}
}

func TestIsRequired(t *testing.T) {
	assert.True(t, IsRequired(protocol.CompositorName))
	assert.True(t, IsRequired(protocol.WmBaseName))
	assert.False(t, IsRequired(protocol.OutputName))
	assert.False(t, IsRequired("wl_seat"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "configured", ToplevelConfigured.String())
	assert.Equal(t, "state(42)", State(42).String())
}
