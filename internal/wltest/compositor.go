// Package wltest provides a scripted in-memory Wayland compositor for tests.
// It decodes every request the client writes with the same wire and
// protocol packages the client uses, records it, and answers the handshake
// the way a real compositor would.
package wltest

import (
	"fmt"

	"github.com/bnema/hyacinth/internal/protocol"
	"github.com/bnema/hyacinth/internal/transport"
	"github.com/bnema/hyacinth/internal/wire"
)

// Global is one registry global advertised to the client.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// Request is one decoded client request.
type Request struct {
	ObjectID  uint32
	Interface string
	Opcode    uint16
	Name      string
	Args      wire.Args
}

func (r Request) String() string {
	return fmt.Sprintf("%s@%d.%s%v", r.Interface, r.ObjectID, r.Name, []interface{}(r.Args))
}

// Compositor implements client.Transport. Events queued while handling a
// request are returned by the following Receive calls. Receive on an empty
// queue reports a closed connection, so a test never blocks.
type Compositor struct {
	Globals []Global

	// Initial toplevel configure sent on the first commit of a toplevel
	Width  int32
	Height int32
	States []protocol.ToplevelState
	// One xdg_surface.configure is sent per serial, in order
	ConfigureSerials []uint32

	// Output description sent when wl_output is bound
	OutputName  string
	OutputScale int32
	ModeWidth   int32
	ModeHeight  int32

	// Non-zero serials make the compositor ping when xdg_wm_base is bound
	// and again before the initial configure
	PingOnBind      uint32
	PingOnConfigure uint32

	FD int

	Requests []Request

	objects    map[uint32]string
	roles      map[uint32]uint32 // wl_surface -> xdg_surface
	toplevels  map[uint32]uint32 // xdg_surface -> xdg_toplevel
	configured map[uint32]bool

	// Number of Close and Receive calls
	Closes   int
	Receives int

	in      []byte
	out     []byte
	serial  uint32
	closed  bool
	sendErr error
}

// New returns a compositor advertising wl_compositor v6, wl_output v4 and
// xdg_wm_base v7, with a 1920x1080 output at scale 1.
func New() *Compositor {
	return &Compositor{
		Globals: []Global{
			{Name: 1, Interface: protocol.CompositorName, Version: 6},
			{Name: 2, Interface: "wl_shm", Version: 1},
			{Name: 3, Interface: protocol.OutputName, Version: 4},
			{Name: 4, Interface: protocol.WmBaseName, Version: 7},
			{Name: 5, Interface: "wl_seat", Version: 9},
		},
		Width:            1920,
		Height:           1080,
		States:           []protocol.ToplevelState{protocol.StateFullscreen, protocol.StateActivated},
		ConfigureSerials: []uint32{1},
		OutputName:       "DP-1",
		OutputScale:      1,
		ModeWidth:        1920,
		ModeHeight:       1080,
		FD:               42,
		objects:          map[uint32]string{1: protocol.DisplayName},
		roles:            make(map[uint32]uint32),
		toplevels:        make(map[uint32]uint32),
		configured:       make(map[uint32]bool),
		serial:           100,
	}
}

// WithoutGlobal removes the globals implementing iface.
func (c *Compositor) WithoutGlobal(iface string) *Compositor {
	kept := c.Globals[:0]
	for _, g := range c.Globals {
		if g.Interface != iface {
			kept = append(kept, g)
		}
	}
	c.Globals = kept
	return c
}

// FailSends makes every later Send return err.
func (c *Compositor) FailSends(err error) {
	c.sendErr = err
}

// Queue appends an event for objectID to the outgoing stream.
func (c *Compositor) Queue(objectID uint32, ev protocol.Event) {
	frame, err := protocol.EncodeEvent(objectID, ev)
	if err != nil {
		panic(fmt.Sprintf("wltest: encoding %T: %v", ev, err))
	}
	c.out = append(c.out, frame...)
}

// QueueRaw appends raw bytes to the outgoing stream.
func (c *Compositor) QueueRaw(b []byte) {
	c.out = append(c.out, b...)
}

// ObjectID returns the most recently created id bound to iface, or 0.
func (c *Compositor) ObjectID(iface string) uint32 {
	var latest uint32
	for id, name := range c.objects {
		if name == iface && id > latest {
			latest = id
		}
	}
	return latest
}

// RequestsFor returns the recorded requests sent to objects of iface.
func (c *Compositor) RequestsFor(iface string) []Request {
	var out []Request
	for _, r := range c.Requests {
		if r.Interface == iface {
			out = append(out, r)
		}
	}
	return out
}

// Names returns "interface.request" for every recorded request from index
// start on.
func (c *Compositor) Names(start int) []string {
	var out []string
	for _, r := range c.Requests[start:] {
		out = append(out, r.Interface+"."+r.Name)
	}
	return out
}

func (c *Compositor) Send(b []byte) error {
	if c.closed {
		return fmt.Errorf("%w: send after close", transport.ErrIO)
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	c.in = append(c.in, b...)
	for len(c.in) >= wire.HeaderSize {
		h, err := wire.DecodeHeader(c.in)
		if err != nil {
			return fmt.Errorf("wltest: %w", err)
		}
		if len(c.in) < int(h.Size) {
			break
		}
		if err := c.handle(h, c.in[wire.HeaderSize:h.Size]); err != nil {
			return err
		}
		c.in = c.in[h.Size:]
	}
	return nil
}

func (c *Compositor) Receive(buf []byte) (int, error) {
	c.Receives++
	if c.closed {
		return 0, fmt.Errorf("%w: receive after close", transport.ErrIO)
	}
	if len(c.out) == 0 {
		return 0, fmt.Errorf("%w: script exhausted", transport.ErrClosed)
	}
	n := copy(buf, c.out)
	c.out = c.out[n:]
	return n, nil
}

func (c *Compositor) Close() error {
	c.Closes++
	c.closed = true
	return nil
}

func (c *Compositor) Fd() int {
	return c.FD
}

func (c *Compositor) handle(h wire.Header, payload []byte) error {
	name, ok := c.objects[h.ObjectID]
	if !ok {
		return fmt.Errorf("wltest: request %d for unknown object %d", h.Opcode, h.ObjectID)
	}
	iface := protocol.Lookup(name)
	msg, ok := iface.Request(h.Opcode)
	if !ok {
		return fmt.Errorf("wltest: %s has no request %d", name, h.Opcode)
	}
	args, err := wire.DecodeArgs(msg, payload)
	if err != nil {
		return fmt.Errorf("wltest: %s.%s: %w", name, msg.Name, err)
	}
	c.Requests = append(c.Requests, Request{ObjectID: h.ObjectID, Interface: name, Opcode: h.Opcode, Name: msg.Name, Args: args})

	// Register created objects
	for i, a := range msg.Args {
		if a.Type != wire.NewID {
			continue
		}
		if v, ok := args[i].(wire.UntypedNewID); ok {
			c.objects[uint32(v.ID)] = v.Interface
		} else {
			c.objects[uint32(args.Object(i))] = a.Interface
		}
	}

	c.react(h.ObjectID, name, msg, args)

	if msg.Destructor {
		delete(c.objects, h.ObjectID)
		c.Queue(1, protocol.DeleteIDEvent{ID: h.ObjectID})
	}
	return nil
}

func (c *Compositor) react(id uint32, iface string, msg wire.Message, args wire.Args) {
	switch iface + "." + msg.Name {
	case "wl_display.sync":
		cb := uint32(args.Object(0))
		c.serial++
		c.Queue(cb, protocol.CallbackDoneEvent{Data: c.serial})
		delete(c.objects, cb)
		c.Queue(1, protocol.DeleteIDEvent{ID: cb})
	case "wl_display.get_registry":
		registry := uint32(args.Object(0))
		for _, g := range c.Globals {
			c.Queue(registry, protocol.GlobalEvent{Name: g.Name, Interface: g.Interface, Version: g.Version})
		}
	case "wl_registry.bind":
		nid := args[1].(wire.UntypedNewID)
		switch nid.Interface {
		case protocol.OutputName:
			c.describeOutput(uint32(nid.ID), nid.Version)
		case protocol.WmBaseName:
			if c.PingOnBind != 0 {
				c.Queue(uint32(nid.ID), protocol.PingEvent{Serial: c.PingOnBind})
			}
		}
	case "xdg_wm_base.get_xdg_surface":
		c.roles[uint32(args.Object(1))] = uint32(args.Object(0))
	case "xdg_surface.get_toplevel":
		c.toplevels[id] = uint32(args.Object(0))
	case "wl_surface.commit":
		xdgSurface, ok := c.roles[id]
		if !ok || c.configured[xdgSurface] {
			return
		}
		toplevel, ok := c.toplevels[xdgSurface]
		if !ok {
			return
		}
		c.configured[xdgSurface] = true
		if c.PingOnConfigure != 0 {
			c.Queue(c.ObjectID(protocol.WmBaseName), protocol.PingEvent{Serial: c.PingOnConfigure})
		}
		c.Queue(toplevel, protocol.ToplevelConfigureEvent{Width: c.Width, Height: c.Height, States: c.States})
		for _, serial := range c.ConfigureSerials {
			c.Queue(xdgSurface, protocol.XdgSurfaceConfigureEvent{Serial: serial})
		}
	}
}

func (c *Compositor) describeOutput(id, version uint32) {
	c.Queue(id, protocol.OutputGeometryEvent{
		PhysicalWidth:  600,
		PhysicalHeight: 340,
		Make:           "Hyacinth",
		Model:          "Virtual",
	})
	c.Queue(id, protocol.OutputModeEvent{
		Flags:   protocol.OutputModeCurrent,
		Width:   c.ModeWidth,
		Height:  c.ModeHeight,
		Refresh: 60000,
	})
	if version >= 2 {
		c.Queue(id, protocol.OutputScaleEvent{Factor: c.OutputScale})
	}
	if version >= 4 {
		c.Queue(id, protocol.OutputNameEvent{Name: c.OutputName})
	}
	if version >= 2 {
		c.Queue(id, protocol.OutputDoneEvent{})
	}
}
