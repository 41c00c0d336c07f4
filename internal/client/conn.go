// Package client is the Wayland wire-protocol client engine: object ids,
// request marshaling, event demultiplexing and round trips over a single
// compositor connection.
package client

import (
	"fmt"

	"github.com/bnema/hyacinth/internal/logger"
	"github.com/bnema/hyacinth/internal/metrics"
	"github.com/bnema/hyacinth/internal/protocol"
	"github.com/bnema/hyacinth/internal/wire"
)

// Transport moves raw bytes to and from the compositor.
type Transport interface {
	Send(b []byte) error
	// Receive blocks until at least one byte is read.
	Receive(buf []byte) (int, error)
	Close() error
	Fd() int
}

// Conn is one client connection. It is not safe for concurrent use: the
// owning goroutine sends requests and runs Dispatch.
type Conn struct {
	transport Transport
	objects   *ObjectTable
	display   Proxy
	metrics   *metrics.Collector

	in      []byte // received bytes not yet dispatched
	readBuf []byte

	// Called after every dispatch pass, once all complete frames of the
	// pass have been delivered.
	afterDispatch []func() error

	err error // sticky fatal error
}

// Option configures a Conn
type Option func(*Conn)

// WithMetrics counts traffic into m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Conn) {
		c.metrics = m
	}
}

// NewConn wraps a connected transport.
func NewConn(t Transport, opts ...Option) *Conn {
	objects := NewObjectTable()
	display, _, _ := objects.Lookup(DisplayID)
	c := &Conn{
		transport: t,
		objects:   objects,
		display:   display,
		readBuf:   make([]byte, 4*wire.MaxMessageSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Display returns the wl_display proxy.
func (c *Conn) Display() Proxy {
	return c.display
}

// Objects exposes the object table.
func (c *Conn) Objects() *ObjectTable {
	return c.objects
}

// Fd returns the transport descriptor.
func (c *Conn) Fd() int {
	return c.transport.Fd()
}

// Err returns the fatal error that ended the connection, if any.
func (c *Conn) Err() error {
	return c.err
}

// OnDispatched registers f to run at the end of every dispatch pass.
// Listeners use it to batch replies that only need the latest event.
func (c *Conn) OnDispatched(f func() error) {
	c.afterDispatch = append(c.afterDispatch, f)
}

func (c *Conn) fail(err error) error {
	if c.err == nil {
		c.err = err
	}
	return c.err
}

// SendRequest marshals request opcode on p and writes it to the socket.
// Arguments are checked against the request signature first.
func (c *Conn) SendRequest(p Proxy, opcode uint16, args ...interface{}) error {
	if c.err != nil {
		return c.err
	}
	if p.iface == nil {
		return fmt.Errorf("%w: request %d on null object", wire.ErrSignature, opcode)
	}
	if _, _, ok := c.objects.Lookup(p.id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownObject, p)
	}
	msg, ok := p.iface.Request(opcode)
	if !ok {
		return fmt.Errorf("%w: %s has no request %d", wire.ErrSignature, p.iface.Name, opcode)
	}
	if msg.Since > p.version {
		return fmt.Errorf("%w: %s.%s needs version %d, bound at %d", ErrVersion, p.iface.Name, msg.Name, msg.Since, p.version)
	}

	frame, err := wire.Encode(p.id, opcode, msg, args...)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", p.iface.Name, msg.Name, err)
	}
	if err := c.transport.Send(frame); err != nil {
		return c.fail(err)
	}

	logger.Debug("-> request", "object", p.String(), "message", msg.Name, "args", args)
	c.metrics.RequestSent(p.iface.Name, msg.Name)

	if msg.Destructor {
		// The compositor confirms with delete_id; until then late events
		// for the object are dropped.
		c.objects.Unbind(p.id)
	}
	return nil
}

// CreateObject sends a request whose typed new_id argument creates a child
// object. args omit the new_id; its id is allocated here and inserted at the
// signature position. The child inherits the parent's version.
func (c *Conn) CreateObject(parent Proxy, opcode uint16, args ...interface{}) (Proxy, error) {
	if parent.iface == nil {
		return Proxy{}, fmt.Errorf("%w: request %d on null object", wire.ErrSignature, opcode)
	}
	msg, ok := parent.iface.Request(opcode)
	if !ok {
		return Proxy{}, fmt.Errorf("%w: %s has no request %d", wire.ErrSignature, parent.iface.Name, opcode)
	}

	pos := -1
	for i, a := range msg.Args {
		if a.Type == wire.NewID && a.Interface != "" {
			pos = i
			break
		}
	}
	if pos < 0 {
		return Proxy{}, fmt.Errorf("%w: %s.%s creates no typed object", wire.ErrSignature, parent.iface.Name, msg.Name)
	}
	target := protocol.Lookup(msg.Args[pos].Interface)
	if target == nil {
		return Proxy{}, fmt.Errorf("%w: %s.%s creates unsupported interface %s", wire.ErrSignature, parent.iface.Name, msg.Name, msg.Args[pos].Interface)
	}

	version := parent.version
	if version > target.Version {
		version = target.Version
	}
	child, err := c.objects.Allocate(target, version)
	if err != nil {
		return Proxy{}, err
	}

	full := make([]interface{}, 0, len(args)+1)
	full = append(full, args[:min(pos, len(args))]...)
	full = append(full, wire.ObjectID(child.id))
	if pos < len(args) {
		full = append(full, args[pos:]...)
	}

	if err := c.SendRequest(parent, opcode, full...); err != nil {
		c.objects.Release(child.id)
		return Proxy{}, err
	}
	return child, nil
}

// Bind sends wl_registry.bind for global name, creating an object of iface
// at version.
func (c *Conn) Bind(registry Proxy, name uint32, iface *protocol.Interface, version uint32) (Proxy, error) {
	p, err := c.objects.Allocate(iface, version)
	if err != nil {
		return Proxy{}, err
	}
	id := wire.UntypedNewID{Interface: iface.Name, Version: version, ID: wire.ObjectID(p.id)}
	if err := c.SendRequest(registry, protocol.RegistryBind, name, id); err != nil {
		c.objects.Release(p.id)
		return Proxy{}, err
	}
	return p, nil
}

// Listen installs l as the listener of p.
func (c *Conn) Listen(p Proxy, l protocol.Listener) error {
	return c.objects.Bind(p.id, l)
}

// Forget drops p from the object table without telling the compositor, for
// interfaces that have no destructor request.
func (c *Conn) Forget(p Proxy) {
	c.objects.Release(p.id)
}

// Close closes the transport. Further requests fail with ErrClosed.
func (c *Conn) Close() error {
	if c.err == ErrClosed {
		return nil
	}
	err := c.transport.Close()
	c.err = ErrClosed
	return err
}
