package client

import (
	"github.com/bnema/hyacinth/internal/logger"
	"github.com/bnema/hyacinth/internal/metrics"
	"github.com/bnema/hyacinth/internal/protocol"
	"github.com/bnema/hyacinth/internal/wire"
)

// Dispatch performs one dispatch pass: it blocks until at least one complete
// frame is buffered, then delivers every complete frame to its object's
// listener in arrival order. Transport errors, lost frame boundaries and
// wl_display.error are fatal and sticky.
func (c *Conn) Dispatch() error {
	if c.err != nil {
		return c.err
	}

	for {
		ready, err := c.frameReady()
		if err != nil {
			return c.fail(err)
		}
		if ready {
			break
		}
		n, err := c.transport.Receive(c.readBuf)
		if err != nil {
			return c.fail(err)
		}
		c.in = append(c.in, c.readBuf[:n]...)
	}

	for {
		ready, err := c.frameReady()
		if err != nil {
			return c.fail(err)
		}
		if !ready {
			break
		}
		h, _ := wire.DecodeHeader(c.in)
		payload := c.in[wire.HeaderSize:h.Size]
		if err := c.deliver(h, payload); err != nil {
			return c.fail(err)
		}
		c.in = c.in[h.Size:]
	}
	if len(c.in) == 0 {
		c.in = c.in[:0:0]
	}

	for _, f := range c.afterDispatch {
		if err := f(); err != nil {
			return c.fail(err)
		}
	}
	return nil
}

// frameReady reports whether c.in starts with a complete frame. A header
// that cannot describe a frame means the stream is desynchronized.
func (c *Conn) frameReady() (bool, error) {
	if len(c.in) < wire.HeaderSize {
		return false, nil
	}
	h, err := wire.DecodeHeader(c.in)
	if err != nil {
		return false, err
	}
	return len(c.in) >= int(h.Size), nil
}

func (c *Conn) deliver(h wire.Header, payload []byte) error {
	if h.ObjectID == DisplayID {
		return c.handleDisplayEvent(h.Opcode, payload)
	}

	proxy, listener, ok := c.objects.Lookup(h.ObjectID)
	if !ok {
		// Late events for destroyed objects are a benign race
		logger.Warn("Dropping event for unknown object", "object", h.ObjectID, "opcode", h.Opcode, "error", ErrUnknownObject)
		c.metrics.EventDropped(metrics.ReasonUnknownObject)
		return nil
	}

	ev, err := protocol.DecodeEvent(proxy.iface, h.Opcode, payload)
	if err != nil {
		logger.Warn("Dropping malformed event", "object", proxy.String(), "opcode", h.Opcode, "error", err)
		c.metrics.EventDropped(metrics.ReasonDecode)
		return nil
	}

	name := proxy.iface.Events[h.Opcode].Name
	c.metrics.EventReceived(proxy.iface.Name, name)
	if listener == nil {
		logger.Debug("No listener for event", "object", proxy.String(), "event", name)
		c.metrics.EventDropped(metrics.ReasonNoListener)
		return nil
	}

	if logger.DebugEnabled() {
		logger.Debug("<- event", "object", proxy.String(), "event", name, "args", ev.Args())
	}
	listener.HandleEvent(ev)
	return nil
}

func (c *Conn) handleDisplayEvent(opcode uint16, payload []byte) error {
	ev, err := protocol.DecodeEvent(protocol.Display, opcode, payload)
	if err != nil {
		logger.Warn("Dropping malformed display event", "opcode", opcode, "error", err)
		c.metrics.EventDropped(metrics.ReasonDecode)
		return nil
	}
	c.metrics.EventReceived(protocol.DisplayName, protocol.Display.Events[opcode].Name)

	switch e := ev.(type) {
	case protocol.ErrorEvent:
		perr := &ProtocolError{
			ObjectID: uint32(e.ObjectID),
			Code:     e.Code,
			Message:  e.Message,
		}
		if p, _, ok := c.objects.Lookup(uint32(e.ObjectID)); ok {
			perr.Interface = p.iface.Name
		}
		logger.Error("Compositor reported a protocol error", "object", perr.ObjectID, "interface", perr.Interface, "code", perr.Code, "message", perr.Message)
		return perr
	case protocol.DeleteIDEvent:
		c.objects.Release(e.ID)
	}
	return nil
}

// Roundtrip sends wl_display.sync and dispatches until its callback fires.
// Every event the compositor queued before handling the sync has been
// delivered when it returns.
func (c *Conn) Roundtrip() error {
	done := false
	callback, err := c.CreateObject(c.display, protocol.DisplaySync)
	if err != nil {
		return err
	}
	if err := c.Listen(callback, protocol.CallbackHandler(func(uint32) {
		done = true
	})); err != nil {
		return err
	}

	for !done {
		if err := c.Dispatch(); err != nil {
			return err
		}
	}
	// The compositor destroys the callback after done
	c.objects.Unbind(callback.id)
	c.metrics.Roundtrip()
	return nil
}
