package client

import (
	"fmt"

	"github.com/bnema/hyacinth/internal/protocol"
)

const (
	// DisplayID is the id of the wl_display object every connection starts with.
	DisplayID uint32 = 1
	// Client-allocated ids live in [2, maxClientID]; higher ids belong to
	// the compositor.
	firstClientID uint32 = 2
	maxClientID   uint32 = 0xfeffffff
)

// Proxy is the client-side handle of a protocol object: its id, the
// interface it is bound to and the negotiated version. The zero Proxy is
// the null object.
type Proxy struct {
	id      uint32
	iface   *protocol.Interface
	version uint32
}

func (p Proxy) ID() uint32 {
	return p.id
}

func (p Proxy) Interface() *protocol.Interface {
	return p.iface
}

func (p Proxy) Version() uint32 {
	return p.version
}

// IsNil reports whether p is the null object.
func (p Proxy) IsNil() bool {
	return p.id == 0
}

func (p Proxy) String() string {
	if p.iface == nil {
		return "nil"
	}
	return fmt.Sprintf("%s@%d", p.iface.Name, p.id)
}

type entry struct {
	proxy    Proxy
	listener protocol.Listener
}

// ObjectTable maps object ids to their interface and installed listener.
// Ids are allocated monotonically and never reused while the table lives.
type ObjectTable struct {
	nextID  uint32
	objects map[uint32]*entry
}

// NewObjectTable returns a table holding only the display object.
func NewObjectTable() *ObjectTable {
	t := &ObjectTable{
		nextID:  firstClientID,
		objects: make(map[uint32]*entry),
	}
	t.objects[DisplayID] = &entry{proxy: Proxy{id: DisplayID, iface: protocol.Display, version: 1}}
	return t
}

// Allocate reserves the next id for a new object of iface.
func (t *ObjectTable) Allocate(iface *protocol.Interface, version uint32) (Proxy, error) {
	if t.nextID > maxClientID {
		return Proxy{}, ErrIDExhausted
	}
	p := Proxy{id: t.nextID, iface: iface, version: version}
	t.nextID++
	t.objects[p.id] = &entry{proxy: p}
	return p, nil
}

// Bind installs the listener for id, replacing any previous one.
func (t *ObjectTable) Bind(id uint32, l protocol.Listener) error {
	e, ok := t.objects[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownObject, id)
	}
	e.listener = l
	return nil
}

// Unbind removes the listener of id. Later events for it are dropped.
func (t *ObjectTable) Unbind(id uint32) {
	if e, ok := t.objects[id]; ok {
		e.listener = nil
	}
}

// Lookup returns the proxy and listener bound to id.
func (t *ObjectTable) Lookup(id uint32) (Proxy, protocol.Listener, bool) {
	e, ok := t.objects[id]
	if !ok {
		return Proxy{}, nil, false
	}
	return e.proxy, e.listener, true
}

// Release forgets id. The id is not handed out again.
func (t *ObjectTable) Release(id uint32) {
	if id == DisplayID {
		return
	}
	delete(t.objects, id)
}

// Len returns the number of live objects, the display included.
func (t *ObjectTable) Len() int {
	return len(t.objects)
}
