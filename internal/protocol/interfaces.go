// Package protocol describes the Wayland core and xdg-shell interfaces the
// window shim speaks: request and event signatures, typed events and
// per-interface listener adapters.
package protocol

import (
	"github.com/bnema/hyacinth/internal/wire"
)

// Interface is the static description of one protocol object type. The
// opcode of a request or event is its index in Requests or Events.
type Interface struct {
	Name     string
	Version  uint32
	Requests []wire.Message
	Events   []wire.Message
}

// Request returns the signature of request opcode, or false if the
// interface has no such request.
func (i *Interface) Request(opcode uint16) (wire.Message, bool) {
	if int(opcode) >= len(i.Requests) {
		return wire.Message{}, false
	}
	return i.Requests[opcode], true
}

// Event returns the signature of event opcode, or false if the interface
// has no such event.
func (i *Interface) Event(opcode uint16) (wire.Message, bool) {
	if int(opcode) >= len(i.Events) {
		return wire.Message{}, false
	}
	return i.Events[opcode], true
}

// Interface names as they appear in registry globals
const (
	DisplayName    = "wl_display"
	RegistryName   = "wl_registry"
	CallbackName   = "wl_callback"
	CompositorName = "wl_compositor"
	SurfaceName    = "wl_surface"
	OutputName     = "wl_output"
	WmBaseName     = "xdg_wm_base"
	XdgSurfaceName = "xdg_surface"
	ToplevelName   = "xdg_toplevel"
)

// Request opcodes
const (
	DisplaySync        uint16 = 0
	DisplayGetRegistry uint16 = 1

	RegistryBind uint16 = 0

	CompositorCreateSurface uint16 = 0
	CompositorCreateRegion  uint16 = 1

	SurfaceDestroy            uint16 = 0
	SurfaceAttach             uint16 = 1
	SurfaceDamage             uint16 = 2
	SurfaceFrame              uint16 = 3
	SurfaceSetOpaqueRegion    uint16 = 4
	SurfaceSetInputRegion     uint16 = 5
	SurfaceCommit             uint16 = 6
	SurfaceSetBufferTransform uint16 = 7
	SurfaceSetBufferScale     uint16 = 8
	SurfaceDamageBuffer       uint16 = 9
	SurfaceOffset             uint16 = 10

	OutputRelease uint16 = 0

	WmBaseDestroy          uint16 = 0
	WmBaseCreatePositioner uint16 = 1
	WmBaseGetXdgSurface    uint16 = 2
	WmBasePong             uint16 = 3

	XdgSurfaceDestroy           uint16 = 0
	XdgSurfaceGetToplevel       uint16 = 1
	XdgSurfaceGetPopup          uint16 = 2
	XdgSurfaceSetWindowGeometry uint16 = 3
	XdgSurfaceAckConfigure      uint16 = 4

	ToplevelDestroy         uint16 = 0
	ToplevelSetParent       uint16 = 1
	ToplevelSetTitle        uint16 = 2
	ToplevelSetAppID        uint16 = 3
	ToplevelShowWindowMenu  uint16 = 4
	ToplevelMove            uint16 = 5
	ToplevelResize          uint16 = 6
	ToplevelSetMaxSize      uint16 = 7
	ToplevelSetMinSize      uint16 = 8
	ToplevelSetMaximized    uint16 = 9
	ToplevelUnsetMaximized  uint16 = 10
	ToplevelSetFullscreen   uint16 = 11
	ToplevelUnsetFullscreen uint16 = 12
	ToplevelSetMinimized    uint16 = 13
)

func arg(name string, t wire.ArgType) wire.Arg {
	return wire.Arg{Name: name, Type: t}
}

func object(name, iface string, nullable bool) wire.Arg {
	return wire.Arg{Name: name, Type: wire.Object, Interface: iface, Nullable: nullable}
}

func newID(name, iface string) wire.Arg {
	return wire.Arg{Name: name, Type: wire.NewID, Interface: iface}
}

func rect() []wire.Arg {
	return []wire.Arg{
		arg("x", wire.Int),
		arg("y", wire.Int),
		arg("width", wire.Int),
		arg("height", wire.Int),
	}
}

// Display is wl_display, the object every connection starts with (id 1).
var Display = &Interface{
	Name:    DisplayName,
	Version: 1,
	Requests: []wire.Message{
		{Name: "sync", Args: []wire.Arg{newID("callback", CallbackName)}},
		{Name: "get_registry", Args: []wire.Arg{newID("registry", RegistryName)}},
	},
	Events: []wire.Message{
		{Name: "error", Args: []wire.Arg{
			object("object_id", "", false),
			arg("code", wire.Uint),
			arg("message", wire.String),
		}},
		{Name: "delete_id", Args: []wire.Arg{arg("id", wire.Uint)}},
	},
}

var Registry = &Interface{
	Name:    RegistryName,
	Version: 1,
	Requests: []wire.Message{
		// new_id without an interface: (string interface, uint version, uint id)
		{Name: "bind", Args: []wire.Arg{arg("name", wire.Uint), newID("id", "")}},
	},
	Events: []wire.Message{
		{Name: "global", Args: []wire.Arg{
			arg("name", wire.Uint),
			arg("interface", wire.String),
			arg("version", wire.Uint),
		}},
		{Name: "global_remove", Args: []wire.Arg{arg("name", wire.Uint)}},
	},
}

var Callback = &Interface{
	Name:    CallbackName,
	Version: 1,
	Events: []wire.Message{
		{Name: "done", Destructor: true, Args: []wire.Arg{arg("callback_data", wire.Uint)}},
	},
}

var Compositor = &Interface{
	Name:    CompositorName,
	Version: 6,
	Requests: []wire.Message{
		{Name: "create_surface", Args: []wire.Arg{newID("id", SurfaceName)}},
		{Name: "create_region", Args: []wire.Arg{newID("id", "wl_region")}},
	},
}

var Surface = &Interface{
	Name:    SurfaceName,
	Version: 6,
	Requests: []wire.Message{
		{Name: "destroy", Destructor: true},
		{Name: "attach", Args: []wire.Arg{
			object("buffer", "wl_buffer", true),
			arg("x", wire.Int),
			arg("y", wire.Int),
		}},
		{Name: "damage", Args: rect()},
		{Name: "frame", Args: []wire.Arg{newID("callback", CallbackName)}},
		{Name: "set_opaque_region", Args: []wire.Arg{object("region", "wl_region", true)}},
		{Name: "set_input_region", Args: []wire.Arg{object("region", "wl_region", true)}},
		{Name: "commit"},
		{Name: "set_buffer_transform", Since: 2, Args: []wire.Arg{arg("transform", wire.Int)}},
		{Name: "set_buffer_scale", Since: 3, Args: []wire.Arg{arg("scale", wire.Int)}},
		{Name: "damage_buffer", Since: 4, Args: rect()},
		{Name: "offset", Since: 5, Args: []wire.Arg{arg("x", wire.Int), arg("y", wire.Int)}},
	},
	Events: []wire.Message{
		{Name: "enter", Args: []wire.Arg{object("output", OutputName, false)}},
		{Name: "leave", Args: []wire.Arg{object("output", OutputName, false)}},
		{Name: "preferred_buffer_scale", Since: 6, Args: []wire.Arg{arg("factor", wire.Int)}},
		{Name: "preferred_buffer_transform", Since: 6, Args: []wire.Arg{arg("transform", wire.Uint)}},
	},
}

var Output = &Interface{
	Name:    OutputName,
	Version: 4,
	Requests: []wire.Message{
		{Name: "release", Since: 3, Destructor: true},
	},
	Events: []wire.Message{
		{Name: "geometry", Args: []wire.Arg{
			arg("x", wire.Int),
			arg("y", wire.Int),
			arg("physical_width", wire.Int),
			arg("physical_height", wire.Int),
			arg("subpixel", wire.Int),
			arg("make", wire.String),
			arg("model", wire.String),
			arg("transform", wire.Int),
		}},
		{Name: "mode", Args: []wire.Arg{
			arg("flags", wire.Uint),
			arg("width", wire.Int),
			arg("height", wire.Int),
			arg("refresh", wire.Int),
		}},
		{Name: "done", Since: 2},
		{Name: "scale", Since: 2, Args: []wire.Arg{arg("factor", wire.Int)}},
		{Name: "name", Since: 4, Args: []wire.Arg{arg("name", wire.String)}},
		{Name: "description", Since: 4, Args: []wire.Arg{arg("description", wire.String)}},
	},
}

var WmBase = &Interface{
	Name:    WmBaseName,
	Version: 7,
	Requests: []wire.Message{
		{Name: "destroy", Destructor: true},
		{Name: "create_positioner", Args: []wire.Arg{newID("id", "xdg_positioner")}},
		{Name: "get_xdg_surface", Args: []wire.Arg{
			newID("id", XdgSurfaceName),
			object("surface", SurfaceName, false),
		}},
		{Name: "pong", Args: []wire.Arg{arg("serial", wire.Uint)}},
	},
	Events: []wire.Message{
		{Name: "ping", Args: []wire.Arg{arg("serial", wire.Uint)}},
	},
}

var XdgSurface = &Interface{
	Name:    XdgSurfaceName,
	Version: 7,
	Requests: []wire.Message{
		{Name: "destroy", Destructor: true},
		{Name: "get_toplevel", Args: []wire.Arg{newID("id", ToplevelName)}},
		{Name: "get_popup", Args: []wire.Arg{
			newID("id", "xdg_popup"),
			object("parent", XdgSurfaceName, true),
			object("positioner", "xdg_positioner", false),
		}},
		{Name: "set_window_geometry", Args: rect()},
		{Name: "ack_configure", Args: []wire.Arg{arg("serial", wire.Uint)}},
	},
	Events: []wire.Message{
		{Name: "configure", Args: []wire.Arg{arg("serial", wire.Uint)}},
	},
}

var Toplevel = &Interface{
	Name:    ToplevelName,
	Version: 7,
	Requests: []wire.Message{
		{Name: "destroy", Destructor: true},
		{Name: "set_parent", Args: []wire.Arg{object("parent", ToplevelName, true)}},
		{Name: "set_title", Args: []wire.Arg{arg("title", wire.String)}},
		{Name: "set_app_id", Args: []wire.Arg{arg("app_id", wire.String)}},
		{Name: "show_window_menu", Args: []wire.Arg{
			object("seat", "wl_seat", false),
			arg("serial", wire.Uint),
			arg("x", wire.Int),
			arg("y", wire.Int),
		}},
		{Name: "move", Args: []wire.Arg{object("seat", "wl_seat", false), arg("serial", wire.Uint)}},
		{Name: "resize", Args: []wire.Arg{
			object("seat", "wl_seat", false),
			arg("serial", wire.Uint),
			arg("edges", wire.Uint),
		}},
		{Name: "set_max_size", Args: []wire.Arg{arg("width", wire.Int), arg("height", wire.Int)}},
		{Name: "set_min_size", Args: []wire.Arg{arg("width", wire.Int), arg("height", wire.Int)}},
		{Name: "set_maximized"},
		{Name: "unset_maximized"},
		{Name: "set_fullscreen", Args: []wire.Arg{object("output", OutputName, true)}},
		{Name: "unset_fullscreen"},
		{Name: "set_minimized"},
	},
	Events: []wire.Message{
		{Name: "configure", Args: []wire.Arg{
			arg("width", wire.Int),
			arg("height", wire.Int),
			arg("states", wire.Array),
		}},
		{Name: "close"},
		{Name: "configure_bounds", Since: 4, Args: []wire.Arg{arg("width", wire.Int), arg("height", wire.Int)}},
		{Name: "wm_capabilities", Since: 5, Args: []wire.Arg{arg("capabilities", wire.Array)}},
	},
}

var interfaces = map[string]*Interface{
	DisplayName:    Display,
	RegistryName:   Registry,
	CallbackName:   Callback,
	CompositorName: Compositor,
	SurfaceName:    Surface,
	OutputName:     Output,
	WmBaseName:     WmBase,
	XdgSurfaceName: XdgSurface,
	ToplevelName:   Toplevel,
}

// Lookup returns the descriptor for a protocol interface name, or nil if
// the shim does not speak it.
func Lookup(name string) *Interface {
	return interfaces[name]
}

// All returns every known descriptor, ordered by name.
func All() []*Interface {
	return []*Interface{Callback, Compositor, Display, Output, Registry, Surface, XdgSurface, Toplevel, WmBase}
}
