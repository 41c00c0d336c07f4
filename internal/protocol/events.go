package protocol

import (
	"fmt"

	"github.com/bnema/hyacinth/internal/wire"
)

// Event is a decoded event. Each implementation belongs to one interface
// and one opcode; Args returns its values in signature order.
type Event interface {
	InterfaceName() string
	Opcode() uint16
	Args() []interface{}
}

// ToplevelState is one entry of the xdg_toplevel.configure states array.
type ToplevelState uint32

const (
	StateMaximized   ToplevelState = 1
	StateFullscreen  ToplevelState = 2
	StateResizing    ToplevelState = 3
	StateActivated   ToplevelState = 4
	StateTiledLeft   ToplevelState = 5
	StateTiledRight  ToplevelState = 6
	StateTiledTop    ToplevelState = 7
	StateTiledBottom ToplevelState = 8
	StateSuspended   ToplevelState = 9

	// Since version 7
	StateConstrainedLeft   ToplevelState = 10
	StateConstrainedRight  ToplevelState = 11
	StateConstrainedTop    ToplevelState = 12
	StateConstrainedBottom ToplevelState = 13
)

func (s ToplevelState) String() string {
	switch s {
	case StateMaximized:
		return "maximized"
	case StateFullscreen:
		return "fullscreen"
	case StateResizing:
		return "resizing"
	case StateActivated:
		return "activated"
	case StateTiledLeft:
		return "tiled_left"
	case StateTiledRight:
		return "tiled_right"
	case StateTiledTop:
		return "tiled_top"
	case StateTiledBottom:
		return "tiled_bottom"
	case StateSuspended:
		return "suspended"
	case StateConstrainedLeft:
		return "constrained_left"
	case StateConstrainedRight:
		return "constrained_right"
	case StateConstrainedTop:
		return "constrained_top"
	case StateConstrainedBottom:
		return "constrained_bottom"
	default:
		return fmt.Sprintf("state(%d)", uint32(s))
	}
}

// WMCapability is one entry of the xdg_toplevel.wm_capabilities array.
type WMCapability uint32

const (
	CapabilityWindowMenu WMCapability = 1
	CapabilityMaximize   WMCapability = 2
	CapabilityFullscreen WMCapability = 3
	CapabilityMinimize   WMCapability = 4
)

func (c WMCapability) String() string {
	switch c {
	case CapabilityWindowMenu:
		return "window_menu"
	case CapabilityMaximize:
		return "maximize"
	case CapabilityFullscreen:
		return "fullscreen"
	case CapabilityMinimize:
		return "minimize"
	default:
		return fmt.Sprintf("capability(%d)", uint32(c))
	}
}

// OutputModeCurrent is set in OutputModeEvent.Flags for the active mode.
const OutputModeCurrent uint32 = 0x1

// wl_display events

type ErrorEvent struct {
	ObjectID wire.ObjectID
	Code     uint32
	Message  string
}

func (ErrorEvent) InterfaceName() string { return DisplayName }
func (ErrorEvent) Opcode() uint16        { return 0 }
func (e ErrorEvent) Args() []interface{} {
	return []interface{}{e.ObjectID, e.Code, e.Message}
}

type DeleteIDEvent struct {
	ID uint32
}

func (DeleteIDEvent) InterfaceName() string { return DisplayName }
func (DeleteIDEvent) Opcode() uint16        { return 1 }
func (e DeleteIDEvent) Args() []interface{} { return []interface{}{e.ID} }

// wl_registry events

type GlobalEvent struct {
	Name      uint32
	Interface string
	Version   uint32
}

func (GlobalEvent) InterfaceName() string { return RegistryName }
func (GlobalEvent) Opcode() uint16        { return 0 }
func (e GlobalEvent) Args() []interface{} {
	return []interface{}{e.Name, e.Interface, e.Version}
}

type GlobalRemoveEvent struct {
	Name uint32
}

func (GlobalRemoveEvent) InterfaceName() string { return RegistryName }
func (GlobalRemoveEvent) Opcode() uint16        { return 1 }
func (e GlobalRemoveEvent) Args() []interface{} { return []interface{}{e.Name} }

// wl_callback events

type CallbackDoneEvent struct {
	Data uint32
}

func (CallbackDoneEvent) InterfaceName() string { return CallbackName }
func (CallbackDoneEvent) Opcode() uint16        { return 0 }
func (e CallbackDoneEvent) Args() []interface{} { return []interface{}{e.Data} }

// wl_surface events

type SurfaceEnterEvent struct {
	Output wire.ObjectID
}

func (SurfaceEnterEvent) InterfaceName() string { return SurfaceName }
func (SurfaceEnterEvent) Opcode() uint16        { return 0 }
func (e SurfaceEnterEvent) Args() []interface{} { return []interface{}{e.Output} }

type SurfaceLeaveEvent struct {
	Output wire.ObjectID
}

func (SurfaceLeaveEvent) InterfaceName() string { return SurfaceName }
func (SurfaceLeaveEvent) Opcode() uint16        { return 1 }
func (e SurfaceLeaveEvent) Args() []interface{} { return []interface{}{e.Output} }

type SurfacePreferredBufferScaleEvent struct {
	Factor int32
}

func (SurfacePreferredBufferScaleEvent) InterfaceName() string { return SurfaceName }
func (SurfacePreferredBufferScaleEvent) Opcode() uint16        { return 2 }
func (e SurfacePreferredBufferScaleEvent) Args() []interface{} { return []interface{}{e.Factor} }

type SurfacePreferredBufferTransformEvent struct {
	Transform uint32
}

func (SurfacePreferredBufferTransformEvent) InterfaceName() string { return SurfaceName }
func (SurfacePreferredBufferTransformEvent) Opcode() uint16        { return 3 }
func (e SurfacePreferredBufferTransformEvent) Args() []interface{} { return []interface{}{e.Transform} }

// wl_output events

type OutputGeometryEvent struct {
	X              int32
	Y              int32
	PhysicalWidth  int32
	PhysicalHeight int32
	Subpixel       int32
	Make           string
	Model          string
	Transform      int32
}

func (OutputGeometryEvent) InterfaceName() string { return OutputName }
func (OutputGeometryEvent) Opcode() uint16        { return 0 }
func (e OutputGeometryEvent) Args() []interface{} {
	return []interface{}{e.X, e.Y, e.PhysicalWidth, e.PhysicalHeight, e.Subpixel, e.Make, e.Model, e.Transform}
}

type OutputModeEvent struct {
	Flags   uint32
	Width   int32
	Height  int32
	Refresh int32
}

func (OutputModeEvent) InterfaceName() string { return OutputName }
func (OutputModeEvent) Opcode() uint16        { return 1 }
func (e OutputModeEvent) Args() []interface{} {
	return []interface{}{e.Flags, e.Width, e.Height, e.Refresh}
}

type OutputDoneEvent struct{}

func (OutputDoneEvent) InterfaceName() string { return OutputName }
func (OutputDoneEvent) Opcode() uint16        { return 2 }
func (OutputDoneEvent) Args() []interface{}   { return nil }

type OutputScaleEvent struct {
	Factor int32
}

func (OutputScaleEvent) InterfaceName() string { return OutputName }
func (OutputScaleEvent) Opcode() uint16        { return 3 }
func (e OutputScaleEvent) Args() []interface{} { return []interface{}{e.Factor} }

type OutputNameEvent struct {
	Name string
}

func (OutputNameEvent) InterfaceName() string { return OutputName }
func (OutputNameEvent) Opcode() uint16        { return 4 }
func (e OutputNameEvent) Args() []interface{} { return []interface{}{e.Name} }

type OutputDescriptionEvent struct {
	Description string
}

func (OutputDescriptionEvent) InterfaceName() string { return OutputName }
func (OutputDescriptionEvent) Opcode() uint16        { return 5 }
func (e OutputDescriptionEvent) Args() []interface{} { return []interface{}{e.Description} }

// xdg_wm_base events

type PingEvent struct {
	Serial uint32
}

func (PingEvent) InterfaceName() string { return WmBaseName }
func (PingEvent) Opcode() uint16        { return 0 }
func (e PingEvent) Args() []interface{} { return []interface{}{e.Serial} }

// xdg_surface events

type XdgSurfaceConfigureEvent struct {
	Serial uint32
}

func (XdgSurfaceConfigureEvent) InterfaceName() string { return XdgSurfaceName }
func (XdgSurfaceConfigureEvent) Opcode() uint16        { return 0 }
func (e XdgSurfaceConfigureEvent) Args() []interface{} { return []interface{}{e.Serial} }

// xdg_toplevel events

// ToplevelConfigureEvent proposes a logical size. Zero width or height
// leaves the choice to the client.
type ToplevelConfigureEvent struct {
	Width  int32
	Height int32
	States []ToplevelState
}

func (ToplevelConfigureEvent) InterfaceName() string { return ToplevelName }
func (ToplevelConfigureEvent) Opcode() uint16        { return 0 }
func (e ToplevelConfigureEvent) Args() []interface{} {
	states := make([]uint32, len(e.States))
	for i, s := range e.States {
		states[i] = uint32(s)
	}
	return []interface{}{e.Width, e.Height, wire.PutUint32s(states...)}
}

// Has reports whether state s is set.
func (e ToplevelConfigureEvent) Has(s ToplevelState) bool {
	for _, state := range e.States {
		if state == s {
			return true
		}
	}
	return false
}

type ToplevelCloseEvent struct{}

func (ToplevelCloseEvent) InterfaceName() string { return ToplevelName }
func (ToplevelCloseEvent) Opcode() uint16        { return 1 }
func (ToplevelCloseEvent) Args() []interface{}   { return nil }

type ToplevelConfigureBoundsEvent struct {
	Width  int32
	Height int32
}

func (ToplevelConfigureBoundsEvent) InterfaceName() string { return ToplevelName }
func (ToplevelConfigureBoundsEvent) Opcode() uint16        { return 2 }
func (e ToplevelConfigureBoundsEvent) Args() []interface{} {
	return []interface{}{e.Width, e.Height}
}

type ToplevelWMCapabilitiesEvent struct {
	Capabilities []WMCapability
}

func (ToplevelWMCapabilitiesEvent) InterfaceName() string { return ToplevelName }
func (ToplevelWMCapabilitiesEvent) Opcode() uint16        { return 3 }
func (e ToplevelWMCapabilitiesEvent) Args() []interface{} {
	caps := make([]uint32, len(e.Capabilities))
	for i, c := range e.Capabilities {
		caps[i] = uint32(c)
	}
	return []interface{}{wire.PutUint32s(caps...)}
}

// Has reports whether capability c is advertised.
func (e ToplevelWMCapabilitiesEvent) Has(c WMCapability) bool {
	for _, capability := range e.Capabilities {
		if capability == c {
			return true
		}
	}
	return false
}
