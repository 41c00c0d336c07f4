package protocol

import (
	"fmt"

	"github.com/bnema/hyacinth/internal/wire"
)

// DecodeEvent decodes the payload of event opcode on an object of iface into
// its typed event. Malformed payloads and unknown opcodes are wire.ErrDecode.
func DecodeEvent(iface *Interface, opcode uint16, payload []byte) (Event, error) {
	msg, ok := iface.Event(opcode)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no event %d", wire.ErrDecode, iface.Name, opcode)
	}
	args, err := wire.DecodeArgs(msg, payload)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", iface.Name, msg.Name, err)
	}

	switch iface.Name {
	case DisplayName:
		return decodeDisplayEvent(opcode, args)
	case RegistryName:
		return decodeRegistryEvent(opcode, args)
	case CallbackName:
		return CallbackDoneEvent{Data: args.Uint(0)}, nil
	case SurfaceName:
		return decodeSurfaceEvent(opcode, args)
	case OutputName:
		return decodeOutputEvent(opcode, args)
	case WmBaseName:
		return PingEvent{Serial: args.Uint(0)}, nil
	case XdgSurfaceName:
		return XdgSurfaceConfigureEvent{Serial: args.Uint(0)}, nil
	case ToplevelName:
		return decodeToplevelEvent(opcode, args)
	}
	return nil, fmt.Errorf("%w: no event types for interface %s", wire.ErrDecode, iface.Name)
}

func decodeDisplayEvent(opcode uint16, args wire.Args) (Event, error) {
	if opcode == 0 {
		return ErrorEvent{ObjectID: args.Object(0), Code: args.Uint(1), Message: args.String(2)}, nil
	}
	return DeleteIDEvent{ID: args.Uint(0)}, nil
}

func decodeRegistryEvent(opcode uint16, args wire.Args) (Event, error) {
	if opcode == 0 {
		return GlobalEvent{Name: args.Uint(0), Interface: args.String(1), Version: args.Uint(2)}, nil
	}
	return GlobalRemoveEvent{Name: args.Uint(0)}, nil
}

func decodeSurfaceEvent(opcode uint16, args wire.Args) (Event, error) {
	switch opcode {
	case 0:
		return SurfaceEnterEvent{Output: args.Object(0)}, nil
	case 1:
		return SurfaceLeaveEvent{Output: args.Object(0)}, nil
	case 2:
		return SurfacePreferredBufferScaleEvent{Factor: args.Int(0)}, nil
	default:
		return SurfacePreferredBufferTransformEvent{Transform: args.Uint(0)}, nil
	}
}

func decodeOutputEvent(opcode uint16, args wire.Args) (Event, error) {
	switch opcode {
	case 0:
		return OutputGeometryEvent{
			X:              args.Int(0),
			Y:              args.Int(1),
			PhysicalWidth:  args.Int(2),
			PhysicalHeight: args.Int(3),
			Subpixel:       args.Int(4),
			Make:           args.String(5),
			Model:          args.String(6),
			Transform:      args.Int(7),
		}, nil
	case 1:
		return OutputModeEvent{
			Flags:   args.Uint(0),
			Width:   args.Int(1),
			Height:  args.Int(2),
			Refresh: args.Int(3),
		}, nil
	case 2:
		return OutputDoneEvent{}, nil
	case 3:
		return OutputScaleEvent{Factor: args.Int(0)}, nil
	case 4:
		return OutputNameEvent{Name: args.String(0)}, nil
	default:
		return OutputDescriptionEvent{Description: args.String(0)}, nil
	}
}

func decodeToplevelEvent(opcode uint16, args wire.Args) (Event, error) {
	switch opcode {
	case 0:
		raw, err := wire.Uint32s(args.Array(2))
		if err != nil {
			return nil, fmt.Errorf("xdg_toplevel.configure states: %w", err)
		}
		states := make([]ToplevelState, len(raw))
		for i, v := range raw {
			states[i] = ToplevelState(v)
		}
		return ToplevelConfigureEvent{Width: args.Int(0), Height: args.Int(1), States: states}, nil
	case 1:
		return ToplevelCloseEvent{}, nil
	case 2:
		return ToplevelConfigureBoundsEvent{Width: args.Int(0), Height: args.Int(1)}, nil
	default:
		raw, err := wire.Uint32s(args.Array(0))
		if err != nil {
			return nil, fmt.Errorf("xdg_toplevel.wm_capabilities: %w", err)
		}
		caps := make([]WMCapability, len(raw))
		for i, v := range raw {
			caps[i] = WMCapability(v)
		}
		return ToplevelWMCapabilitiesEvent{Capabilities: caps}, nil
	}
}

// EncodeEvent marshals ev as sent by the compositor to objectID. Clients
// never send events; the in-memory compositor used in tests does.
func EncodeEvent(objectID uint32, ev Event) ([]byte, error) {
	iface := Lookup(ev.InterfaceName())
	if iface == nil {
		return nil, fmt.Errorf("%w: unknown interface %s", wire.ErrSignature, ev.InterfaceName())
	}
	msg, ok := iface.Event(ev.Opcode())
	if !ok {
		return nil, fmt.Errorf("%w: %s has no event %d", wire.ErrSignature, iface.Name, ev.Opcode())
	}
	return wire.Encode(objectID, ev.Opcode(), msg, ev.Args()...)
}
