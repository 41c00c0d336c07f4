package protocol

// Listener receives the decoded events of one object. Exactly one listener
// is installed per object; events for objects without one are dropped.
type Listener interface {
	HandleEvent(ev Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ev Event)

func (f ListenerFunc) HandleEvent(ev Event) { f(ev) }

// RegistryListener handles wl_registry events
type RegistryListener interface {
	HandleRegistryGlobal(ev GlobalEvent)
	HandleRegistryGlobalRemove(ev GlobalRemoveEvent)
}

// RegistryHandler routes wl_registry events to l by opcode.
func RegistryHandler(l RegistryListener) Listener {
	return ListenerFunc(func(ev Event) {
		switch e := ev.(type) {
		case GlobalEvent:
			l.HandleRegistryGlobal(e)
		case GlobalRemoveEvent:
			l.HandleRegistryGlobalRemove(e)
		}
	})
}

// CallbackHandler calls done with the callback data of wl_callback.done.
func CallbackHandler(done func(data uint32)) Listener {
	return ListenerFunc(func(ev Event) {
		if e, ok := ev.(CallbackDoneEvent); ok {
			done(e.Data)
		}
	})
}

// SurfaceListener handles wl_surface events
type SurfaceListener interface {
	HandleSurfaceEnter(ev SurfaceEnterEvent)
	HandleSurfaceLeave(ev SurfaceLeaveEvent)
	HandleSurfacePreferredBufferScale(ev SurfacePreferredBufferScaleEvent)
	HandleSurfacePreferredBufferTransform(ev SurfacePreferredBufferTransformEvent)
}

func SurfaceHandler(l SurfaceListener) Listener {
	return ListenerFunc(func(ev Event) {
		switch e := ev.(type) {
		case SurfaceEnterEvent:
			l.HandleSurfaceEnter(e)
		case SurfaceLeaveEvent:
			l.HandleSurfaceLeave(e)
		case SurfacePreferredBufferScaleEvent:
			l.HandleSurfacePreferredBufferScale(e)
		case SurfacePreferredBufferTransformEvent:
			l.HandleSurfacePreferredBufferTransform(e)
		}
	})
}

// OutputListener handles wl_output events
type OutputListener interface {
	HandleOutputGeometry(ev OutputGeometryEvent)
	HandleOutputMode(ev OutputModeEvent)
	HandleOutputDone(ev OutputDoneEvent)
	HandleOutputScale(ev OutputScaleEvent)
	HandleOutputName(ev OutputNameEvent)
	HandleOutputDescription(ev OutputDescriptionEvent)
}

func OutputHandler(l OutputListener) Listener {
	return ListenerFunc(func(ev Event) {
		switch e := ev.(type) {
		case OutputGeometryEvent:
			l.HandleOutputGeometry(e)
		case OutputModeEvent:
			l.HandleOutputMode(e)
		case OutputDoneEvent:
			l.HandleOutputDone(e)
		case OutputScaleEvent:
			l.HandleOutputScale(e)
		case OutputNameEvent:
			l.HandleOutputName(e)
		case OutputDescriptionEvent:
			l.HandleOutputDescription(e)
		}
	})
}

// WmBaseListener handles xdg_wm_base events
type WmBaseListener interface {
	HandleWmBasePing(ev PingEvent)
}

func WmBaseHandler(l WmBaseListener) Listener {
	return ListenerFunc(func(ev Event) {
		if e, ok := ev.(PingEvent); ok {
			l.HandleWmBasePing(e)
		}
	})
}

// XdgSurfaceListener handles xdg_surface events
type XdgSurfaceListener interface {
	HandleXdgSurfaceConfigure(ev XdgSurfaceConfigureEvent)
}

func XdgSurfaceHandler(l XdgSurfaceListener) Listener {
	return ListenerFunc(func(ev Event) {
		if e, ok := ev.(XdgSurfaceConfigureEvent); ok {
			l.HandleXdgSurfaceConfigure(e)
		}
	})
}

// ToplevelListener handles xdg_toplevel events
type ToplevelListener interface {
	HandleToplevelConfigure(ev ToplevelConfigureEvent)
	HandleToplevelClose(ev ToplevelCloseEvent)
	HandleToplevelConfigureBounds(ev ToplevelConfigureBoundsEvent)
	HandleToplevelWMCapabilities(ev ToplevelWMCapabilitiesEvent)
}

func ToplevelHandler(l ToplevelListener) Listener {
	return ListenerFunc(func(ev Event) {
		switch e := ev.(type) {
		case ToplevelConfigureEvent:
			l.HandleToplevelConfigure(e)
		case ToplevelCloseEvent:
			l.HandleToplevelClose(e)
		case ToplevelConfigureBoundsEvent:
			l.HandleToplevelConfigureBounds(e)
		case ToplevelWMCapabilitiesEvent:
			l.HandleToplevelWMCapabilities(e)
		}
	})
}
