package window

import (
	"fmt"

	"github.com/bnema/hyacinth/internal/logger"
	"github.com/bnema/hyacinth/internal/protocol"
)

// OutputInfo contains information about a Wayland output (monitor)
type OutputInfo struct {
	Name           string
	Description    string
	Make           string
	Model          string
	X              int32
	Y              int32
	PhysicalWidth  int32
	PhysicalHeight int32
	Transform      int32
	ModeWidth      int32
	ModeHeight     int32
	Refresh        int32 // mHz
	Scale          int32
	Done           bool
}

// outputTracker implements protocol.OutputListener for the bound output
type outputTracker struct {
	info OutputInfo
}

func newOutputTracker() *outputTracker {
	return &outputTracker{info: OutputInfo{Scale: 1}}
}

func (o *outputTracker) scale() int32 {
	if o.info.Scale < 1 {
		return 1
	}
	return o.info.Scale
}

func (o *outputTracker) reset() {
	o.info = OutputInfo{Scale: 1}
}

func (o *outputTracker) HandleOutputGeometry(ev protocol.OutputGeometryEvent) {
	o.info.X = ev.X
	o.info.Y = ev.Y
	o.info.PhysicalWidth = ev.PhysicalWidth
	o.info.PhysicalHeight = ev.PhysicalHeight
	o.info.Make = ev.Make
	o.info.Model = ev.Model
	o.info.Transform = ev.Transform
}

func (o *outputTracker) HandleOutputMode(ev protocol.OutputModeEvent) {
	// Only the current mode describes the output
	if ev.Flags&protocol.OutputModeCurrent == 0 {
		return
	}
	o.info.ModeWidth = ev.Width
	o.info.ModeHeight = ev.Height
	o.info.Refresh = ev.Refresh
}

func (o *outputTracker) HandleOutputDone(protocol.OutputDoneEvent) {
	o.info.Done = true
	logger.Debug("Output described",
		"name", o.info.Name,
		"mode", formatSize(o.info.ModeWidth, o.info.ModeHeight),
		"scale", o.info.Scale,
		"model", o.info.Make+" "+o.info.Model)
}

func (o *outputTracker) HandleOutputScale(ev protocol.OutputScaleEvent) {
	if ev.Factor < 1 {
		logger.Warn("Ignoring invalid output scale", "factor", ev.Factor)
		return
	}
	o.info.Scale = ev.Factor
}

func (o *outputTracker) HandleOutputName(ev protocol.OutputNameEvent) {
	o.info.Name = ev.Name
}

func (o *outputTracker) HandleOutputDescription(ev protocol.OutputDescriptionEvent) {
	o.info.Description = ev.Description
}

func formatSize(w, h int32) string {
	return fmt.Sprintf("%dx%d", w, h)
}
