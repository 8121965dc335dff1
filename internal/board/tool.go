package board

import (
	"refboard/pkg/geometry"
)

// Tool represents the current interaction tool.
type Tool int

const (
	ToolSelect Tool = iota
	ToolMove
	ToolMeasure
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "Select"
	case ToolMove:
		return "Move"
	case ToolMeasure:
		return "Measure"
	default:
		return "Unknown"
	}
}

// ParseTool returns the tool with the given name.
func ParseTool(name string) (Tool, bool) {
	for _, t := range Tools() {
		if t.String() == name {
			return t, true
		}
	}
	return ToolSelect, false
}

// Tools lists the tools in toolbar order.
func Tools() []Tool {
	return []Tool{ToolSelect, ToolMove, ToolMeasure}
}

// toolHandler implements the left-button behaviour of one tool.
// pointerMove is only called while a move session started by pointerDown
// is active.
type toolHandler interface {
	pointerDown(b *Board, ev PointerEvent, canvas geometry.Point2D) Reply
	pointerMove(b *Board, ev PointerEvent, canvas geometry.Point2D) Reply
}

// selectTool selects images and drags the selection. Select and Move share it.
type selectTool struct{}

func (selectTool) pointerDown(b *Board, ev PointerEvent, canvas geometry.Point2D) Reply {
	hit := b.scene.HitTest(canvas)
	if hit == nil {
		// Clicking empty canvas keeps the selection.
		return Reply{}
	}
	b.scene.Select(hit, ev.Modifiers.Has(ModCtrl))
	b.beginMove(canvas)
	b.invalidate()
	return Reply{Handled: true, Capture: true}
}

func (selectTool) pointerMove(b *Board, ev PointerEvent, canvas geometry.Point2D) Reply {
	// Measured from the anchor, not the last move.
	delta := canvas.Sub(b.dragAnchor)
	if ev.Modifiers.Has(ModShift) {
		delta = delta.DominantAxis()
	}
	b.scene.PlaceSelected(b.dragOrigins, delta, b.snapSize())
	b.lastCanvas = canvas
	b.invalidate()
	return Reply{Handled: true}
}

// measureTool records measurement points.
type measureTool struct{}

func (measureTool) pointerDown(b *Board, ev PointerEvent, canvas geometry.Point2D) Reply {
	if ev.Modifiers.Has(ModCtrl) {
		b.measure.Reset()
	} else {
		b.measure.Add(canvas)
	}
	b.invalidate()
	return Reply{Handled: true}
}

func (measureTool) pointerMove(*Board, PointerEvent, geometry.Point2D) Reply {
	// A drag begun under Select keeps its capture but stops moving images.
	return Reply{Handled: true}
}
