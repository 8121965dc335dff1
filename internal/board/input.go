package board

import (
	"refboard/pkg/geometry"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// Has reports whether every modifier in m2 is held.
func (m Modifiers) Has(m2 Modifiers) bool {
	return m&m2 == m2
}

// PointerEvent is a pointer down, move or up in screen space.
type PointerEvent struct {
	Position  geometry.Point2D
	Button    Button
	Modifiers Modifiers
}

// WheelEvent is a mouse wheel step at a screen position.
type WheelEvent struct {
	Position  geometry.Point2D
	Delta     float64 // Positive zooms in
	Modifiers Modifiers
}

// Key identifies a key. Values match fyne.KeyName.
type Key string

const (
	KeyG      Key = "G"
	KeyM      Key = "M"
	KeyDelete Key = "Delete"
	KeyEscape Key = "Escape"
)

// digit returns the value of a '1'..'9' key.
func (k Key) digit() (int, bool) {
	if len(k) != 1 || k[0] < '1' || k[0] > '9' {
		return 0, false
	}
	return int(k[0] - '0'), true
}

// Reply tells the host whether an event was consumed and how pointer
// capture changes.
type Reply struct {
	Handled bool
	Capture bool // Route all pointer events to the board until Release
	Release bool
}

// HandlePointerDown starts a gesture.
func (b *Board) HandlePointerDown(ev PointerEvent) Reply {
	if b.session != sessionNone {
		// One session per gesture.
		return Reply{Handled: true}
	}

	canvas := b.view.ToCanvas(ev.Position)
	switch ev.Button {
	case ButtonLeft:
		return b.handlers[b.tool].pointerDown(b, ev, canvas)
	case ButtonMiddle:
		b.session = sessionPan
		b.lastScreen = ev.Position
		return Reply{Handled: true, Capture: true}
	}
	return Reply{}
}

// HandlePointerMove continues the active gesture, or tracks the pointer
// while idle.
func (b *Board) HandlePointerMove(ev PointerEvent) Reply {
	canvas := b.view.ToCanvas(ev.Position)
	switch b.session {
	case sessionPan:
		b.view.Pan(ev.Position.Sub(b.lastScreen))
		b.lastScreen = ev.Position
		b.invalidate()
		return Reply{Handled: true}
	case sessionMove:
		return b.handlers[b.tool].pointerMove(b, ev, canvas)
	}

	b.lastCanvas = canvas
	return Reply{}
}

// HandlePointerUp ends the active gesture.
func (b *Board) HandlePointerUp(PointerEvent) Reply {
	if b.session == sessionNone {
		return Reply{}
	}
	b.endSession()
	return Reply{Handled: true, Release: true}
}

// HandleWheel zooms around the pointer while ctrl is held.
func (b *Board) HandleWheel(ev WheelEvent) Reply {
	if !ev.Modifiers.Has(ModCtrl) {
		return Reply{}
	}
	if b.view.ZoomAt(ev.Delta, ev.Position) {
		b.invalidate()
	}
	return Reply{Handled: true}
}

// HandleKey runs a keyboard shortcut.
func (b *Board) HandleKey(key Key) Reply {
	switch key {
	case KeyG:
		b.ToggleGrid()
	case KeyM:
		b.SetTool(ToolMeasure)
	case KeyDelete:
		b.DeleteSelected()
	case KeyEscape:
		b.SetTool(ToolSelect)
	default:
		d, ok := key.digit()
		if !ok {
			return Reply{}
		}
		b.SetSelectedOpacity(float64(d) / 10)
	}
	return Reply{Handled: true}
}

// Dragging reports whether a pan or move gesture is active.
func (b *Board) Dragging() bool {
	return b.session != sessionNone
}

// Panning reports whether a pan gesture is active.
func (b *Board) Panning() bool {
	return b.session == sessionPan
}

// LastCanvasPosition returns the last pointer position in canvas space.
func (b *Board) LastCanvasPosition() geometry.Point2D {
	return b.lastCanvas
}

func (b *Board) beginMove(canvas geometry.Point2D) {
	b.session = sessionMove
	b.dragAnchor = canvas
	b.lastCanvas = canvas
	b.dragOrigins = b.scene.Positions()
}

func (b *Board) endSession() {
	b.session = sessionNone
	b.dragOrigins = nil
}
