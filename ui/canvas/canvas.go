// Package canvas provides the fyne widget hosting the reference board.
package canvas

import (
	"image"

	"refboard/internal/board"
	"refboard/internal/render"
	"refboard/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

// scrollPerNotch is the fyne scroll distance of one wheel notch.
const scrollPerNotch = 10.0

// BoardWidget displays a board and forwards input to it.
type BoardWidget struct {
	widget.BaseWidget

	board      *board.Board
	rasterizer *render.Rasterizer
	raster     *fynecanvas.Raster

	// Pixels per fyne unit, learned from the last raster draw.
	scale float32

	// Modifier keys held, from key and mouse events. Scroll and drag events
	// carry none of their own.
	mods board.Modifiers

	// Last rendered frame
	lastOutput *image.RGBA

	onChanged func()
	log       logrus.FieldLogger
}

var (
	_ desktop.Mouseable  = (*BoardWidget)(nil)
	_ desktop.Hoverable  = (*BoardWidget)(nil)
	_ desktop.Keyable    = (*BoardWidget)(nil)
	_ desktop.Cursorable = (*BoardWidget)(nil)
	_ fyne.Draggable     = (*BoardWidget)(nil)
	_ fyne.Scrollable    = (*BoardWidget)(nil)
)

// NewBoardWidget creates a widget for b.
func NewBoardWidget(b *board.Board, rasterizer *render.Rasterizer, log logrus.FieldLogger) *BoardWidget {
	if log == nil {
		log = logrus.StandardLogger()
	}
	bw := &BoardWidget{
		board:      b,
		rasterizer: rasterizer,
		scale:      1,
		log:        log,
	}
	bw.raster = fynecanvas.NewRaster(bw.draw)
	bw.raster.ScaleMode = fynecanvas.ImageScalePixels
	bw.ExtendBaseWidget(bw)
	return bw
}

// OnChanged sets a callback run after input changed board state such as the
// tool or grid, so surrounding controls can sync.
func (bw *BoardWidget) OnChanged(callback func()) {
	bw.onChanged = callback
}

// Board returns the hosted board.
func (bw *BoardWidget) Board() *board.Board {
	return bw.board
}

// RenderedOutput returns the last rendered frame.
func (bw *BoardWidget) RenderedOutput() *image.RGBA {
	return bw.lastOutput
}

// Update redraws the board if its state changed.
func (bw *BoardWidget) Update() {
	if bw.board.Dirty() {
		bw.raster.Refresh()
	}
}

// MinSize reports the board's desired size.
func (bw *BoardWidget) MinSize() fyne.Size {
	d := bw.board.DesiredSize()
	return fyne.NewSize(float32(d.Width), float32(d.Height))
}

// MouseDown implements desktop.Mouseable.
func (bw *BoardWidget) MouseDown(ev *desktop.MouseEvent) {
	bw.requestFocus()
	bw.mods = modifiers(ev.Modifier)
	bw.apply(bw.board.HandlePointerDown(board.PointerEvent{
		Position:  bw.toBoard(ev.Position),
		Button:    button(ev.Button),
		Modifiers: bw.mods,
	}))
}

// MouseUp implements desktop.Mouseable.
func (bw *BoardWidget) MouseUp(ev *desktop.MouseEvent) {
	bw.mods = modifiers(ev.Modifier)
	bw.apply(bw.board.HandlePointerUp(bw.pointer(ev.Position)))
}

// MouseIn implements desktop.Hoverable.
func (bw *BoardWidget) MouseIn(ev *desktop.MouseEvent) {
	bw.MouseMoved(ev)
}

// MouseMoved implements desktop.Hoverable.
func (bw *BoardWidget) MouseMoved(ev *desktop.MouseEvent) {
	bw.mods = modifiers(ev.Modifier)
	bw.apply(bw.board.HandlePointerMove(bw.pointer(ev.Position)))
}

// MouseOut implements desktop.Hoverable.
func (bw *BoardWidget) MouseOut() {}

// Dragged implements fyne.Draggable. Drags keep reaching the widget after
// the pointer leaves it, which gives the board its pointer capture.
func (bw *BoardWidget) Dragged(ev *fyne.DragEvent) {
	bw.apply(bw.board.HandlePointerMove(bw.pointer(ev.Position)))
}

// DragEnd implements fyne.Draggable.
func (bw *BoardWidget) DragEnd() {
	bw.apply(bw.board.HandlePointerUp(board.PointerEvent{Modifiers: bw.mods}))
}

// Scrolled implements fyne.Scrollable.
func (bw *BoardWidget) Scrolled(ev *fyne.ScrollEvent) {
	bw.apply(bw.board.HandleWheel(board.WheelEvent{
		Position:  bw.toBoard(ev.Position),
		Delta:     float64(ev.Scrolled.DY) / scrollPerNotch,
		Modifiers: bw.mods,
	}))
}

// FocusGained implements fyne.Focusable.
func (bw *BoardWidget) FocusGained() {}

// FocusLost implements fyne.Focusable. Held modifiers are forgotten since
// their key-up events go elsewhere.
func (bw *BoardWidget) FocusLost() {
	bw.mods = 0
}

// TypedRune implements fyne.Focusable.
func (bw *BoardWidget) TypedRune(rune) {}

// TypedKey implements fyne.Focusable.
func (bw *BoardWidget) TypedKey(ev *fyne.KeyEvent) {
	reply := bw.board.HandleKey(board.Key(ev.Name))
	if reply.Handled {
		bw.log.WithField("key", ev.Name).Debug("shortcut")
	}
	bw.apply(reply)
}

// KeyDown implements desktop.Keyable.
func (bw *BoardWidget) KeyDown(ev *fyne.KeyEvent) {
	bw.mods |= modifierKey(ev.Name)
}

// KeyUp implements desktop.Keyable.
func (bw *BoardWidget) KeyUp(ev *fyne.KeyEvent) {
	bw.mods &^= modifierKey(ev.Name)
}

// Cursor implements desktop.Cursorable.
func (bw *BoardWidget) Cursor() desktop.Cursor {
	switch {
	case bw.board.Panning():
		return desktop.HResizeCursor
	case bw.board.Tool() == board.ToolMeasure:
		return desktop.CrosshairCursor
	default:
		return desktop.DefaultCursor
	}
}

// CreateRenderer implements fyne.Widget.
func (bw *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(bw.raster)
}

// draw is the raster callback; w and h are in pixels.
func (bw *BoardWidget) draw(w, h int) image.Image {
	if size := bw.Size(); size.Width > 0 {
		bw.scale = float32(w) / size.Width
	}
	list := bw.board.Draw(float64(w), float64(h))
	bw.lastOutput = bw.rasterizer.Rasterize(list)
	return bw.lastOutput
}

// apply refreshes after a handled event and notifies listeners.
func (bw *BoardWidget) apply(reply board.Reply) {
	if !reply.Handled {
		return
	}
	bw.Update()
	if bw.onChanged != nil {
		bw.onChanged()
	}
}

func (bw *BoardWidget) requestFocus() {
	app := fyne.CurrentApp()
	if app == nil {
		return
	}
	if c := app.Driver().CanvasForObject(bw); c != nil {
		c.Focus(bw)
	}
}

func (bw *BoardWidget) pointer(pos fyne.Position) board.PointerEvent {
	return board.PointerEvent{Position: bw.toBoard(pos), Modifiers: bw.mods}
}

// toBoard converts a widget-relative position to raster pixels.
func (bw *BoardWidget) toBoard(pos fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(pos.X*bw.scale), float64(pos.Y*bw.scale))
}

func button(b desktop.MouseButton) board.Button {
	switch b {
	case desktop.MouseButtonPrimary:
		return board.ButtonLeft
	case desktop.MouseButtonTertiary:
		return board.ButtonMiddle
	case desktop.MouseButtonSecondary:
		return board.ButtonRight
	default:
		return board.ButtonNone
	}
}

func modifiers(m fyne.KeyModifier) board.Modifiers {
	var mods board.Modifiers
	if m&fyne.KeyModifierShift != 0 {
		mods |= board.ModShift
	}
	if m&fyne.KeyModifierControl != 0 {
		mods |= board.ModCtrl
	}
	if m&fyne.KeyModifierAlt != 0 {
		mods |= board.ModAlt
	}
	if m&fyne.KeyModifierSuper != 0 {
		mods |= board.ModSuper
	}
	return mods
}

func modifierKey(name fyne.KeyName) board.Modifiers {
	switch name {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		return board.ModShift
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		return board.ModCtrl
	case desktop.KeyAltLeft, desktop.KeyAltRight:
		return board.ModAlt
	case desktop.KeySuperLeft, desktop.KeySuperRight:
		return board.ModSuper
	default:
		return 0
	}
}
