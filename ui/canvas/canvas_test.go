package canvas

import (
	"image"
	"io"
	"testing"

	"refboard/internal/board"
	refimage "refboard/internal/image"
	"refboard/internal/render"
	"refboard/pkg/geometry"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWidget(t *testing.T) *BoardWidget {
	t.Helper()
	test.NewApp()

	logger := logrus.New()
	logger.Out = io.Discard
	opts := board.DefaultOptions()
	opts.Logger = logger
	b := board.New(opts, render.NewFactory(logger))

	r, err := render.NewRasterizer()
	require.NoError(t, err)
	return NewBoardWidget(b, r, logger)
}

func mouse(x, y float32, btn desktop.MouseButton, mods fyne.KeyModifier) *desktop.MouseEvent {
	ev := &desktop.MouseEvent{Button: btn, Modifier: mods}
	ev.Position = fyne.NewPos(x, y)
	return ev
}

func TestMinSizeIsDesiredSize(t *testing.T) {
	bw := newWidget(t)
	assert.Equal(t, fyne.NewSize(800, 600), bw.MinSize())
}

func TestMiddleDragPans(t *testing.T) {
	bw := newWidget(t)

	bw.MouseDown(mouse(10, 10, desktop.MouseButtonTertiary, 0))
	assert.Equal(t, desktop.HResizeCursor, bw.Cursor())
	bw.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(60, 30)}})
	bw.DragEnd()
	bw.MouseUp(mouse(60, 30, desktop.MouseButtonTertiary, 0))

	assert.Equal(t, geometry.NewPoint2D(50, 20), bw.Board().View().Offset)
	assert.False(t, bw.Board().Dragging())
}

func TestCtrlScrollZooms(t *testing.T) {
	bw := newWidget(t)
	changes := 0
	bw.OnChanged(func() { changes++ })

	scroll := &fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 10}}
	scroll.Position = fyne.NewPos(100, 100)
	bw.Scrolled(scroll)
	assert.Equal(t, 1.0, bw.Board().View().Zoom, "plain wheel does not zoom")
	assert.Zero(t, changes)

	bw.KeyDown(&fyne.KeyEvent{Name: desktop.KeyControlLeft})
	bw.Scrolled(scroll)
	assert.InDelta(t, 1.1, bw.Board().View().Zoom, 1e-9)
	assert.Equal(t, 1, changes)

	bw.KeyUp(&fyne.KeyEvent{Name: desktop.KeyControlLeft})
	bw.Scrolled(scroll)
	assert.InDelta(t, 1.1, bw.Board().View().Zoom, 1e-9)
}

func TestClickSelectsAndDragMoves(t *testing.T) {
	bw := newWidget(t)
	b := bw.Board()
	b.SetGridEnabled(false)
	img := refimage.New(image.NewRGBA(image.Rect(0, 0, 100, 100)), "a", "")
	b.AddImage(img)

	bw.MouseDown(mouse(50, 50, desktop.MouseButtonPrimary, 0))
	require.True(t, img.Selected)
	bw.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(70, 55)}})
	bw.MouseUp(mouse(70, 55, desktop.MouseButtonPrimary, 0))

	assert.Equal(t, geometry.NewPoint2D(20, 5), img.Position)
}

func TestShiftHeldDuringDrag(t *testing.T) {
	bw := newWidget(t)
	b := bw.Board()
	b.SetGridEnabled(false)
	img := refimage.New(image.NewRGBA(image.Rect(0, 0, 100, 100)), "a", "")
	b.AddImage(img)

	bw.MouseDown(mouse(50, 50, desktop.MouseButtonPrimary, 0))
	bw.KeyDown(&fyne.KeyEvent{Name: desktop.KeyShiftRight})
	bw.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(80, 60)}})
	assert.Equal(t, geometry.NewPoint2D(30, 0), img.Position)

	bw.FocusLost()
	bw.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(80, 60)}})
	assert.Equal(t, geometry.NewPoint2D(30, 10), img.Position)
}

func TestKeysReachBoard(t *testing.T) {
	bw := newWidget(t)
	changes := 0
	bw.OnChanged(func() { changes++ })

	bw.TypedKey(&fyne.KeyEvent{Name: fyne.KeyM})
	assert.Equal(t, board.ToolMeasure, bw.Board().Tool())
	assert.Equal(t, desktop.CrosshairCursor, bw.Cursor())

	bw.TypedKey(&fyne.KeyEvent{Name: fyne.KeyG})
	assert.False(t, bw.Board().GridEnabled())

	bw.TypedKey(&fyne.KeyEvent{Name: fyne.KeyEscape})
	assert.Equal(t, board.ToolSelect, bw.Board().Tool())
	assert.Equal(t, desktop.DefaultCursor, bw.Cursor())

	bw.TypedKey(&fyne.KeyEvent{Name: fyne.KeyF1})
	assert.Equal(t, 3, changes)
}

func TestDigitKeySetsOpacity(t *testing.T) {
	bw := newWidget(t)
	img := refimage.New(image.NewRGBA(image.Rect(0, 0, 10, 10)), "a", "")
	bw.Board().AddImage(img)
	bw.Board().Select(img, false)

	bw.TypedKey(&fyne.KeyEvent{Name: fyne.Key5})
	assert.Equal(t, 0.5, img.Opacity)
}

func TestDrawRendersFrame(t *testing.T) {
	bw := newWidget(t)
	bw.Board().AddImage(refimage.New(image.NewRGBA(image.Rect(0, 0, 10, 10)), "a", ""))

	out := bw.draw(64, 48)
	assert.Equal(t, image.Rect(0, 0, 64, 48), out.Bounds())
	assert.Same(t, bw.RenderedOutput(), out)
	assert.False(t, bw.Board().Dirty())
	assert.Equal(t, 1, bw.Board().CacheLen())
}

func TestDrawLearnsPixelScale(t *testing.T) {
	bw := newWidget(t)
	bw.Resize(fyne.NewSize(100, 50))
	bw.draw(200, 100)

	bw.MouseDown(mouse(10, 10, desktop.MouseButtonTertiary, 0))
	bw.MouseMoved(mouse(20, 10, 0, 0))
	assert.Equal(t, geometry.NewPoint2D(20, 0), bw.Board().View().Offset)
}

func TestButtonMapping(t *testing.T) {
	assert.Equal(t, board.ButtonLeft, button(desktop.MouseButtonPrimary))
	assert.Equal(t, board.ButtonMiddle, button(desktop.MouseButtonTertiary))
	assert.Equal(t, board.ButtonRight, button(desktop.MouseButtonSecondary))

	mods := modifiers(fyne.KeyModifierShift | fyne.KeyModifierControl)
	assert.True(t, mods.Has(board.ModShift|board.ModCtrl))
	assert.False(t, mods.Has(board.ModAlt))
}
