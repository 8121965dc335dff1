package board

import (
	"math"
	"testing"

	"refboard/internal/drawlist"
	refimage "refboard/internal/image"
	"refboard/pkg/colorutil"
	"refboard/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawBackgroundFirst(t *testing.T) {
	b, _ := newBoard(t)
	b.SetGridEnabled(false)

	list := b.Draw(800, 600)
	require.Equal(t, 1, list.Len())

	bg, ok := list.Commands[0].(drawlist.FillRect)
	require.True(t, ok)
	assert.Equal(t, layerBackground, bg.Layer())
	assert.Equal(t, geometry.NewRect(0, 0, 800, 600), bg.Rect)
	assert.Equal(t, colorutil.Background, bg.Color)
}

func TestDrawConsumesDirtyFlag(t *testing.T) {
	b, _ := newBoard(t)
	require.True(t, b.Dirty())

	b.Draw(100, 100)
	assert.False(t, b.Dirty())

	b.ToggleGrid()
	assert.True(t, b.Dirty())
	b.Draw(100, 100)

	b.HandlePointerDown(middle(0, 0))
	b.HandlePointerMove(moveTo(5, 0))
	assert.True(t, b.Dirty())
}

func TestGridLines(t *testing.T) {
	b, _ := newBoard(t)

	xs, ys := b.GridLines(100, 60)
	assert.Equal(t, []float64{0, 20, 40, 60, 80}, xs)
	assert.Equal(t, []float64{0, 20, 40}, ys)

	list := b.Draw(100, 60)
	grid := 0
	for _, line := range drawlist.OfType[drawlist.Polyline](list) {
		if line.Layer() == layerGrid {
			grid++
			assert.Equal(t, colorutil.GridLine, line.Color)
		}
	}
	assert.Equal(t, 8, grid)
}

func TestGridLinesTrackCanvas(t *testing.T) {
	b, _ := newBoard(t)
	b.HandlePointerDown(middle(0, 0))
	b.HandlePointerMove(moveTo(7, -3))
	b.HandlePointerUp(moveTo(7, -3))
	b.HandleWheel(WheelEvent{Position: pt(33, 21), Delta: 5, Modifiers: ModCtrl})
	zoom := b.View().Zoom
	require.InDelta(t, 1.5, zoom, epsilon)

	xs, ys := b.GridLines(400, 300)
	require.NotEmpty(t, xs)
	require.NotEmpty(t, ys)
	assert.GreaterOrEqual(t, xs[0], 0.0)
	assert.Less(t, xs[0], b.GridSize()*zoom)

	onGrid := func(v float64) bool {
		cells := v / b.GridSize()
		return math.Abs(cells-math.Round(cells)) < 1e-6
	}
	for _, x := range xs {
		c := b.View().ToCanvas(pt(x, 0))
		assert.True(t, onGrid(c.X), "x=%v maps to canvas %v", x, c.X)
	}
	for _, y := range ys {
		c := b.View().ToCanvas(pt(0, y))
		assert.True(t, onGrid(c.Y), "y=%v maps to canvas %v", y, c.Y)
	}
}

func TestHiddenGridEmitsNoLines(t *testing.T) {
	b, _ := newBoard(t)
	b.SetGridEnabled(false)
	b.AddImage(placed("a", 0, 0, 10, 10))

	list := b.Draw(100, 100)
	assert.Empty(t, drawlist.OfType[drawlist.Polyline](list))
}

func TestDrawImagesInStackOrder(t *testing.T) {
	b, _ := newBoard(t)
	b.SetGridEnabled(false)
	bottom := placed("bottom", 0, 0, 50, 50)
	top := placed("top", 10, 10, 50, 50)
	top.SetOpacity(0.5)
	b.AddImage(bottom)
	b.AddImage(top)
	b.Select(bottom, false)

	list := b.Draw(200, 200)
	quads := drawlist.OfType[drawlist.TexturedQuad](list)
	require.Len(t, quads, 2)
	assert.Less(t, quads[0].Layer(), quads[1].Layer())
	assert.Equal(t, geometry.NewRect(0, 0, 50, 50), quads[0].Rect)
	assert.Equal(t, colorutil.Tint(0.5), quads[1].Tint)

	outlines := drawlist.OfType[drawlist.Polyline](list)
	require.Len(t, outlines, 1)
	assert.Greater(t, outlines[0].Layer(), quads[0].Layer())
	assert.Less(t, outlines[0].Layer(), quads[1].Layer(), "outline stays under images stacked above")
	assert.Equal(t, selectionLineWidth, outlines[0].Width)
	assert.Equal(t, geometry.NewRect(0, 0, 50, 50).Outline(), outlines[0].Points)
}

func TestDrawScalesWithView(t *testing.T) {
	b, _ := newBoard(t)
	b.SetGridEnabled(false)
	b.AddImage(placed("a", 10, 20, 100, 50))
	b.HandleWheel(WheelEvent{Position: pt(0, 0), Delta: 10, Modifiers: ModCtrl})

	quads := drawlist.OfType[drawlist.TexturedQuad](b.Draw(800, 600))
	require.Len(t, quads, 1)
	assert.InDelta(t, 20, quads[0].Rect.X, epsilon)
	assert.InDelta(t, 40, quads[0].Rect.Y, epsilon)
	assert.InDelta(t, 200, quads[0].Rect.Width, epsilon)
	assert.InDelta(t, 100, quads[0].Rect.Height, epsilon)
}

func TestDrawCullsAndSkipsHidden(t *testing.T) {
	b, factory := newBoard(t)
	b.SetGridEnabled(false)
	offscreen := placed("off", 1000, 1000, 10, 10)
	hidden := placed("hidden", 0, 0, 10, 10)
	hidden.Visible = false
	shown := placed("shown", 20, 20, 10, 10)
	b.AddImage(offscreen)
	b.AddImage(hidden)
	b.AddImage(shown)

	quads := drawlist.OfType[drawlist.TexturedQuad](b.Draw(100, 100))
	require.Len(t, quads, 1)
	assert.Equal(t, 1, factory.calls)
	assert.Equal(t, 1, b.CacheLen())
}

func TestRenderablesAreMemoized(t *testing.T) {
	b, factory := newBoard(t)
	a := placed("a", 0, 0, 64, 32)
	c := placed("c", 10, 10, 8, 8)
	b.AddImage(a)
	b.AddImage(c)

	first := drawlist.OfType[drawlist.TexturedQuad](b.Draw(200, 200))
	second := drawlist.OfType[drawlist.TexturedQuad](b.Draw(200, 200))
	assert.Equal(t, 2, factory.calls)
	require.Len(t, first, 2)
	assert.Same(t, first[0].Texture, second[0].Texture)

	w, h := first[0].Texture.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
}

func TestRemoveKeepsCacheUntilPruned(t *testing.T) {
	b, _ := newBoard(t)
	a := placed("a", 0, 0, 10, 10)
	b.AddImage(a)
	b.Draw(100, 100)

	b.RemoveImage(a)
	assert.Equal(t, 1, b.CacheLen())

	assert.Equal(t, 1, b.PruneCache())
	assert.Zero(t, b.CacheLen())
}

func TestClearDropsCache(t *testing.T) {
	b, factory := newBoard(t)
	a := placed("a", 0, 0, 10, 10)
	b.AddImage(a)
	b.Draw(100, 100)
	require.Equal(t, 1, b.CacheLen())

	b.Clear()
	assert.Zero(t, b.CacheLen())

	b.AddImage(a)
	b.Draw(100, 100)
	assert.Equal(t, 2, factory.calls)
}

func TestNilRenderableIsNotCached(t *testing.T) {
	opts := DefaultOptions()
	opts.Logger = quietLogger()
	calls := 0
	b := New(opts, RenderableFactoryFunc(func(*refimage.Image) drawlist.Texture {
		calls++
		return nil
	}))
	a := placed("a", 0, 0, 10, 10)
	b.AddImage(a)
	b.Select(a, false)

	list := b.Draw(100, 100)
	b.Draw(100, 100)
	assert.Empty(t, drawlist.OfType[drawlist.TexturedQuad](list))
	assert.Zero(t, b.CacheLen())
	assert.Equal(t, 2, calls)
}

func TestMeasureOverlay(t *testing.T) {
	b, _ := newBoard(t)
	b.SetGridEnabled(false)
	b.AddImage(placed("a", 0, 0, 10, 10))
	b.SetTool(ToolMeasure)
	b.HandlePointerDown(left(0, 0))
	b.HandlePointerDown(left(30, 40))

	list := b.Draw(200, 200)
	lines := drawlist.OfType[drawlist.Polyline](list)
	require.Len(t, lines, 1)
	assert.Equal(t, []geometry.Point2D{pt(0, 0), pt(30, 40)}, lines[0].Points)
	assert.Equal(t, colorutil.WithOpacity(colorutil.Measure, 1), lines[0].Color)

	labels := drawlist.OfType[drawlist.Text](list)
	require.Len(t, labels, 1)
	assert.Equal(t, "50.0 px", labels[0].Text)
	assertPointNear(t, pt(15, 20), labels[0].Anchor)

	quads := drawlist.OfType[drawlist.TexturedQuad](list)
	require.Len(t, quads, 1)
	assert.Greater(t, lines[0].Layer(), quads[0].Layer(), "overlay above images")
	assert.Greater(t, labels[0].Layer(), lines[0].Layer())
}

func TestMeasureOverlaySinglePoint(t *testing.T) {
	b, _ := newBoard(t)
	b.SetGridEnabled(false)
	b.SetTool(ToolMeasure)
	b.HandlePointerDown(left(5, 5))

	list := b.Draw(100, 100)
	lines := drawlist.OfType[drawlist.Polyline](list)
	require.Len(t, lines, 1)
	assert.Len(t, lines[0].Points, 1)
	assert.Empty(t, drawlist.OfType[drawlist.Text](list))
}

func TestMeasureOverlayOnlyWhileMeasuring(t *testing.T) {
	b, _ := newBoard(t)
	b.SetGridEnabled(false)
	b.SetTool(ToolMeasure)
	b.HandlePointerDown(left(0, 0))
	b.HandlePointerDown(left(30, 40))
	b.SetTool(ToolSelect)

	list := b.Draw(100, 100)
	assert.Empty(t, drawlist.OfType[drawlist.Polyline](list))
	assert.Empty(t, drawlist.OfType[drawlist.Text](list))
	assert.Equal(t, 2, b.Measurement().Len(), "points survive until Measure is re-entered")
}
