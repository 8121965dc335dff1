package board

import (
	"math"

	"refboard/internal/drawlist"
	"refboard/pkg/colorutil"
	"refboard/pkg/geometry"
)

// Fixed layers. Images take two layers each, starting at layerImages.
const (
	layerBackground = iota
	layerGrid
	layerImages
)

const (
	gridLineWidth      = 1.0
	selectionLineWidth = 2.0
	measureLineWidth   = 2.0
	labelSize          = 12.0
)

// Draw emits the draw list for a viewport of the given size and clears the
// dirty flag. Drawing creates renderables for images seen for the first time.
func (b *Board) Draw(width, height float64) *drawlist.List {
	list := drawlist.New(width, height)
	viewport := geometry.NewRect(0, 0, width, height)

	list.Add(drawlist.FillRect{
		Layered: drawlist.Layered{Z: layerBackground},
		Rect:    viewport,
		Color:   colorutil.Background,
	})

	if b.gridEnabled {
		b.drawGrid(list, viewport)
	}

	next := b.drawImages(list, viewport)

	if b.tool == ToolMeasure && b.measure.Len() > 0 {
		b.drawMeasurement(list, next)
	}

	b.dirty = false
	return list
}

// GridLines returns the screen x coordinates of the vertical grid lines and
// the y coordinates of the horizontal ones for the viewport. Every line is
// the screen image of a canvas multiple of the grid size, so the phase is
// (offset*zoom) mod spacing and the grid stays fixed under the images.
func (b *Board) GridLines(width, height float64) (xs, ys []float64) {
	spacing := b.gridSize * b.view.Zoom
	if spacing <= 0 {
		return nil, nil
	}
	origin := b.view.ToScreen(geometry.Point2D{})
	for x := firstLine(origin.X, spacing); x < width; x += spacing {
		xs = append(xs, x)
	}
	for y := firstLine(origin.Y, spacing); y < height; y += spacing {
		ys = append(ys, y)
	}
	return xs, ys
}

// firstLine returns the smallest non-negative screen coordinate congruent to
// origin modulo spacing.
func firstLine(origin, spacing float64) float64 {
	start := math.Mod(origin, spacing)
	if start < 0 {
		start += spacing
	}
	return start
}

func (b *Board) drawGrid(list *drawlist.List, viewport geometry.Rect) {
	xs, ys := b.GridLines(viewport.Width, viewport.Height)
	for _, x := range xs {
		list.Add(drawlist.Polyline{
			Layered: drawlist.Layered{Z: layerGrid},
			Points:  []geometry.Point2D{{X: x, Y: 0}, {X: x, Y: viewport.Height}},
			Color:   colorutil.GridLine,
			Width:   gridLineWidth,
		})
	}
	for _, y := range ys {
		list.Add(drawlist.Polyline{
			Layered: drawlist.Layered{Z: layerGrid},
			Points:  []geometry.Point2D{{X: 0, Y: y}, {X: viewport.Width, Y: y}},
			Color:   colorutil.GridLine,
			Width:   gridLineWidth,
		})
	}
}

// drawImages emits the visible images bottom to top and returns the first
// free layer above them.
func (b *Board) drawImages(list *drawlist.List, viewport geometry.Rect) int {
	z := layerImages
	for _, img := range b.scene.Images() {
		if !img.Visible {
			continue
		}
		screen := b.view.ScreenRect(img.Bounds())
		if !viewport.Intersects(screen) {
			continue
		}

		if tex := b.cache.get(img); tex != nil {
			list.Add(drawlist.TexturedQuad{
				Layered: drawlist.Layered{Z: z},
				Rect:    screen,
				Texture: tex,
				Tint:    colorutil.Tint(img.Opacity),
			})
		}
		if img.Selected {
			list.Add(drawlist.Polyline{
				Layered: drawlist.Layered{Z: z + 1},
				Points:  screen.Outline(),
				Color:   colorutil.WithOpacity(colorutil.Selection, 1),
				Width:   selectionLineWidth,
			})
		}
		z += 2
	}
	return z
}

func (b *Board) drawMeasurement(list *drawlist.List, z int) {
	points := b.measure.Points()
	for i, p := range points {
		points[i] = b.view.ToScreen(p)
	}
	list.Add(drawlist.Polyline{
		Layered: drawlist.Layered{Z: z},
		Points:  points,
		Color:   colorutil.WithOpacity(colorutil.Measure, 1),
		Width:   measureLineWidth,
	})

	mid, ok := b.measure.Midpoint()
	if !ok {
		return
	}
	list.Add(drawlist.Text{
		Layered: drawlist.Layered{Z: z + 1},
		Anchor:  b.view.ToScreen(mid),
		Text:    b.measure.Label(),
		Size:    labelSize,
		Color:   colorutil.WithOpacity(colorutil.Label, 1),
	})
}
