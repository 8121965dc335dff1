// Package view maps between canvas space and screen space.
package view

import (
	"math"

	"refboard/pkg/geometry"
)

const (
	MinZoom = 0.1
	MaxZoom = 5.0

	// WheelStep is the zoom change per unit of wheel delta.
	WheelStep = 0.1
)

// Transform holds the pan offset and zoom factor of a view.
// The offset is a canvas-space translation applied before zooming.
type Transform struct {
	Offset geometry.Point2D
	Zoom   float64
}

// New returns the identity view.
func New() Transform {
	return Transform{Zoom: 1.0}
}

// ToCanvas converts a screen point to canvas space.
func (t Transform) ToCanvas(screen geometry.Point2D) geometry.Point2D {
	return screen.Div(t.Zoom).Sub(t.Offset)
}

// ToScreen converts a canvas point to screen space.
func (t Transform) ToScreen(canvas geometry.Point2D) geometry.Point2D {
	return canvas.Add(t.Offset).Scale(t.Zoom)
}

// ScreenRect converts a canvas rectangle to screen space.
func (t Transform) ScreenRect(r geometry.Rect) geometry.Rect {
	return geometry.RectFromPoints(t.ToScreen(r.TopLeft()), r.Size().Scale(t.Zoom))
}

// Pan moves the view by a screen-space delta.
func (t *Transform) Pan(delta geometry.Point2D) {
	t.Offset = t.Offset.Add(delta.Div(t.Zoom))
}

// ZoomAt changes the zoom by wheel*WheelStep, keeping the canvas point under
// the screen position anchor fixed. It reports whether the zoom changed.
func (t *Transform) ZoomAt(wheel float64, anchor geometry.Point2D) bool {
	newZoom := Clamp(t.Zoom + wheel*WheelStep)
	if newZoom == t.Zoom {
		return false
	}
	pre := t.ToCanvas(anchor)
	t.Zoom = newZoom
	post := t.ToCanvas(anchor)
	t.Offset = t.Offset.Add(post.Sub(pre))
	return true
}

// SetZoom sets the zoom level directly, clamped to [MinZoom, MaxZoom].
func (t *Transform) SetZoom(zoom float64) {
	t.Zoom = Clamp(zoom)
}

// Reset restores the identity view.
func (t *Transform) Reset() {
	*t = New()
}

// Clamp limits zoom to [MinZoom, MaxZoom].
func Clamp(zoom float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, zoom))
}
