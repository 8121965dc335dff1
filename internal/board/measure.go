package board

import (
	"fmt"
	"slices"

	"refboard/pkg/geometry"
)

// maxMeasurePoints bounds the measurement window.
const maxMeasurePoints = 2

// Measurement keeps the most recent measurement points in canvas space.
type Measurement struct {
	points []geometry.Point2D
}

// Add appends p, evicting the oldest point once the window is full.
func (m *Measurement) Add(p geometry.Point2D) {
	m.points = append(m.points, p)
	if len(m.points) > maxMeasurePoints {
		m.points = slices.Delete(m.points, 0, len(m.points)-maxMeasurePoints)
	}
}

// Reset removes every point.
func (m *Measurement) Reset() {
	m.points = nil
}

// Len returns the number of recorded points.
func (m *Measurement) Len() int {
	return len(m.points)
}

// Points returns a copy of the recorded points, oldest first.
func (m *Measurement) Points() []geometry.Point2D {
	return slices.Clone(m.points)
}

// Distance returns the canvas-space distance between the two points.
func (m *Measurement) Distance() (float64, bool) {
	if len(m.points) != maxMeasurePoints {
		return 0, false
	}
	return m.points[0].Distance(m.points[1]), true
}

// Midpoint returns the canvas-space midpoint of the two points.
func (m *Measurement) Midpoint() (geometry.Point2D, bool) {
	if len(m.points) != maxMeasurePoints {
		return geometry.Point2D{}, false
	}
	return m.points[0].Midpoint(m.points[1]), true
}

// Label formats the distance for display.
func (m *Measurement) Label() string {
	d, ok := m.Distance()
	if !ok {
		return ""
	}
	return FormatDistance(d)
}

// FormatDistance formats a canvas distance with one decimal and a unit.
func FormatDistance(d float64) string {
	return fmt.Sprintf("%.1f px", d)
}
