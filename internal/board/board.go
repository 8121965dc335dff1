// Package board implements the reference board: view transform, scene,
// tool state machine and per-frame draw-list generation.
//
// A Board is not safe for concurrent use. The host owns it from its UI
// goroutine, forwards input through the Handle* methods and calls Draw once
// per frame while Dirty reports true.
package board

import (
	refimage "refboard/internal/image"
	"refboard/internal/scene"
	"refboard/internal/view"
	"refboard/pkg/geometry"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Default settings, matching the reference viewer.
const (
	DefaultGridSize = 20.0
)

var (
	DefaultPlacement   = geometry.NewPoint2D(400, 300)
	DefaultDesiredSize = geometry.NewSize(800, 600)
)

// Options configure a new Board.
type Options struct {
	GridSize    float64
	GridEnabled bool
	GridSnap    bool // Snap dragged images while the grid is shown

	// Placement is the canvas point imported images are centered on.
	Placement   geometry.Point2D
	DesiredSize geometry.Size

	Logger logrus.FieldLogger
}

// DefaultOptions returns the reference viewer's settings.
func DefaultOptions() Options {
	return Options{
		GridSize:    DefaultGridSize,
		GridEnabled: true,
		GridSnap:    true,
		Placement:   DefaultPlacement,
		DesiredSize: DefaultDesiredSize,
		Logger:      logrus.StandardLogger(),
	}
}

// sessionKind identifies the pointer gesture in progress.
type sessionKind int

const (
	sessionNone sessionKind = iota
	sessionPan
	sessionMove
)

// Board is the interactive canvas.
type Board struct {
	view    view.Transform
	scene   *scene.Scene
	measure Measurement
	cache   *renderCache

	tool     Tool
	handlers map[Tool]toolHandler

	gridEnabled bool
	gridSnap    bool
	gridSize    float64
	placement   geometry.Point2D
	desired     geometry.Size

	// Interaction state
	session     sessionKind
	lastScreen  geometry.Point2D // Pan anchor in screen space
	lastCanvas  geometry.Point2D // Last pointer position in canvas space
	dragAnchor  geometry.Point2D
	dragOrigins map[uuid.UUID]geometry.Point2D

	dirty bool
	log   logrus.FieldLogger
}

// New creates a board. Renderables for images are created through factory
// the first time each image is drawn.
func New(opts Options, factory RenderableFactory) *Board {
	if opts.GridSize <= 0 {
		opts.GridSize = DefaultGridSize
	}
	if !opts.DesiredSize.Valid() {
		opts.DesiredSize = DefaultDesiredSize
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	sel := selectTool{}
	return &Board{
		view:        view.New(),
		scene:       scene.New(),
		cache:       newRenderCache(factory),
		tool:        ToolSelect,
		handlers:    map[Tool]toolHandler{ToolSelect: sel, ToolMove: sel, ToolMeasure: measureTool{}},
		gridEnabled: opts.GridEnabled,
		gridSnap:    opts.GridSnap,
		gridSize:    opts.GridSize,
		placement:   opts.Placement,
		desired:     opts.DesiredSize,
		dirty:       true,
		log:         opts.Logger,
	}
}

// View returns the current view transform.
func (b *Board) View() view.Transform {
	return b.view
}

// SetView replaces the view transform. Zoom is clamped.
func (b *Board) SetView(t view.Transform) {
	t.SetZoom(t.Zoom)
	b.view = t
	b.invalidate()
}

// Scene exposes the scene for read access. Mutate it through the Board so
// the dirty flag stays correct.
func (b *Board) Scene() *scene.Scene {
	return b.scene
}

// Images returns the placed images, bottom-most first.
func (b *Board) Images() []*refimage.Image {
	return b.scene.Images()
}

// Selected returns the selected images.
func (b *Board) Selected() []*refimage.Image {
	return b.scene.Selected()
}

// AddImage places img on top of the stack as is.
func (b *Board) AddImage(img *refimage.Image) {
	if b.scene.Add(img) {
		b.log.WithField("image", img.Name).Debug("image added")
		b.invalidate()
	}
}

// ImportImage centers img on the placement point and adds it.
func (b *Board) ImportImage(img *refimage.Image) {
	if img == nil {
		return
	}
	img.CenterAt(b.placement)
	b.AddImage(img)
}

// RemoveImage removes img from the scene and the selection.
func (b *Board) RemoveImage(img *refimage.Image) {
	if b.scene.Remove(img) {
		b.log.WithField("image", img.Name).Debug("image removed")
		b.invalidate()
	}
}

// Clear removes every image and discards the render cache.
func (b *Board) Clear() {
	b.scene.Clear()
	b.cache.reset()
	b.endSession()
	b.log.Debug("board cleared")
	b.invalidate()
}

// Select selects img as if it had been clicked.
func (b *Board) Select(img *refimage.Image, multi bool) {
	b.scene.Select(img, multi)
	b.invalidate()
}

// DeleteSelected removes the selected, unlocked images.
func (b *Board) DeleteSelected() int {
	removed := b.scene.DeleteSelected()
	b.log.WithField("count", len(removed)).Debug("deleted selection")
	b.invalidate()
	return len(removed)
}

// SetSelectedOpacity sets the opacity of the selected, unlocked images.
func (b *Board) SetSelectedOpacity(opacity float64) {
	b.scene.SetSelectedOpacity(opacity)
	b.invalidate()
}

// Tool returns the active tool.
func (b *Board) Tool() Tool {
	return b.tool
}

// SetTool switches the active tool. Entering Measure from another tool
// starts a fresh point sequence.
func (b *Board) SetTool(tool Tool) {
	if _, ok := b.handlers[tool]; !ok || tool == b.tool {
		return
	}
	if tool == ToolMeasure {
		b.measure.Reset()
	}
	b.log.WithFields(logrus.Fields{"from": b.tool, "to": tool}).Debug("tool changed")
	b.tool = tool
	b.invalidate()
}

// Measurement returns the measurement points.
func (b *Board) Measurement() *Measurement {
	return &b.measure
}

// GridEnabled reports whether the grid is shown.
func (b *Board) GridEnabled() bool {
	return b.gridEnabled
}

// SetGridEnabled shows or hides the grid.
func (b *Board) SetGridEnabled(enabled bool) {
	if b.gridEnabled != enabled {
		b.gridEnabled = enabled
		b.invalidate()
	}
}

// ToggleGrid flips grid visibility.
func (b *Board) ToggleGrid() {
	b.SetGridEnabled(!b.gridEnabled)
}

// GridSize returns the grid cell size in canvas units.
func (b *Board) GridSize() float64 {
	return b.gridSize
}

// SetGridSize sets the grid cell size. Non-positive sizes are ignored.
func (b *Board) SetGridSize(size float64) {
	if size > 0 && size != b.gridSize {
		b.gridSize = size
		b.invalidate()
	}
}

// GridSnap reports whether dragged images snap to the visible grid.
func (b *Board) GridSnap() bool {
	return b.gridSnap
}

// SetGridSnap enables or disables snapping.
func (b *Board) SetGridSnap(snap bool) {
	b.gridSnap = snap
}

// SnapToGrid rounds p to the nearest grid intersection.
func (b *Board) SnapToGrid(p geometry.Point2D) geometry.Point2D {
	return p.Snap(b.gridSize)
}

// snapSize returns the cell size to snap drags to, or 0 when snapping is off.
func (b *Board) snapSize() float64 {
	if b.gridEnabled && b.gridSnap {
		return b.gridSize
	}
	return 0
}

// DesiredSize is the layout hint for the host.
func (b *Board) DesiredSize() geometry.Size {
	return b.desired
}

// Dirty reports whether state changed since the last Draw.
func (b *Board) Dirty() bool {
	return b.dirty
}

// Invalidate requests a redraw.
func (b *Board) Invalidate() {
	b.invalidate()
}

// PruneCache drops cached renderables of images no longer in the scene and
// returns how many were dropped. It is never called implicitly.
func (b *Board) PruneCache() int {
	return b.cache.prune(func(id uuid.UUID) bool {
		return b.scene.Find(id) != nil
	})
}

// CacheLen returns the number of cached renderables.
func (b *Board) CacheLen() int {
	return b.cache.size()
}

func (b *Board) invalidate() {
	b.dirty = true
}
