// Package drawlist defines the primitive draw commands a board emits per
// frame and a host rasterizes.
package drawlist

import (
	"cmp"
	"image/color"
	"slices"

	"refboard/pkg/geometry"
)

// Texture is an opaque renderable handle owned by the rendering host.
type Texture interface {
	// Size returns the native pixel dimensions.
	Size() (width, height int)
}

// Command is a single primitive tagged with its layer.
// Higher layers are painted over lower ones.
type Command interface {
	Layer() int
}

// Layered carries the layer index of a command.
type Layered struct {
	Z int
}

// Layer returns the layer index.
func (l Layered) Layer() int { return l.Z }

// FillRect fills a screen-space rectangle.
type FillRect struct {
	Layered
	Rect  geometry.Rect
	Color color.NRGBA
}

// Polyline strokes connected segments through Points.
type Polyline struct {
	Layered
	Points []geometry.Point2D
	Color  color.NRGBA
	Width  float64
}

// TexturedQuad draws a texture stretched over Rect, modulated by Tint.
type TexturedQuad struct {
	Layered
	Rect    geometry.Rect
	Texture Texture
	Tint    color.NRGBA
}

// Text draws a label centered on Anchor.
type Text struct {
	Layered
	Anchor geometry.Point2D
	Text   string
	Size   float64
	Color  color.NRGBA
}

// List is an ordered sequence of commands for one frame.
type List struct {
	Width    float64
	Height   float64
	Commands []Command
}

// New creates an empty list for a viewport of the given size.
func New(width, height float64) *List {
	return &List{Width: width, Height: height}
}

// Add appends a command.
func (l *List) Add(cmd Command) {
	l.Commands = append(l.Commands, cmd)
}

// Len returns the number of commands.
func (l *List) Len() int {
	return len(l.Commands)
}

// Sorted returns the commands ordered by layer, keeping emission order
// within a layer.
func (l *List) Sorted() []Command {
	sorted := slices.Clone(l.Commands)
	slices.SortStableFunc(sorted, func(a, b Command) int {
		return cmp.Compare(a.Layer(), b.Layer())
	})
	return sorted
}

// OfType returns the commands of type T in emission order.
func OfType[T Command](l *List) []T {
	var out []T
	for _, cmd := range l.Commands {
		if c, ok := cmd.(T); ok {
			out = append(out, c)
		}
	}
	return out
}
