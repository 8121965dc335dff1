// Package render rasterizes board draw lists with gg.
package render

import (
	"fmt"
	"image"
	"image/color"

	"refboard/internal/drawlist"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/f64"
)

// Rasterizer draws command lists into RGBA images.
type Rasterizer struct {
	font  *truetype.Font
	faces map[float64]font.Face
}

// NewRasterizer creates a rasterizer using the Go Mono font for labels.
func NewRasterizer() (*Rasterizer, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Rasterizer{font: f, faces: make(map[float64]font.Face)}, nil
}

// Rasterize draws list into a new image of its viewport size.
func (r *Rasterizer) Rasterize(list *drawlist.List) *image.RGBA {
	w, h := int(list.Width), int(list.Height)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dc := gg.NewContext(w, h)
	r.Draw(dc, list)
	return dc.Image().(*image.RGBA)
}

// Draw executes list on dc in layer order.
func (r *Rasterizer) Draw(dc *gg.Context, list *drawlist.List) {
	for _, cmd := range list.Sorted() {
		switch c := cmd.(type) {
		case drawlist.FillRect:
			dc.SetColor(c.Color)
			dc.DrawRectangle(c.Rect.X, c.Rect.Y, c.Rect.Width, c.Rect.Height)
			dc.Fill()
		case drawlist.Polyline:
			r.polyline(dc, c)
		case drawlist.TexturedQuad:
			r.quad(dc, c)
		case drawlist.Text:
			dc.SetFontFace(r.face(c.Size))
			dc.SetColor(c.Color)
			dc.DrawStringAnchored(c.Text, c.Anchor.X, c.Anchor.Y, 0.5, 0.5)
		}
	}
}

func (r *Rasterizer) polyline(dc *gg.Context, c drawlist.Polyline) {
	if len(c.Points) == 0 {
		return
	}
	dc.SetColor(c.Color)
	if len(c.Points) == 1 {
		dc.DrawPoint(c.Points[0].X, c.Points[0].Y, c.Width)
		dc.Fill()
		return
	}
	dc.SetLineWidth(c.Width)
	dc.MoveTo(c.Points[0].X, c.Points[0].Y)
	for _, p := range c.Points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
}

// quad scales the texture onto its screen rectangle, modulated by the
// tint's alpha.
func (r *Rasterizer) quad(dc *gg.Context, c drawlist.TexturedQuad) {
	src := textureImage(c.Texture)
	if src == nil || c.Rect.Width <= 0 || c.Rect.Height <= 0 || c.Tint.A == 0 {
		return
	}
	dst, ok := dc.Image().(draw.Image)
	if !ok {
		return
	}
	b := src.Bounds()
	s2d := f64.Aff3{
		c.Rect.Width / float64(b.Dx()), 0, c.Rect.X,
		0, c.Rect.Height / float64(b.Dy()), c.Rect.Y,
	}
	var opts *draw.Options
	if c.Tint.A < 0xff {
		opts = &draw.Options{SrcMask: image.NewUniform(color.Alpha{A: c.Tint.A})}
	}
	draw.BiLinear.Transform(dst, s2d, src, b, draw.Over, opts)
}

func (r *Rasterizer) face(size float64) font.Face {
	if face, ok := r.faces[size]; ok {
		return face
	}
	face := truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faces[size] = face
	return face
}

func textureImage(t drawlist.Texture) image.Image {
	if src, ok := t.(interface{ Image() image.Image }); ok {
		return src.Image()
	}
	return nil
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
