package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"refboard/internal/drawlist"
	refimage "refboard/internal/image"
	"refboard/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func newRasterizer(t *testing.T) *Rasterizer {
	t.Helper()
	r, err := NewRasterizer()
	require.NoError(t, err)
	return r
}

func texture(t *testing.T, pixels image.Image) drawlist.Texture {
	t.Helper()
	tex := NewFactory(nil).NewRenderable(refimage.New(pixels, "test", ""))
	require.NotNil(t, tex)
	return tex
}

func rgba(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestFactory(t *testing.T) {
	f := NewFactory(nil)
	assert.Nil(t, f.NewRenderable(nil))
	assert.Nil(t, f.NewRenderable(&refimage.Image{}))

	src := image.NewGray(image.Rect(5, 5, 15, 25))
	tex := f.NewRenderable(refimage.New(src, "gray", ""))
	require.NotNil(t, tex)
	w, h := tex.Size()
	assert.Equal(t, 10, w)
	assert.Equal(t, 20, h)

	prepared := tex.(*Texture).Image()
	assert.Equal(t, image.Rect(0, 0, 10, 20), prepared.Bounds())
	assert.IsType(t, &image.NRGBA{}, prepared)
}

func TestFactoryKeepsReadyImages(t *testing.T) {
	src := solid(3, 3, red)
	tex := NewFactory(nil).NewRenderable(refimage.New(src, "red", ""))
	assert.Same(t, src, tex.(*Texture).Image())
}

func TestRasterizeFill(t *testing.T) {
	list := drawlist.New(20, 10)
	list.Add(drawlist.FillRect{Rect: geometry.NewRect(0, 0, 10, 10), Color: red})

	img := newRasterizer(t).Rasterize(list)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(img, 5, 5))
	assert.Equal(t, color.RGBA{}, rgba(img, 15, 5))
}

func TestRasterizeHonoursLayers(t *testing.T) {
	list := drawlist.New(10, 10)
	list.Add(drawlist.FillRect{Layered: drawlist.Layered{Z: 2}, Rect: geometry.NewRect(0, 0, 10, 10), Color: blue})
	list.Add(drawlist.FillRect{Layered: drawlist.Layered{Z: 1}, Rect: geometry.NewRect(0, 0, 10, 10), Color: red})

	img := newRasterizer(t).Rasterize(list)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba(img, 5, 5))
}

func TestRasterizeTexturedQuad(t *testing.T) {
	list := drawlist.New(40, 40)
	list.Add(drawlist.TexturedQuad{
		Rect:    geometry.NewRect(10, 10, 20, 20),
		Texture: texture(t, solid(2, 2, blue)),
		Tint:    color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	})

	img := newRasterizer(t).Rasterize(list)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba(img, 20, 20))
	assert.Equal(t, color.RGBA{}, rgba(img, 5, 5))
	assert.Equal(t, color.RGBA{}, rgba(img, 35, 35))
}

func TestRasterizeTintAlpha(t *testing.T) {
	list := drawlist.New(10, 10)
	list.Add(drawlist.TexturedQuad{
		Rect:    geometry.NewRect(0, 0, 10, 10),
		Texture: texture(t, solid(4, 4, blue)),
		Tint:    color.NRGBA{R: 255, G: 255, B: 255, A: 128},
	})

	px := rgba(newRasterizer(t).Rasterize(list), 5, 5)
	assert.InDelta(t, 128, int(px.A), 2)
	assert.InDelta(t, 128, int(px.B), 2)
}

func TestRasterizeSkipsTransparentQuad(t *testing.T) {
	list := drawlist.New(10, 10)
	list.Add(drawlist.TexturedQuad{
		Rect:    geometry.NewRect(0, 0, 10, 10),
		Texture: texture(t, solid(4, 4, blue)),
	})

	assert.Equal(t, color.RGBA{}, rgba(newRasterizer(t).Rasterize(list), 5, 5))
}

func TestRasterizePolylines(t *testing.T) {
	list := drawlist.New(30, 30)
	list.Add(drawlist.Polyline{
		Points: []geometry.Point2D{{X: 0, Y: 15}, {X: 30, Y: 15}},
		Color:  red,
		Width:  2,
	})
	list.Add(drawlist.Polyline{
		Points: []geometry.Point2D{{X: 5, Y: 5}},
		Color:  blue,
		Width:  2,
	})
	list.Add(drawlist.Polyline{Color: blue, Width: 2})

	img := newRasterizer(t).Rasterize(list)
	assert.NotZero(t, rgba(img, 15, 15).R)
	assert.NotZero(t, rgba(img, 5, 5).B)
	assert.Equal(t, color.RGBA{}, rgba(img, 25, 25))
}

func TestRasterizeText(t *testing.T) {
	list := drawlist.New(100, 40)
	list.Add(drawlist.Text{
		Anchor: geometry.NewPoint2D(50, 20),
		Text:   "50.0 px",
		Size:   12,
		Color:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	})

	img := newRasterizer(t).Rasterize(list)
	inked := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 100; x++ {
			if img.RGBAAt(x, y).A > 0 {
				inked++
			}
		}
	}
	assert.NotZero(t, inked)
}

func TestRasterizeEmptyViewport(t *testing.T) {
	img := newRasterizer(t).Rasterize(drawlist.New(0, 0))
	assert.Equal(t, image.Rect(0, 0, 1, 1), img.Bounds())
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, SavePNG(path, solid(4, 3, red)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), decoded.Bounds())

	err = SavePNG(filepath.Join(t.TempDir(), "missing", "frame.png"), solid(1, 1, red))
	assert.Error(t, err)
}
