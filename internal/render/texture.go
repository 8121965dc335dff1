package render

import (
	"image"
	"image/draw"

	refimage "refboard/internal/image"
	"refboard/internal/drawlist"

	"github.com/sirupsen/logrus"
)

// Texture is an image prepared for repeated drawing.
type Texture struct {
	pixels image.Image
}

// Size returns the native pixel dimensions.
func (t *Texture) Size() (int, int) {
	b := t.pixels.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the prepared pixels.
func (t *Texture) Image() image.Image {
	return t.pixels
}

// Factory creates textures for board images.
type Factory struct {
	log logrus.FieldLogger
}

// NewFactory creates a texture factory.
func NewFactory(log logrus.FieldLogger) *Factory {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Factory{log: log}
}

// NewRenderable converts the image's pixels to a form the rasterizer can
// sample directly. Images without pixels yield nil.
func (f *Factory) NewRenderable(img *refimage.Image) drawlist.Texture {
	if img == nil || img.Pixels == nil {
		return nil
	}
	tex := &Texture{pixels: prepare(img.Pixels)}
	w, h := tex.Size()
	f.log.WithFields(logrus.Fields{"image": img.Name, "width": w, "height": h}).Debug("texture created")
	return tex
}

// prepare returns src as an NRGBA or RGBA image with a zero origin.
func prepare(src image.Image) image.Image {
	b := src.Bounds()
	if b.Min == (image.Point{}) {
		switch src.(type) {
		case *image.NRGBA, *image.RGBA:
			return src
		}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
