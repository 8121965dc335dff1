// Package image provides image loading and the placed-image model.
package image

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"refboard/pkg/colorutil"
	"refboard/pkg/geometry"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned by Load for files whose extension is not
// one of SupportedFormats.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Image is one reference image placed on the board.
type Image struct {
	ID     uuid.UUID   // Identity of the decoded pixel data
	Name   string      // Display name (file stem)
	Path   string      // Original file path
	Pixels image.Image // Decoded pixel data

	// Placement in canvas space
	Position geometry.Point2D // Top-left corner
	Size     geometry.Size
	Rotation float64 // Degrees; stored only
	Opacity  float64 // 0.0 - 1.0

	Selected bool
	Locked   bool
	Visible  bool
}

// New wraps decoded pixels in an Image sized to their native dimensions.
func New(pixels image.Image, name, path string) *Image {
	img := &Image{
		ID:      uuid.New(),
		Name:    name,
		Path:    path,
		Pixels:  pixels,
		Opacity: 1.0,
		Visible: true,
	}
	w, h := img.NativeSize()
	img.Size = geometry.NewSize(float64(max(w, 1)), float64(max(h, 1)))
	return img
}

// Load decodes the image at path.
func Load(path string) (*Image, error) {
	if !IsSupportedFormat(path) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	pixels, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return New(pixels, Stem(path), path), nil
}

// Stem returns the file name without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// NativeSize returns the pixel dimensions of the decoded data.
func (img *Image) NativeSize() (width, height int) {
	if img.Pixels == nil {
		return 0, 0
	}
	b := img.Pixels.Bounds()
	return b.Dx(), b.Dy()
}

// Bounds returns the axis-aligned bounds in canvas space.
func (img *Image) Bounds() geometry.Rect {
	return geometry.RectFromPoints(img.Position, img.Size)
}

// HitTest reports whether the canvas point lies inside the image bounds.
func (img *Image) HitTest(p geometry.Point2D) bool {
	return img.Bounds().Contains(p)
}

// CenterAt places the image so its center sits on p.
func (img *Image) CenterAt(p geometry.Point2D) {
	img.Position = geometry.NewPoint2D(p.X-img.Size.Width/2, p.Y-img.Size.Height/2)
}

// SetOpacity sets the opacity, clamped to [0, 1].
func (img *Image) SetOpacity(opacity float64) {
	img.Opacity = colorutil.Clamp01(opacity)
}

// SetSize sets the canvas size. Non-positive sizes are ignored.
func (img *Image) SetSize(size geometry.Size) {
	if size.Valid() {
		img.Size = size
	}
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Image Files (*.png, *.jpg, *.jpeg, *.gif, *.bmp, *.tif, *.tiff, *.webp)"
}
