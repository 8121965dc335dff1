// Package colorutil provides shared color utilities for the reference board.
package colorutil

import (
	"image/color"
	"math"
)

// Common colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// Board palette.
var (
	Background = color.NRGBA{R: 5, G: 5, B: 5, A: 204}
	GridLine   = color.NRGBA{R: 128, G: 128, B: 128, A: 51}
	Selection  = Cyan
	Measure    = Magenta
	Label      = White
)

// Tint returns white with the given opacity, the modulation color applied to
// a textured quad. Opacity is clamped to [0, 1].
func Tint(opacity float64) color.NRGBA {
	return color.NRGBA{R: 255, G: 255, B: 255, A: alpha(opacity)}
}

// WithOpacity returns c with its alpha scaled by opacity.
func WithOpacity(c color.Color, opacity float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * Clamp01(opacity)))
	return n
}

// Clamp01 clamps v to [0, 1].
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func alpha(opacity float64) uint8 {
	return uint8(math.Round(Clamp01(opacity) * 255))
}
