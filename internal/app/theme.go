package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// RefBoardTheme is a dark theme whose accents match the board overlays.
type RefBoardTheme struct{}

var _ fyne.Theme = (*RefBoardTheme)(nil)

func (t *RefBoardTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return color.NRGBA{R: 0x00, G: 0xBC, B: 0xD4, A: 0xFF} // Selection cyan
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x00, G: 0xBC, B: 0xD4, A: 0x60}
	case theme.ColorNameHover:
		return color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0x14}
	default:
		return theme.DefaultTheme().Color(name, theme.VariantDark)
	}
}

func (t *RefBoardTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *RefBoardTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *RefBoardTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3 // Compact toolbar
	default:
		return theme.DefaultTheme().Size(name)
	}
}
