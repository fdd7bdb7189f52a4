package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	textColor   = color.RGBA{R: 31, G: 31, B: 31, A: 255}
	mutedColor  = color.RGBA{R: 110, G: 110, B: 110, A: 255}
	ruleColor   = color.RGBA{R: 210, G: 210, B: 210, A: 255}
	placeholder = color.RGBA{R: 235, G: 235, B: 235, A: 255}
)

const lineHeight = 13

func drawText(dst draw.Image, x, baseline int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(baseline)},
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

// fitText cuts s so it renders within maxWidth pixels, marking the cut.
func fitText(s string, maxWidth int) string {
	if textWidth(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if textWidth(candidate) <= maxWidth {
			return candidate
		}
	}
	return ""
}

func fill(dst draw.Image, r image.Rectangle, col color.Color) {
	draw.Draw(dst, r, image.NewUniform(col), image.Point{}, draw.Src)
}
