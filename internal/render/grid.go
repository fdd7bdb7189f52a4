package render

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

const (
	gridColumns = 4
	gridPadding = 16
)

// ImageGrid lays images out in rows of up to four columns. A nil entry is
// drawn as a placeholder cell.
func ImageGrid(images []image.Image, width int) image.Image {
	if len(images) == 0 {
		img := image.NewRGBA(image.Rect(0, 0, width, gridPadding*2+lineHeight))
		fill(img, img.Bounds(), color.White)
		drawText(img, gridPadding, gridPadding+lineHeight, "No active recognition images", mutedColor)
		return img
	}

	cell := (width - gridPadding*(gridColumns+1)) / gridColumns
	rows := (len(images) + gridColumns - 1) / gridColumns
	height := gridPadding + rows*(cell+gridPadding)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, img.Bounds(), color.White)

	for i, src := range images {
		col, row := i%gridColumns, i/gridColumns
		x := gridPadding + col*(cell+gridPadding)
		y := gridPadding + row*(cell+gridPadding)
		slot := image.Rect(x, y, x+cell, y+cell)
		if src == nil || src.Bounds().Empty() {
			fill(img, slot, placeholder)
			msg := "image unavailable"
			drawText(img, x+(cell-textWidth(msg))/2, y+cell/2, msg, mutedColor)
			continue
		}
		xdraw.CatmullRom.Scale(img, fitRect(src.Bounds(), slot), src, src.Bounds(), xdraw.Over, nil)
	}
	return img
}

// fitRect scales src into slot keeping its aspect ratio, centered.
func fitRect(src, slot image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	w, h := slot.Dx(), slot.Dy()
	if sw*h > sh*w {
		h = sh * w / sw
	} else {
		w = sw * h / sh
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x := slot.Min.X + (slot.Dx()-w)/2
	y := slot.Min.Y + (slot.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}
