package render

import (
	"fmt"
	"image"
	"image/color"

	"recogstats/internal/domain"
)

const (
	tableRowHeight = 20
	tableMargin    = 20
)

var tableColumns = []struct {
	header string
	weight float64
	value  func(domain.RecognitionRecord) string
}{
	{"LDAP", 0.15, func(r domain.RecognitionRecord) string { return r.LDAP }},
	{"Name", 0.25, func(r domain.RecognitionRecord) string { return r.Name }},
	{"Heading", 0.30, func(r domain.RecognitionRecord) string { return r.Heading }},
	{"Title", 0.30, func(r domain.RecognitionRecord) string { return r.Title }},
}

// TablePanel lists LDAP, Name, Heading and Title of the active records.
func TablePanel(records []domain.RecognitionRecord, width int) image.Image {
	rows := len(records)
	if rows == 0 {
		rows = 1
	}
	height := tableMargin*2 + tableRowHeight*(rows+2)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, img.Bounds(), color.White)

	y := tableMargin + lineHeight
	drawText(img, tableMargin, y, fmt.Sprintf("Active Recognitions (%d)", len(records)), textColor)
	y += tableRowHeight

	inner := width - 2*tableMargin
	xs := make([]int, len(tableColumns))
	widths := make([]int, len(tableColumns))
	x := tableMargin
	for i, col := range tableColumns {
		xs[i] = x
		widths[i] = int(float64(inner) * col.weight)
		x += widths[i]
	}

	for i, col := range tableColumns {
		drawText(img, xs[i], y, col.header, mutedColor)
	}
	fill(img, image.Rect(tableMargin, y+4, width-tableMargin, y+5), ruleColor)
	y += tableRowHeight

	if len(records) == 0 {
		drawText(img, tableMargin, y, "No active recognitions", mutedColor)
		return img
	}
	for _, rec := range records {
		for i, col := range tableColumns {
			drawText(img, xs[i], y, fitText(col.value(rec), widths[i]-8), textColor)
		}
		y += tableRowHeight
	}
	return img
}
