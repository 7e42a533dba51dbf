package components

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Cell is one terminal cell of the thumbnail strip. It is drawn as an upper half
// block, so it shows two stacked pixels.
type Cell struct {
	Top    color.RGBA
	Bottom color.RGBA
}

// SampleStrip lays the images side by side across cols cells and rows cell rows
// and averages each half cell. It returns rows slices of cols cells, or nil when
// there is nothing to draw.
func SampleStrip(images []image.Image, cols, rows int) [][]Cell {
	if len(images) == 0 || cols <= 0 || rows <= 0 {
		return nil
	}
	strip := make([][]Cell, rows)
	for r := range strip {
		strip[r] = make([]Cell, cols)
	}

	n := len(images)
	for c := 0; c < cols; c++ {
		idx := c * n / cols
		first := idx * cols / n
		last := (idx + 1) * cols / n
		if last <= first {
			last = first + 1
		}
		img := images[idx]
		b := img.Bounds()

		x0 := b.Min.X + (c-first)*b.Dx()/(last-first)
		x1 := b.Min.X + (c-first+1)*b.Dx()/(last-first)
		for r := 0; r < rows; r++ {
			yTop0 := b.Min.Y + (2*r)*b.Dy()/(2*rows)
			yTop1 := b.Min.Y + (2*r+1)*b.Dy()/(2*rows)
			yBot1 := b.Min.Y + (2*r+2)*b.Dy()/(2*rows)
			strip[r][c] = Cell{
				Top:    averageColor(img, image.Rect(x0, yTop0, x1, yTop1)),
				Bottom: averageColor(img, image.Rect(x0, yTop1, x1, yBot1)),
			}
		}
	}
	return strip
}

// averageColor returns the mean colour of rect, growing it to at least one pixel.
func averageColor(img image.Image, rect image.Rectangle) color.RGBA {
	if rect.Dx() <= 0 {
		rect.Max.X = rect.Min.X + 1
	}
	if rect.Dy() <= 0 {
		rect.Max.Y = rect.Min.Y + 1
	}
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return color.RGBA{A: 0xff}
	}

	var r, g, b, n uint64
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r += uint64(cr >> 8)
			g += uint64(cg >> 8)
			b += uint64(cb >> 8)
			n++
		}
	}
	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: 0xff}
}

// dim darkens c for cells outside the selected range.
func dim(c color.RGBA) color.RGBA {
	return color.RGBA{R: c.R / 3, G: c.G / 3, B: c.B / 3, A: c.A}
}

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// renderStripRow draws one row of cells, dimming those outside [from, to].
func renderStripRow(row []Cell, from, to int) string {
	var sb strings.Builder
	for c, cell := range row {
		top, bottom := cell.Top, cell.Bottom
		if c < from || c > to {
			top, bottom = dim(top), dim(bottom)
		}
		sb.WriteString(lipgloss.NewStyle().Foreground(hex(top)).Background(hex(bottom)).Render("▀"))
	}
	return sb.String()
}
