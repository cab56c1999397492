package bleed

import (
	"image"
	"image/color"
)

// neighbors lists the 8-connected offsets in scan order: NW, N, NE, E, SE, S, SW, W.
var neighbors = [8]image.Point{
	{-1, -1},
	{0, -1},
	{1, -1},
	{1, 0},
	{1, 1},
	{0, 1},
	{-1, 1},
	{-1, 0},
}

// Sample is a transparent edge pixel tagged with the color of one opaque neighbor.
type Sample struct {
	X, Y  int
	Color color.NRGBA
}

// Edges is the result of one extraction pass.
type Edges struct {
	Samples     []Sample
	Transparent []image.Point // every alpha == 0 pixel, row-major
}

// Extract scans img once and collects edge samples plus all transparent pixels.
// Coordinates are relative to img.Bounds().Min.
// A transparent pixel yields one sample per opaque neighbor, so the same
// coordinate can appear several times with different colors.
func Extract(img *image.NRGBA) Edges {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := img.Stride
	pix := img.Pix

	var e Edges
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if pix[y*stride+x*4+3] != 0 {
				continue
			}
			e.Transparent = append(e.Transparent, image.Point{X: x, Y: y})

			for _, d := range neighbors {
				nx, ny := x+d.X, y+d.Y
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				i := ny*stride + nx*4
				if pix[i+3] == 0 {
					continue
				}
				e.Samples = append(e.Samples, Sample{
					X: x,
					Y: y,
					Color: color.NRGBA{
						R: pix[i],
						G: pix[i+1],
						B: pix[i+2],
						A: pix[i+3],
					},
				})
			}
		}
	}
	return e
}
