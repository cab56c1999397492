package bleed

import "image"

// Options controls how repaired pixels are written.
type Options struct {
	// Debug forces repaired pixels to alpha 255 so the filled area is visible.
	Debug bool
}

// Fill recolors each transparent pixel with the RGB of its nearest sample.
// Alpha stays 0 unless opts.Debug is set. Pixels without a nearest sample are
// left untouched.
func Fill(img *image.NRGBA, transparent []image.Point, samples []Sample, idx *Index, opts Options) (filled, skipped int) {
	var alpha uint8
	if opts.Debug {
		alpha = 255
	}

	stride := img.Stride
	pix := img.Pix
	for _, p := range transparent {
		pos, ok := idx.Nearest(p.X, p.Y)
		if !ok {
			skipped++
			continue
		}
		c := samples[pos].Color
		i := p.Y*stride + p.X*4
		pix[i] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = alpha
		filled++
	}
	return filled, skipped
}
