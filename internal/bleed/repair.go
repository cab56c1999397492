package bleed

import (
	"errors"
	"fmt"
	"image"
)

// ErrNoTransparency is returned by Repair when the image has no alpha == 0 pixel.
var ErrNoTransparency = errors.New("bleed: no transparent pixels")

// Stats describes one repair pass.
type Stats struct {
	Transparent int `json:"transparent"`
	Samples     int `json:"samples"`
	Filled      int `json:"filled"`
	Skipped     int `json:"skipped"`
}

// Repair extracts edge samples from img, indexes them and fills every
// transparent pixel in place.
//
// ErrNoTransparency and ErrNoSamples report that there was nothing to fix;
// img is left unmodified in both cases.
func Repair(img *image.NRGBA, opts Options) (Stats, error) {
	edges := Extract(img)

	st := Stats{
		Transparent: len(edges.Transparent),
		Samples:     len(edges.Samples),
	}
	if st.Transparent == 0 {
		return st, ErrNoTransparency
	}
	if st.Samples == 0 {
		return st, ErrNoSamples
	}

	idx, err := NewIndex(edges.Samples)
	if err != nil {
		return st, fmt.Errorf("bleed: index %d samples: %w", st.Samples, err)
	}

	st.Filled, st.Skipped = Fill(img, edges.Transparent, edges.Samples, idx, opts)
	return st, nil
}

// NothingToFix reports whether err is one of Repair's no-op outcomes.
func NothingToFix(err error) bool {
	return errors.Is(err, ErrNoTransparency) || errors.Is(err, ErrNoSamples)
}
