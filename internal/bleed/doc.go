// Package bleed recolors fully transparent pixels with the color of the
// nearest opaque edge, so that filters which ignore alpha do not pull dark
// or stale RGB into the visible area.
//
// A transparent pixel that touches an opaque pixel (8-connected) becomes an
// edge sample carrying that neighbor's color. Samples are bulk-loaded into a
// k-d tree and every transparent pixel takes the RGB of its nearest sample.
// Alpha is preserved unless Options.Debug is set.
//
// The grid is an *image.NRGBA so RGB under alpha 0 is stored as-is.
// Coordinates passed around this package are relative to Bounds().Min.
package bleed
