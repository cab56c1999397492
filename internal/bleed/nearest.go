package bleed

import (
	"errors"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// ErrNoSamples is returned when there are no edge samples to index or fill from.
var ErrNoSamples = errors.New("bleed: no edge samples")

// site is a sample position stored in the tree. index is the position of the
// first sample at this coordinate in the source sequence; queries use -1.
type site struct {
	x, y  float64
	index int
}

func (p site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(site)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		panic("illegal dimension")
	}
}

func (p site) Dims() int { return 2 }

// Distance returns the squared Euclidean distance, as kdtree expects.
func (p site) Distance(c kdtree.Comparable) float64 {
	q := c.(site)
	dx := p.x - q.x
	dy := p.y - q.y
	return dx*dx + dy*dy
}

type sites []site

func (s sites) Index(i int) kdtree.Comparable         { return s[i] }
func (s sites) Len() int                              { return len(s) }
func (s sites) Pivot(d kdtree.Dim) int                { return plane{sites: s, Dim: d}.Pivot() }
func (s sites) Slice(start, end int) kdtree.Interface { return s[start:end] }

type plane struct {
	kdtree.Dim
	sites
}

func (p plane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.sites[i].x < p.sites[j].x
	case 1:
		return p.sites[i].y < p.sites[j].y
	default:
		panic("illegal dimension")
	}
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.sites = p.sites[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.sites[i], p.sites[j] = p.sites[j], p.sites[i]
}

// Index answers exact nearest-sample queries over a fixed sample sequence.
// It is bulk-loaded once and never mutated, so concurrent queries are safe.
type Index struct {
	tree *kdtree.Tree
	n    int
}

// NewIndex bulk-loads the positions of samples into a k-d tree.
// Samples sharing a coordinate are stored once, under the earliest position.
func NewIndex(samples []Sample) (*Index, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	seen := make(map[[2]int]struct{}, len(samples))
	pts := make(sites, 0, len(samples))
	for i, s := range samples {
		key := [2]int{s.X, s.Y}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		pts = append(pts, site{x: float64(s.X), y: float64(s.Y), index: i})
	}

	return &Index{tree: kdtree.New(pts, false), n: len(pts)}, nil
}

// Len returns the number of distinct sample positions held by the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.n
}

// Nearest returns the position in the source sample sequence of the sample
// closest to (x, y). Equidistant samples resolve to the lowest position.
// ok is false only when the index holds no samples.
func (idx *Index) Nearest(x, y int) (pos int, ok bool) {
	if idx.Len() == 0 {
		return 0, false
	}

	q := site{x: float64(x), y: float64(y), index: -1}
	c, dist := idx.tree.Nearest(q)
	if c == nil {
		return 0, false
	}
	best := c.(site).index
	if dist == 0 {
		// Coordinates are unique in the tree, so an exact hit has no rival.
		return best, true
	}

	keep := kdtree.NewDistKeeper(dist)
	idx.tree.NearestSet(keep, q)
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		if s := cd.Comparable.(site); s.index < best {
			best = s.index
		}
	}
	return best, true
}
