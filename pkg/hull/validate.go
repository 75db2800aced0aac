package hull

import (
	"fmt"

	"github.com/taigrr/convex/pkg/math3d"
)

type directedEdge struct{ from, to int }

// Validate checks that the hull is a closed, outward-wound, convex mesh over
// its own vertices. Vertices may lie up to eps outside any face plane. The
// returned error wraps ErrInvalidHull.
func (h *ConvexHull) Validate(eps float64) error {
	if len(h.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrInvalidHull, len(h.Indices))
	}
	if len(h.Indices) == 0 {
		return fmt.Errorf("%w: no triangles", ErrInvalidHull)
	}

	used := make([]bool, len(h.Vertices))
	for i, idx := range h.Indices {
		if idx < 0 || idx >= len(h.Vertices) {
			return fmt.Errorf("%w: index %d at %d out of range", ErrInvalidHull, idx, i)
		}
		used[idx] = true
	}
	for i, u := range used {
		if !u {
			return fmt.Errorf("%w: vertex %d unused", ErrInvalidHull, i)
		}
	}

	edges := make(map[directedEdge]int, len(h.Indices))
	for i := range h.TriangleCount() {
		t := h.Triangle(i)
		if t[0] == t[1] || t[1] == t[2] || t[2] == t[0] {
			return fmt.Errorf("%w: triangle %d repeats a vertex %v", ErrInvalidHull, i, t)
		}
		for k := range 3 {
			edges[directedEdge{t[k], t[(k+1)%3]}]++
		}
	}
	for e, n := range edges {
		if n != 1 {
			return fmt.Errorf("%w: edge %d->%d used %d times", ErrInvalidHull, e.from, e.to, n)
		}
		if edges[directedEdge{e.to, e.from}] != 1 {
			return fmt.Errorf("%w: edge %d->%d has no opposite", ErrInvalidHull, e.from, e.to)
		}
	}

	for i := range h.TriangleCount() {
		t := h.Face(i)
		n := math3d.TriangleNormal(t[0], t[1], t[2]).Normalize()
		if n.IsZero() {
			continue
		}
		for j, v := range h.Vertices {
			if d := n.Dot(v.Sub(t[0])); d > eps {
				return fmt.Errorf("%w: vertex %d is %g above triangle %d", ErrInvalidHull, j, d, i)
			}
		}
	}
	return nil
}
