// Package hull builds convex hulls of 3D point clouds.
//
// Hulls are grown incrementally from a starting tetrahedron, always extruding
// the face whose farthest point rises highest above it, until no point lies
// meaningfully outside or the vertex budget is spent. Near-duplicate points
// are welded first, and flat or tiny inputs are replaced by a small box.
package hull

import (
	"errors"
	"fmt"

	"github.com/taigrr/convex/pkg/math3d"
)

var (
	// ErrNoPoints is returned when the input has no finite point.
	ErrNoPoints = errors.New("hull: no finite input points")
	// ErrDegenerate is reported by the builder when no tetrahedron of positive
	// volume can be found. Compute answers it with the small box around the
	// input bounds.
	ErrDegenerate = errors.New("hull: degenerate point set")
	// ErrInvalidHull is wrapped by Validate errors.
	ErrInvalidHull = errors.New("hull: invalid hull")
)

// ConvexHull is a closed triangle mesh with outward-facing triangles.
type ConvexHull struct {
	Vertices []math3d.Vec3
	// Indices holds three vertex indices per triangle.
	Indices []int
	// Fallback is set when the input was too flat or too small and the hull
	// is the small box around its bounds instead.
	Fallback bool
}

// Compute builds the hull of points. Large clouds are thinned to a direction
// grid sized from opts.MaxNumVertices first.
func Compute(points []math3d.Vec3, opts Options) (*ConvexHull, error) {
	opts = opts.withDefaults()
	pts := finitePoints(points)
	if len(pts) == 0 {
		return nil, ErrNoPoints
	}
	return compute(Compress(pts, GridSize(opts.MaxNumVertices)), opts)
}

// ComputeNaive builds the hull of points without thinning.
func ComputeNaive(points []math3d.Vec3, opts Options) (*ConvexHull, error) {
	return compute(points, opts.withDefaults())
}

func compute(points []math3d.Vec3, opts Options) (*ConvexHull, error) {
	clean, err := weldVertices(points, opts.NormalEpsilon)
	if err != nil {
		return nil, err
	}

	indices, err := buildHull(clean.points, opts.MaxNumVertices)
	if errors.Is(err, ErrDegenerate) && !clean.fallback {
		// Collinear or coplanar input off the coordinate axes.
		clean = cleanPoints{points: smallBox(math3d.BoundsOf(clean.points)), fallback: true}
		indices, err = buildHull(clean.points, opts.MaxNumVertices)
	}
	if err != nil {
		return nil, fmt.Errorf("build hull over %d points: %w", len(clean.points), err)
	}

	verts, indices := compactVertices(clean.points, indices)
	return &ConvexHull{
		Vertices: verts,
		Indices:  indices,
		Fallback: clean.fallback,
	}, nil
}

// TriangleCount returns the number of triangles.
func (h *ConvexHull) TriangleCount() int {
	return len(h.Indices) / 3
}

// Triangle returns the vertex indices of triangle i.
func (h *ConvexHull) Triangle(i int) [3]int {
	return [3]int{h.Indices[i*3], h.Indices[i*3+1], h.Indices[i*3+2]}
}

// Face returns the corner positions of triangle i.
func (h *ConvexHull) Face(i int) math3d.Triangle {
	t := h.Triangle(i)
	return math3d.Tri(h.Vertices[t[0]], h.Vertices[t[1]], h.Vertices[t[2]])
}

// Volume returns the enclosed volume. Inward-wound hulls report a negative
// volume.
func (h *ConvexHull) Volume() float64 {
	if len(h.Vertices) == 0 {
		return 0
	}
	origin := h.Vertices[0]
	var sum float64
	for i := range h.TriangleCount() {
		t := h.Face(i)
		a, b, c := t[0].Sub(origin), t[1].Sub(origin), t[2].Sub(origin)
		sum += a.Dot(b.Cross(c))
	}
	return sum / 6
}

// Bounds returns the bounding box of the hull vertices.
func (h *ConvexHull) Bounds() math3d.AABB {
	return math3d.BoundsOf(h.Vertices)
}
