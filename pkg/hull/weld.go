package hull

import (
	"math"

	"github.com/taigrr/convex/pkg/math3d"
)

const (
	// degenerateExtent is the bounding-box extent below which an axis is flat.
	degenerateExtent = 1e-6
	// fallbackHalfSize is the small box half size when every axis is flat.
	fallbackHalfSize = 0.01
	// flatAxisFraction sizes flat axes relative to the smallest usable extent.
	flatAxisFraction = 0.05

	latticeBits   = 21
	latticeCenter = 1 << (latticeBits - 1)
	latticeLimit  = 1<<latticeBits - 3
)

// cleanPoints is the output of vertex welding.
type cleanPoints struct {
	points   []math3d.Vec3
	fallback bool
}

// finitePoints returns points without NaN or infinite entries. The input is
// returned as is when it is already clean.
func finitePoints(points []math3d.Vec3) []math3d.Vec3 {
	for i, p := range points {
		if p.IsFinite() {
			continue
		}
		out := make([]math3d.Vec3, i, len(points))
		copy(out, points[:i])
		for _, q := range points[i+1:] {
			if q.IsFinite() {
				out = append(out, q)
			}
		}
		return out
	}
	return points
}

// weldVertices merges points closer than normalEpsilon (in normalized box
// units) and keeps the member of each cluster farthest from the box center.
// Flat or tiny inputs are replaced by a small box.
func weldVertices(points []math3d.Vec3, normalEpsilon float64) (cleanPoints, error) {
	points = finitePoints(points)
	if len(points) == 0 {
		return cleanPoints{}, ErrNoPoints
	}

	bounds := math3d.BoundsOf(points)
	if len(points) < 3 || isFlat(bounds) {
		return cleanPoints{points: smallBox(bounds), fallback: true}, nil
	}

	center := bounds.Center()
	size := bounds.Size()
	inv := math3d.V3(1/size.X, 1/size.Y, 1/size.Z)
	scale := math.Min(1/normalEpsilon, float64(latticeLimit)*0.999999)

	cells := make(map[uint64]int, len(points))
	clean := make([]math3d.Vec3, 0, len(points))

	for _, p := range points {
		n := p.Sub(center).Mul(inv)
		ix := latticeCoord(n.X, scale)
		iy := latticeCoord(n.Y, scale)
		iz := latticeCoord(n.Z, scale)

		hit := -1
	probe:
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					if j, ok := cells[latticeKey(ix+dx, iy+dy, iz+dz)]; ok {
						hit = j
						break probe
					}
				}
			}
		}

		if hit >= 0 {
			if p.DistanceSq(center) > clean[hit].DistanceSq(center) {
				clean[hit] = p
			}
			continue
		}
		cells[latticeKey(ix, iy, iz)] = len(clean)
		clean = append(clean, p)
	}

	bounds = math3d.BoundsOf(clean)
	if len(clean) < 3 || isFlat(bounds) {
		return cleanPoints{points: smallBox(bounds), fallback: true}, nil
	}
	return cleanPoints{points: clean}, nil
}

func latticeCoord(v, scale float64) int64 {
	return int64(math.Floor(v*scale)) + latticeCenter
}

// latticeKey packs three 21-bit lattice coordinates.
func latticeKey(x, y, z int64) uint64 {
	const mask = 1<<latticeBits - 1
	return uint64(x&mask)<<(2*latticeBits) | uint64(y&mask)<<latticeBits | uint64(z&mask)
}

func isFlat(b math3d.AABB) bool {
	s := b.Size()
	return s.X < degenerateExtent || s.Y < degenerateExtent || s.Z < degenerateExtent
}

// smallBox returns the eight corners of a box around b's center. Usable axes
// keep their half extent; flat axes get a fraction of the smallest usable one.
func smallBox(b math3d.AABB) []math3d.Vec3 {
	size := b.Size()
	shortest := math.Inf(1)
	for i := range 3 {
		if s := size.Component(i); s >= degenerateExtent && s < shortest {
			shortest = s
		}
	}

	var half math3d.Vec3
	if math.IsInf(shortest, 1) {
		half = math3d.V3(fallbackHalfSize, fallbackHalfSize, fallbackHalfSize)
	} else {
		h := [3]float64{}
		for i := range 3 {
			if s := size.Component(i); s >= degenerateExtent {
				h[i] = s * 0.5
			} else {
				h[i] = shortest * flatAxisFraction
			}
		}
		half = math3d.V3(h[0], h[1], h[2])
	}

	c := b.Center()
	lo, hi := c.Sub(half), c.Add(half)
	return []math3d.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
	}
}
