package spatial

import (
	"math"

	"github.com/taigrr/convex/pkg/math3d"
)

// indexedPoint is a point together with its position in the source slice.
type indexedPoint struct {
	index int
	pos   math3d.Vec3
}

func (p indexedPoint) Bounds() math3d.AABB {
	return math3d.AABB{Min: p.pos, Max: p.pos}
}

// MaxDotIndex answers "which point lies farthest along a direction" queries
// over a fixed point set, with support for permanently excluding points.
type MaxDotIndex struct {
	tree   *Tree[indexedPoint]
	points []math3d.Vec3
	live   []bool
}

// NewMaxDotIndex builds an index over points. Query results are indices into
// points.
func NewMaxDotIndex(points []math3d.Vec3) *MaxDotIndex {
	items := make([]indexedPoint, len(points))
	live := make([]bool, len(points))
	for i, p := range points {
		items[i] = indexedPoint{index: i, pos: p}
		live[i] = true
	}
	return &MaxDotIndex{
		tree:   Build(items, DefaultLeafSize),
		points: points,
		live:   live,
	}
}

// Len returns the number of points that have not been removed.
func (m *MaxDotIndex) Len() int {
	return m.tree.Len()
}

// FindBiggestDotProduct returns the index of the live point maximizing
// dot(point, dir). Of several points with an equal dot product the first one
// reached in traversal order wins. ok is false when no live point remains.
func (m *MaxDotIndex) FindBiggestDotProduct(dir math3d.Vec3) (index int, ok bool) {
	best := math.Inf(-1)
	index = -1

	m.tree.Search(
		func(b math3d.AABB) float64 {
			return b.SupportCorner(dir).Dot(dir)
		},
		func() float64 {
			if index < 0 {
				return math.Inf(-1)
			}
			return best
		},
		func(p indexedPoint) {
			if d := p.pos.Dot(dir); index < 0 || d > best {
				best = d
				index = p.index
			}
		},
	)

	return index, index >= 0
}

// Remove excludes the point at index from all later queries. It reports
// false if the point was already removed or the index is out of range.
func (m *MaxDotIndex) Remove(index int) bool {
	if index < 0 || index >= len(m.points) || !m.live[index] {
		return false
	}
	p := m.points[index]
	if !m.tree.Remove(math3d.AABB{Min: p, Max: p}, func(it indexedPoint) bool {
		return it.index == index
	}) {
		return false
	}
	m.live[index] = false
	return true
}
