// Package spatial provides bounding-volume trees for geometric queries.
package spatial

import (
	"cmp"
	"slices"

	"github.com/taigrr/convex/pkg/math3d"
)

// DefaultLeafSize is the number of items a leaf holds before it is split.
const DefaultLeafSize = 8

// Bounded is anything that can report an axis-aligned bounding box.
type Bounded interface {
	Bounds() math3d.AABB
}

// node is either a *leaf or a *branch.
type node[T Bounded] interface {
	box() math3d.AABB
}

type leaf[T Bounded] struct {
	bounds math3d.AABB
	items  []T
}

func (l *leaf[T]) box() math3d.AABB { return l.bounds }

type branch[T Bounded] struct {
	bounds      math3d.AABB
	left, right node[T]
}

func (b *branch[T]) box() math3d.AABB { return b.bounds }

// Tree is a binary bounding-volume hierarchy over items of type T.
// Node boxes are computed at build time and never shrink, so they stay valid
// upper bounds after items are removed.
type Tree[T Bounded] struct {
	root node[T]
	size int
}

// Build creates a tree over items. The slice is copied; the caller keeps
// ownership of its argument.
func Build[T Bounded](items []T, leafSize int) *Tree[T] {
	if leafSize <= 0 {
		leafSize = DefaultLeafSize
	}
	t := &Tree[T]{size: len(items)}
	if len(items) > 0 {
		t.root = buildNode(slices.Clone(items), leafSize)
	}
	return t
}

// buildNode splits at the median along the longest axis of the item centers.
func buildNode[T Bounded](items []T, leafSize int) node[T] {
	bounds := math3d.EmptyAABB()
	centers := math3d.EmptyAABB()
	for _, it := range items {
		b := it.Bounds()
		bounds = bounds.Union(b)
		centers = centers.Grow(b.Center())
	}

	spread := centers.Size()
	axis := spread.LongestAxis()
	if len(items) <= leafSize || spread.Component(axis) == 0 {
		return &leaf[T]{bounds: bounds, items: items}
	}

	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(a.Bounds().Center().Component(axis), b.Bounds().Center().Component(axis))
	})

	mid := len(items) / 2
	return &branch[T]{
		bounds: bounds,
		left:   buildNode(items[:mid:mid], leafSize),
		right:  buildNode(items[mid:], leafSize),
	}
}

// Len returns the number of items currently stored.
func (t *Tree[T]) Len() int {
	return t.size
}

// Bounds returns the box of the root node, or an empty box for an empty tree.
func (t *Tree[T]) Bounds() math3d.AABB {
	if t.root == nil {
		return math3d.EmptyAABB()
	}
	return t.root.box()
}

// Search visits items best-first. bound returns an upper bound on the score
// any item inside a box can reach; subtrees whose bound does not exceed
// floor() are skipped, and of two children the one with the larger bound is
// visited first. visit is called for every item in each visited leaf.
func (t *Tree[T]) Search(bound func(math3d.AABB) float64, floor func() float64, visit func(T)) {
	if t.root == nil {
		return
	}
	search(t.root, bound(t.root.box()), bound, floor, visit)
}

func search[T Bounded](n node[T], nb float64, bound func(math3d.AABB) float64, floor func() float64, visit func(T)) {
	if nb <= floor() {
		return
	}

	switch n := n.(type) {
	case *leaf[T]:
		for _, it := range n.items {
			visit(it)
		}
	case *branch[T]:
		first, second := n.left, n.right
		fb, sb := bound(first.box()), bound(second.box())
		if sb > fb {
			first, second = second, first
			fb, sb = sb, fb
		}
		search(first, fb, bound, floor, visit)
		search(second, sb, bound, floor, visit)
	}
}

// Remove deletes the first item matching match among the leaves whose box
// contains at. It reports whether an item was removed.
func (t *Tree[T]) Remove(at math3d.AABB, match func(T) bool) bool {
	if t.root == nil {
		return false
	}
	if remove(t.root, at, match) {
		t.size--
		return true
	}
	return false
}

func remove[T Bounded](n node[T], at math3d.AABB, match func(T) bool) bool {
	if !n.box().Contains(at) {
		return false
	}

	switch n := n.(type) {
	case *leaf[T]:
		for i, it := range n.items {
			if match(it) {
				last := len(n.items) - 1
				n.items[i] = n.items[last]
				n.items = n.items[:last]
				return true
			}
		}
		return false
	case *branch[T]:
		return remove(n.left, at, match) || remove(n.right, at, match)
	}
	return false
}
