package math3d

import "math"

// AABB represents an axis-aligned bounding box.
// An empty box has Min > Max on every axis; growing it with a point yields a
// degenerate box around that point.
type AABB struct {
	Min Vec3
	Max Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns a box that contains nothing and absorbs the first point
// or box it is grown with.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// BoundsOf returns the bounding box of a point set.
func BoundsOf(points []Vec3) AABB {
	b := EmptyAABB()
	for _, p := range points {
		b = b.Grow(p)
	}
	return b
}

// Grow returns the box extended to contain p.
func (b AABB) Grow(p Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// IsEmpty reports whether the box contains no point at all.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Center returns the center of the AABB.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Diagonal returns the length of the box diagonal.
func (b AABB) Diagonal() float64 {
	return b.Size().Len()
}

// Volume returns the box volume; empty and flat boxes have volume zero.
func (b AABB) Volume() float64 {
	s := b.Size()
	return s.X * s.Y * s.Z
}

// ContainsPoint returns true if the point is inside the AABB.
func (b AABB) ContainsPoint(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Contains reports whether o lies completely inside b.
func (b AABB) Contains(o AABB) bool {
	return b.ContainsPoint(o.Min) && b.ContainsPoint(o.Max)
}

// Expand returns the box grown by margin on every side.
func (b AABB) Expand(margin float64) AABB {
	m := Vec3{margin, margin, margin}
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// SupportCorner returns the corner that maximizes the dot product with dir.
// Each axis picks Max where dir is non-negative and Min otherwise.
func (b AABB) SupportCorner(dir Vec3) Vec3 {
	c := b.Min
	if dir.X >= 0 {
		c.X = b.Max.X
	}
	if dir.Y >= 0 {
		c.Y = b.Max.Y
	}
	if dir.Z >= 0 {
		c.Z = b.Max.Z
	}
	return c
}
