package render

import (
	"github.com/taigrr/convex/pkg/math3d"
)

// plane is Normal·p + D = 0 with the normal pointing into the frustum.
type plane struct {
	Normal math3d.Vec3
	D      float64
}

func (p plane) distance(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is the six inward-facing clip planes of a view-projection matrix,
// ordered left, right, bottom, top, near, far.
type Frustum struct {
	planes [6]plane
}

// NewFrustum extracts the clip planes from a view-projection matrix
// (Gribb/Hartmann).
func NewFrustum(m math3d.Mat4) Frustum {
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	r3, w := row(3)

	var f Frustum
	for i := range 3 {
		n, d := row(i)
		f.planes[i*2] = plane{Normal: r3.Add(n), D: w + d}
		f.planes[i*2+1] = plane{Normal: r3.Sub(n), D: w - d}
	}
	for i := range f.planes {
		if l := f.planes[i].Normal.Len(); l > 0 {
			f.planes[i].Normal = f.planes[i].Normal.Scale(1 / l)
			f.planes[i].D /= l
		}
	}
	return f
}

// Frustum returns the camera's current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustum(c.ViewProjectionMatrix())
}

// IntersectsAABB reports whether any part of box may be visible. It tests
// the box corner farthest along each plane normal.
func (f Frustum) IntersectsAABB(box math3d.AABB) bool {
	if box.IsEmpty() {
		return false
	}
	for _, p := range f.planes {
		if p.distance(box.SupportCorner(p.Normal)) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint tests if a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, pl := range f.planes {
		if pl.distance(p) < 0 {
			return false
		}
	}
	return true
}

// transformBounds returns the box bounding all eight transformed corners of b.
func transformBounds(b math3d.AABB, m math3d.Mat4) math3d.AABB {
	out := math3d.EmptyAABB()
	for i := range 8 {
		corner := b.Min
		if i&1 != 0 {
			corner.X = b.Max.X
		}
		if i&2 != 0 {
			corner.Y = b.Max.Y
		}
		if i&4 != 0 {
			corner.Z = b.Max.Z
		}
		out = out.Grow(m.MulVec3(corner))
	}
	return out
}
