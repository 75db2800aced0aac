package render

import (
	"github.com/taigrr/convex/pkg/hull"
	"github.com/taigrr/convex/pkg/math3d"
	"github.com/taigrr/convex/pkg/models"
)

// Wireframe renders 3D wireframe objects.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer

	// Culled counts objects skipped by frustum culling since the last
	// ResetStats.
	Culled int
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		camera: camera,
		fb:     fb,
	}
}

// ResetStats clears the culling counter.
func (w *Wireframe) ResetStats() {
	w.Culled = 0
}

// DrawLine3D draws a line in 3D space.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	x1, y1, _, vis1 := w.camera.WorldToScreen(p1, w.fb.Width, w.fb.Height)
	x2, y2, _, vis2 := w.camera.WorldToScreen(p2, w.fb.Width, w.fb.Height)

	// Only endpoints are clipped; a line is dropped when either end is off
	// screen.
	if !vis1 || !vis2 {
		return
	}

	w.fb.DrawLine(int(x1), int(y1), int(x2), int(y2), color)
}

// visible reports whether bounds, moved by transform, may be on screen.
func (w *Wireframe) visible(bounds math3d.AABB, transform math3d.Mat4) bool {
	if w.camera.Frustum().IntersectsAABB(transformBounds(bounds, transform)) {
		return true
	}
	w.Culled++
	return false
}

// project maps transformed vertices to pixel positions.
func (w *Wireframe) project(verts []math3d.Vec3, transform math3d.Mat4) []Point {
	pts := make([]Point, len(verts))
	for i, v := range verts {
		x, y, _, vis := w.camera.WorldToScreen(transform.MulVec3(v), w.fb.Width, w.fb.Height)
		pts[i] = Point{X: int(x), Y: int(y), Visible: vis}
	}
	return pts
}

// DrawHull draws the edges of a convex hull.
func (w *Wireframe) DrawHull(h *hull.ConvexHull, transform math3d.Mat4, color Color) {
	if h == nil || !w.visible(h.Bounds(), transform) {
		return
	}
	w.fb.DrawTriangleEdges(w.project(h.Vertices, transform), h.Triangle, h.TriangleCount(), color)
}

// DrawMesh draws the edges of a triangle mesh.
func (w *Wireframe) DrawMesh(m *models.Mesh, transform math3d.Mat4, color Color) {
	if m == nil || !w.visible(m.Bounds, transform) {
		return
	}
	w.fb.DrawTriangleEdges(w.project(m.Positions, transform), m.GetFace, m.TriangleCount(), color)
}

// DrawBounds draws the twelve edges of an axis-aligned box.
func (w *Wireframe) DrawBounds(b math3d.AABB, transform math3d.Mat4, color Color) {
	if b.IsEmpty() {
		return
	}

	var corners [8]math3d.Vec3
	for i := range corners {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		corners[i] = transform.MulVec3(c)
	}

	// Corners differing in exactly one bit share an edge.
	for i := range 8 {
		for _, bit := range []int{1, 2, 4} {
			if j := i | bit; j != i {
				w.DrawLine3D(corners[i], corners[j], color)
			}
		}
	}
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) {
	origin := math3d.Zero3()
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	w.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	w.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}
