// Package models provides the triangle meshes convex reads and writes.
package models

import (
	"github.com/taigrr/convex/pkg/hull"
	"github.com/taigrr/convex/pkg/math3d"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	Faces     []Face

	// Bounds is recalculated by CalculateBounds.
	Bounds math3d.AABB
}

// Face is a triangle given by three indices into Mesh.Positions.
type Face struct {
	V [3]int
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Positions: make([]math3d.Vec3, 0),
		Faces:     make([]Face, 0),
		Bounds:    math3d.EmptyAABB(),
	}
}

// FromHull converts a convex hull into a mesh sharing no memory with it.
func FromHull(name string, h *hull.ConvexHull) *Mesh {
	m := NewMesh(name)
	m.Positions = append(m.Positions, h.Vertices...)
	for i := range h.TriangleCount() {
		m.Faces = append(m.Faces, Face{V: h.Triangle(i)})
	}
	m.CalculateBounds()
	return m
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	m.Bounds = math3d.BoundsOf(m.Positions)
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.Bounds.Center()
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.Bounds.Size()
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Points returns the vertex positions. The slice is shared with the mesh.
func (m *Mesh) Points() []math3d.Vec3 {
	return m.Positions
}

// Triangles returns the mesh as a triangle soup.
func (m *Mesh) Triangles() []math3d.Triangle {
	tris := make([]math3d.Triangle, len(m.Faces))
	for i, f := range m.Faces {
		tris[i] = math3d.Tri(m.Positions[f.V[0]], m.Positions[f.V[1]], m.Positions[f.V[2]])
	}
	return tris
}

// Append adds all triangles of o to m, offsetting indices.
func (m *Mesh) Append(o *Mesh) {
	base := len(m.Positions)
	m.Positions = append(m.Positions, o.Positions...)
	for _, f := range o.Faces {
		m.Faces = append(m.Faces, Face{V: [3]int{f.V[0] + base, f.V[1] + base, f.V[2] + base}})
	}
	m.CalculateBounds()
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Positions {
		m.Positions[i] = mat.MulVec3(m.Positions[i])
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Positions: make([]math3d.Vec3, len(m.Positions)),
		Faces:     make([]Face, len(m.Faces)),
		Bounds:    m.Bounds,
	}
	copy(clone.Positions, m.Positions)
	copy(clone.Faces, m.Faces)
	return clone
}

// GetFace returns the vertex indices for face i.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}
