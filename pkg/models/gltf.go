package models

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/convex/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// SkipDegenerate drops triangles that repeat a vertex index.
	SkipDegenerate bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		SkipDegenerate: true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file with default options.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and merges the triangle primitives of all of
// its meshes into one Mesh. Winding is kept as stored (counter-clockwise
// front faces).
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	mesh.CalculateBounds()

	return mesh, nil
}

// processMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Lines and points carry no volume.
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		if posIdx < 0 || posIdx >= len(doc.Accessors) {
			return fmt.Errorf("position accessor %d out of range", posIdx)
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		base := len(mesh.Positions)
		for _, p := range positions {
			mesh.Positions = append(mesh.Positions, math3d.V3(float64(p[0]), float64(p[1]), float64(p[2])))
		}

		var indices []uint32
		if prim.Indices != nil {
			if *prim.Indices < 0 || *prim.Indices >= len(doc.Accessors) {
				return fmt.Errorf("index accessor %d out of range", *prim.Indices)
			}
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// Unindexed primitives list their triangles sequentially.
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{V: [3]int{int(indices[i]), int(indices[i+1]), int(indices[i+2])}}
			for k := range 3 {
				if f.V[k] >= len(positions) {
					return fmt.Errorf("index %d out of range for %d positions", f.V[k], len(positions))
				}
				f.V[k] += base
			}
			if l.SkipDegenerate && (f.V[0] == f.V[1] || f.V[1] == f.V[2] || f.V[2] == f.V[0]) {
				continue
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return nil
}
