package models

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/convex/pkg/hull"
)

// ExportHullsGLB writes each hull as its own mesh and node into a binary
// GLTF file.
func ExportHullsGLB(path string, hulls []*hull.ConvexHull) error {
	doc := gltf.NewDocument()

	for i, h := range hulls {
		if len(h.Indices) == 0 {
			continue
		}

		positions := make([][3]float32, len(h.Vertices))
		for j, v := range h.Vertices {
			positions[j] = [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
		}
		indices := make([]uint32, len(h.Indices))
		for j, idx := range h.Indices {
			indices[j] = uint32(idx)
		}

		name := fmt.Sprintf("hull_%d", i)
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: name,
			Primitives: []*gltf.Primitive{{
				Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
				Attributes: map[string]int{gltf.POSITION: modeler.WritePosition(doc, positions)},
				Mode:       gltf.PrimitiveTriangles,
			}},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: name,
			Mesh: gltf.Index(len(doc.Meshes) - 1),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}

	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save glb: %w", err)
	}
	return nil
}
