package hull

import "github.com/taigrr/convex/pkg/math3d"

// compactVertices drops unreferenced points and renumbers indices in order of
// first use.
func compactVertices(points []math3d.Vec3, indices []int) ([]math3d.Vec3, []int) {
	remap := make([]int, len(points))
	for i := range remap {
		remap[i] = -1
	}

	verts := make([]math3d.Vec3, 0, len(points))
	out := make([]int, len(indices))
	for i, idx := range indices {
		if remap[idx] < 0 {
			remap[idx] = len(verts)
			verts = append(verts, points[idx])
		}
		out[i] = remap[idx]
	}
	return verts, out
}
