package hull

import (
	"math"

	"github.com/taigrr/convex/pkg/math3d"
)

// Compress thins a point cloud to at most gridSize² points by keeping, for
// each octahedral direction bucket around the bounding-box center, the point
// farthest from the center. Clouds small enough that thinning would not pay
// off (len(points)*4 <= gridSize²) are returned unchanged. Output is in
// bucket order.
func Compress(points []math3d.Vec3, gridSize int) []math3d.Vec3 {
	gridSize = max(gridSize, 1)
	points = finitePoints(points)
	if len(points)*4 <= gridSize*gridSize {
		return points
	}

	center := math3d.BoundsOf(points).Center()
	best := make([]int, gridSize*gridSize)
	bestDist := make([]float64, len(best))
	for i := range best {
		best[i] = -1
	}

	for i, p := range points {
		d := p.Sub(center)
		b := octahedralBucket(d, gridSize)
		if dist := d.LenSq(); best[b] < 0 || dist > bestDist[b] {
			best[b] = i
			bestDist[b] = dist
		}
	}

	out := make([]math3d.Vec3, 0, len(best))
	for _, i := range best {
		if i >= 0 {
			out = append(out, points[i])
		}
	}
	return out
}

// octahedralBucket maps a direction onto a gridSize×gridSize square by
// octahedral projection. The zero vector maps to bucket 0.
func octahedralBucket(d math3d.Vec3, gridSize int) int {
	l1 := math.Abs(d.X) + math.Abs(d.Y) + math.Abs(d.Z)
	if l1 == 0 {
		return 0
	}
	x, y, z := d.X/l1, d.Y/l1, d.Z/l1
	if z < 0 {
		x, y = (1-math.Abs(y))*signNotZero(x), (1-math.Abs(x))*signNotZero(y)
	}

	u := gridCell((x+1)*0.5, gridSize)
	v := gridCell((y+1)*0.5, gridSize)
	return v*gridSize + u
}

func gridCell(t float64, gridSize int) int {
	return min(max(int(t*float64(gridSize)), 0), gridSize-1)
}

func signNotZero(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
