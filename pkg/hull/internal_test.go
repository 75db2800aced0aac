package hull

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taigrr/convex/pkg/math3d"
	"github.com/taigrr/convex/pkg/spatial"
)

func TestGridSize(t *testing.T) {
	tests := []struct {
		maxVertices int
		want        int
	}{
		{0, 16},
		{4, 16},
		{16, 16},
		{32, 23},
		{100, 40},
		{256, 64},
		{4096, 64},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, GridSize(tt.maxVertices), "GridSize(%d)", tt.maxVertices)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	require.Equal(t, DefaultOptions(), o)

	o = Options{MaxNumVertices: 2, NormalEpsilon: math.NaN()}.withDefaults()
	require.Equal(t, 4, o.MaxNumVertices)
	require.Equal(t, DefaultNormalEpsilon, o.NormalEpsilon)
}

func TestCompressSmallInputUnchanged(t *testing.T) {
	pts := spherePoints(64, 1, 1, 1)
	out := Compress(pts, 16)
	require.Equal(t, pts, out)
}

func TestCompressThinsToGrid(t *testing.T) {
	pts := spherePoints(20_000, 2, 0.5, 1)
	out := Compress(pts, 16)
	require.LessOrEqual(t, len(out), 256)
	require.Greater(t, len(out), 64)

	in := make(map[math3d.Vec3]bool, len(pts))
	farthest := 0.0
	for _, p := range pts {
		in[p] = true
	}
	center := math3d.BoundsOf(pts).Center()
	for _, p := range pts {
		farthest = math.Max(farthest, p.DistanceSq(center))
	}

	keptFarthest := false
	for _, p := range out {
		require.True(t, in[p])
		if p.DistanceSq(center) == farthest {
			keptFarthest = true
		}
	}
	require.True(t, keptFarthest, "globally farthest point must survive")
}

func TestCompressKeepsHullVolume(t *testing.T) {
	pts := spherePoints(128_000, 3, 0.99, 1)
	out := Compress(pts, GridSize(DefaultMaxNumVertices))
	require.LessOrEqual(t, len(out), DefaultMaxNumVertices)

	full := referenceVolume(t, pts)
	thin := referenceVolume(t, out)
	require.GreaterOrEqual(t, thin, 0.99*full)

	if testing.Short() {
		t.Skip("skipping full hull build in short mode")
	}
	h, err := Compute(pts, DefaultOptions())
	require.NoError(t, err)
	require.LessOrEqual(t, len(h.Vertices), DefaultMaxNumVertices)
	require.NoError(t, h.Validate(validationEps(h)))
}

func TestOctahedralBucketRange(t *testing.T) {
	const g = 8
	seen := map[int]bool{}
	for _, d := range spherePoints(5000, 4, 1, 1) {
		b := octahedralBucket(d, g)
		require.GreaterOrEqual(t, b, 0)
		require.Less(t, b, g*g)
		seen[b] = true
	}
	require.Len(t, seen, g*g)
	require.Equal(t, 0, octahedralBucket(math3d.Vec3{}, g))
}

func TestWeldMergesNearDuplicates(t *testing.T) {
	pts := cubeCorners()
	center := math3d.Vec3{}
	for _, p := range cubeCorners() {
		// Slightly inside each corner, well within the welding tolerance.
		pts = append(pts, p.Scale(0.9999))
	}

	clean, err := weldVertices(pts, DefaultNormalEpsilon)
	require.NoError(t, err)
	require.False(t, clean.fallback)
	require.Len(t, clean.points, 8)
	for _, p := range clean.points {
		require.InDelta(t, 3.0, p.DistanceSq(center), 1e-12, "farther member must be kept")
	}
}

func TestWeldReplacesWithFartherPoint(t *testing.T) {
	pts := []math3d.Vec3{
		math3d.V3(0.9999, 1, 1),
		math3d.V3(1, 1, 1),
		math3d.V3(-1, -1, -1),
		math3d.V3(1, -1, 1),
		math3d.V3(-1, 1, -1),
	}
	clean, err := weldVertices(pts, DefaultNormalEpsilon)
	require.NoError(t, err)
	require.Len(t, clean.points, 4)
	require.Equal(t, math3d.V3(1, 1, 1), clean.points[0])
}

func TestWeldFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		points   []math3d.Vec3
		wantHalf math3d.Vec3
	}{
		{
			name:     "single point",
			points:   []math3d.Vec3{math3d.V3(1, 2, 3)},
			wantHalf: math3d.V3(0.01, 0.01, 0.01),
		},
		{
			name:     "flat in z",
			points:   []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(4, 0, 0), math3d.V3(0, 2, 0), math3d.V3(4, 2, 0)},
			wantHalf: math3d.V3(2, 1, 0.1),
		},
		{
			name:     "two points",
			points:   []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 1, 1)},
			wantHalf: math3d.V3(0.5, 0.5, 0.5),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clean, err := weldVertices(tt.points, DefaultNormalEpsilon)
			require.NoError(t, err)
			require.True(t, clean.fallback)
			require.Len(t, clean.points, 8)

			b := math3d.BoundsOf(clean.points)
			require.InDelta(t, tt.wantHalf.X*2, b.Size().X, 1e-12)
			require.InDelta(t, tt.wantHalf.Y*2, b.Size().Y, 1e-12)
			require.InDelta(t, tt.wantHalf.Z*2, b.Size().Z, 1e-12)

			src := math3d.BoundsOf(tt.points).Center()
			require.InDelta(t, 0, b.Center().Distance(src), 1e-12)
		})
	}
}

func TestWeldNoPoints(t *testing.T) {
	_, err := weldVertices([]math3d.Vec3{math3d.V3(math.NaN(), 0, 0)}, DefaultNormalEpsilon)
	require.ErrorIs(t, err, ErrNoPoints)
}

func TestCompactVertices(t *testing.T) {
	pts := []math3d.Vec3{
		math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(2, 0, 0),
		math3d.V3(3, 0, 0), math3d.V3(4, 0, 0),
	}
	verts, idx := compactVertices(pts, []int{4, 2, 0, 2, 4, 1})
	require.Equal(t, []int{0, 1, 2, 1, 0, 3}, idx)
	require.Equal(t, []math3d.Vec3{pts[4], pts[2], pts[0], pts[1]}, verts)
}

func TestArenaHandles(t *testing.T) {
	var a arena
	h0 := a.alloc(0, 1, 2)
	h1 := a.alloc(1, 2, 3)
	require.Equal(t, 2, a.live)
	require.True(t, a.isLive(h0))

	a.release(h0)
	require.False(t, a.isLive(h0))
	require.Panics(t, func() { a.get(h0) })
	require.Panics(t, func() { a.release(h0) })

	h2 := a.alloc(4, 5, 6)
	require.Equal(t, h0.slot, h2.slot, "released slot is reused")
	require.NotEqual(t, h0.gen, h2.gen)
	require.Equal(t, [3]int{4, 5, 6}, a.get(h2).v)
	require.Equal(t, -1, a.get(h2).candidate)
	require.True(t, a.isLive(h1))
	require.False(t, a.isLive(noHandle))
}

func TestFaceEdgeLookup(t *testing.T) {
	f := face{v: [3]int{7, 8, 9}}
	n := [3]handle{{slot: 1}, {slot: 2}, {slot: 3}}
	f.n = n

	require.Equal(t, n[2], f.neighbor(7, 8))
	require.Equal(t, n[2], f.neighbor(8, 7))
	require.Equal(t, n[0], f.neighbor(8, 9))
	require.Equal(t, n[1], f.neighbor(9, 7))
	require.Equal(t, n[1], f.opposite(8))
	require.Panics(t, func() { f.neighbor(7, 10) })
	require.Panics(t, func() { f.opposite(10) })
}

func TestSimplexTopology(t *testing.T) {
	pts := cubeCorners()
	b := &builder{
		points:  pts,
		extreme: make([]bool, len(pts)),
		used:    make([]bool, len(pts)),
		epsilon: 0.001,
	}
	b.index = spatial.NewMaxDotIndex(pts)

	s, ok := b.findSimplex()
	require.True(t, ok)
	b.initSimplex(s)
	require.Equal(t, 4, b.faces.live)
	require.NotPanics(t, b.faces.checkAll)

	for i := range b.faces.slots {
		h, _ := b.faces.at(i)
		f := b.faces.get(h)
		require.False(t, b.above(f, b.center, 0), "face %v must face away from the centroid", f.v)
	}
}
