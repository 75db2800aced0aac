package hull

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/convex/pkg/math3d"
)

func cubeCorners() []math3d.Vec3 {
	var pts []math3d.Vec3
	for _, x := range []float64{-1, 1} {
		for _, y := range []float64{-1, 1} {
			for _, z := range []float64{-1, 1} {
				pts = append(pts, math3d.V3(x, y, z))
			}
		}
	}
	return pts
}

// spherePoints returns n points uniformly distributed in direction with a
// radius drawn from [rMin, rMax].
func spherePoints(n int, seed uint64, rMin, rMax float64) []math3d.Vec3 {
	rng := rand.New(rand.NewPCG(seed, seed*31+7))
	pts := make([]math3d.Vec3, 0, n)
	for len(pts) < n {
		d := math3d.V3(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64())
		if d.LenSq() < 1e-12 {
			continue
		}
		r := rMin + (rMax-rMin)*rng.Float64()
		pts = append(pts, d.Normalize().Scale(r))
	}
	return pts
}

// referenceVolume computes the hull volume of points with an independent
// quickhull implementation.
func referenceVolume(t testing.TB, points []math3d.Vec3) float64 {
	t.Helper()
	cloud := make([]r3.Vector, len(points))
	for i, p := range points {
		cloud[i] = r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
	}
	ch := new(quickhull.QuickHull).ConvexHull(cloud, true, true, 0)
	require.NotEmpty(t, ch.Indices)

	var sum float64
	o := cloud[ch.Indices[0]]
	for i := 0; i+2 < len(ch.Indices); i += 3 {
		a := cloud[ch.Indices[i]].Sub(o)
		b := cloud[ch.Indices[i+1]].Sub(o)
		c := cloud[ch.Indices[i+2]].Sub(o)
		sum += a.Dot(b.Cross(c))
	}
	return math.Abs(sum) / 6
}

func validationEps(h *ConvexHull) float64 {
	return h.Bounds().Diagonal() * 1e-3
}

func requireSubset(t *testing.T, h *ConvexHull, input []math3d.Vec3) {
	t.Helper()
	in := make(map[math3d.Vec3]bool, len(input))
	for _, p := range input {
		in[p] = true
	}
	for i, v := range h.Vertices {
		require.True(t, in[v], "hull vertex %d %v is not an input point", i, v)
	}
}

func TestCube(t *testing.T) {
	pts := cubeCorners()
	h, err := Compute(pts, DefaultOptions())
	require.NoError(t, err)

	require.False(t, h.Fallback)
	require.Len(t, h.Vertices, 8)
	require.Equal(t, 12, h.TriangleCount())
	require.InDelta(t, 8.0, h.Volume(), 1e-9)
	require.NoError(t, h.Validate(1e-9))
	requireSubset(t, h, pts)
}

func TestCubeWithInteriorPoints(t *testing.T) {
	pts := cubeCorners()
	rng := rand.New(rand.NewPCG(3, 4))
	for range 500 {
		pts = append(pts, math3d.V3(rng.Float64()*1.8-0.9, rng.Float64()*1.8-0.9, rng.Float64()*1.8-0.9))
	}

	h, err := ComputeNaive(pts, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, h.Vertices, 8)
	require.InDelta(t, 8.0, h.Volume(), 1e-9)
	require.NoError(t, h.Validate(1e-9))
}

func TestCollinearFallsBackToBox(t *testing.T) {
	var pts []math3d.Vec3
	for i := range 10 {
		pts = append(pts, math3d.V3(float64(i), 0, 0))
	}

	h, err := Compute(pts, DefaultOptions())
	require.NoError(t, err)
	require.True(t, h.Fallback)
	require.Len(t, h.Vertices, 8)
	require.Equal(t, 12, h.TriangleCount())
	require.NoError(t, h.Validate(1e-9))

	// x keeps its extent of 9, y and z get 5% of it on each side.
	require.InDelta(t, 9*0.9*0.9, h.Volume(), 1e-9)
	b := h.Bounds()
	require.InDelta(t, 0.0, b.Min.X, 1e-12)
	require.InDelta(t, 9.0, b.Max.X, 1e-12)
}

func TestSinglePointFallsBackToTinyBox(t *testing.T) {
	h, err := Compute([]math3d.Vec3{math3d.V3(5, 5, 5)}, DefaultOptions())
	require.NoError(t, err)
	require.True(t, h.Fallback)
	require.InDelta(t, 0.02*0.02*0.02, h.Volume(), 1e-15)
	require.InDelta(t, 5.0, h.Bounds().Center().X, 1e-12)
}

func TestNoFinitePoints(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)

	tests := []struct {
		name   string
		points []math3d.Vec3
	}{
		{"nil", nil},
		{"nan", []math3d.Vec3{math3d.V3(nan, 0, 0), math3d.V3(0, nan, 0)}},
		{"inf", []math3d.Vec3{math3d.V3(inf, 0, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.points, DefaultOptions())
			require.ErrorIs(t, err, ErrNoPoints)
			_, err = ComputeNaive(tt.points, DefaultOptions())
			require.ErrorIs(t, err, ErrNoPoints)
		})
	}
}

func TestNonFinitePointsAreIgnored(t *testing.T) {
	pts := append(cubeCorners(), math3d.V3(math.NaN(), 100, 0), math3d.V3(0, math.Inf(-1), 0))
	h, err := Compute(pts, DefaultOptions())
	require.NoError(t, err)
	require.InDelta(t, 8.0, h.Volume(), 1e-9)
}

func TestTiltedPlaneFallsBackToBox(t *testing.T) {
	var pts []math3d.Vec3
	for i := range 10 {
		for j := range 10 {
			x, y := float64(i), float64(j)
			pts = append(pts, math3d.V3(x, y, -x-y))
		}
	}

	for name, compute := range map[string]func([]math3d.Vec3, Options) (*ConvexHull, error){
		"filtered": Compute,
		"naive":    ComputeNaive,
	} {
		t.Run(name, func(t *testing.T) {
			h, err := compute(pts, DefaultOptions())
			require.NoError(t, err)
			require.True(t, h.Fallback)
			require.Len(t, h.Vertices, 8)
			require.NoError(t, h.Validate(1e-9))

			// The bounds are not flat, so the box is the bounds themselves.
			require.Equal(t, math3d.BoundsOf(pts), h.Bounds())
			require.InDelta(t, 9*9*18.0, h.Volume(), 1e-9)
		})
	}
}

func TestOffAxisDegenerateInputFallsBackToBox(t *testing.T) {
	tests := []struct {
		name   string
		points []math3d.Vec3
		volume float64
	}{
		{
			name:   "diagonal collinear",
			points: []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 1, 1), math3d.V3(2, 2, 2)},
			volume: 8,
		},
		{
			name:   "long diagonal collinear",
			points: []math3d.Vec3{math3d.V3(-1, 2, 0), math3d.V3(0, 3, 2), math3d.V3(1, 4, 4), math3d.V3(3, 6, 8)},
			volume: 4 * 4 * 8,
		},
		{
			name:   "tilted triangle",
			points: []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 0, 1), math3d.V3(0, 1, 1)},
			volume: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Compute(tt.points, DefaultOptions())
			require.NoError(t, err)
			require.True(t, h.Fallback)
			require.Len(t, h.Vertices, 8)
			require.Equal(t, 12, h.TriangleCount())
			require.NoError(t, h.Validate(1e-9))
			require.InDelta(t, tt.volume, h.Volume(), 1e-9)
			require.True(t, math3d.BoundsOf(tt.points).Expand(1e-12).Contains(h.Bounds()))
		})
	}
}

func TestBuilderReportsDegenerate(t *testing.T) {
	pts := []math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 1, 1), math3d.V3(2, 2, 2), math3d.V3(3, 3, 3)}
	_, err := buildHull(pts, DefaultMaxNumVertices)
	require.True(t, errors.Is(err, ErrDegenerate), "got %v", err)
}

func TestSphereWithVertexBudget(t *testing.T) {
	pts := spherePoints(1000, 42, 1, 1)
	opts := Options{MaxNumVertices: 32, NormalEpsilon: 0.001}

	h, err := Compute(pts, opts)
	require.NoError(t, err)
	require.LessOrEqual(t, len(h.Vertices), 32)
	require.NoError(t, h.Validate(validationEps(h)))
	requireSubset(t, h, pts)

	ref := referenceVolume(t, pts)
	require.GreaterOrEqual(t, h.Volume(), 0.8*ref)
	require.LessOrEqual(t, h.Volume(), ref*(1+1e-9))
}

func TestSphereMatchesReference(t *testing.T) {
	pts := spherePoints(400, 7, 0.5, 1)

	h, err := ComputeNaive(pts, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, h.Validate(validationEps(h)))
	requireSubset(t, h, pts)

	ref := referenceVolume(t, pts)
	require.InEpsilon(t, ref, h.Volume(), 0.01)
}

func TestDuplicatedPointsGiveSameHull(t *testing.T) {
	pts := spherePoints(200, 11, 0.8, 1)
	doubled := append(append([]math3d.Vec3{}, pts...), pts...)

	a, err := ComputeNaive(pts, DefaultOptions())
	require.NoError(t, err)
	b, err := ComputeNaive(doubled, DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, a.TriangleCount(), b.TriangleCount())
	require.InDelta(t, a.Volume(), b.Volume(), 1e-12)
}

func TestHullProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(99, 100))
	uniform := func(n int, size math3d.Vec3) []math3d.Vec3 {
		pts := make([]math3d.Vec3, n)
		for i := range pts {
			pts[i] = math3d.V3(rng.Float64()-0.5, rng.Float64()-0.5, rng.Float64()-0.5).Mul(size)
		}
		return pts
	}

	tests := []struct {
		name   string
		points []math3d.Vec3
		opts   Options
	}{
		{"box", uniform(2000, math3d.V3(1, 2, 3)), DefaultOptions()},
		{"plate", uniform(500, math3d.V3(10, 10, 0.01)), DefaultOptions()},
		{"needle", uniform(500, math3d.V3(0.05, 0.05, 20)), DefaultOptions()},
		{"budget", uniform(2000, math3d.V3(1, 1, 1)), Options{MaxNumVertices: 12}},
		{"shell", spherePoints(3000, 5, 0.99, 1), DefaultOptions()},
		{"offset", func() []math3d.Vec3 {
			pts := spherePoints(300, 6, 1, 1)
			for i := range pts {
				pts[i] = pts[i].Add(math3d.V3(1000, -500, 250))
			}
			return pts
		}(), DefaultOptions()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Compute(tt.points, tt.opts)
			require.NoError(t, err)
			require.NoError(t, h.Validate(validationEps(h)))
			requireSubset(t, h, tt.points)
			require.Greater(t, h.Volume(), 0.0)

			in := math3d.BoundsOf(tt.points)
			require.True(t, in.Contains(h.Bounds()))

			limit := tt.opts.withDefaults().MaxNumVertices
			require.LessOrEqual(t, len(h.Vertices), limit)
		})
	}
}

func TestVolumeBoundsAndTriangles(t *testing.T) {
	h := &ConvexHull{
		Vertices: []math3d.Vec3{
			math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0, 0, 1),
		},
		Indices: []int{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3},
	}
	require.Equal(t, 4, h.TriangleCount())
	require.Equal(t, [3]int{0, 1, 3}, h.Triangle(1))
	require.InDelta(t, 1.0/6.0, h.Volume(), 1e-12)
	require.Equal(t, math3d.V3(1, 1, 1), h.Bounds().Max)
	require.NoError(t, h.Validate(1e-12))

	require.Zero(t, (&ConvexHull{}).Volume())
}

func TestValidateRejects(t *testing.T) {
	tet := func() *ConvexHull {
		return &ConvexHull{
			Vertices: []math3d.Vec3{
				math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0, 0, 1),
			},
			Indices: []int{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3},
		}
	}

	tests := []struct {
		name   string
		mutate func(h *ConvexHull)
	}{
		{"stride", func(h *ConvexHull) { h.Indices = h.Indices[:11] }},
		{"range", func(h *ConvexHull) { h.Indices[4] = 9 }},
		{"unused vertex", func(h *ConvexHull) { h.Vertices = append(h.Vertices, math3d.V3(0.1, 0.1, 0.1)) }},
		{"open", func(h *ConvexHull) { h.Indices = h.Indices[:9] }},
		{"inverted", func(h *ConvexHull) {
			for i := 0; i < len(h.Indices); i += 3 {
				h.Indices[i+1], h.Indices[i+2] = h.Indices[i+2], h.Indices[i+1]
			}
		}},
		{"concave", func(h *ConvexHull) { h.Vertices[3] = math3d.V3(0.1, 0.1, -0.5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tet()
			require.NoError(t, h.Validate(1e-9))
			tt.mutate(h)
			require.ErrorIs(t, h.Validate(1e-9), ErrInvalidHull)
		})
	}
}

func BenchmarkComputeSphere(b *testing.B) {
	pts := spherePoints(10_000, 1, 0.9, 1)
	opts := DefaultOptions()
	for b.Loop() {
		if _, err := Compute(pts, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkComputeNaiveSphere(b *testing.B) {
	pts := spherePoints(2_000, 2, 0.9, 1)
	opts := DefaultOptions()
	for b.Loop() {
		if _, err := ComputeNaive(pts, opts); err != nil {
			b.Fatal(err)
		}
	}
}
