// Package decompose approximates a triangle mesh by a set of convex hulls.
//
// The mesh is split recursively along the axis and position that minimize
// the summed bounding-box volume of the two halves, and every final group of
// triangles is replaced by the convex hull of its corners.
package decompose

import (
	"context"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/convex/pkg/hull"
	"github.com/taigrr/convex/pkg/math3d"
)

// parallelDepth is the recursion depth down to which siblings run
// concurrently.
const parallelDepth = 3

// Options configures a decomposition.
type Options struct {
	// SplitsPerAxis is the number of slabs candidate split planes are taken
	// between.
	SplitsPerAxis int
	// MaxRecursiveDepth bounds the number of splits along any path.
	MaxRecursiveDepth int
	// MaxVerticesPerHull is the vertex budget of every output hull.
	MaxVerticesPerHull int
	// Axes are the split directions to try. They need not be unit length.
	Axes []math3d.Vec3
	// MinTriangles stops splitting groups with this many triangles or fewer.
	MinTriangles int
	// NormalEpsilon is passed through to hull construction.
	NormalEpsilon float64
	// Parallel runs sibling groups concurrently.
	Parallel bool
	// Logger receives debug output. Nil disables logging.
	Logger *log.Logger
}

// DefaultOptions returns the default decomposition options.
func DefaultOptions() Options {
	return Options{
		SplitsPerAxis:      6,
		MaxRecursiveDepth:  5,
		MaxVerticesPerHull: 12,
		Axes:               []math3d.Vec3{math3d.UnitX(), math3d.UnitY(), math3d.UnitZ()},
		MinTriangles:       8,
		NormalEpsilon:      hull.DefaultNormalEpsilon,
		Parallel:           true,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.SplitsPerAxis < 2 {
		o.SplitsPerAxis = def.SplitsPerAxis
	}
	if o.MaxRecursiveDepth < 0 {
		o.MaxRecursiveDepth = 0
	}
	if o.MaxVerticesPerHull <= 0 {
		o.MaxVerticesPerHull = def.MaxVerticesPerHull
	}
	if len(o.Axes) == 0 {
		o.Axes = def.Axes
	}
	if o.MinTriangles < 1 {
		o.MinTriangles = 1
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// group is a subset of the input triangles.
type group struct {
	tris   []math3d.Triangle
	bounds math3d.AABB
}

func newGroup(tris []math3d.Triangle) group {
	b := math3d.EmptyAABB()
	for _, t := range tris {
		b = b.Union(t.Bounds())
	}
	return group{tris: tris, bounds: b}
}

type decomposer struct {
	opts  Options
	axes  []math3d.Vec3
	hulls hull.Options
	log   *log.Logger
}

// Decompose splits tris into groups and returns one convex hull per group, in
// left-to-right split order. Groups whose hull cannot be built are dropped.
// The only error returned is the context's.
func Decompose(ctx context.Context, tris []math3d.Triangle, opts Options) ([]*hull.ConvexHull, error) {
	opts = opts.withDefaults()

	d := &decomposer{
		opts: opts,
		hulls: hull.Options{
			MaxNumVertices: opts.MaxVerticesPerHull,
			NormalEpsilon:  opts.NormalEpsilon,
		},
		log: opts.Logger,
	}
	for _, a := range opts.Axes {
		if n := a.Normalize(); !n.IsZero() && n.IsFinite() {
			d.axes = append(d.axes, n)
		}
	}

	if len(tris) == 0 {
		return nil, ctx.Err()
	}

	d.log.Debug("decomposing", "triangles", len(tris), "depth", opts.MaxRecursiveDepth, "splits", opts.SplitsPerAxis)
	return d.run(ctx, newGroup(tris), 0)
}

func (d *decomposer) run(ctx context.Context, g group, depth int) ([]*hull.ConvexHull, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if depth >= d.opts.MaxRecursiveDepth || len(g.tris) <= d.opts.MinTriangles {
		return d.leaf(g, depth), nil
	}
	left, right, ok := d.split(g)
	if !ok {
		return d.leaf(g, depth), nil
	}

	if !d.opts.Parallel || depth >= parallelDepth {
		lh, err := d.run(ctx, left, depth+1)
		if err != nil {
			return nil, err
		}
		rh, err := d.run(ctx, right, depth+1)
		if err != nil {
			return nil, err
		}
		return append(lh, rh...), nil
	}

	var lh, rh []*hull.ConvexHull
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		lh, err = d.run(ctx, left, depth+1)
		return err
	})
	eg.Go(func() error {
		var err error
		rh, err = d.run(ctx, right, depth+1)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return append(lh, rh...), nil
}

// leaf hulls all corners of the group. A nil result means the group was
// dropped.
func (d *decomposer) leaf(g group, depth int) []*hull.ConvexHull {
	points := make([]math3d.Vec3, 0, len(g.tris)*3)
	for _, t := range g.tris {
		points = append(points, t[0], t[1], t[2])
	}

	h, err := hull.Compute(points, d.hulls)
	if err != nil {
		d.log.Debug("dropping group", "triangles", len(g.tris), "depth", depth, "err", err)
		return nil
	}
	d.log.Debug("hull", "triangles", len(g.tris), "depth", depth, "extent", g.bounds.Size(), "vertices", len(h.Vertices), "fallback", h.Fallback)
	return []*hull.ConvexHull{h}
}

// splitChoice is a candidate split plane between two slabs along an axis.
type splitChoice struct {
	axis  math3d.Vec3
	lo    float64
	width float64
	cut   int
}

func (c splitChoice) bucket(t math3d.Triangle, splits int) int {
	p := t.Centroid().Dot(c.axis)
	return min(max(int((p-c.lo)/c.width), 0), splits-1)
}

// split partitions g at the candidate plane with the smallest summed box
// volume of both halves. ok is false when no plane leaves both sides
// non-empty.
func (d *decomposer) split(g group) (left, right group, ok bool) {
	splits := d.opts.SplitsPerAxis
	bestScore := math.Inf(1)
	var best splitChoice

	boxes := make([]math3d.AABB, splits)
	counts := make([]int, splits)
	below := make([]math3d.AABB, splits)

	for _, axis := range d.axes {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, t := range g.tris {
			p := t.Centroid().Dot(axis)
			lo = math.Min(lo, p)
			hi = math.Max(hi, p)
		}
		if !(hi > lo) {
			continue
		}

		c := splitChoice{axis: axis, lo: lo, width: (hi - lo) / float64(splits)}
		for i := range boxes {
			boxes[i] = math3d.EmptyAABB()
			counts[i] = 0
		}
		for _, t := range g.tris {
			b := c.bucket(t, splits)
			boxes[b] = boxes[b].Union(t.Bounds())
			counts[b]++
		}

		acc := math3d.EmptyAABB()
		for i := range splits {
			below[i] = acc
			acc = acc.Union(boxes[i])
		}

		above := math3d.EmptyAABB()
		nAbove := 0
		aboveBoxes := make([]math3d.AABB, splits)
		aboveCounts := make([]int, splits)
		for i := splits - 1; i >= 1; i-- {
			above = above.Union(boxes[i])
			nAbove += counts[i]
			aboveBoxes[i] = above
			aboveCounts[i] = nAbove
		}

		nBelow := 0
		for cut := 1; cut < splits; cut++ {
			nBelow += counts[cut-1]
			if nBelow == 0 || aboveCounts[cut] == 0 {
				continue
			}
			if score := below[cut].Volume() + aboveBoxes[cut].Volume(); score < bestScore {
				bestScore = score
				c.cut = cut
				best = c
			}
		}
	}

	if math.IsInf(bestScore, 1) {
		return group{}, group{}, false
	}

	var lt, rt []math3d.Triangle
	for _, t := range g.tris {
		if best.bucket(t, splits) < best.cut {
			lt = append(lt, t)
		} else {
			rt = append(rt, t)
		}
	}
	return newGroup(lt), newGroup(rt), true
}
