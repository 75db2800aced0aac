package hull

import (
	"fmt"
	"math"

	"github.com/taigrr/convex/pkg/math3d"
	"github.com/taigrr/convex/pkg/spatial"
)

const (
	// relativeEpsilon scales the bounding-box diagonal into the distance
	// below which a point counts as lying on a face.
	relativeEpsilon = 0.001

	perturbRadius = 0.025
	coarseStep    = 45.0
	fineStep      = 5.0
	fineSpan      = 40.0
)

// builder grows a hull over a fixed point set by repeated extrusion.
type builder struct {
	points  []math3d.Vec3
	faces   arena
	index   *spatial.MaxDotIndex
	extreme []bool
	used    []bool

	epsilon float64
	center  math3d.Vec3
}

// buildHull returns outward-wound triangle indices into points for a hull with
// at most vertexLimit vertices.
func buildHull(points []math3d.Vec3, vertexLimit int) ([]int, error) {
	if len(points) < 4 {
		return nil, fmt.Errorf("%d points: %w", len(points), ErrDegenerate)
	}

	epsilon := math3d.BoundsOf(points).Diagonal() * relativeEpsilon
	if !(epsilon > 0) {
		return nil, fmt.Errorf("zero extent: %w", ErrDegenerate)
	}

	b := &builder{
		points:  points,
		index:   spatial.NewMaxDotIndex(points),
		extreme: make([]bool, len(points)),
		used:    make([]bool, len(points)),
		epsilon: epsilon,
	}

	simplex, ok := b.findSimplex()
	if !ok {
		return nil, fmt.Errorf("no initial simplex: %w", ErrDegenerate)
	}
	b.initSimplex(simplex)

	for remaining := max(vertexLimit, 4) - 4; remaining > 0; {
		h, ok := b.nextExtrusion()
		if !ok {
			break
		}

		f := b.faces.get(h)
		v := f.candidate
		if b.extreme[v] {
			f.candidate = -1
			continue
		}
		b.extreme[v] = true

		b.extrudeVisible(v)
		b.removeSlivers(v)
		b.evaluateNew()
		remaining--
	}

	if debugChecks {
		b.faces.checkAll()
	}
	return b.triangles(), nil
}

// findVertex returns the point maximizing dot(p, dir), accepting a candidate
// only when nearby perturbed directions agree on it. Unstable candidates are
// removed from the index. ok is false once the index is exhausted.
func (b *builder) findVertex(dir math3d.Vec3) (int, bool) {
	dir = dir.Normalize()
	for {
		m, ok := b.index.FindBiggestDotProduct(dir)
		if !ok {
			return -1, false
		}
		if b.used[m] {
			return m, true
		}

		u := orthogonal(dir)
		v := u.Cross(dir)
		probe := func(deg float64) int {
			rad := deg * math.Pi / 180
			d := v.Scale(math.Cos(rad)).Add(u.Scale(math.Sin(rad))).Scale(perturbRadius).Add(dir)
			i, _ := b.index.FindBiggestDotProduct(d)
			return i
		}

		ma := -1
		for a0 := 0.0; a0 <= 360; a0 += coarseStep {
			mb := probe(a0)
			if ma == m && mb == m {
				b.used[m] = true
				return m, true
			}
			if ma != -1 && mb != -1 {
				mc := ma
				for a1 := a0 - fineSpan; a1 <= a0; a1 += fineStep {
					md := probe(a1)
					if mc == m && md == m {
						b.used[m] = true
						return m, true
					}
					mc = md
				}
			}
			ma = mb
		}
		b.index.Remove(m)
	}
}

// orthogonal returns a unit vector perpendicular to d.
func orthogonal(d math3d.Vec3) math3d.Vec3 {
	a := d.Abs()
	axis := math3d.UnitX()
	switch {
	case a.Y <= a.X && a.Y <= a.Z:
		axis = math3d.UnitY()
	case a.Z <= a.X && a.Z <= a.Y:
		axis = math3d.UnitZ()
	}
	return d.Cross(axis).Normalize()
}

// findSimplex picks four points spanning a tetrahedron of positive volume,
// ordered so that the fourth lies on the positive side of the first three.
func (b *builder) findSimplex() ([4]int, bool) {
	var s [4]int
	distinct := func(i int, prev ...int) bool {
		for _, p := range prev {
			if i == p {
				return false
			}
		}
		return true
	}

	basisX := math3d.V3(0.01, 0.02, 1)
	p0, ok0 := b.findVertex(basisX)
	p1, ok1 := b.findVertex(basisX.Negate())
	if !ok0 || !ok1 || p0 == p1 {
		return s, false
	}

	basisX = b.points[p0].Sub(b.points[p1])
	basisY := math3d.V3(1, 0.02, 0).Cross(basisX)
	if alt := math3d.V3(-0.02, 1, 0).Cross(basisX); alt.LenSq() > basisY.LenSq() {
		basisY = alt
	}
	if basisY.IsZero() {
		return s, false
	}
	basisY = basisY.Normalize()

	p2, ok := b.findVertex(basisY)
	if !ok || !distinct(p2, p0, p1) {
		if p2, ok = b.findVertex(basisY.Negate()); !ok || !distinct(p2, p0, p1) {
			return s, false
		}
	}

	basisZ := b.points[p2].Sub(b.points[p0]).Cross(basisX)
	if basisZ.IsZero() {
		return s, false
	}
	basisZ = basisZ.Normalize()

	p3, ok := b.findVertex(basisZ)
	if !ok || !distinct(p3, p0, p1, p2) {
		if p3, ok = b.findVertex(basisZ.Negate()); !ok || !distinct(p3, p0, p1, p2) {
			return s, false
		}
	}

	a, c, d, e := b.points[p0], b.points[p1], b.points[p2], b.points[p3]
	vol := e.Sub(a).Dot(c.Sub(a).Cross(d.Sub(a)))
	if math.Abs(vol) <= b.epsilon*b.epsilon*b.epsilon {
		return s, false
	}
	if vol < 0 {
		p2, p3 = p3, p2
	}
	return [4]int{p0, p1, p2, p3}, true
}

// initSimplex creates the four outward faces of the starting tetrahedron.
func (b *builder) initSimplex(p [4]int) {
	t0 := b.faces.alloc(p[2], p[3], p[1])
	t1 := b.faces.alloc(p[3], p[2], p[0])
	t2 := b.faces.alloc(p[0], p[1], p[3])
	t3 := b.faces.alloc(p[1], p[0], p[2])
	b.faces.get(t0).n = [3]handle{t2, t3, t1}
	b.faces.get(t1).n = [3]handle{t3, t2, t0}
	b.faces.get(t2).n = [3]handle{t0, t1, t3}
	b.faces.get(t3).n = [3]handle{t1, t0, t2}
	for _, h := range []handle{t0, t1, t2, t3} {
		b.faces.checkFace(h)
	}

	for _, i := range p {
		b.extreme[i] = true
		b.center = b.center.Add(b.points[i])
	}
	b.center = b.center.Scale(0.25)

	b.evaluateNew()
}

func (b *builder) normal(f *face) math3d.Vec3 {
	n := math3d.TriangleNormal(b.points[f.v[0]], b.points[f.v[1]], b.points[f.v[2]]).Normalize()
	if n.IsZero() {
		return math3d.UnitX()
	}
	return n
}

func (b *builder) above(f *face, p math3d.Vec3, margin float64) bool {
	return b.normal(f).Dot(p.Sub(b.points[f.v[0]])) > margin
}

// evaluateNew computes the extrusion candidate of every face that has not
// been evaluated yet.
func (b *builder) evaluateNew() {
	for i := range b.faces.slots {
		h, live := b.faces.at(i)
		if !live || b.faces.get(h).evaluated {
			continue
		}

		f := b.faces.get(h)
		n := b.normal(f)
		m, ok := b.findVertex(n)

		f = b.faces.get(h)
		f.evaluated = true
		if !ok || b.extreme[m] {
			f.candidate = -1
			f.rise = 0
			continue
		}
		f.candidate = m
		f.rise = n.Dot(b.points[m].Sub(b.points[f.v[0]]))
	}
}

// nextExtrusion returns the face whose candidate rises highest above it, if
// any rises by more than epsilon.
func (b *builder) nextExtrusion() (handle, bool) {
	best, bestRise := noHandle, b.epsilon
	for i := range b.faces.slots {
		h, live := b.faces.at(i)
		if !live {
			continue
		}
		if f := b.faces.get(h); f.candidate >= 0 && f.rise > bestRise {
			best, bestRise = h, f.rise
		}
	}
	return best, best != noHandle
}

// extrudeVisible extrudes every face that v lies above.
func (b *builder) extrudeVisible(v int) {
	p := b.points[v]
	for i := len(b.faces.slots) - 1; i >= 0; i-- {
		h, live := b.faces.at(i)
		if !live {
			continue
		}
		if f := b.faces.get(h); !f.hasVertex(v) && b.above(f, p, 0.01*b.epsilon) {
			b.extrude(h, v)
		}
	}
}

// removeSlivers extrudes across faces around v that fold back toward the
// inside or have collapsed to near-zero area.
func (b *builder) removeSlivers(v int) {
	minCross := b.epsilon * b.epsilon * 0.1
	for guard := 4*b.faces.live + 16; guard > 0; guard-- {
		changed := false
		for i := len(b.faces.slots) - 1; i >= 0; i-- {
			h, live := b.faces.at(i)
			if !live {
				continue
			}
			f := b.faces.get(h)
			if !f.hasVertex(v) {
				continue
			}

			x, y, z := b.points[f.v[0]], b.points[f.v[1]], b.points[f.v[2]]
			thin := y.Sub(x).Cross(z.Sub(y)).Len() < minCross
			if !thin && !b.above(f, b.center, 0.01*b.epsilon) {
				continue
			}

			nh := f.opposite(v)
			if b.faces.get(nh).hasVertex(v) {
				continue
			}
			b.extrude(nh, v)
			changed = true
			break
		}
		if !changed {
			return
		}
	}
}

// extrude replaces face h0 with a fan of three faces meeting at v, then merges
// any back-to-back pair the fan produced.
func (b *builder) extrude(h0 handle, v int) {
	t0 := *b.faces.get(h0)
	x, y, z := t0.v[0], t0.v[1], t0.v[2]

	ha := b.faces.alloc(v, y, z)
	hb := b.faces.alloc(v, z, x)
	hc := b.faces.alloc(v, x, y)

	b.faces.get(ha).n = [3]handle{t0.n[0], hb, hc}
	b.faces.get(t0.n[0]).setNeighbor(y, z, ha)
	b.faces.get(hb).n = [3]handle{t0.n[1], hc, ha}
	b.faces.get(t0.n[1]).setNeighbor(z, x, hb)
	b.faces.get(hc).n = [3]handle{t0.n[2], ha, hb}
	b.faces.get(t0.n[2]).setNeighbor(x, y, hc)

	if debugChecks {
		b.faces.checkFace(ha)
		b.faces.checkFace(hb)
		b.faces.checkFace(hc)
	}

	for _, h := range []handle{ha, hb, hc} {
		if !b.faces.isLive(h) {
			continue
		}
		nh := b.faces.get(h).n[0]
		if b.faces.get(nh).hasVertex(v) {
			b.removeBackToBack(h, nh)
		}
	}

	b.faces.release(h0)
}

// removeBackToBack deletes two faces sharing all three vertices and stitches
// their remaining neighbours to each other.
func (b *builder) removeBackToBack(hs, ht handle) {
	t := b.faces.get(ht)
	edges := [3][2]int{{t.v[1], t.v[2]}, {t.v[2], t.v[0]}, {t.v[0], t.v[1]}}

	for _, e := range edges {
		a, c := e[0], e[1]
		sn := b.faces.get(hs).neighbor(a, c)
		tn := b.faces.get(ht).neighbor(c, a)
		b.faces.get(sn).setNeighbor(c, a, tn)
		b.faces.get(tn).setNeighbor(a, c, sn)
	}

	b.faces.release(hs)
	b.faces.release(ht)
}

// triangles flattens the live faces into an index list in slot order.
func (b *builder) triangles() []int {
	out := make([]int, 0, b.faces.live*3)
	for i := range b.faces.slots {
		if h, live := b.faces.at(i); live {
			f := b.faces.get(h)
			out = append(out, f.v[0], f.v[1], f.v[2])
		}
	}
	return out
}
