package hull

import "fmt"

// handle names a face slot in an arena. A handle goes stale when its face is
// released; using a stale handle is a bug and panics.
type handle struct {
	slot int32
	gen  uint32
}

var noHandle = handle{slot: -1}

func (h handle) String() string {
	return fmt.Sprintf("#%d.%d", h.slot, h.gen)
}

// face is one outward-wound hull triangle. n[k] is the neighbour across the
// edge opposite v[k].
type face struct {
	v [3]int
	n [3]handle

	// candidate is the farthest vertex above the face, or -1.
	candidate int
	rise      float64
	evaluated bool
}

func (f *face) hasVertex(v int) bool {
	return f.v[0] == v || f.v[1] == v || f.v[2] == v
}

// edgeSlot returns the neighbour slot for the undirected edge (a, b).
func (f *face) edgeSlot(a, b int) int {
	for i := range 3 {
		j := (i + 1) % 3
		if (f.v[i] == a && f.v[j] == b) || (f.v[i] == b && f.v[j] == a) {
			return (i + 2) % 3
		}
	}
	panic(fmt.Sprintf("invariant: face %v has no edge (%d, %d)", f.v, a, b))
}

func (f *face) neighbor(a, b int) handle {
	return f.n[f.edgeSlot(a, b)]
}

func (f *face) setNeighbor(a, b int, h handle) {
	f.n[f.edgeSlot(a, b)] = h
}

// opposite returns the neighbour across the edge that does not touch v.
func (f *face) opposite(v int) handle {
	for k := range 3 {
		if f.v[k] == v {
			return f.n[k]
		}
	}
	panic(fmt.Sprintf("invariant: face %v does not contain vertex %d", f.v, v))
}

type faceSlot struct {
	face face
	gen  uint32
	live bool
}

// arena owns all faces of one hull build. Released slots are reused through
// a free list with a bumped generation.
type arena struct {
	slots []faceSlot
	free  []int32
	live  int
}

func (a *arena) alloc(v0, v1, v2 int) handle {
	f := face{
		v:         [3]int{v0, v1, v2},
		n:         [3]handle{noHandle, noHandle, noHandle},
		candidate: -1,
	}
	a.live++

	if n := len(a.free); n > 0 {
		slot := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[slot]
		s.face = f
		s.live = true
		return handle{slot: slot, gen: s.gen}
	}

	a.slots = append(a.slots, faceSlot{face: f, live: true})
	return handle{slot: int32(len(a.slots) - 1)}
}

func (a *arena) release(h handle) {
	s := a.slot(h)
	s.live = false
	s.gen++
	a.live--
	a.free = append(a.free, h.slot)
}

// get returns the face behind h. The pointer is only valid until the next
// alloc.
func (a *arena) get(h handle) *face {
	return &a.slot(h).face
}

func (a *arena) slot(h handle) *faceSlot {
	if h.slot < 0 || int(h.slot) >= len(a.slots) {
		panic(fmt.Sprintf("invariant: handle %v out of range", h))
	}
	s := &a.slots[h.slot]
	if !s.live || s.gen != h.gen {
		panic(fmt.Sprintf("invariant: stale handle %v", h))
	}
	return s
}

func (a *arena) isLive(h handle) bool {
	if h.slot < 0 || int(h.slot) >= len(a.slots) {
		return false
	}
	s := &a.slots[h.slot]
	return s.live && s.gen == h.gen
}

// at returns the handle of the face in slot i, if that slot is live.
func (a *arena) at(i int) (handle, bool) {
	s := &a.slots[i]
	return handle{slot: int32(i), gen: s.gen}, s.live
}

// checkFace verifies that every neighbour of h is live and links back to h
// across the shared edge with reversed winding.
func (a *arena) checkFace(h handle) {
	f := a.get(h)
	for k := range 3 {
		i1 := f.v[(k+1)%3]
		i2 := f.v[(k+2)%3]
		nh := f.n[k]
		if !a.isLive(nh) {
			panic(fmt.Sprintf("invariant: face %v neighbour %d is %v", f.v, k, nh))
		}
		nb := a.get(nh)
		if back := nb.neighbor(i2, i1); back != h {
			panic(fmt.Sprintf("invariant: face %v neighbour %v links back to %v", f.v, nb.v, back))
		}
	}
}

// checkAll runs checkFace over every live face.
func (a *arena) checkAll() {
	for i := range a.slots {
		if h, ok := a.at(i); ok {
			a.checkFace(h)
		}
	}
}
