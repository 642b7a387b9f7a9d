package arena

import (
	"io"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

// Solid is a static blocking box.
type Solid struct {
	Name string
	Box  Box
}

// World owns the static geometry of an arena: an infinite floor plane and
// a set of solid boxes. Solids are indexed by footprint in a chipmunk
// space so queries only test nearby boxes.
type World struct {
	floorZ float64
	solids []Solid

	space        *cp.Space
	shapeToSolid map[*cp.Shape]int
	log          *slog.Logger
}

// RayHit is the nearest static surface along a ray.
type RayHit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
	// Solid is the index of the solid that was hit, or -1 for the floor.
	Solid int
}

// NewWorld builds the static world. Solids without volume are skipped.
func NewWorld(floorZ float64, solids []Solid, logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	w := &World{
		floorZ:       floorZ,
		space:        cp.NewSpace(),
		shapeToSolid: make(map[*cp.Shape]int),
		log:          logger,
	}
	for _, s := range solids {
		w.AddSolid(s)
	}
	return w
}

// AddSolid indexes one more solid and returns its index, or -1 when the
// box has no volume.
func (w *World) AddSolid(s Solid) int {
	if w == nil || !s.Box.Valid() {
		if w != nil {
			w.log.Warn("arena: skipping solid without volume", "name", s.Name)
		}
		return -1
	}
	idx := len(w.solids)
	w.solids = append(w.solids, s)

	shape := cp.NewBox2(w.space.StaticBody, s.Box.planBB(), 0)
	w.space.AddShape(shape)
	w.shapeToSolid[shape] = idx
	return idx
}

func (w *World) FloorZ() float64 {
	if w == nil {
		return 0
	}
	return w.floorZ
}

func (w *World) Solids() []Solid {
	if w == nil {
		return nil
	}
	return w.solids
}

// Candidates returns the indices of solids whose footprint touches the
// footprint of area and whose height range overlaps it.
func (w *World) Candidates(area Box) []int {
	if w == nil || w.space == nil || len(w.solids) == 0 {
		return nil
	}
	var out []int
	w.space.BBQuery(area.planBB(), cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, data interface{}) {
		idx, ok := w.shapeToSolid[shape]
		if !ok {
			return
		}
		b := w.solids[idx].Box
		if b.Max.Z() < area.Min.Z() || b.Min.Z() > area.Max.Z() {
			return
		}
		out = append(out, idx)
	}, nil)
	return out
}

// CastRay returns the nearest static surface within maxDist of origin
// along dir. dir does not need to be normalized.
func (w *World) CastRay(origin, dir mgl64.Vec3, maxDist float64) (RayHit, bool) {
	if w == nil || maxDist <= 0 {
		return RayHit{}, false
	}
	l := dir.Len()
	if l < 1e-12 {
		return RayHit{}, false
	}
	dir = dir.Mul(1 / l)

	best := RayHit{Distance: math.Inf(1), Solid: -1}
	found := false

	if dir.Z() < 0 && origin.Z() >= w.floorZ {
		t := (w.floorZ - origin.Z()) / dir.Z()
		if t <= maxDist {
			best = RayHit{Point: origin.Add(dir.Mul(t)), Normal: mgl64.Vec3{0, 0, 1}, Distance: t, Solid: -1}
			found = true
		}
	}

	end := origin.Add(dir.Mul(maxDist))
	sweep := Box{Min: origin, Max: origin}.Union(Box{Min: end, Max: end})
	for _, idx := range w.Candidates(sweep) {
		t, n, ok := w.solids[idx].Box.IntersectRay(origin, dir, maxDist)
		if !ok || t >= best.Distance {
			continue
		}
		best = RayHit{Point: origin.Add(dir.Mul(t)), Normal: n, Distance: t, Solid: idx}
		found = true
	}
	return best, found
}

// Spawn is where the player starts, with the initial view yaw in degrees.
type Spawn struct {
	Position mgl64.Vec3
	Yaw      float64
}
