package arena

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

// Box is an axis-aligned box in world units.
type Box struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// BoxAt builds a box from a center and half extents.
func BoxAt(center, half mgl64.Vec3) Box {
	return Box{Min: center.Sub(half), Max: center.Add(half)}
}

func (b Box) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Box) HalfExtents() mgl64.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Valid reports whether the box has positive volume.
func (b Box) Valid() bool {
	return b.Max.X() > b.Min.X() && b.Max.Y() > b.Min.Y() && b.Max.Z() > b.Min.Z()
}

// Expand grows the box by half on every side.
func (b Box) Expand(half mgl64.Vec3) Box {
	return Box{Min: b.Min.Sub(half), Max: b.Max.Add(half)}
}

// Overlaps reports a strict overlap; touching faces do not count.
func (b Box) Overlaps(o Box) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] <= o.Min[i] || o.Max[i] <= b.Min[i] {
			return false
		}
	}
	return true
}

func (b Box) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Union returns the smallest box holding both.
func (b Box) Union(o Box) Box {
	return Box{
		Min: mgl64.Vec3{math.Min(b.Min[0], o.Min[0]), math.Min(b.Min[1], o.Min[1]), math.Min(b.Min[2], o.Min[2])},
		Max: mgl64.Vec3{math.Max(b.Max[0], o.Max[0]), math.Max(b.Max[1], o.Max[1]), math.Max(b.Max[2], o.Max[2])},
	}
}

// planBB is the box's footprint in the XY plane, the key it is indexed
// under in the chipmunk space.
func (b Box) planBB() cp.BB {
	return cp.BB{L: b.Min.X(), B: b.Min.Y(), R: b.Max.X(), T: b.Max.Y()}
}

// IntersectRay runs a slab test and returns the entry distance along dir
// and the face normal that was hit. Rays starting inside report a hit at
// distance 0 with a zero normal.
func (b Box) IntersectRay(origin, dir mgl64.Vec3, maxDist float64) (float64, mgl64.Vec3, bool) {
	tMin, tMax := 0.0, maxDist
	var normal mgl64.Vec3
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < 1e-12 {
			if origin[i] < b.Min[i] || origin[i] > b.Max[i] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (b.Min[i] - origin[i]) * inv
		t2 := (b.Max[i] - origin[i]) * inv
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tMin {
			tMin = t1
			normal = mgl64.Vec3{}
			normal[i] = sign
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, mgl64.Vec3{}, false
		}
	}
	return tMin, normal, true
}

// RaySphere returns the distance along dir to the first intersection with
// the sphere, if within maxDist. dir must be unit length.
func RaySphere(origin, dir, center mgl64.Vec3, radius, maxDist float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	if c > 0 && b > 0 {
		return 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 {
		t = 0
	}
	if t > maxDist {
		return 0, false
	}
	return t, true
}
