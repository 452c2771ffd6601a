package intersect

import (
	"math"

	"github.com/akmonengine/kinema/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// RaySphere returns the distance along the ray to the sphere surface.
// A ray starting inside the sphere hits at distance 0.
func RaySphere(ray actor.Ray, s *actor.Sphere) (float64, bool) {
	m := ray.Origin.Sub(s.Position)
	b := m.Dot(ray.Direction)
	c := m.LenSqr() - s.Radius*s.Radius

	if c <= 0 {
		return 0, true
	}
	// outside and pointing away
	if b > 0 {
		return 0, false
	}
	a := ray.Direction.LenSqr()
	disc := b*b - a*c
	if disc < 0 {
		return 0, false
	}
	return (-b - math.Sqrt(disc)) / a, true
}

// RayAABB clips the ray against the slabs of box
func RayAABB(ray actor.Ray, box actor.AABB) (float64, bool) {
	tmin := 0.0
	tmax := math.Inf(1)

	for i := 0; i < 3; i++ {
		if math.Abs(ray.Direction[i]) < Epsilon {
			// parallel to the slab: must already be inside it
			if ray.Origin[i] < box.Min[i] || ray.Origin[i] > box.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / ray.Direction[i]
		t1 := (box.Min[i] - ray.Origin[i]) * inv
		t2 := (box.Max[i] - ray.Origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// RayBox casts against an axis-aligned box
func RayBox(ray actor.Ray, b *actor.Box) (float64, bool) {
	return RayAABB(ray, b.Bounds())
}

// RayOrientedBox casts against an oriented box in its local frame
func RayOrientedBox(ray actor.Ray, b *actor.OrientedBox) (float64, bool) {
	local := actor.Ray{
		Origin:    b.Transform.ToLocal(ray.Origin),
		Direction: b.Transform.InverseRotation.Rotate(ray.Direction),
	}
	return RayAABB(local, actor.AABB{Min: b.HalfExtents.Mul(-1), Max: b.HalfExtents})
}

// RayCast dispatches on the shape type. Unknown shapes are cast against their bounds.
func RayCast(ray actor.Ray, s actor.Shape) (float64, bool) {
	switch shape := s.(type) {
	case *actor.Sphere:
		return RaySphere(ray, shape)
	case *actor.Box:
		return RayBox(ray, shape)
	case *actor.OrientedBox:
		return RayOrientedBox(ray, shape)
	}
	return RayAABB(ray, actor.BoundsOf(s))
}

// RayPoint returns the hit point of the ray on s
func RayPoint(ray actor.Ray, s actor.Shape) (mgl64.Vec3, float64, bool) {
	t, ok := RayCast(ray, s)
	if !ok {
		return mgl64.Vec3{}, 0, false
	}
	return ray.At(t), t, true
}
