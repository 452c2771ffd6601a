package intersect

import (
	"math"

	"github.com/akmonengine/kinema/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// SphereSphere tests two spheres for overlap, touching counts
func SphereSphere(a, b *actor.Sphere) bool {
	r := a.Radius + b.Radius
	return a.Position.Sub(b.Position).LenSqr() <= r*r
}

// ClosestPointSphere returns the point of the sphere surface nearest to point.
// A point at the center maps to the top of the sphere.
func ClosestPointSphere(s *actor.Sphere, point mgl64.Vec3) mgl64.Vec3 {
	return s.Position.Add(actor.SafeNormalize(point.Sub(s.Position)).Mul(s.Radius))
}

// SphereSpherePoint tests for overlap and returns the point of b closest to a's center
func SphereSpherePoint(a, b *actor.Sphere) (bool, mgl64.Vec3) {
	return SphereSphere(a, b), ClosestPointSphere(b, a.Position)
}

// ResolveSphereSphere separates two overlapping spheres
func ResolveSphereSphere(a, b *actor.Sphere) Resolution {
	d := a.Position.Sub(b.Position)
	dist := d.Len()

	normal := actor.Up
	if dist > Epsilon {
		normal = d.Mul(1 / dist)
	}
	depth := math.Max(0, a.Radius+b.Radius-dist)

	return Resolution{
		Normal: normal,
		Depth:  depth,
		// middle of the overlapping lens
		Point: b.Position.Add(normal.Mul(b.Radius - depth/2)),
	}
}
