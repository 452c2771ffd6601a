package intersect

import (
	"math"

	"github.com/akmonengine/kinema/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// BoxBox tests two axis-aligned boxes for overlap
func BoxBox(a, b *actor.Box) bool {
	return a.Bounds().Overlaps(b.Bounds())
}

// ClosestPointBox returns the point of the box nearest to point
func ClosestPointBox(b *actor.Box, point mgl64.Vec3) mgl64.Vec3 {
	return b.Bounds().Clamp(point)
}

// SphereBox tests a sphere against an axis-aligned box
func SphereBox(s *actor.Sphere, b *actor.Box) bool {
	ok, _ := SphereBoxPoint(s, b)
	return ok
}

// SphereBoxPoint also returns the point of the box closest to the sphere center
func SphereBoxPoint(s *actor.Sphere, b *actor.Box) (bool, mgl64.Vec3) {
	closest := ClosestPointBox(b, s.Position)
	return closest.Sub(s.Position).LenSqr() <= s.Radius*s.Radius, closest
}

// ResolveBoxBox separates two axis-aligned boxes, only the 3 world axes are candidates
func ResolveBoxBox(a, b *actor.Box) Resolution {
	d := a.Position.Sub(b.Position)

	bestAxis := 0
	bestDepth := math.Inf(1)
	for i := 0; i < 3; i++ {
		overlap := a.HalfExtents[i] + b.HalfExtents[i] - math.Abs(d[i])
		if overlap < bestDepth {
			bestDepth = overlap
			bestAxis = i
		}
	}

	normal := axisSign(unitAxes[bestAxis], a.Position, b.Position)

	// center of the overlap region
	lo := mgl64.Vec3{}
	hi := mgl64.Vec3{}
	amin, amax := a.Min(), a.Max()
	bmin, bmax := b.Min(), b.Max()
	for i := 0; i < 3; i++ {
		lo[i] = math.Max(amin[i], bmin[i])
		hi[i] = math.Min(amax[i], bmax[i])
	}

	return Resolution{
		Normal: normal,
		Depth:  math.Max(0, bestDepth),
		Point:  lo.Add(hi).Mul(0.5),
	}
}

// ResolveSphereBox separates a sphere from an axis-aligned box, the normal
// points toward the sphere
func ResolveSphereBox(s *actor.Sphere, b *actor.Box) Resolution {
	return resolveSphereLocal(s.Position, s.Radius, b.Position, b.HalfExtents, unitAxes)
}

// resolveSphereLocal works in the box frame given by axes
func resolveSphereLocal(center mgl64.Vec3, radius float64, boxCenter, halfExtents mgl64.Vec3, axes [3]mgl64.Vec3) Resolution {
	rel := center.Sub(boxCenter)
	local := mgl64.Vec3{rel.Dot(axes[0]), rel.Dot(axes[1]), rel.Dot(axes[2])}

	closest := local
	inside := true
	for i := 0; i < 3; i++ {
		if closest[i] > halfExtents[i] {
			closest[i] = halfExtents[i]
			inside = false
		} else if closest[i] < -halfExtents[i] {
			closest[i] = -halfExtents[i]
			inside = false
		}
	}

	toWorld := func(v mgl64.Vec3) mgl64.Vec3 {
		return axes[0].Mul(v[0]).Add(axes[1].Mul(v[1])).Add(axes[2].Mul(v[2]))
	}

	if !inside {
		d := local.Sub(closest)
		dist := d.Len()
		normal := actor.Up
		if dist > Epsilon {
			normal = toWorld(d.Mul(1 / dist))
		}
		return Resolution{
			Normal: normal,
			Depth:  math.Max(0, radius-dist),
			Point:  boxCenter.Add(toWorld(closest)),
		}
	}

	// center inside the box: push out through the nearest face
	bestAxis := 0
	bestGap := math.Inf(1)
	for i := 0; i < 3; i++ {
		gap := halfExtents[i] - math.Abs(local[i])
		if gap < bestGap {
			bestGap = gap
			bestAxis = i
		}
	}

	sign := 1.0
	if local[bestAxis] < 0 {
		sign = -1
	}
	face := local
	face[bestAxis] = sign * halfExtents[bestAxis]

	return Resolution{
		Normal: axes[bestAxis].Mul(sign),
		Depth:  radius + bestGap,
		Point:  boxCenter.Add(toWorld(face)),
	}
}
