package intersect

import (
	"math"

	"github.com/akmonengine/kinema/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ClosestPointOrientedBox returns the point of the oriented box nearest to point
func ClosestPointOrientedBox(b *actor.OrientedBox, point mgl64.Vec3) mgl64.Vec3 {
	local := b.Transform.ToLocal(point)
	for i := 0; i < 3; i++ {
		local[i] = mgl64.Clamp(local[i], -b.HalfExtents[i], b.HalfExtents[i])
	}
	return b.Transform.ToWorld(local)
}

// SphereOrientedBox tests a sphere against an oriented box
func SphereOrientedBox(s *actor.Sphere, b *actor.OrientedBox) bool {
	ok, _ := SphereOrientedBoxPoint(s, b)
	return ok
}

// SphereOrientedBoxPoint also returns the point of the box closest to the sphere center
func SphereOrientedBoxPoint(s *actor.Sphere, b *actor.OrientedBox) (bool, mgl64.Vec3) {
	closest := ClosestPointOrientedBox(b, s.Position)
	return closest.Sub(s.Position).LenSqr() <= s.Radius*s.Radius, closest
}

// ResolveSphereOrientedBox separates a sphere from an oriented box, the normal
// points toward the sphere
func ResolveSphereOrientedBox(s *actor.Sphere, b *actor.OrientedBox) Resolution {
	return resolveSphereLocal(s.Position, s.Radius, b.Transform.Position, b.HalfExtents, b.Axes())
}

// BoxOrientedBox tests an axis-aligned box against an oriented box
func BoxOrientedBox(a *actor.Box, b *actor.OrientedBox) bool {
	return OrientedBoxOrientedBox(orient(a), b)
}

// ResolveBoxOrientedBox separates an axis-aligned box from an oriented box
func ResolveBoxOrientedBox(a *actor.Box, b *actor.OrientedBox) Resolution {
	return ResolveOrientedBoxOrientedBox(orient(a), b)
}

// OrientedBoxOrientedBox tests two oriented boxes with the 15 SAT axes
func OrientedBoxOrientedBox(a, b *actor.OrientedBox) bool {
	_, _, separated := minimumPenetration(a, b)
	return !separated
}

// ResolveOrientedBoxOrientedBox separates two oriented boxes along the SAT
// axis of minimum penetration: 3 face axes of each box and 9 edge cross products.
func ResolveOrientedBoxOrientedBox(a, b *actor.OrientedBox) Resolution {
	axis, depth, _ := minimumPenetration(a, b)
	normal := axisSign(axis, a.Center(), b.Center())

	// midpoint of the deepest features of each box along the normal
	pa := supportOrientedBox(a, normal.Mul(-1))
	pb := supportOrientedBox(b, normal)

	return Resolution{
		Normal: normal,
		Depth:  math.Max(0, depth),
		Point:  pa.Add(pb).Mul(0.5),
	}
}

// minimumPenetration returns the candidate axis with the smallest overlap.
// separated is true as soon as one axis shows a gap.
func minimumPenetration(a, b *actor.OrientedBox) (axis mgl64.Vec3, depth float64, separated bool) {
	axesA := a.Axes()
	axesB := b.Axes()
	d := a.Center().Sub(b.Center())

	var candidates [15]mgl64.Vec3
	count := 0
	for i := 0; i < 3; i++ {
		candidates[count] = axesA[i]
		count++
	}
	for i := 0; i < 3; i++ {
		candidates[count] = axesB[i]
		count++
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c := axesA[i].Cross(axesB[j])
			l := c.Len()
			// parallel edges add nothing the face axes do not cover
			if l < 1e-6 {
				continue
			}
			candidates[count] = c.Mul(1 / l)
			count++
		}
	}

	depth = math.Inf(1)
	axis = actor.Up
	for _, l := range candidates[:count] {
		ra := projectedRadius(axesA, a.HalfExtents, l)
		rb := projectedRadius(axesB, b.HalfExtents, l)
		overlap := ra + rb - math.Abs(d.Dot(l))
		if overlap < 0 {
			return l, overlap, true
		}
		// face axes come first and win ties against edge axes
		if overlap < depth-Epsilon {
			depth = overlap
			axis = l
		}
	}
	return axis, depth, false
}

func projectedRadius(axes [3]mgl64.Vec3, halfExtents, l mgl64.Vec3) float64 {
	return halfExtents[0]*math.Abs(axes[0].Dot(l)) +
		halfExtents[1]*math.Abs(axes[1].Dot(l)) +
		halfExtents[2]*math.Abs(axes[2].Dot(l))
}

// supportOrientedBox returns the furthest feature center of the box along dir.
// Axes perpendicular to dir contribute nothing, so a face yields its center.
func supportOrientedBox(b *actor.OrientedBox, dir mgl64.Vec3) mgl64.Vec3 {
	axes := b.Axes()
	p := b.Center()
	for i := 0; i < 3; i++ {
		proj := axes[i].Dot(dir)
		switch {
		case proj > 1e-6:
			p = p.Add(axes[i].Mul(b.HalfExtents[i]))
		case proj < -1e-6:
			p = p.Sub(axes[i].Mul(b.HalfExtents[i]))
		}
	}
	return p
}
