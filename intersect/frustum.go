package intersect

import (
	"math"

	"github.com/akmonengine/kinema/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// FrustumPoint tests whether point lies inside every plane
func FrustumPoint(f actor.Frustum, point mgl64.Vec3) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(point) < 0 {
			return false
		}
	}
	return true
}

// FrustumSphere culls a sphere, partial overlap counts as visible
func FrustumSphere(f actor.Frustum, s *actor.Sphere) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(s.Position) < -s.Radius {
			return false
		}
	}
	return true
}

// FrustumAABB culls a box with the positive vertex test
func FrustumAABB(f actor.Frustum, box actor.AABB) bool {
	for _, p := range f.Planes {
		var positive mgl64.Vec3
		for i := 0; i < 3; i++ {
			if p.Normal[i] >= 0 {
				positive[i] = box.Max[i]
			} else {
				positive[i] = box.Min[i]
			}
		}
		if p.SignedDistance(positive) < 0 {
			return false
		}
	}
	return true
}

// FrustumBox culls an axis-aligned box
func FrustumBox(f actor.Frustum, b *actor.Box) bool {
	return FrustumAABB(f, b.Bounds())
}

// FrustumOrientedBox culls an oriented box by its projected radius on each plane
func FrustumOrientedBox(f actor.Frustum, b *actor.OrientedBox) bool {
	axes := b.Axes()
	for _, p := range f.Planes {
		r := b.HalfExtents[0]*math.Abs(axes[0].Dot(p.Normal)) +
			b.HalfExtents[1]*math.Abs(axes[1].Dot(p.Normal)) +
			b.HalfExtents[2]*math.Abs(axes[2].Dot(p.Normal))
		if p.SignedDistance(b.Center()) < -r {
			return false
		}
	}
	return true
}

// InFrustum dispatches on the shape type. Unknown shapes are culled by their bounds.
func InFrustum(f actor.Frustum, s actor.Shape) bool {
	switch shape := s.(type) {
	case *actor.Sphere:
		return FrustumSphere(f, shape)
	case *actor.Box:
		return FrustumBox(f, shape)
	case *actor.OrientedBox:
		return FrustumOrientedBox(f, shape)
	}
	return FrustumAABB(f, actor.BoundsOf(s))
}
