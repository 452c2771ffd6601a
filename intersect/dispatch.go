package intersect

import (
	"github.com/akmonengine/kinema/actor"
)

// Intersect dispatches the overlap test on the concrete shape types.
// Shapes other than the built-in ones are tested by their bounds.
func Intersect(a, b actor.Shape) bool {
	switch sa := a.(type) {
	case *actor.Sphere:
		switch sb := b.(type) {
		case *actor.Sphere:
			return SphereSphere(sa, sb)
		case *actor.Box:
			return SphereBox(sa, sb)
		case *actor.OrientedBox:
			return SphereOrientedBox(sa, sb)
		}
	case *actor.Box:
		switch sb := b.(type) {
		case *actor.Sphere:
			return SphereBox(sb, sa)
		case *actor.Box:
			return BoxBox(sa, sb)
		case *actor.OrientedBox:
			return BoxOrientedBox(sa, sb)
		}
	case *actor.OrientedBox:
		switch sb := b.(type) {
		case *actor.Sphere:
			return SphereOrientedBox(sb, sa)
		case *actor.Box:
			return BoxOrientedBox(sb, sa)
		case *actor.OrientedBox:
			return OrientedBoxOrientedBox(sa, sb)
		}
	}

	return actor.BoundsOf(a).Overlaps(actor.BoundsOf(b))
}

// Resolve tests a against b and, when they overlap, returns how to separate
// them. The normal points toward a.
func Resolve(a, b actor.Shape) (Resolution, bool) {
	if !Intersect(a, b) {
		return Resolution{}, false
	}

	switch sa := a.(type) {
	case *actor.Sphere:
		switch sb := b.(type) {
		case *actor.Sphere:
			return ResolveSphereSphere(sa, sb), true
		case *actor.Box:
			return ResolveSphereBox(sa, sb), true
		case *actor.OrientedBox:
			return ResolveSphereOrientedBox(sa, sb), true
		}
	case *actor.Box:
		switch sb := b.(type) {
		case *actor.Sphere:
			return ResolveSphereBox(sb, sa).Flip(), true
		case *actor.Box:
			return ResolveBoxBox(sa, sb), true
		case *actor.OrientedBox:
			return ResolveBoxOrientedBox(sa, sb), true
		}
	case *actor.OrientedBox:
		switch sb := b.(type) {
		case *actor.Sphere:
			return ResolveSphereOrientedBox(sb, sa).Flip(), true
		case *actor.Box:
			return ResolveBoxOrientedBox(sb, sa).Flip(), true
		case *actor.OrientedBox:
			return ResolveOrientedBoxOrientedBox(sa, sb), true
		}
	}

	return ResolveBoxBox(fromBounds(a), fromBounds(b)), true
}
