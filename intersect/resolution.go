// Package intersect implements the narrow phase: exact overlap tests, closest
// points and penetration resolution between the built-in shapes, plus ray casts
// and frustum culling.
//
// Every function is pure. Resolve* functions are only meaningful when the
// matching overlap test is true: they return the separating direction and depth
// along the axis of minimum penetration (Separating Axis Theorem).
//
// Convention: the normal always points toward the first argument, so moving the
// first shape by Normal*Depth separates the pair.
//
// References:
//   - Ericson: "Real-Time Collision Detection" (2005), chapters 4 and 5
package intersect

import (
	"github.com/akmonengine/kinema/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon below which a length or projection is considered zero
const Epsilon = 1e-9

// Resolution describes how to separate two overlapping shapes
type Resolution struct {
	// Normal is unit length and points toward the first shape
	Normal mgl64.Vec3
	// Depth is the penetration along Normal, never negative
	Depth float64
	// Point is a world space point of the contact region
	Point mgl64.Vec3
}

// Offset is the translation separating the first shape from the second
func (r Resolution) Offset() mgl64.Vec3 {
	return r.Normal.Mul(r.Depth)
}

// Flip returns the resolution seen from the second shape
func (r Resolution) Flip() Resolution {
	r.Normal = r.Normal.Mul(-1)
	return r
}

// axisSign orients axis so that it points from c2 toward c1
func axisSign(axis, c1, c2 mgl64.Vec3) mgl64.Vec3 {
	if c1.Sub(c2).Dot(axis) < 0 {
		return axis.Mul(-1)
	}
	return axis
}

var unitAxes = [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func fromBounds(s actor.Shape) *actor.Box {
	return actor.NewBoxFromBounds(s.Min(), s.Max())
}

func orient(b *actor.Box) *actor.OrientedBox {
	return actor.NewOrientedBox(b.Position, b.HalfExtents, mgl64.QuatIdent())
}
