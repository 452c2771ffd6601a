package actor

import "github.com/go-gl/mathgl/mgl64"

// Ray is a half line starting at Origin
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// NewRay normalizes direction. A zero direction falls back to +Y.
func NewRay(origin, direction mgl64.Vec3) Ray {
	return Ray{Origin: origin, Direction: SafeNormalize(direction)}
}

// At returns the point at distance t along the ray
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Up is the fallback direction for degenerate normalizations
var Up = mgl64.Vec3{0, 1, 0}

// SafeNormalize normalizes v, or returns Up when v is too short
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return Up
	}
	return v.Mul(1 / l)
}

// Plane is defined by the equation: Normal · p + Distance = 0
// Normal must be normalized. Points with a positive signed distance are in front.
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

// SignedDistance returns the distance of point along the plane normal
func (p Plane) SignedDistance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) + p.Distance
}

func (p Plane) normalized() Plane {
	l := p.Normal.Len()
	if l < 1e-12 {
		return Plane{Normal: Up}
	}
	return Plane{Normal: p.Normal.Mul(1 / l), Distance: p.Distance / l}
}

// Frustum holds six inward facing planes: left, right, bottom, top, near, far
type Frustum struct {
	Planes [6]Plane
}

// NewFrustum extracts the planes of a view-projection matrix (Gribb/Hartmann).
func NewFrustum(m mgl64.Mat4) Frustum {
	row := func(i int) mgl64.Vec4 { return m.Row(i) }
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	planes := [6]mgl64.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}

	var f Frustum
	for i, p := range planes {
		f.Planes[i] = Plane{Normal: p.Vec3(), Distance: p.W()}.normalized()
	}
	return f
}
