package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
	ShapeTypeOrientedBox
)

// Shape is the contract the spatial indexes and the world rely on.
// Shapes are owned by the caller until handed to a World.
type Shape interface {
	Center() mgl64.Vec3
	Min() mgl64.Vec3
	Max() mgl64.Vec3
	// SquareSize is the squared length of the bounding box diagonal,
	// used to estimate the scale of the scene.
	SquareSize() float64
	SetPosition(position mgl64.Vec3)
}

// Rotatable is implemented by shapes whose orientation follows the body
type Rotatable interface {
	SetRotation(rotation mgl64.Quat)
}

// InertiaShape is implemented by shapes able to compute their inertia tensor
type InertiaShape interface {
	Inertia(mass float64) mgl64.Mat3
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Position mgl64.Vec3
	Radius   float64
}

func NewSphere(position mgl64.Vec3, radius float64) *Sphere {
	return &Sphere{Position: position, Radius: radius}
}

func (s *Sphere) Center() mgl64.Vec3 { return s.Position }

func (s *Sphere) Min() mgl64.Vec3 {
	return s.Position.Sub(mgl64.Vec3{s.Radius, s.Radius, s.Radius})
}

func (s *Sphere) Max() mgl64.Vec3 {
	return s.Position.Add(mgl64.Vec3{s.Radius, s.Radius, s.Radius})
}

func (s *Sphere) SquareSize() float64 {
	d := 2 * s.Radius
	return 3 * d * d
}

func (s *Sphere) SetPosition(position mgl64.Vec3) { s.Position = position }

func (s *Sphere) Inertia(mass float64) mgl64.Mat3 {
	// I = (2/5) * m * r²
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Mat3{
		i, 0, 0,
		0, i, 0,
		0, 0, i,
	}
}

// Box is an axis-aligned box. Rotation of the owning body is ignored.
type Box struct {
	Position    mgl64.Vec3
	HalfExtents mgl64.Vec3
}

func NewBox(position, halfExtents mgl64.Vec3) *Box {
	return &Box{Position: position, HalfExtents: halfExtents}
}

// NewBoxFromBounds builds a box covering min..max
func NewBoxFromBounds(min, max mgl64.Vec3) *Box {
	return &Box{
		Position:    min.Add(max).Mul(0.5),
		HalfExtents: max.Sub(min).Mul(0.5),
	}
}

func (b *Box) Center() mgl64.Vec3 { return b.Position }

func (b *Box) Min() mgl64.Vec3 { return b.Position.Sub(b.HalfExtents) }

func (b *Box) Max() mgl64.Vec3 { return b.Position.Add(b.HalfExtents) }

func (b *Box) SquareSize() float64 {
	return b.HalfExtents.Mul(2).LenSqr()
}

func (b *Box) SetPosition(position mgl64.Vec3) { b.Position = position }

func (b *Box) Bounds() AABB {
	return AABB{Min: b.Min(), Max: b.Max()}
}

func (b *Box) Inertia(mass float64) mgl64.Mat3 {
	return boxInertia(b.HalfExtents, mass)
}

// OrientedBox represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type OrientedBox struct {
	Transform   Transform
	HalfExtents mgl64.Vec3
}

func NewOrientedBox(position, halfExtents mgl64.Vec3, rotation mgl64.Quat) *OrientedBox {
	b := &OrientedBox{HalfExtents: halfExtents}
	b.Transform.Position = position
	b.Transform.SetRotation(rotation)
	return b
}

func (b *OrientedBox) Center() mgl64.Vec3 { return b.Transform.Position }

// worldExtents is the half size of the box's world AABB
func (b *OrientedBox) worldExtents() mgl64.Vec3 {
	m := b.Transform.Rotation.Mat4().Mat3()
	var e mgl64.Vec3
	for row := 0; row < 3; row++ {
		e[row] = math.Abs(m.At(row, 0))*b.HalfExtents[0] +
			math.Abs(m.At(row, 1))*b.HalfExtents[1] +
			math.Abs(m.At(row, 2))*b.HalfExtents[2]
	}
	return e
}

func (b *OrientedBox) Min() mgl64.Vec3 {
	return b.Transform.Position.Sub(b.worldExtents())
}

func (b *OrientedBox) Max() mgl64.Vec3 {
	return b.Transform.Position.Add(b.worldExtents())
}

func (b *OrientedBox) SquareSize() float64 {
	return b.worldExtents().Mul(2).LenSqr()
}

func (b *OrientedBox) SetPosition(position mgl64.Vec3) { b.Transform.Position = position }

func (b *OrientedBox) SetRotation(rotation mgl64.Quat) { b.Transform.SetRotation(rotation) }

// Axes returns the box's local axes in world space
func (b *OrientedBox) Axes() [3]mgl64.Vec3 {
	return b.Transform.Axes()
}

// Corners returns the 8 world space corners
func (b *OrientedBox) Corners() [8]mgl64.Vec3 {
	var corners [8]mgl64.Vec3
	for i := range corners {
		local := mgl64.Vec3{b.HalfExtents[0], b.HalfExtents[1], b.HalfExtents[2]}
		if i&1 == 0 {
			local[0] = -local[0]
		}
		if i&2 == 0 {
			local[1] = -local[1]
		}
		if i&4 == 0 {
			local[2] = -local[2]
		}
		corners[i] = b.Transform.ToWorld(local)
	}
	return corners
}

func (b *OrientedBox) Inertia(mass float64) mgl64.Mat3 {
	return boxInertia(b.HalfExtents, mass)
}

func boxInertia(halfExtents mgl64.Vec3, mass float64) mgl64.Mat3 {
	// Dimensions complètes
	x := halfExtents.X() * 2
	y := halfExtents.Y() * 2
	z := halfExtents.Z() * 2

	// I = (m/12) * (dimension1² + dimension2²)
	factor := mass / 12.0
	ix := factor * (y*y + z*z)
	iy := factor * (x*x + z*z)
	iz := factor * (x*x + y*y)

	return mgl64.Mat3{
		ix, 0, 0,
		0, iy, 0,
		0, 0, iz,
	}
}

// TypeOf returns the ShapeType of one of the built-in shapes, -1 otherwise
func TypeOf(s Shape) ShapeType {
	switch s.(type) {
	case *Sphere:
		return ShapeTypeSphere
	case *Box:
		return ShapeTypeBox
	case *OrientedBox:
		return ShapeTypeOrientedBox
	}
	return -1
}
