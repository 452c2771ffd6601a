package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a pose in 3D space
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position:        mgl64.Vec3{0, 0, 0},
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

// SetRotation stores q normalized along with its inverse
func (t *Transform) SetRotation(q mgl64.Quat) {
	if q.Len() < 1e-12 {
		q = mgl64.QuatIdent()
	}
	t.Rotation = q.Normalize()
	t.InverseRotation = t.Rotation.Inverse()
}

// Axes returns the three local axes expressed in world space
func (t Transform) Axes() [3]mgl64.Vec3 {
	m := t.Rotation.Mat4().Mat3()
	return [3]mgl64.Vec3{m.Col(0), m.Col(1), m.Col(2)}
}

// ToLocal maps a world point into the transform's local frame
func (t Transform) ToLocal(point mgl64.Vec3) mgl64.Vec3 {
	return t.InverseRotation.Rotate(point.Sub(t.Position))
}

// ToWorld maps a local point into world space
func (t Transform) ToWorld(point mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(point).Add(t.Position)
}
