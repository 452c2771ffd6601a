package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RigidBody represents a rigid body in the physics simulation.
// An InverseMass (or InverseInertia) of zero means infinite mass (or inertia):
// the body ignores forces (or torques) and impulses.
type RigidBody struct {
	// Accumulators, reset to the gravity baseline after each step
	Force  mgl64.Vec3
	Torque mgl64.Vec3

	// Center of mass and orientation
	Position mgl64.Vec3
	Rotation mgl64.Quat

	Velocity        mgl64.Vec3 // Linear velocity (m/s)
	AngularVelocity mgl64.Vec3 // rad/s

	Mass           float64
	InverseMass    float64
	Inertia        mgl64.Mat3 // local space
	InverseInertia mgl64.Mat3 // local space

	ID   int
	Data BodyData

	Dead bool
	// Generation is bumped every time the slot holding the body is recycled
	Generation uint32
	// Planar restricts the body to the XY plane, with a scalar rotation around Z
	Planar bool
}

// NewRigidBody creates a body centered on the shape.
// A mass <= 0, NaN or +Inf makes the body immovable.
func NewRigidBody(shape Shape, mass float64, id int, data BodyData) *RigidBody {
	rb := &RigidBody{
		Position: shape.Center(),
		Rotation: mgl64.QuatIdent(),
		ID:       id,
		Data:     data,
	}
	rb.SetMass(shape, mass)

	return rb
}

// SetMass updates mass, inertia and their inverses
func (rb *RigidBody) SetMass(shape Shape, mass float64) {
	if mass <= 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		rb.Mass = math.Inf(1)
		rb.InverseMass = 0
		rb.Inertia = mgl64.Mat3{}
		rb.InverseInertia = mgl64.Mat3{}
		return
	}

	rb.Mass = mass
	rb.InverseMass = 1.0 / mass

	if s, ok := shape.(InertiaShape); ok {
		rb.Inertia = s.Inertia(mass)
	} else {
		// solid sphere enclosing the shape bounds
		r2 := shape.SquareSize() / 4
		i := (2.0 / 5.0) * mass * r2
		rb.Inertia = mgl64.Diag3(mgl64.Vec3{i, i, i})
	}

	// a singular tensor means the body cannot rotate
	if math.Abs(rb.Inertia.Det()) < 1e-12 {
		rb.InverseInertia = mgl64.Mat3{}
	} else {
		rb.InverseInertia = rb.Inertia.Inv()
	}
}

// IsImmovable reports whether the body has infinite mass
func (rb *RigidBody) IsImmovable() bool {
	return rb.InverseMass == 0
}

func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.InverseMass != 0 {
		rb.Force = rb.Force.Add(force)
	}
}

func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	rb.Torque = rb.Torque.Add(torque)
}

// AddForceAtPoint adds a force applied at a world space point, producing a torque
func (rb *RigidBody) AddForceAtPoint(force, point mgl64.Vec3) {
	rb.AddForce(force)
	rb.AddTorque(point.Sub(rb.Position).Cross(force))
}

// ApplyImpulse changes the velocities instantly by an impulse applied at a world space point
func (rb *RigidBody) ApplyImpulse(impulse, point mgl64.Vec3) {
	rb.Velocity = rb.Velocity.Add(impulse.Mul(rb.InverseMass))
	r := point.Sub(rb.Position)
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.GetInverseInertiaWorld().Mul3x1(r.Cross(impulse)))
	rb.constrain()
}

// ResetForces clears the accumulators back to the gravity baseline
func (rb *RigidBody) ResetForces(gravity mgl64.Vec3) {
	if rb.InverseMass == 0 {
		rb.Force = mgl64.Vec3{}
	} else {
		rb.Force = gravity.Mul(rb.Mass)
	}
	rb.Torque = mgl64.Vec3{}
}

// VelocityAt returns the velocity of a world space point attached to the body
func (rb *RigidBody) VelocityAt(point mgl64.Vec3) mgl64.Vec3 {
	return rb.Velocity.Add(rb.AngularVelocity.Cross(point.Sub(rb.Position)))
}

// Integrate advances pose and velocities by dt with a classical Runge-Kutta 4
// scheme. The force and torque are constant over the step, damping is a
// linear drag coefficient on both velocities.
func (rb *RigidBody) Integrate(dt float64, damping float64) {
	if rb.Dead || dt == 0 {
		return
	}
	rb.constrain()

	// ========== LINEAR ==========
	accel := rb.Force.Mul(rb.InverseMass)
	linear := func(v mgl64.Vec3) mgl64.Vec3 {
		return accel.Sub(v.Mul(damping))
	}

	v0 := rb.Velocity
	k1v := linear(v0)
	k1x := v0
	k2x := v0.Add(k1v.Mul(dt / 2))
	k2v := linear(k2x)
	k3x := v0.Add(k2v.Mul(dt / 2))
	k3v := linear(k3x)
	k4x := v0.Add(k3v.Mul(dt))
	k4v := linear(k4x)

	rb.Position = rb.Position.Add(rk4Sum(k1x, k2x, k3x, k4x).Mul(dt / 6))
	rb.Velocity = v0.Add(rk4Sum(k1v, k2v, k3v, k4v).Mul(dt / 6))

	// ========== ANGULAR ==========
	angularAccel := rb.GetInverseInertiaWorld().Mul3x1(rb.Torque)
	angular := func(w mgl64.Vec3) mgl64.Vec3 {
		return angularAccel.Sub(w.Mul(damping))
	}
	spin := func(q mgl64.Quat, w mgl64.Vec3) mgl64.Quat {
		return mgl64.Quat{V: w, W: 0}.Mul(q).Scale(0.5)
	}

	q0 := rb.Rotation
	w0 := rb.AngularVelocity
	k1w := angular(w0)
	k1q := spin(q0, w0)
	w2 := w0.Add(k1w.Mul(dt / 2))
	k2w := angular(w2)
	k2q := spin(q0.Add(k1q.Scale(dt/2)), w2)
	w3 := w0.Add(k2w.Mul(dt / 2))
	k3w := angular(w3)
	k3q := spin(q0.Add(k2q.Scale(dt/2)), w3)
	w4 := w0.Add(k3w.Mul(dt))
	k4w := angular(w4)
	k4q := spin(q0.Add(k3q.Scale(dt)), w4)

	rb.AngularVelocity = w0.Add(rk4Sum(k1w, k2w, k3w, k4w).Mul(dt / 6))
	q := q0.Add(k1q.Add(k2q.Scale(2)).Add(k3q.Scale(2)).Add(k4q).Scale(dt / 6))
	if q.Len() < 1e-12 {
		q = mgl64.QuatIdent()
	}
	rb.Rotation = q.Normalize()

	rb.constrain()
}

func rk4Sum(k1, k2, k3, k4 mgl64.Vec3) mgl64.Vec3 {
	return k1.Add(k2.Mul(2)).Add(k3.Mul(2)).Add(k4)
}

// constrain drops the out of plane components of a planar body
func (rb *RigidBody) constrain() {
	if !rb.Planar {
		return
	}
	rb.Position[2] = 0
	rb.Velocity[2] = 0
	rb.AngularVelocity[0] = 0
	rb.AngularVelocity[1] = 0
	// keep only the rotation around Z
	rb.Rotation.V[0] = 0
	rb.Rotation.V[1] = 0
	if rb.Rotation.Len() < 1e-12 {
		rb.Rotation = mgl64.QuatIdent()
	}
	rb.Rotation = rb.Rotation.Normalize()
}

// Angle returns the rotation around Z, meaningful for planar bodies
func (rb *RigidBody) Angle() float64 {
	return 2 * math.Atan2(rb.Rotation.V[2], rb.Rotation.W)
}

// GetInverseInertiaWorld returns the inverse inertia tensor in world space
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	// I_world^(-1) = R * I_local^(-1) * R^T
	R := rb.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InverseInertia).Mul3(R.Transpose())
}

// GetInertiaWorld returns the inertia tensor in world space
func (rb *RigidBody) GetInertiaWorld() mgl64.Mat3 {
	R := rb.Rotation.Mat4().Mat3()
	return R.Mul3(rb.Inertia).Mul3(R.Transpose())
}

// KineticEnergy returns ½mv², zero for immovable bodies
func (rb *RigidBody) KineticEnergy() float64 {
	if rb.InverseMass == 0 {
		return 0
	}
	return 0.5 * rb.Mass * rb.Velocity.LenSqr()
}

// RotationalEnergy returns ½ω·Iω
func (rb *RigidBody) RotationalEnergy() float64 {
	if rb.InverseMass == 0 {
		return 0
	}
	w := rb.AngularVelocity
	return 0.5 * w.Dot(rb.GetInertiaWorld().Mul3x1(w))
}

// PotentialEnergy returns -m g·x, the origin being the reference level
func (rb *RigidBody) PotentialEnergy(gravity mgl64.Vec3) float64 {
	if rb.InverseMass == 0 {
		return 0
	}
	return -rb.Mass * gravity.Dot(rb.Position)
}

// Sync copies the pose of the body onto its shape
func (rb *RigidBody) Sync(shape Shape) {
	shape.SetPosition(rb.Position)
	if r, ok := shape.(Rotatable); ok {
		r.SetRotation(rb.Rotation)
	}
}
