package constraint

import (
	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/intersect"
	"github.com/go-gl/mathgl/mgl64"
)

// Contact between two bodies. Normal is unit length and points toward BodyA,
// moving BodyA by Normal*Depth separates the pair.
type Contact struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	Normal mgl64.Vec3
	Point  mgl64.Vec3
	Depth  float64
}

// NewContact builds a contact from the resolution of shape A against shape B
func NewContact(bodyA, bodyB *actor.RigidBody, res intersect.Resolution) *Contact {
	return &Contact{
		BodyA:  bodyA,
		BodyB:  bodyB,
		Normal: res.Normal,
		Point:  res.Point,
		Depth:  res.Depth,
	}
}

// RelativeVelocity returns the velocity of A relative to B along the normal at
// the contact point, negative when the bodies approach each other.
func (c *Contact) RelativeVelocity() float64 {
	vA := c.BodyA.VelocityAt(c.Point)
	vB := c.BodyB.VelocityAt(c.Point)
	return vA.Sub(vB).Dot(c.Normal)
}

// SolveVelocity applies the normal impulse, elasticity being the restitution
// coefficient: 1 conserves the kinetic energy, 0 cancels the closing speed.
func (c *Contact) SolveVelocity(elasticity float64) {
	bodyA := c.BodyA
	bodyB := c.BodyB
	if bodyA.Dead || bodyB.Dead {
		return
	}

	normalVel := c.RelativeVelocity()
	// separating or resting
	if normalVel > -VelocityTolerance {
		return
	}

	rA := c.Point.Sub(bodyA.Position)
	rB := c.Point.Sub(bodyB.Position)
	rA_cross_n := rA.Cross(c.Normal)
	rB_cross_n := rB.Cross(c.Normal)

	angularInertiaA := bodyA.GetInverseInertiaWorld().Mul3x1(rA_cross_n).Dot(rA_cross_n)
	angularInertiaB := bodyB.GetInverseInertiaWorld().Mul3x1(rB_cross_n).Dot(rB_cross_n)

	effectiveMass := bodyA.InverseMass + bodyB.InverseMass + angularInertiaA + angularInertiaB
	if effectiveMass < 1e-12 {
		return
	}

	lambda := -(1 + elasticity) * normalVel / effectiveMass
	impulse := c.Normal.Mul(lambda)

	bodyA.ApplyImpulse(impulse, c.Point)
	bodyB.ApplyImpulse(impulse.Mul(-1), c.Point)

	clampSmallVelocities(bodyA)
	clampSmallVelocities(bodyB)
}

// SolvePosition removes the penetration, each body moving by its share of the
// total inverse mass. Two immovable bodies stay in place.
func (c *Contact) SolvePosition() {
	bodyA := c.BodyA
	bodyB := c.BodyB
	if bodyA.Dead || bodyB.Dead || c.Depth <= 0 {
		return
	}

	totalInverseMass := bodyA.InverseMass + bodyB.InverseMass
	if totalInverseMass == 0 {
		return
	}

	offset := c.Normal.Mul(c.Depth)
	bodyA.Position = bodyA.Position.Add(offset.Mul(bodyA.InverseMass / totalInverseMass))
	bodyB.Position = bodyB.Position.Sub(offset.Mul(bodyB.InverseMass / totalInverseMass))
}
