// Package constraint resolves contacts between rigid bodies with impulses.
package constraint

import (
	"github.com/akmonengine/kinema/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// VelocityTolerance is the closing speed below which a contact is treated as
// resting and no impulse is applied.
const VelocityTolerance = 1e-6

// velocityThreshold is the speed below which a velocity is snapped to zero
const velocityThreshold = 1e-9

type Constraint interface {
	SolveVelocity(elasticity float64)
	SolvePosition()
}

func clampSmallVelocities(rb *actor.RigidBody) {
	if rb.Velocity.Len() < velocityThreshold {
		rb.Velocity = mgl64.Vec3{0, 0, 0}
	}
	if rb.AngularVelocity.Len() < velocityThreshold {
		rb.AngularVelocity = mgl64.Vec3{0, 0, 0}
	}
}
