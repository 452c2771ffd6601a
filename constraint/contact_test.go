package constraint

import (
	"math"
	"testing"

	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/intersect"
	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

// Helper function to create a dynamic unit sphere body
func createDynamicBody(position mgl64.Vec3, velocity mgl64.Vec3, mass float64) *actor.RigidBody {
	shape := actor.NewSphere(position, 1.0)
	rb := actor.NewRigidBody(shape, mass, 0, actor.BodyData{})
	rb.Velocity = velocity
	return rb
}

// Helper function to create an immovable unit box body
func createStaticBody(position mgl64.Vec3) *actor.RigidBody {
	shape := actor.NewBox(position, mgl64.Vec3{1, 1, 1})
	return actor.NewRigidBody(shape, 0, 0, actor.BodyData{})
}

func TestContact_SolvePosition_NoPenetration(t *testing.T) {
	bodyA := createDynamicBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}, 1)
	bodyB := createDynamicBody(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{}, 1)

	contact := &Contact{BodyA: bodyA, BodyB: bodyB, Normal: mgl64.Vec3{-1, 0, 0}, Point: mgl64.Vec3{1, 0, 0}}
	contact.SolvePosition()

	if bodyA.Position != (mgl64.Vec3{0, 0, 0}) || bodyB.Position != (mgl64.Vec3{2, 0, 0}) {
		t.Errorf("positions changed without penetration: %v, %v", bodyA.Position, bodyB.Position)
	}
}

func TestContact_SolvePosition_Split(t *testing.T) {
	tests := []struct {
		name         string
		massA, massB float64
		expectedA    float64
		expectedB    float64
	}{
		// equal masses share the correction
		{"equal masses", 1, 1, -0.25, 1.75},
		// the lighter body moves three times more
		{"lighter A", 1, 3, -0.375, 1.625},
		{"immovable B", 1, 0, -0.5, 1.5},
		{"immovable A", 0, 1, 0, 2},
		{"both immovable", 0, 0, 0, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodyA := createDynamicBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}, tt.massA)
			bodyB := createDynamicBody(mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{}, tt.massB)

			contact := &Contact{
				BodyA:  bodyA,
				BodyB:  bodyB,
				Normal: mgl64.Vec3{-1, 0, 0}, // toward A
				Point:  mgl64.Vec3{0.75, 0, 0},
				Depth:  0.5,
			}
			contact.SolvePosition()

			if math.Abs(bodyA.Position.X()-tt.expectedA) > epsilon {
				t.Errorf("A.X = %v, want %v", bodyA.Position.X(), tt.expectedA)
			}
			if tt.name != "both immovable" && math.Abs(bodyB.Position.X()-tt.expectedB) > epsilon {
				t.Errorf("B.X = %v, want %v", bodyB.Position.X(), tt.expectedB)
			}
		})
	}
}

func TestContact_SolveVelocity_ElasticEqualMasses(t *testing.T) {
	bodyA := createDynamicBody(mgl64.Vec3{-0.9, 0, 0}, mgl64.Vec3{1, 0, 0}, 1)
	bodyB := createDynamicBody(mgl64.Vec3{0.9, 0, 0}, mgl64.Vec3{-1, 0, 0}, 1)

	res := intersect.ResolveSphereSphere(actor.NewSphere(bodyA.Position, 1), actor.NewSphere(bodyB.Position, 1))
	contact := NewContact(bodyA, bodyB, res)
	if contact.RelativeVelocity() >= 0 {
		t.Fatalf("bodies should approach, relative velocity = %v", contact.RelativeVelocity())
	}

	contact.SolveVelocity(1.0)

	if math.Abs(bodyA.Velocity.X()+1) > epsilon || math.Abs(bodyB.Velocity.X()-1) > epsilon {
		t.Errorf("velocities should swap: A=%v B=%v", bodyA.Velocity, bodyB.Velocity)
	}
	if bodyA.AngularVelocity.Len() > epsilon || bodyB.AngularVelocity.Len() > epsilon {
		t.Error("head-on sphere collision should not spin the bodies")
	}
}

func TestContact_SolveVelocity_Restitution(t *testing.T) {
	tests := []struct {
		name       string
		elasticity float64
		expectedVy float64
	}{
		{"inelastic", 0, 0},
		{"half", 0.5, 1},
		{"elastic", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ball := createDynamicBody(mgl64.Vec3{0, 1.9, 0}, mgl64.Vec3{0, -2, 0}, 1)
			ground := createStaticBody(mgl64.Vec3{0, 0, 0})

			contact := &Contact{
				BodyA:  ball,
				BodyB:  ground,
				Normal: mgl64.Vec3{0, 1, 0},
				Point:  mgl64.Vec3{0, 0.95, 0},
				Depth:  0.1,
			}
			contact.SolveVelocity(tt.elasticity)

			if math.Abs(ball.Velocity.Y()-tt.expectedVy) > epsilon {
				t.Errorf("Vy = %v, want %v", ball.Velocity.Y(), tt.expectedVy)
			}
			if ground.Velocity != (mgl64.Vec3{}) {
				t.Errorf("immovable body moved: %v", ground.Velocity)
			}
		})
	}
}

func TestContact_SolveVelocity_Separating(t *testing.T) {
	bodyA := createDynamicBody(mgl64.Vec3{-0.9, 0, 0}, mgl64.Vec3{-1, 0, 0}, 1)
	bodyB := createDynamicBody(mgl64.Vec3{0.9, 0, 0}, mgl64.Vec3{1, 0, 0}, 1)

	contact := &Contact{BodyA: bodyA, BodyB: bodyB, Normal: mgl64.Vec3{-1, 0, 0}, Point: mgl64.Vec3{}, Depth: 0.2}
	contact.SolveVelocity(1)

	if bodyA.Velocity != (mgl64.Vec3{-1, 0, 0}) || bodyB.Velocity != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("separating bodies should keep their velocity: A=%v B=%v", bodyA.Velocity, bodyB.Velocity)
	}
}

func TestContact_SolveVelocity_OffCenterSpins(t *testing.T) {
	box := actor.NewBox(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 1, 1})
	body := actor.NewRigidBody(box, 1, 0, actor.BodyData{})
	body.Velocity = mgl64.Vec3{0, -1, 0}
	ground := createStaticBody(mgl64.Vec3{0, -1, 0})

	// contact at a corner
	contact := &Contact{BodyA: body, BodyB: ground, Normal: mgl64.Vec3{0, 1, 0}, Point: mgl64.Vec3{1, 0, 0}, Depth: 0.01}
	contact.SolveVelocity(0)

	if body.AngularVelocity.Len() < epsilon {
		t.Error("an off-center impulse should spin the body")
	}
	if math.Abs(contact.RelativeVelocity()) > 1e-6 {
		t.Errorf("inelastic contact should cancel the closing speed, got %v", contact.RelativeVelocity())
	}
}

func TestContact_DeadBodySkipped(t *testing.T) {
	bodyA := createDynamicBody(mgl64.Vec3{-0.9, 0, 0}, mgl64.Vec3{1, 0, 0}, 1)
	bodyB := createDynamicBody(mgl64.Vec3{0.9, 0, 0}, mgl64.Vec3{-1, 0, 0}, 1)
	bodyB.Dead = true

	contact := &Contact{BodyA: bodyA, BodyB: bodyB, Normal: mgl64.Vec3{-1, 0, 0}, Depth: 0.2}
	contact.SolveVelocity(1)
	contact.SolvePosition()

	if bodyA.Velocity != (mgl64.Vec3{1, 0, 0}) || bodyA.Position != (mgl64.Vec3{-0.9, 0, 0}) {
		t.Error("contact with a dead body should be a no-op")
	}
}
