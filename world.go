// Package kinema is a single-threaded rigid-body simulation core. A World owns
// bodies and their shapes in index-aligned slots, rebuilds a broad-phase
// spatial index every step, resolves overlapping pairs with impulses and
// integrates the bodies with a Runge-Kutta 4 scheme.
package kinema

import (
	"fmt"
	"log/slog"

	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/constraint"
	"github.com/akmonengine/kinema/intersect"
	"github.com/akmonengine/kinema/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// CollisionCallback is called when the body it is registered on collides with other
type CollisionCallback func(self, other *actor.RigidBody)

// RayHit is a live body crossed by a ray
type RayHit struct {
	Index    int
	Point    mgl64.Vec3
	Distance float64
}

// World holds the bodies of the simulation.
//
// Slots are stable handles between two prunes: ClearBody only marks a body as
// dead and frees its slot for the next AddBody. PruneAfter compacts trailing
// dead slots. Generation on the body tells a recycled slot apart.
type World struct {
	index spatial.Index[uint32]

	// shapes[i] and bodies[i] describe the same object
	shapes    []actor.Shape
	bodies    []*actor.RigidBody
	callbacks []CollisionCallback
	free      []int

	// last generation given to each slot, kept across prunes
	generations []uint32

	// shapes of the live bodies given to the index, and their slots
	liveShapes []actor.Shape
	liveSlots  []int
	pairs      [][2]int

	// dead slots not pruned yet
	dirty bool
	// the index does not reflect the current shapes
	stale bool

	gravity    mgl64.Vec3
	elasticity float64
	bounds     actor.AABB
	planar     bool

	Logger *slog.Logger
	Events Events
}

// NewWorld creates a world with the broad phase described by cfg
func NewWorld(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewWorldWithIndex(cfg.NewIndex(), cfg)
}

// NewWorldWithIndex creates a world over a caller supplied broad phase
func NewWorldWithIndex(index spatial.Index[uint32], cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &World{
		index:      index,
		gravity:    mgl64.Vec3(cfg.Gravity),
		elasticity: cfg.Elasticity,
		bounds:     cfg.bounds(),
		planar:     cfg.Dimensions == 2,
		stale:      true,
		Logger:     slog.Default(),
		Events:     NewEvents(),
	}, nil
}

// AddBody creates a body centered on shape and returns its slot. A dead slot
// is reused when available. The world keeps shape and moves it with the body.
func (w *World) AddBody(shape actor.Shape, mass float64, id int, data actor.BodyData) int {
	body := actor.NewRigidBody(shape, mass, id, data)
	body.Planar = w.planar
	body.ResetForces(w.gravity)
	w.stale = true

	if n := len(w.free); n > 0 {
		slot := w.free[n-1]
		w.free = w.free[:n-1]

		body.Generation = w.generations[slot] + 1
		w.generations[slot] = body.Generation
		w.shapes[slot] = shape
		w.bodies[slot] = body
		w.callbacks[slot] = nil
		w.Logger.Debug("body slot reused", "slot", slot, "generation", body.Generation)
		return slot
	}

	slot := len(w.bodies)
	if slot < len(w.generations) {
		// the slot existed before a prune
		body.Generation = w.generations[slot] + 1
		w.generations[slot] = body.Generation
	} else {
		w.generations = append(w.generations, body.Generation)
	}
	w.shapes = append(w.shapes, shape)
	w.bodies = append(w.bodies, body)
	w.callbacks = append(w.callbacks, nil)
	return slot
}

// ClearBody marks the body dead, its slot is recycled by the next AddBody.
// Clearing a dead or unknown slot does nothing.
func (w *World) ClearBody(index int) {
	if index < 0 || index >= len(w.bodies) || w.bodies[index].Dead {
		return
	}

	w.bodies[index].Dead = true
	w.callbacks[index] = nil
	w.free = append(w.free, index)
	w.Events.forget(index)
	w.dirty = true
	w.stale = true
}

// PruneAfter removes the run of dead slots at the end of the world, stopping
// at index. It does nothing when no body was cleared since the last prune.
func (w *World) PruneAfter(index int) {
	if !w.dirty {
		return
	}

	n := len(w.bodies)
	for n > max(index, 0) && w.bodies[n-1].Dead {
		n--
	}
	w.truncate(n)
}

// PruneAfterForce removes every slot at or after index, dead or alive
func (w *World) PruneAfterForce(index int) {
	w.truncate(min(max(index, 0), len(w.bodies)))
}

func (w *World) truncate(n int) {
	removed := len(w.bodies) - n
	clear(w.shapes[n:])
	clear(w.bodies[n:])
	clear(w.callbacks[n:])
	w.shapes = w.shapes[:n]
	w.bodies = w.bodies[:n]
	w.callbacks = w.callbacks[:n]
	w.Events.forgetFrom(n)

	// the remaining dead slots are recycled
	w.free = w.free[:0]
	for i, body := range w.bodies {
		if body.Dead {
			w.free = append(w.free, i)
		}
	}
	w.dirty = n > 0 && w.bodies[n-1].Dead
	w.stale = true

	if removed > 0 {
		w.Logger.Debug("bodies pruned", "removed", removed, "len", n, "free", len(w.free))
	}
}

// RegisterCallback sets the function called when the body at index collides
// during Solve. A nil callback removes it.
func (w *World) RegisterCallback(index int, callback CollisionCallback) {
	if index < 0 || index >= len(w.bodies) || w.bodies[index].Dead {
		return
	}
	w.callbacks[index] = callback
}

// Solve runs one step: rebuild the index, resolve the colliding pairs,
// integrate every body.
func (w *World) Solve(dt, damping float64) error {
	return w.solve(dt, damping, true)
}

// SolveNoSort is Solve without sorting the shapes by cell before the rebuild
func (w *World) SolveNoSort(dt, damping float64) error {
	return w.solve(dt, damping, false)
}

// SolveNoCollide integrates the bodies without collision detection
func (w *World) SolveNoCollide(dt, damping float64) {
	w.integrate(dt, damping)
	w.Events.flush()
}

func (w *World) solve(dt, damping float64, sorted bool) error {
	if err := w.rebuild(sorted); err != nil {
		return err
	}

	// callbacks may query the index, map the pairs first
	w.pairs = w.pairs[:0]
	for _, pair := range w.index.Collisions() {
		w.pairs = append(w.pairs, [2]int{w.slot(pair.A), w.slot(pair.B)})
	}
	for _, pair := range w.pairs {
		w.resolvePair(pair[0], pair[1])
	}

	w.integrate(dt, damping)
	w.Events.flush()
	return nil
}

// rebuild inserts the shapes of the live bodies in the index
func (w *World) rebuild(sorted bool) error {
	w.liveShapes = w.liveShapes[:0]
	w.liveSlots = w.liveSlots[:0]
	for i, body := range w.bodies {
		if !body.Dead {
			w.liveShapes = append(w.liveShapes, w.shapes[i])
			w.liveSlots = append(w.liveSlots, i)
		}
	}

	insert := w.index.Insert
	if !sorted {
		insert = w.index.InsertNoSort
	}
	if err := insert(w.liveShapes); err != nil {
		w.Logger.Warn("index rebuild failed", "bodies", len(w.liveShapes), "error", err)
		return fmt.Errorf("kinema: rebuild index: %w", err)
	}
	w.stale = false
	return nil
}

// slot translates an index key back to a body slot
func (w *World) slot(key uint32) int {
	return w.liveSlots[w.index.IndexMap()[key]]
}

// resolvePair separates the bodies at slots a and b when their shapes overlap
func (w *World) resolvePair(a, b int) {
	// a callback pruned the world
	if a >= len(w.bodies) || b >= len(w.bodies) {
		return
	}
	bodyA, bodyB := w.bodies[a], w.bodies[b]
	if bodyA.Dead || bodyB.Dead {
		return
	}
	if bodyA.IsImmovable() && bodyB.IsImmovable() {
		return
	}

	res, ok := intersect.Resolve(w.shapes[a], w.shapes[b])
	if !ok {
		return
	}

	w.Events.record(a, b, bodyA, bodyB)
	if callback := w.callbacks[a]; callback != nil {
		callback(bodyA, bodyB)
	}
	if callback := w.callbacks[b]; callback != nil {
		callback(bodyB, bodyA)
	}

	contact := constraint.NewContact(bodyA, bodyB, res)
	contact.SolveVelocity(w.elasticity)
	contact.SolvePosition()
}

func (w *World) integrate(dt, damping float64) {
	for i, body := range w.bodies {
		if body.Dead {
			continue
		}
		body.Integrate(dt, damping)
		w.clamp(body)
		body.ResetForces(w.gravity)
		body.Sync(w.shapes[i])
	}
	w.stale = true
}

// clamp keeps the body inside the world bounds, reflecting the velocity on
// every violated axis
func (w *World) clamp(body *actor.RigidBody) {
	if w.bounds.IsEmpty() {
		return
	}
	for i := 0; i < 3; i++ {
		if body.Position[i] < w.bounds.Min[i] {
			body.Position[i] = w.bounds.Min[i]
			if body.Velocity[i] < 0 {
				body.Velocity[i] = -body.Velocity[i]
			}
		} else if body.Position[i] > w.bounds.Max[i] {
			body.Position[i] = w.bounds.Max[i]
			if body.Velocity[i] > 0 {
				body.Velocity[i] = -body.Velocity[i]
			}
		}
	}
}

// Collide resolves the body at index against a shape that is not simulated,
// such as static level geometry. It returns whether they overlapped; the
// callback of the body is not called.
func (w *World) Collide(index int, shape actor.Shape) bool {
	if index < 0 || index >= len(w.bodies) || w.bodies[index].Dead {
		return false
	}

	res, ok := intersect.Resolve(w.shapes[index], shape)
	if !ok {
		return false
	}

	body := w.bodies[index]
	static := actor.NewRigidBody(shape, 0, -1, actor.BodyData{})
	contact := constraint.NewContact(body, static, res)
	contact.SolveVelocity(w.elasticity)
	contact.SolvePosition()
	body.Sync(w.shapes[index])
	w.stale = true

	return true
}

// refresh rebuilds the index when bodies moved since the last rebuild
func (w *World) refresh() bool {
	if !w.stale {
		return true
	}
	return w.rebuild(true) == nil
}

// RayCast returns the live bodies crossed by the ray, nearest first
func (w *World) RayCast(ray actor.Ray) []RayHit {
	if !w.refresh() {
		return nil
	}

	var hits []RayHit
	for _, hit := range w.index.RayCast(ray) {
		hits = append(hits, RayHit{Index: w.slot(hit.Index), Point: hit.Point, Distance: hit.Distance})
	}
	return hits
}

// Overlap returns the slots of the live bodies overlapping shape
func (w *World) Overlap(shape actor.Shape) []int {
	if !w.refresh() {
		return nil
	}

	var found []int
	for _, k := range w.index.Overlap(shape) {
		found = append(found, w.slot(k))
	}
	return found
}

// Body returns the body at index, nil for an unknown slot
func (w *World) Body(index int) *actor.RigidBody {
	if index < 0 || index >= len(w.bodies) {
		return nil
	}
	return w.bodies[index]
}

// Bodies returns every slot, dead ones included
func (w *World) Bodies() []*actor.RigidBody {
	return w.bodies
}

// Shape returns the shape at index, nil for an unknown slot
func (w *World) Shape(index int) actor.Shape {
	if index < 0 || index >= len(w.shapes) {
		return nil
	}
	return w.shapes[index]
}

// Len returns the number of slots, dead ones included
func (w *World) Len() int {
	return len(w.bodies)
}

// Index returns the broad phase
func (w *World) Index() spatial.Index[uint32] {
	return w.index
}

func (w *World) Elasticity() float64 {
	return w.elasticity
}

// SetElasticity sets the restitution of every contact, clamped to [0, 1]
func (w *World) SetElasticity(e float64) {
	w.elasticity = mgl64.Clamp(e, 0, 1)
}

func (w *World) Gravity() mgl64.Vec3 {
	return w.gravity
}

// SetGravity changes the gravity, keeping the forces already added this step
func (w *World) SetGravity(gravity mgl64.Vec3) {
	delta := gravity.Sub(w.gravity)
	for _, body := range w.bodies {
		if !body.Dead && !body.IsImmovable() {
			body.Force = body.Force.Add(delta.Mul(body.Mass))
		}
	}
	w.gravity = gravity
}

// TotalEnergy sums the kinetic, rotational and potential energy of the live bodies
func (w *World) TotalEnergy() float64 {
	energy := 0.0
	for _, body := range w.bodies {
		if body.Dead {
			continue
		}
		energy += body.KineticEnergy() + body.RotationalEnergy() + body.PotentialEnergy(w.gravity)
	}
	return energy
}
