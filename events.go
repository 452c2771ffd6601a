package kinema

import (
	"github.com/akmonengine/kinema/actor"
)

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
)

// pairKey identifies two body slots, a < b
type pairKey struct {
	a, b int
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(a, b int) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Collision events. IndexA < IndexB are the slots of the bodies.
type CollisionEnterEvent struct {
	IndexA, IndexB int
	BodyA, BodyB   *actor.RigidBody
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	IndexA, IndexB int
	BodyA, BodyB   *actor.RigidBody
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	IndexA, IndexB int
	BodyA, BodyB   *actor.RigidBody
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

type activePair struct {
	bodyA, bodyB *actor.RigidBody
}

// Events collects the colliding pairs of a step and, on flush, compares them
// with the previous step to emit Enter/Stay/Exit events.
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	previousActivePairs map[pairKey]activePair
	currentActivePairs  map[pairKey]activePair
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]activePair),
		currentActivePairs:  make(map[pairKey]activePair),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// record marks the pair of slots a, b as colliding during the current step
func (e *Events) record(a, b int, bodyA, bodyB *actor.RigidBody) {
	if b < a {
		bodyA, bodyB = bodyB, bodyA
	}
	e.currentActivePairs[makePairKey(a, b)] = activePair{bodyA: bodyA, bodyB: bodyB}
}

// forget drops every pair involving slot, without emitting an exit event
func (e *Events) forget(slot int) {
	for pair := range e.previousActivePairs {
		if pair.a == slot || pair.b == slot {
			delete(e.previousActivePairs, pair)
		}
	}
	for pair := range e.currentActivePairs {
		if pair.a == slot || pair.b == slot {
			delete(e.currentActivePairs, pair)
		}
	}
}

// forgetFrom drops every pair involving a slot at or after slot
func (e *Events) forgetFrom(slot int) {
	for pair := range e.previousActivePairs {
		if pair.b >= slot {
			delete(e.previousActivePairs, pair)
		}
	}
	for pair := range e.currentActivePairs {
		if pair.b >= slot {
			delete(e.currentActivePairs, pair)
		}
	}
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit
func (e *Events) processCollisionEvents() {
	for pair, bodies := range e.currentActivePairs {
		if _, ok := e.previousActivePairs[pair]; ok {
			e.buffer = append(e.buffer, CollisionStayEvent{
				IndexA: pair.a, IndexB: pair.b,
				BodyA: bodies.bodyA, BodyB: bodies.bodyB,
			})
		} else {
			e.buffer = append(e.buffer, CollisionEnterEvent{
				IndexA: pair.a, IndexB: pair.b,
				BodyA: bodies.bodyA, BodyB: bodies.bodyB,
			})
		}
	}

	for pair, bodies := range e.previousActivePairs {
		if _, ok := e.currentActivePairs[pair]; !ok {
			e.buffer = append(e.buffer, CollisionExitEvent{
				IndexA: pair.a, IndexB: pair.b,
				BodyA: bodies.bodyA, BodyB: bodies.bodyB,
			})
		}
	}

	// Swap for next frame and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
