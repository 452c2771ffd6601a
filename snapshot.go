package kinema

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrSnapshotMismatch is returned by Restore when the snapshot was taken on a
// world with a different slot layout
var ErrSnapshotMismatch = errors.New("kinema: snapshot does not match world")

// BodyState is the dynamic state of one slot
type BodyState struct {
	ID              int        `msgpack:"id"`
	Generation      uint32     `msgpack:"gen"`
	Dead            bool       `msgpack:"dead"`
	Position        [3]float64 `msgpack:"p"`
	Rotation        [4]float64 `msgpack:"q"`
	Velocity        [3]float64 `msgpack:"v"`
	AngularVelocity [3]float64 `msgpack:"w"`
}

// Snapshot is the state of a world at the end of a step. Shapes, masses and
// callbacks are not part of it: a snapshot restores into the world it was
// taken from, or one built the same way.
type Snapshot struct {
	Gravity    [3]float64  `msgpack:"gravity"`
	Elasticity float64     `msgpack:"elasticity"`
	Bodies     []BodyState `msgpack:"bodies"`
}

// State captures the current state of every slot
func (w *World) State() Snapshot {
	s := Snapshot{
		Gravity:    w.gravity,
		Elasticity: w.elasticity,
		Bodies:     make([]BodyState, len(w.bodies)),
	}
	for i, body := range w.bodies {
		s.Bodies[i] = BodyState{
			ID:              body.ID,
			Generation:      body.Generation,
			Dead:            body.Dead,
			Position:        body.Position,
			Rotation:        [4]float64{body.Rotation.W, body.Rotation.V[0], body.Rotation.V[1], body.Rotation.V[2]},
			Velocity:        body.Velocity,
			AngularVelocity: body.AngularVelocity,
		}
	}
	return s
}

// Snapshot encodes the current state with msgpack
func (w *World) Snapshot() ([]byte, error) {
	state := w.State()
	data, err := msgpack.Marshal(&state)
	if err != nil {
		return nil, fmt.Errorf("kinema: encode snapshot: %w", err)
	}
	return data, nil
}

// Restore decodes a snapshot and applies it to the world
func (w *World) Restore(data []byte) error {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("kinema: decode snapshot: %w", err)
	}
	return w.SetState(s)
}

// SetState applies a snapshot, the world must have as many slots as the snapshot
func (w *World) SetState(s Snapshot) error {
	if len(s.Bodies) != len(w.bodies) {
		return fmt.Errorf("%w: %d bodies, world has %d", ErrSnapshotMismatch, len(s.Bodies), len(w.bodies))
	}

	w.SetGravity(s.Gravity)
	w.SetElasticity(s.Elasticity)

	w.free = w.free[:0]
	w.dirty = false
	for i, state := range s.Bodies {
		body := w.bodies[i]
		body.ID = state.ID
		body.Generation = state.Generation
		w.generations[i] = max(w.generations[i], state.Generation)
		body.Dead = state.Dead
		body.Position = state.Position
		body.Rotation = mgl64.Quat{W: state.Rotation[0], V: mgl64.Vec3{state.Rotation[1], state.Rotation[2], state.Rotation[3]}}.Normalize()
		body.Velocity = state.Velocity
		body.AngularVelocity = state.AngularVelocity
		body.Sync(w.shapes[i])

		if body.Dead {
			w.free = append(w.free, i)
			w.dirty = true
		}
	}
	w.stale = true

	w.Logger.Debug("state restored", "bodies", len(s.Bodies), "free", len(w.free))
	return nil
}
