package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Body is a circle owned by the World. Collaborators hand the World a Body
// value; the World keeps its own copy and mutates it during Step.
type Body struct {
	ID           int        `json:"id"`
	Position     mgl64.Vec2 `json:"position"`
	Velocity     mgl64.Vec2 `json:"velocity"`
	Radius       float64    `json:"radius"`
	InverseMass  float64    `json:"inverse_mass"` // 0 means immovable
	Sleeping     bool       `json:"sleeping"`
	SleepCounter int        `json:"sleep_counter"`

	// speed at the start of the current sub-step, used to tell impacts from resting contact
	startSpeed float64
}

// BodyState is the per-body output read by renderers.
type BodyState struct {
	ID       int     `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	Radius   float64 `json:"radius"`
	Sleeping bool    `json:"sleeping"`
}

func (b *Body) state() BodyState {
	return BodyState{
		ID:       b.ID,
		X:        b.Position.X(),
		Y:        b.Position.Y(),
		VX:       b.Velocity.X(),
		VY:       b.Velocity.Y(),
		Radius:   b.Radius,
		Sleeping: b.Sleeping,
	}
}

func (b *Body) immovable() bool {
	return b.InverseMass == 0
}

func (b *Body) wake() {
	if b.immovable() {
		return
	}
	b.Sleeping = false
	b.SleepCounter = 0
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (b *Body) validate() error {
	if !finite(b.Radius) || b.Radius <= 0 {
		return fmt.Errorf("%w: body %d radius must be positive, got %v", ErrInvalidBody, b.ID, b.Radius)
	}
	if !finite(b.InverseMass) || b.InverseMass < 0 {
		return fmt.Errorf("%w: body %d inverse mass must be non-negative, got %v", ErrInvalidBody, b.ID, b.InverseMass)
	}
	if !finite(b.Position.X(), b.Position.Y(), b.Velocity.X(), b.Velocity.Y()) {
		return fmt.Errorf("%w: body %d has non-finite kinematics", ErrInvalidBody, b.ID)
	}
	if b.SleepCounter < 0 {
		return fmt.Errorf("%w: body %d sleep counter must not be negative", ErrInvalidBody, b.ID)
	}
	return nil
}
