package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// solverMass treats sleeping bodies as immovable so a resting pile stays
// put until something fast hits it.
func solverMass(b *Body) float64 {
	if b.Sleeping {
		return 0
	}
	return b.InverseMass
}

func applyImpulse(a, b *Body, invA, invB float64, impulse mgl64.Vec2) {
	a.Velocity = a.Velocity.Sub(impulse.Mul(invA))
	b.Velocity = b.Velocity.Add(impulse.Mul(invB))
}

func relativeVelocity(c *contact) mgl64.Vec2 {
	return c.b.Velocity.Sub(c.a.Velocity)
}

// integrate advances one body by dt, updating its sleep state first from the
// speed it enters the sub-step with.
func (w *World) integrate(b *Body, dt float64) {
	s := &w.settings
	if b.immovable() {
		b.startSpeed = 0
		return
	}

	speed := b.Velocity.Len()
	b.startSpeed = speed
	if speed < s.SleepVelocityThreshold {
		if b.SleepCounter <= s.SleepTimeThreshold {
			b.SleepCounter++
		}
		if b.SleepCounter > s.SleepTimeThreshold {
			b.Sleeping = true
			b.Velocity = mgl64.Vec2{}
		}
	} else {
		b.SleepCounter = 0
		b.Sleeping = false
	}
	if b.Sleeping {
		return
	}

	b.Velocity[1] += s.Gravity * dt
	b.Velocity = b.Velocity.Mul(math.Pow(s.Friction, dt))
	b.Position = b.Position.Add(b.Velocity.Mul(dt))

	// a wall hit only resets the counter for a body arriving above the threshold
	if w.bounds.reflect(b, s.BounceDamping) && speed >= s.SleepVelocityThreshold {
		b.SleepCounter = 0
	}
}

// detectContacts rebuilds the contact set from the current positions.
// Touching alone is not activity: a contact wakes both bodies only when one
// of them entered the sub-step at or above the sleep threshold, so resting
// contact does not keep a pile awake.
func (w *World) detectContacts() {
	w.contacts.begin()
	threshold := w.settings.SleepVelocityThreshold

	for i, a := range w.bodies {
		for _, b := range w.bodies[i+1:] {
			if a.immovable() && b.immovable() {
				continue
			}
			lo, hi := a, b
			if lo.ID > hi.ID {
				lo, hi = hi, lo
			}
			normal, penetration, ok := collide(lo, hi)
			if !ok {
				continue
			}
			if lo.startSpeed >= threshold || hi.startSpeed >= threshold {
				lo.wake()
				hi.wake()
			}
			w.contacts.create(lo, hi, normal, penetration)
		}
	}
}

// preSolve computes effective masses and bias targets, then applies the
// carried-over impulses.
func (w *World) preSolve(dt float64) {
	s := &w.settings
	contacts := w.contacts.active()

	for i := range contacts {
		c := &contacts[i]
		invA, invB := solverMass(c.a), solverMass(c.b)

		c.normalMass, c.tangentMass = 0, 0
		if sum := invA + invB; sum > 0 {
			c.normalMass = 1 / sum
			c.tangentMass = 1 / sum
		}

		c.bias = s.BaumgarteFactor / dt * math.Max(c.penetration-s.AllowedPenetration, 0)
		c.restitutionBias = 0
		if vn := relativeVelocity(c).Dot(c.normal); vn < 0 {
			c.restitutionBias = -s.BounceDamping * vn
		}
		if s.FrictionEnabled {
			maxFriction := math.Abs(c.normalImpulse) * s.FrictionCoefficient
			c.tangentImpulse = mgl64.Clamp(c.tangentImpulse, -maxFriction, maxFriction)
		} else {
			c.tangentImpulse = 0
		}

		if c.normalMass == 0 {
			continue
		}
		impulse := c.normal.Mul(c.normalImpulse).Add(c.tangent().Mul(c.tangentImpulse))
		applyImpulse(c.a, c.b, invA, invB, impulse)
	}
}

// solveVelocities runs the sequential impulse passes. Accumulated normal
// impulses never go negative and friction stays inside the Coulomb cone.
func (w *World) solveVelocities() {
	s := &w.settings
	contacts := w.contacts.active()

	for iter := 0; iter < s.VelocityIterations; iter++ {
		for i := range contacts {
			c := &contacts[i]
			if c.normalMass == 0 {
				continue
			}
			invA, invB := solverMass(c.a), solverMass(c.b)

			vn := relativeVelocity(c).Dot(c.normal)
			target := math.Max(c.bias, c.restitutionBias)
			lambda := c.normalMass * -(vn - target)
			accumulated := math.Max(c.normalImpulse+lambda, 0)
			lambda = accumulated - c.normalImpulse
			c.normalImpulse = accumulated
			applyImpulse(c.a, c.b, invA, invB, c.normal.Mul(lambda))

			// friction is bounded by the normal impulse just solved
			if s.FrictionEnabled {
				t := c.tangent()
				vt := relativeVelocity(c).Dot(t)
				lambda := c.tangentMass * -vt
				maxFriction := c.normalImpulse * s.FrictionCoefficient
				accumulated := mgl64.Clamp(c.tangentImpulse+lambda, -maxFriction, maxFriction)
				lambda = accumulated - c.tangentImpulse
				c.tangentImpulse = accumulated
				applyImpulse(c.a, c.b, invA, invB, t.Mul(lambda))
			}
		}

		for _, b := range w.bodies {
			if !b.Sleeping && !b.immovable() {
				w.bounds.stopAtEdges(b, s.AllowedPenetration)
			}
		}
	}
}

// solvePositions pushes overlapping pairs apart until they are within the
// allowed penetration. A body resting on an edge does not move into it.
func (w *World) solvePositions() {
	s := &w.settings
	contacts := w.contacts.active()

	for iter := 0; iter < s.PositionIterations; iter++ {
		for i := range contacts {
			c := &contacts[i]
			normal, penetration, ok := collide(c.a, c.b)
			if !ok || penetration <= s.AllowedPenetration {
				continue
			}

			invA, invB := solverMass(c.a), solverMass(c.b)
			if w.bounds.pinned(c.a, normal.Mul(-1)) {
				invA = 0
			}
			if w.bounds.pinned(c.b, normal) {
				invB = 0
			}
			sum := invA + invB
			if sum == 0 {
				continue
			}

			correction := (penetration - s.AllowedPenetration) / sum
			c.a.Position = c.a.Position.Sub(normal.Mul(correction * invA))
			c.b.Position = c.b.Position.Add(normal.Mul(correction * invB))
		}

		for _, b := range w.bodies {
			if !b.Sleeping && !b.immovable() {
				w.bounds.clamp(b)
			}
		}
	}
}
