package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// coincidentEpsilon is the centre distance below which the contact normal
// falls back to a fixed axis.
const coincidentEpsilon = 1e-9

var fallbackNormal = mgl64.Vec2{1, 0}

// pairKey identifies a pair of bodies independent of order.
type pairKey struct {
	lo, hi int
}

func makePairKey(idA, idB int) pairKey {
	if idA > idB {
		idA, idB = idB, idA
	}
	return pairKey{lo: idA, hi: idB}
}

// contact is one overlapping pair during a sub-step. a always has the lower
// id and the normal points from a to b.
type contact struct {
	key         pairKey
	a, b        *Body
	normal      mgl64.Vec2
	penetration float64

	normalImpulse  float64
	tangentImpulse float64

	normalMass      float64
	tangentMass     float64
	bias            float64
	restitutionBias float64
}

func (c *contact) tangent() mgl64.Vec2 {
	return mgl64.Vec2{-c.normal[1], c.normal[0]}
}

func (c *contact) state() ContactState {
	return ContactState{
		BodyA:          c.a.ID,
		BodyB:          c.b.ID,
		NormalX:        c.normal.X(),
		NormalY:        c.normal.Y(),
		Penetration:    c.penetration,
		NormalImpulse:  c.normalImpulse,
		TangentImpulse: c.tangentImpulse,
	}
}

// ContactState is a read-only view of a contact for debugging overlays.
type ContactState struct {
	BodyA          int     `json:"body_a"`
	BodyB          int     `json:"body_b"`
	NormalX        float64 `json:"nx"`
	NormalY        float64 `json:"ny"`
	Penetration    float64 `json:"penetration"`
	NormalImpulse  float64 `json:"normal_impulse"`
	TangentImpulse float64 `json:"tangent_impulse"`
}

// collide returns the normal from a to b and the overlap depth of two circles.
func collide(a, b *Body) (mgl64.Vec2, float64, bool) {
	delta := b.Position.Sub(a.Position)
	radii := a.Radius + b.Radius
	distSqr := delta.LenSqr()
	if distSqr >= radii*radii {
		return mgl64.Vec2{}, 0, false
	}

	dist := math.Sqrt(distSqr)
	if dist < coincidentEpsilon {
		return fallbackNormal, radii - dist, true
	}
	return delta.Mul(1 / dist), radii - dist, true
}

type contactSet struct {
	index    map[pairKey]int
	contacts []contact
}

func newContactSet() *contactSet {
	return &contactSet{index: make(map[pairKey]int)}
}

func (s *contactSet) reset() {
	clear(s.index)
	s.contacts = s.contacts[:0]
}

func (s *contactSet) lookup(key pairKey) (*contact, bool) {
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return &s.contacts[i], true
}

func (s *contactSet) add(c contact) {
	s.index[c.key] = len(s.contacts)
	s.contacts = append(s.contacts, c)
}

// contactManager double-buffers contacts so each sub-step can seed its
// accumulated impulses from the one before. Both sets keep their storage
// between sub-steps.
type contactManager struct {
	previous *contactSet
	current  *contactSet
}

func newContactManager() *contactManager {
	return &contactManager{
		previous: newContactSet(),
		current:  newContactSet(),
	}
}

// begin retires the current set and starts an empty one.
func (m *contactManager) begin() {
	m.previous, m.current = m.current, m.previous
	m.current.reset()
}

// create records an overlapping pair, carrying over the impulses the same
// pair accumulated in the previous sub-step.
func (m *contactManager) create(a, b *Body, normal mgl64.Vec2, penetration float64) {
	c := contact{
		key:         makePairKey(a.ID, b.ID),
		a:           a,
		b:           b,
		normal:      normal,
		penetration: penetration,
	}
	if prev, ok := m.previous.lookup(c.key); ok {
		c.normalImpulse = prev.normalImpulse
		c.tangentImpulse = prev.tangentImpulse
	}
	m.current.add(c)
}

// forget drops every contact involving id so a later body reusing the id
// does not inherit stale impulses.
func (m *contactManager) forget(id int) {
	for _, set := range []*contactSet{m.previous, m.current} {
		kept := set.contacts[:0]
		for _, c := range set.contacts {
			if c.key.lo != id && c.key.hi != id {
				kept = append(kept, c)
			}
		}
		set.contacts = kept
		clear(set.index)
		for i, c := range set.contacts {
			set.index[c.key] = i
		}
	}
}

func (m *contactManager) reset() {
	m.previous.reset()
	m.current.reset()
}

func (m *contactManager) active() []contact {
	return m.current.contacts
}
