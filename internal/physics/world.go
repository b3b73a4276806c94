package physics

import (
	"fmt"
)

// World owns the bodies and the contact manager. It is not safe for
// concurrent use; callers serialise access.
type World struct {
	bounds   Bounds
	settings Settings
	bodies   []*Body
	byID     map[int]*Body
	contacts *contactManager
	steps    uint64
}

func NewWorld(bounds Bounds, settings Settings) (*World, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &World{
		bounds:   bounds,
		settings: settings,
		byID:     make(map[int]*Body),
		contacts: newContactManager(),
	}, nil
}

// AddBody copies body into the world. Ids must be unique among live bodies.
func (w *World) AddBody(body Body) error {
	if err := body.validate(); err != nil {
		return err
	}
	if _, exists := w.byID[body.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateBody, body.ID)
	}
	if !w.bounds.fits(body.Radius) {
		return fmt.Errorf("%w: body %d with radius %v does not fit the world", ErrInvalidBody, body.ID, body.Radius)
	}

	b := body
	b.startSpeed = 0
	if b.immovable() {
		b.Sleeping = false
		b.SleepCounter = 0
	}
	w.bodies = append(w.bodies, &b)
	w.byID[b.ID] = &b
	return nil
}

// RemoveBody drops a body and any contacts that reference it.
func (w *World) RemoveBody(id int) error {
	if _, ok := w.byID[id]; !ok {
		return fmt.Errorf("%w: %d", ErrBodyNotFound, id)
	}
	delete(w.byID, id)
	for i, b := range w.bodies {
		if b.ID == id {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	w.contacts.forget(id)
	return nil
}

// Body returns a copy of the body with the given id.
func (w *World) Body(id int) (Body, bool) {
	b, ok := w.byID[id]
	if !ok {
		return Body{}, false
	}
	return *b, true
}

// WakeBody clears the sleep state of a body, e.g. after a neighbour was removed.
func (w *World) WakeBody(id int) error {
	b, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrBodyNotFound, id)
	}
	b.wake()
	return nil
}

// WakeAll wakes every movable body.
func (w *World) WakeAll() {
	for _, b := range w.bodies {
		b.wake()
	}
}

func (w *World) BodyCount() int {
	return len(w.bodies)
}

// Bodies returns the per-body output in insertion order.
func (w *World) Bodies() []BodyState {
	out := make([]BodyState, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, b.state())
	}
	return out
}

// Contacts returns the contacts solved in the last sub-step.
func (w *World) Contacts() []ContactState {
	active := w.contacts.active()
	out := make([]ContactState, 0, len(active))
	for i := range active {
		out = append(out, active[i].state())
	}
	return out
}

func (w *World) Settings() Settings {
	return w.settings
}

// SetSettings replaces every tunable at once.
func (w *World) SetSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	w.settings = settings
	return nil
}

// SetSetting updates a single tunable by key.
func (w *World) SetSetting(key, value string) error {
	return w.settings.Set(key, value)
}

func (w *World) Bounds() Bounds {
	return w.bounds
}

// SetBounds resizes the world. Bodies are pulled inside on the next step.
func (w *World) SetBounds(bounds Bounds) error {
	if err := bounds.Validate(); err != nil {
		return err
	}
	for _, b := range w.bodies {
		if !bounds.fits(b.Radius) {
			return fmt.Errorf("%w: body %d with radius %v does not fit", ErrInvalidBounds, b.ID, b.Radius)
		}
	}
	w.bounds = bounds
	w.WakeAll()
	return nil
}

// StepCount is the number of completed Steps.
func (w *World) StepCount() uint64 {
	return w.steps
}

// Step advances the world by one unit of time.
func (w *World) Step() error {
	if err := w.settings.Validate(); err != nil {
		return err
	}
	if len(w.bodies) == 0 {
		w.contacts.reset()
		w.steps++
		return nil
	}

	dt := 1 / float64(w.settings.SubSteps)
	for i := 0; i < w.settings.SubSteps; i++ {
		w.subStep(dt)
	}
	w.steps++
	return nil
}

func (w *World) subStep(dt float64) {
	for _, b := range w.bodies {
		w.integrate(b, dt)
	}
	w.detectContacts()
	w.preSolve(dt)
	w.solveVelocities()
	w.solvePositions()
}
