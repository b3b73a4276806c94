package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/playmatatu/letterdrop/internal/physics"
)

var ErrBallNotFound = errors.New("ball not found")

// Ball is the letter metadata attached to a physics body.
type Ball struct {
	BodyID    int     `json:"id"`
	Letter    string  `json:"letter"`
	Frequency float64 `json:"frequency"`
	Radius    float64 `json:"radius"`
	Color     string  `json:"color"`
}

// BallView is one ball as a renderer sees it.
type BallView struct {
	ID       int     `json:"id"`
	Letter   string  `json:"letter"`
	Color    string  `json:"color"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	Radius   float64 `json:"radius"`
	Sleeping bool    `json:"sleeping"`
}

// Frame is the per-tick output pushed to clients.
type Frame struct {
	Seq   uint64     `json:"seq"`
	Balls []BallView `json:"balls"`
	Bag   BagState   `json:"bag"`
}

type SimulationConfig struct {
	Width    float64
	Height   float64
	NumBalls int
	Spawn    SpawnerConfig
	Settings physics.Settings
	Seed     int64 // 0 seeds from the clock
}

// Simulation ties the physics world to the letter bag and spawner. All
// methods are safe for concurrent use; a single mutex keeps tuning and
// lifecycle changes from landing mid-step.
type Simulation struct {
	mu      sync.Mutex
	world   *physics.World
	bag     *LetterBag
	spawner *Spawner
	balls   map[int]*Ball
	nextID  int
	seq     uint64

	numBalls int
}

func NewSimulation(cfg SimulationConfig) (*Simulation, error) {
	bounds := physics.NewBounds(cfg.Width, cfg.Height)
	bounds.OpenTop = true
	world, err := physics.NewWorld(bounds, cfg.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create world: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	spawnCfg := cfg.Spawn
	spawnCfg.Width = cfg.Width

	sim := &Simulation{
		world:   world,
		bag:     NewLetterBag(rng),
		spawner: NewSpawner(spawnCfg, rng),
		balls:   make(map[int]*Ball),
		nextID:  1,

		numBalls: cfg.NumBalls,
	}
	sim.spawner.Prepare(sim.bag, cfg.NumBalls)
	return sim, nil
}

// Tick spawns any ball that is due, advances the world one frame and
// returns the resulting frame.
func (s *Simulation) Tick(now time.Time) (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if spec, ok := s.spawner.Next(now, s.world.Bodies()); ok {
		if _, err := s.addBallLocked(spec); err != nil {
			log.Printf("[SIM] Failed to spawn %s: %v", spec.Letter, err)
			if err := s.bag.Return(spec.Letter); err != nil {
				log.Printf("[SIM] Failed to return %s to bag: %v", spec.Letter, err)
			}
		} else if s.spawner.Pending() == 0 {
			state := s.bag.State()
			log.Printf("[SIM] All %d balls spawned | Bag: %d available, %d in play, %d total", len(s.balls), state.Available, state.InPlay, state.Total)
		}
	}

	if err := s.world.Step(); err != nil {
		return Frame{}, err
	}
	s.seq++
	return s.frameLocked(), nil
}

func (s *Simulation) addBallLocked(spec SpawnSpec) (Ball, error) {
	id := s.nextID
	body := physics.Body{
		ID:          id,
		Position:    spec.Position,
		Radius:      spec.Radius,
		InverseMass: 1,
	}
	if err := s.world.AddBody(body); err != nil {
		return Ball{}, err
	}
	s.nextID++

	ball := &Ball{
		BodyID:    id,
		Letter:    spec.Letter,
		Frequency: spec.Frequency,
		Radius:    spec.Radius,
		Color:     ColorForLetter(spec.Letter),
	}
	s.balls[id] = ball
	return *ball, nil
}

// SpawnBall draws a letter and drops it into the spawn zone immediately.
func (s *Simulation) SpawnBall() (Ball, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	letter, err := s.bag.Draw()
	if err != nil {
		return Ball{}, err
	}
	spec := specForLetter(letter)
	pos, err := s.spawner.Place(spec.Radius, s.world.Bodies())
	if err == nil {
		spec.Position = pos
		var ball Ball
		if ball, err = s.addBallLocked(spec); err == nil {
			log.Printf("[SIM] Spawned ball %d (%s)", ball.BodyID, ball.Letter)
			return ball, nil
		}
	}

	if rerr := s.bag.Return(letter); rerr != nil {
		log.Printf("[SIM] Failed to return %s to bag: %v", letter, rerr)
	}
	return Ball{}, err
}

// RemoveBall takes a ball off the board and puts its letter back in the bag.
// Everything else is woken so balls resting on it fall.
func (s *Simulation) RemoveBall(id int) (Ball, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ball, ok := s.balls[id]
	if !ok {
		return Ball{}, fmt.Errorf("%w: %d", ErrBallNotFound, id)
	}
	if err := s.world.RemoveBody(id); err != nil {
		return Ball{}, err
	}
	delete(s.balls, id)
	if err := s.bag.Return(ball.Letter); err != nil {
		return Ball{}, err
	}
	s.world.WakeAll()
	return *ball, nil
}

func (s *Simulation) frameLocked() Frame {
	bodies := s.world.Bodies()
	views := make([]BallView, 0, len(bodies))
	for _, b := range bodies {
		ball, ok := s.balls[b.ID]
		if !ok {
			continue
		}
		views = append(views, BallView{
			ID:       b.ID,
			Letter:   ball.Letter,
			Color:    ball.Color,
			X:        b.X,
			Y:        b.Y,
			VX:       b.VX,
			VY:       b.VY,
			Radius:   b.Radius,
			Sleeping: b.Sleeping,
		})
	}
	return Frame{Seq: s.seq, Balls: views, Bag: s.bag.State()}
}

// Snapshot returns the current frame without stepping.
func (s *Simulation) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

func (s *Simulation) Contacts() []physics.ContactState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Contacts()
}

func (s *Simulation) Ball(id int) (Ball, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ball, ok := s.balls[id]
	if !ok {
		return Ball{}, false
	}
	return *ball, true
}

func (s *Simulation) Settings() physics.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Settings()
}

// UpdateSetting changes one tunable and wakes the board so sleeping balls
// react to it.
func (s *Simulation) UpdateSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.world.SetSetting(key, value); err != nil {
		return err
	}
	s.world.WakeAll()
	return nil
}

func (s *Simulation) ApplySettings(settings physics.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.world.SetSettings(settings); err != nil {
		return err
	}
	s.world.WakeAll()
	return nil
}

// Reset clears the board, refills the bag and queues a fresh set of balls.
func (s *Simulation) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.balls {
		if err := s.world.RemoveBody(id); err != nil {
			return err
		}
	}
	clear(s.balls)
	s.spawner.Drain()
	s.bag.Init()
	s.spawner.Prepare(s.bag, s.numBalls)
	log.Printf("[SIM] Board reset, %d balls queued", s.spawner.Pending())
	return nil
}

// Resize changes the world size. Balls outside the new edges are pulled in
// on the next tick.
func (s *Simulation) Resize(width, height float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bounds := physics.NewBounds(width, height)
	bounds.OpenTop = true
	if err := s.world.SetBounds(bounds); err != nil {
		return err
	}
	s.spawner.cfg.Width = width
	return nil
}

func (s *Simulation) Bounds() physics.Bounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Bounds()
}

func (s *Simulation) BagState() BagState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bag.State()
}

func (s *Simulation) PendingSpawns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawner.Pending()
}
