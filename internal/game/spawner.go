package game

import (
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/playmatatu/letterdrop/internal/physics"
)

var ErrNoSpawnSpace = errors.New("no free spawn position")

// maxPlacementAttempts bounds the search for a free spot when a ball is spawned on demand.
const maxPlacementAttempts = 20

type SpawnerConfig struct {
	Width      float64
	ZoneHeight float64 // band above the top edge balls appear in
	Delay      time.Duration
	RetryDelay time.Duration
}

// SpawnSpec is a ball waiting to enter the world.
type SpawnSpec struct {
	Letter    string
	Frequency float64
	Radius    float64
	Position  mgl64.Vec2
}

// Spawner drops queued letters into the spawn zone one at a time, never on
// top of an existing body.
type Spawner struct {
	cfg         SpawnerConfig
	queue       []SpawnSpec
	nextAttempt time.Time
	rng         *rand.Rand
}

func NewSpawner(cfg SpawnerConfig, rng *rand.Rand) *Spawner {
	return &Spawner{cfg: cfg, rng: rng}
}

func specForLetter(letter string) SpawnSpec {
	f, _ := Frequency(letter)
	return SpawnSpec{
		Letter:    letter,
		Frequency: f,
		Radius:    RadiusForFrequency(f),
	}
}

// Prepare draws up to n letters from bag into the spawn queue and returns how
// many were queued.
func (s *Spawner) Prepare(bag *LetterBag, n int) int {
	queued := 0
	for i := 0; i < n; i++ {
		letter, err := bag.Draw()
		if err != nil {
			log.Printf("[SPAWN] Ran out of letters after %d of %d: %v", queued, n, err)
			break
		}
		s.queue = append(s.queue, specForLetter(letter))
		queued++
	}
	log.Printf("[SPAWN] Prepared %d balls to spawn", queued)
	return queued
}

func (s *Spawner) Pending() int {
	return len(s.queue)
}

// Drain drops every queued spawn. The caller owns the drawn letters.
func (s *Spawner) Drain() {
	s.queue = s.queue[:0]
}

// Next returns the head of the queue placed at a free position when an
// attempt is due at now. A blocked attempt is retried after RetryDelay.
func (s *Spawner) Next(now time.Time, occupied []physics.BodyState) (SpawnSpec, bool) {
	if len(s.queue) == 0 || now.Before(s.nextAttempt) {
		return SpawnSpec{}, false
	}

	spec := s.queue[0]
	spec.Position = s.randomPosition(spec.Radius)
	if overlapsAny(spec.Position, spec.Radius, occupied) {
		s.nextAttempt = now.Add(s.cfg.RetryDelay)
		return SpawnSpec{}, false
	}

	s.queue = s.queue[1:]
	s.nextAttempt = now.Add(s.cfg.Delay)
	return spec, true
}

// Place finds a free spawn position for radius, giving up after a bounded
// number of tries.
func (s *Spawner) Place(radius float64, occupied []physics.BodyState) (mgl64.Vec2, error) {
	for i := 0; i < maxPlacementAttempts; i++ {
		p := s.randomPosition(radius)
		if !overlapsAny(p, radius, occupied) {
			return p, nil
		}
	}
	return mgl64.Vec2{}, ErrNoSpawnSpace
}

func (s *Spawner) randomPosition(radius float64) mgl64.Vec2 {
	x := radius + s.rng.Float64()*(s.cfg.Width-2*radius)
	y := -s.cfg.ZoneHeight + s.rng.Float64()*s.cfg.ZoneHeight
	return mgl64.Vec2{x, y}
}

func overlapsAny(p mgl64.Vec2, radius float64, occupied []physics.BodyState) bool {
	for _, b := range occupied {
		reach := radius + b.Radius
		if p.Sub(mgl64.Vec2{b.X, b.Y}).LenSqr() < reach*reach {
			return true
		}
	}
	return false
}
