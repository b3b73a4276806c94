package game

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/playmatatu/letterdrop/internal/physics"
)

func TestRadiusForFrequencyEndpoints(t *testing.T) {
	cases := []struct {
		letter string
		want   float64
	}{
		{"E", MaxRadius},
		{"Z", MinRadius},
	}
	for _, tc := range cases {
		if got := RadiusForLetter(tc.letter); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("radius for %s: expected %.2f, got %.4f", tc.letter, tc.want, got)
		}
	}
	if got := RadiusForLetter("A"); got <= MinRadius || got >= MaxRadius {
		t.Errorf("radius for A should lie strictly between bounds, got %.4f", got)
	}
	if got := RadiusForLetter("?"); got != MinRadius {
		t.Errorf("unknown letter should get MinRadius, got %.4f", got)
	}
}

func TestColorForLetter(t *testing.T) {
	if got := ColorForLetter("A"); got != "hsl(0, 75%, 60%)" {
		t.Errorf("unexpected colour for A: %s", got)
	}
	if got := ColorForLetter("N"); got != "hsl(180, 75%, 60%)" {
		t.Errorf("unexpected colour for N: %s", got)
	}
}

func TestLetterBagConservesTiles(t *testing.T) {
	bag := NewLetterBag(rand.New(rand.NewSource(1)))
	if s := bag.State(); s.Available != BagSize || s.InPlay != 0 || s.Total != BagSize {
		t.Fatalf("unexpected fresh bag state: %+v", s)
	}

	var drawn []string
	for i := 0; i < 30; i++ {
		l, err := bag.Draw()
		if err != nil {
			t.Fatalf("Draw: %v", err)
		}
		drawn = append(drawn, l)
	}
	for _, l := range drawn[:10] {
		if err := bag.Return(l); err != nil {
			t.Fatalf("Return(%s): %v", l, err)
		}
	}

	s := bag.State()
	if s.InPlay != 20 || s.Available != BagSize-20 {
		t.Errorf("expected %d available / 20 in play, got %+v", BagSize-20, s)
	}
	if s.Total != BagSize {
		t.Errorf("expected total %d, got %d", BagSize, s.Total)
	}
}

func TestLetterBagDistribution(t *testing.T) {
	bag := NewLetterBag(rand.New(rand.NewSource(2)))
	counts := map[string]int{}
	for {
		l, err := bag.Draw()
		if errors.Is(err, ErrBagEmpty) {
			break
		}
		if err != nil {
			t.Fatalf("Draw: %v", err)
		}
		counts[l]++
	}
	if counts["E"] != 12 || counts["Q"] != 1 || counts["Z"] != 2 {
		t.Errorf("unexpected counts E=%d Q=%d Z=%d", counts["E"], counts["Q"], counts["Z"])
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	if total != BagSize {
		t.Errorf("expected %d tiles, got %d", BagSize, total)
	}

	table := 0
	for _, d := range bagDistribution {
		table += d.count
	}
	if table != BagSize {
		t.Errorf("distribution holds %d tiles, BagSize is %d", table, BagSize)
	}
}

func TestLetterBagRejectsUnknownReturn(t *testing.T) {
	bag := NewLetterBag(rand.New(rand.NewSource(3)))
	if err := bag.Return("E"); !errors.Is(err, ErrLetterNotInPlay) {
		t.Errorf("expected ErrLetterNotInPlay, got %v", err)
	}
	if s := bag.State(); s.Available != BagSize {
		t.Errorf("failed return must not change the bag, got %+v", s)
	}
}

func TestSpawnerPacing(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	bag := NewLetterBag(rng)
	sp := NewSpawner(SpawnerConfig{
		Width:      800,
		ZoneHeight: 200,
		Delay:      50 * time.Millisecond,
		RetryDelay: 17 * time.Millisecond,
	}, rng)
	if n := sp.Prepare(bag, 3); n != 3 {
		t.Fatalf("expected 3 queued, got %d", n)
	}

	start := time.Unix(1000, 0)
	spec, ok := sp.Next(start, nil)
	if !ok {
		t.Fatal("expected first spawn to be immediate")
	}
	if spec.Position.X() < spec.Radius || spec.Position.X() > 800-spec.Radius {
		t.Errorf("spawn x %.2f outside [r, width-r]", spec.Position.X())
	}
	if spec.Position.Y() < -200 || spec.Position.Y() >= 0 {
		t.Errorf("spawn y %.2f outside spawn zone", spec.Position.Y())
	}

	if _, ok := sp.Next(start.Add(49*time.Millisecond), nil); ok {
		t.Error("expected no spawn before the delay elapsed")
	}
	if _, ok := sp.Next(start.Add(50*time.Millisecond), nil); !ok {
		t.Error("expected a spawn once the delay elapsed")
	}
	if sp.Pending() != 1 {
		t.Errorf("expected 1 pending, got %d", sp.Pending())
	}
}

func TestSpawnerRetriesWhenBlocked(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	bag := NewLetterBag(rng)
	sp := NewSpawner(SpawnerConfig{Width: 100, ZoneHeight: 100, Delay: 50 * time.Millisecond, RetryDelay: 17 * time.Millisecond}, rng)
	sp.Prepare(bag, 1)

	// One huge body covers the whole spawn zone.
	blocker := []physics.BodyState{{ID: 99, X: 50, Y: -50, Radius: 500}}
	start := time.Unix(2000, 0)
	if _, ok := sp.Next(start, blocker); ok {
		t.Fatal("expected blocked spawn")
	}
	if _, ok := sp.Next(start.Add(16*time.Millisecond), nil); ok {
		t.Error("expected retry to wait for the retry delay")
	}
	if _, ok := sp.Next(start.Add(17*time.Millisecond), nil); !ok {
		t.Error("expected retry to succeed once unblocked")
	}

	if _, err := sp.Place(30, blocker); !errors.Is(err, ErrNoSpawnSpace) {
		t.Errorf("expected ErrNoSpawnSpace, got %v", err)
	}
}

func setupSimulation(t *testing.T, numBalls int) *Simulation {
	t.Helper()
	sim, err := NewSimulation(SimulationConfig{
		Width:    800,
		Height:   600,
		NumBalls: numBalls,
		Spawn: SpawnerConfig{
			ZoneHeight: 200,
			Delay:      50 * time.Millisecond,
			RetryDelay: 17 * time.Millisecond,
		},
		Settings: physics.DefaultSettings(),
		Seed:     42,
	})
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	return sim
}

func TestSimulationSpawnsQueuedBalls(t *testing.T) {
	sim := setupSimulation(t, 5)
	now := time.Unix(3000, 0)

	var frame Frame
	var err error
	for i := 0; i < 200; i++ {
		frame, err = sim.Tick(now)
		if err != nil {
			t.Fatalf("Tick: %v", err)
		}
		now = now.Add(16 * time.Millisecond)
	}

	if len(frame.Balls) != 5 {
		t.Fatalf("expected 5 balls, got %d", len(frame.Balls))
	}
	if frame.Seq != 200 {
		t.Errorf("expected seq 200, got %d", frame.Seq)
	}
	if frame.Bag.InPlay != 5 || frame.Bag.Total != BagSize {
		t.Errorf("unexpected bag state %+v", frame.Bag)
	}
	for _, b := range frame.Balls {
		if b.Letter == "" || b.Color == "" {
			t.Errorf("ball %d missing letter metadata: %+v", b.ID, b)
		}
		if b.Y+b.Radius > 600+1e-6 {
			t.Errorf("ball %d below the floor: y=%.2f", b.ID, b.Y)
		}
	}
}

func TestSimulationRemoveReturnsLetter(t *testing.T) {
	sim := setupSimulation(t, 0)
	ball, err := sim.SpawnBall()
	if err != nil {
		t.Fatalf("SpawnBall: %v", err)
	}
	if s := sim.BagState(); s.InPlay != 1 {
		t.Fatalf("expected 1 in play, got %+v", s)
	}

	removed, err := sim.RemoveBall(ball.BodyID)
	if err != nil {
		t.Fatalf("RemoveBall: %v", err)
	}
	if removed.Letter != ball.Letter {
		t.Errorf("expected removed letter %s, got %s", ball.Letter, removed.Letter)
	}
	if s := sim.BagState(); s.InPlay != 0 || s.Available != BagSize {
		t.Errorf("expected letter back in bag, got %+v", s)
	}
	if _, err := sim.RemoveBall(ball.BodyID); !errors.Is(err, ErrBallNotFound) {
		t.Errorf("expected ErrBallNotFound, got %v", err)
	}
}

func TestSimulationSettingUpdates(t *testing.T) {
	sim := setupSimulation(t, 0)
	if err := sim.UpdateSetting("gravity", "0.5"); err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}
	if g := sim.Settings().Gravity; g != 0.5 {
		t.Errorf("expected gravity 0.5, got %.2f", g)
	}
	if err := sim.UpdateSetting("sub_steps", "0"); !errors.Is(err, physics.ErrInvalidSettings) {
		t.Errorf("expected ErrInvalidSettings, got %v", err)
	}
	if err := sim.UpdateSetting("warp_drive", "1"); !errors.Is(err, physics.ErrUnknownSetting) {
		t.Errorf("expected ErrUnknownSetting, got %v", err)
	}
	if s := sim.Settings().SubSteps; s != physics.DefaultSettings().SubSteps {
		t.Errorf("rejected update must not apply, sub_steps=%d", s)
	}
}

func TestSimulationReset(t *testing.T) {
	sim := setupSimulation(t, 3)
	if _, err := sim.SpawnBall(); err != nil {
		t.Fatalf("SpawnBall: %v", err)
	}
	if err := sim.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if n := len(sim.Snapshot().Balls); n != 0 {
		t.Errorf("expected empty board after reset, got %d balls", n)
	}
	if p := sim.PendingSpawns(); p != 3 {
		t.Errorf("expected 3 queued after reset, got %d", p)
	}
	if s := sim.BagState(); s.InPlay != 3 || s.Total != BagSize {
		t.Errorf("unexpected bag after reset: %+v", s)
	}
}

func TestSimulationWorkerDeliversFrames(t *testing.T) {
	sim := setupSimulation(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := make(chan Frame, 16)
	StartSimulationWorker(ctx, sim, 5*time.Millisecond, func(f Frame) {
		select {
		case frames <- f:
		default:
		}
	})

	select {
	case f := <-frames:
		if f.Seq == 0 {
			t.Errorf("expected a stepped frame, got seq 0")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker produced no frame")
	}
}
