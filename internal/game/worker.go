package game

import (
	"context"
	"log"
	"time"
)

// StartSimulationWorker ticks sim every interval until ctx is cancelled and
// hands each frame to onFrame. onFrame may be nil.
func StartSimulationWorker(ctx context.Context, sim *Simulation, interval time.Duration, onFrame func(Frame)) {
	if sim == nil {
		log.Println("[SIM] Simulation missing; worker not started")
		return
	}
	if interval <= 0 {
		log.Printf("[SIM] Invalid tick interval %v; worker not started", interval)
		return
	}

	log.Printf("[SIM] Simulation worker started (interval=%v)", interval)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[SIM] Simulation worker stopping")
				return
			case now := <-ticker.C:
				frame, err := sim.Tick(now)
				if err != nil {
					log.Printf("[SIM] Step failed: %v", err)
					continue
				}
				if onFrame != nil {
					onFrame(frame)
				}
			}
		}
	}()
}
