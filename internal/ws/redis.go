package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/letterdrop/internal/game"
	lredis "github.com/playmatatu/letterdrop/internal/redis"
	"github.com/redis/go-redis/v9"
)

// SettingsEvent is published whenever an instance changes a physics tunable.
type SettingsEvent struct {
	Instance string `json:"instance"`
	Key      string `json:"key"`
	Value    string `json:"value"`
}

// SettingsBus keeps physics tuning in step across instances. A nil bus or a
// bus without a Redis client only updates the local simulation.
type SettingsBus struct {
	rdb      *redis.Client
	instance string
	sim      *game.Simulation
	hub      *Hub
}

func NewSettingsBus(rdb *redis.Client, instance string, sim *game.Simulation, hub *Hub) *SettingsBus {
	return &SettingsBus{rdb: rdb, instance: instance, sim: sim, hub: hub}
}

// Publish announces a change that has already been applied locally.
func (b *SettingsBus) Publish(ctx context.Context, key, value string) error {
	if b == nil || b.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(SettingsEvent{Instance: b.instance, Key: key, Value: value})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, lredis.SettingsChannel, payload).Err()
}

// Apply handles an event from another instance: update the simulation and
// tell local viewers. Events from this instance are ignored.
func (b *SettingsBus) Apply(event SettingsEvent) {
	if event.Instance == b.instance {
		return
	}
	if err := b.sim.UpdateSetting(event.Key, event.Value); err != nil {
		log.Printf("[WS] Rejected settings event from %s (%s=%s): %v", event.Instance, event.Key, event.Value, err)
		return
	}
	log.Printf("[WS] Applied %s=%s from instance %s", event.Key, event.Value, event.Instance)
	if b.hub != nil {
		b.hub.Broadcast("settings_updated", event)
	}
}

// StartSettingsSubscriber listens on the settings channel until ctx is cancelled.
func (b *SettingsBus) StartSettingsSubscriber(ctx context.Context) {
	if b == nil || b.rdb == nil {
		log.Println("[WS] Redis client not set; settings subscriber not started")
		return
	}

	pubsub := b.rdb.Subscribe(ctx, lredis.SettingsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started (instance=%s)", lredis.SettingsChannel, b.instance)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[WS] %s subscriber stopping", lredis.SettingsChannel)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event SettingsEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("[WS] invalid settings payload: %v", err)
					continue
				}
				b.Apply(event)
			}
		}
	}()
}
