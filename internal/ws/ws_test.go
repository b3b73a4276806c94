package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/letterdrop/internal/game"
	"github.com/playmatatu/letterdrop/internal/physics"
)

func setupSimulation(t *testing.T) *game.Simulation {
	t.Helper()
	sim, err := game.NewSimulation(game.SimulationConfig{
		Width:    800,
		Height:   600,
		Spawn:    game.SpawnerConfig{ZoneHeight: 200, Delay: 50 * time.Millisecond, RetryDelay: 17 * time.Millisecond},
		Settings: physics.DefaultSettings(),
		Seed:     1,
	})
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	return sim
}

func TestBroadcastReachesRegisteredClients(t *testing.T) {
	hub := NewHub()
	client := &Client{id: 1, hub: hub, send: make(chan []byte, 1)}
	hub.clients[client.id] = client

	hub.BroadcastFrame(game.Frame{Seq: 7})

	select {
	case raw := <-client.send:
		var msg struct {
			Type string     `json:"type"`
			Data game.Frame `json:"data"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if msg.Type != "frame" || msg.Data.Seq != 7 {
			t.Errorf("unexpected message %+v", msg)
		}
	default:
		t.Fatal("expected a queued frame")
	}

	// A full buffer drops instead of blocking.
	hub.Broadcast("frame", game.Frame{Seq: 8})
	hub.Broadcast("frame", game.Frame{Seq: 9})
	if len(client.send) != 1 {
		t.Errorf("expected exactly one buffered message, got %d", len(client.send))
	}
}

func TestSettingsBusAppliesRemoteEvents(t *testing.T) {
	sim := setupSimulation(t)
	hub := NewHub()
	viewer := &Client{id: 1, hub: hub, send: make(chan []byte, 4)}
	hub.clients[viewer.id] = viewer
	bus := NewSettingsBus(nil, "instance-a", sim, hub)

	bus.Apply(SettingsEvent{Instance: "instance-a", Key: "gravity", Value: "0.9"})
	if g := sim.Settings().Gravity; g != physics.DefaultSettings().Gravity {
		t.Errorf("own event must be ignored, gravity=%.2f", g)
	}

	bus.Apply(SettingsEvent{Instance: "instance-b", Key: "gravity", Value: "0.9"})
	if g := sim.Settings().Gravity; g != 0.9 {
		t.Errorf("expected gravity 0.9, got %.2f", g)
	}
	if len(viewer.send) != 1 {
		t.Errorf("expected viewers notified once, got %d messages", len(viewer.send))
	}

	bus.Apply(SettingsEvent{Instance: "instance-b", Key: "friction", Value: "7"})
	if f := sim.Settings().Friction; f != physics.DefaultSettings().Friction {
		t.Errorf("invalid remote value must be rejected, friction=%.2f", f)
	}

	if err := bus.Publish(context.Background(), "gravity", "0.5"); err != nil {
		t.Errorf("publish without redis should be a no-op, got %v", err)
	}
}

func TestWebSocketSendsHello(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sim := setupSimulation(t)
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/ws", HandleWebSocket(hub, sim))
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string `json:"type"`
		Data struct {
			Settings []physics.SettingEntry `json:"settings"`
		} `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if msg.Type != "hello" {
		t.Fatalf("expected hello, got %s", msg.Type)
	}
	if len(msg.Data.Settings) == 0 {
		t.Error("expected settings in hello")
	}

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	var pong Message
	if err := conn.ReadJSON(&pong); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if pong.Type != "pong" {
		t.Errorf("expected pong, got %s", pong.Type)
	}
}
