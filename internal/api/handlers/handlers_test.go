package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/letterdrop/internal/admin"
	"github.com/playmatatu/letterdrop/internal/config"
	"github.com/playmatatu/letterdrop/internal/game"
	"github.com/playmatatu/letterdrop/internal/physics"
	"github.com/playmatatu/letterdrop/internal/ws"
)

const testSecret = "test-secret"

func setupRouter(t *testing.T) (*gin.Engine, *game.Simulation, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := admin.HashAdminToken("letmein")
	if err != nil {
		t.Fatalf("HashAdminToken: %v", err)
	}
	cfg := &config.Config{
		Environment:      "development",
		JWTSecret:        testSecret,
		AdminTokenHash:   hash,
		AdminTokenTTLMin: 5,
		TickRate:         60,
	}
	sim, err := game.NewSimulation(game.SimulationConfig{
		Width:    800,
		Height:   600,
		Spawn:    game.SpawnerConfig{ZoneHeight: 200, Delay: 50 * time.Millisecond, RetryDelay: 17 * time.Millisecond},
		Settings: physics.DefaultSettings(),
		Seed:     9,
	})
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	hub := ws.NewHub()
	bus := ws.NewSettingsBus(nil, "test", sim, hub)

	r := gin.New()
	r.GET("/physics/settings", GetPhysicsSettings(sim))
	r.PUT("/physics/settings/:key", AuthMiddleware(cfg), UpdatePhysicsSetting(sim, hub, bus))
	r.POST("/admin/login", AdminLogin(cfg))
	r.POST("/balls", AuthMiddleware(cfg), SpawnBall(sim))
	r.DELETE("/balls/:id", AuthMiddleware(cfg), RemoveBall(sim))
	r.GET("/bag", GetBag(sim))
	return r, sim, cfg
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func adminToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, _, err := admin.IssueToken(cfg.JWTSecret, time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return token
}

func TestGetPhysicsSettings(t *testing.T) {
	r, _, _ := setupRouter(t)
	w := doJSON(r, http.MethodGet, "/physics/settings", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Settings []physics.SettingEntry `json:"settings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	found := false
	for _, e := range resp.Settings {
		if e.Key == "gravity" {
			found = true
			if e.Value != "0.3" || e.ValueType != "float" {
				t.Errorf("unexpected gravity entry %+v", e)
			}
		}
	}
	if !found {
		t.Error("gravity missing from settings")
	}
}

func TestUpdatePhysicsSettingRequiresAuth(t *testing.T) {
	r, sim, _ := setupRouter(t)
	w := doJSON(r, http.MethodPut, "/physics/settings/gravity", "", gin.H{"value": "1"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	w = doJSON(r, http.MethodPut, "/physics/settings/gravity", "not-a-jwt", gin.H{"value": "1"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for garbage token, got %d", w.Code)
	}
	if g := sim.Settings().Gravity; g != 0.3 {
		t.Errorf("unauthorised update must not apply, gravity=%.2f", g)
	}
}

func TestUpdatePhysicsSetting(t *testing.T) {
	r, sim, cfg := setupRouter(t)
	token := adminToken(t, cfg)

	cases := []struct {
		key, value string
		want       int
	}{
		{"gravity", "0.6", http.StatusOK},
		{"friction_enabled", "true", http.StatusOK},
		{"sub_steps", "0", http.StatusBadRequest},
		{"friction", "abc", http.StatusBadRequest},
		{"warp_drive", "1", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := doJSON(r, http.MethodPut, "/physics/settings/"+tc.key, token, gin.H{"value": tc.value})
		if w.Code != tc.want {
			t.Errorf("%s=%s: expected %d, got %d (%s)", tc.key, tc.value, tc.want, w.Code, w.Body.String())
		}
	}

	s := sim.Settings()
	if s.Gravity != 0.6 || !s.FrictionEnabled {
		t.Errorf("valid updates not applied: %+v", s)
	}
	if s.SubSteps != physics.DefaultSettings().SubSteps {
		t.Errorf("invalid update applied: sub_steps=%d", s.SubSteps)
	}
}

func TestAdminLogin(t *testing.T) {
	r, _, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/admin/login", "", gin.H{"token": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/admin/login", "", gin.H{"token": "letmein"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("expected token in response: %s", w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/balls", resp.Token, nil)
	if w.Code != http.StatusCreated {
		t.Errorf("expected issued token to authorise spawn, got %d", w.Code)
	}
}

func TestSpawnAndRemoveBall(t *testing.T) {
	r, sim, cfg := setupRouter(t)
	token := adminToken(t, cfg)

	w := doJSON(r, http.MethodPost, "/balls", token, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var resp struct {
		Ball game.Ball `json:"ball"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if sim.BagState().InPlay != 1 {
		t.Errorf("expected 1 letter in play, got %d", sim.BagState().InPlay)
	}

	path := "/balls/" + itoa(resp.Ball.BodyID)
	if w := doJSON(r, http.MethodDelete, path, token, nil); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodDelete, path, token, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for removed ball, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodDelete, "/balls/abc", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/bag", "", nil)
	var bag game.BagState
	if err := json.Unmarshal(w.Body.Bytes(), &bag); err != nil {
		t.Fatalf("invalid bag body: %v", err)
	}
	if bag.InPlay != 0 || bag.Total != game.BagSize {
		t.Errorf("unexpected bag %+v", bag)
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
