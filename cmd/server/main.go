package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playmatatu/letterdrop/internal/api"
	"github.com/playmatatu/letterdrop/internal/config"
	"github.com/playmatatu/letterdrop/internal/game"
	"github.com/playmatatu/letterdrop/internal/redis"
	"github.com/playmatatu/letterdrop/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional; without it settings changes stay on this instance
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		client, err := redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		rdb = client
	} else {
		log.Println("[REDIS] REDIS_URL not set - settings will not be shared between instances")
	}

	sim, err := game.NewSimulation(game.SimulationConfig{
		Width:    cfg.WorldWidth,
		Height:   cfg.WorldHeight,
		NumBalls: cfg.NumBalls,
		Spawn: game.SpawnerConfig{
			ZoneHeight: cfg.SpawnZoneHeight,
			Delay:      time.Duration(cfg.SpawnDelayMs) * time.Millisecond,
			RetryDelay: time.Duration(cfg.SpawnRetryDelayMs) * time.Millisecond,
		},
		Settings: cfg.PhysicsSettings(),
		Seed:     cfg.Seed,
	})
	if err != nil {
		log.Fatalf("Failed to create simulation: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	hostname, _ := os.Hostname()
	instance := fmt.Sprintf("%s-%d", hostname, os.Getpid())
	bus := ws.NewSettingsBus(rdb, instance, sim, hub)
	bus.StartSettingsSubscriber(ctx)

	game.StartSimulationWorker(ctx, sim, cfg.TickInterval(), hub.BroadcastFrame)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, sim, hub, bus, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting letterdrop server on port %s (instance=%s, %d balls at %d Hz)", port, instance, cfg.NumBalls, cfg.TickRate)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
