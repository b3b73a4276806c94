package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/playmatatu/letterdrop/internal/physics"
)

type Config struct {
	// Environment
	Environment string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	TickRate          int
	WorldWidth        float64
	WorldHeight       float64
	NumBalls          int
	SpawnDelayMs      int
	SpawnRetryDelayMs int
	SpawnZoneHeight   float64
	Seed              int64

	// Physics overrides
	PhysicsGravity            float64
	PhysicsFriction           float64
	PhysicsBounce             float64
	PhysicsSubSteps           int
	PhysicsVelocityIterations int
	PhysicsPositionIterations int
	PhysicsFrictionEnabled    bool

	// Security
	JWTSecret        string
	AdminTokenHash   string
	AdminTokenTTLMin int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	defaults := physics.DefaultSettings()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Redis (empty disables settings fan-out)
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation
		TickRate:          getEnvInt("TICK_RATE", 60),
		WorldWidth:        getEnvFloat("WORLD_WIDTH", 800),
		WorldHeight:       getEnvFloat("WORLD_HEIGHT", 600),
		NumBalls:          getEnvInt("NUM_BALLS", 40),
		SpawnDelayMs:      getEnvInt("SPAWN_DELAY_MS", 50),
		SpawnRetryDelayMs: getEnvInt("SPAWN_RETRY_DELAY_MS", 17),
		SpawnZoneHeight:   getEnvFloat("SPAWN_ZONE_HEIGHT", 200),
		Seed:              int64(getEnvInt("SIM_SEED", 0)),

		// Physics overrides
		PhysicsGravity:            getEnvFloat("PHYSICS_GRAVITY", defaults.Gravity),
		PhysicsFriction:           getEnvFloat("PHYSICS_FRICTION", defaults.Friction),
		PhysicsBounce:             getEnvFloat("PHYSICS_BOUNCE", defaults.BounceDamping),
		PhysicsSubSteps:           getEnvInt("PHYSICS_SUB_STEPS", defaults.SubSteps),
		PhysicsVelocityIterations: getEnvInt("PHYSICS_VELOCITY_ITERATIONS", defaults.VelocityIterations),
		PhysicsPositionIterations: getEnvInt("PHYSICS_POSITION_ITERATIONS", defaults.PositionIterations),
		PhysicsFrictionEnabled:    getEnvBool("PHYSICS_FRICTION_ENABLED", defaults.FrictionEnabled),

		// Security
		JWTSecret:        getEnv("JWT_SECRET", "change-me-in-production"),
		AdminTokenHash:   getEnv("ADMIN_TOKEN_HASH", ""),
		AdminTokenTTLMin: getEnvInt("ADMIN_TOKEN_TTL_MINUTES", 60),
	}
}

// PhysicsSettings overlays the environment overrides onto the solver defaults.
func (c *Config) PhysicsSettings() physics.Settings {
	s := physics.DefaultSettings()
	s.Gravity = c.PhysicsGravity
	s.Friction = c.PhysicsFriction
	s.BounceDamping = c.PhysicsBounce
	s.SubSteps = c.PhysicsSubSteps
	s.VelocityIterations = c.PhysicsVelocityIterations
	s.PositionIterations = c.PhysicsPositionIterations
	s.FrictionEnabled = c.PhysicsFrictionEnabled
	return s
}

// TickInterval is the wall-clock time between simulation frames.
func (c *Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
