package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/letterdrop/internal/api/handlers"
	"github.com/playmatatu/letterdrop/internal/config"
	"github.com/playmatatu/letterdrop/internal/game"
	"github.com/playmatatu/letterdrop/internal/middleware"
	"github.com/playmatatu/letterdrop/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, sim *game.Simulation, hub *ws.Hub, bus *ws.SettingsBus, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)
		v1.GET("/config", handlers.GetConfig(cfg, sim))
		v1.GET("/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleViewerWebSocket(hub, sim))

		v1.POST("/admin/login", handlers.AdminLogin(cfg))

		physics := v1.Group("/physics")
		{
			physics.GET("/settings", handlers.GetPhysicsSettings(sim))
			physics.GET("/bodies", handlers.GetBodies(sim))
			physics.GET("/contacts", handlers.GetContacts(sim))
			physics.PUT("/settings/:key", handlers.AuthMiddleware(cfg), handlers.UpdatePhysicsSetting(sim, hub, bus))
			physics.PUT("/bounds", handlers.AuthMiddleware(cfg), handlers.UpdateWorldBounds(sim))
		}

		v1.GET("/bag", handlers.GetBag(sim))

		balls := v1.Group("/balls")
		balls.Use(handlers.AuthMiddleware(cfg))
		{
			balls.POST("", handlers.SpawnBall(sim))
			balls.POST("/reset", handlers.ResetBoard(sim))
			balls.DELETE("/:id", handlers.RemoveBall(sim))
		}
	}
}
