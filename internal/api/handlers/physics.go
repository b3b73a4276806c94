package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/letterdrop/internal/game"
	"github.com/playmatatu/letterdrop/internal/ws"
)

// GetPhysicsSettings lists every tunable with its current value
func GetPhysicsSettings(sim *game.Simulation) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings := sim.Settings()
		c.JSON(http.StatusOK, gin.H{"settings": settings.Entries()})
	}
}

// UpdatePhysicsSetting changes one tunable, tells viewers and fans the change
// out to other instances
func UpdatePhysicsSetting(sim *game.Simulation, hub *ws.Hub, bus *ws.SettingsBus) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")

		var req struct {
			Value string `json:"value" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Value is required"})
			return
		}

		if err := sim.UpdateSetting(key, req.Value); err != nil {
			log.Printf("[API] Failed to update setting %s=%s: %v", key, req.Value, err)
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		log.Printf("[API] Setting %s updated to %s", key, req.Value)
		hub.Broadcast("settings_updated", gin.H{"key": key, "value": req.Value})
		if err := bus.Publish(c.Request.Context(), key, req.Value); err != nil {
			log.Printf("[REDIS] Failed to publish setting %s: %v", key, err)
		}

		settings := sim.Settings()
		value, _ := settings.Get(key)
		c.JSON(http.StatusOK, gin.H{"ok": true, "key": key, "value": value})
	}
}

// GetBodies returns the current frame without stepping
func GetBodies(sim *game.Simulation) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, sim.Snapshot())
	}
}

// GetContacts returns the contacts solved in the last sub-step
func GetContacts(sim *game.Simulation) gin.HandlerFunc {
	return func(c *gin.Context) {
		contacts := sim.Contacts()
		c.JSON(http.StatusOK, gin.H{"contacts": contacts, "count": len(contacts)})
	}
}

// UpdateWorldBounds resizes the world to match the viewer
func UpdateWorldBounds(sim *game.Simulation) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Width  float64 `json:"width" binding:"required"`
			Height float64 `json:"height" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "width and height are required"})
			return
		}

		if err := sim.Resize(req.Width, req.Height); err != nil {
			log.Printf("[API] Failed to resize world to %.0fx%.0f: %v", req.Width, req.Height, err)
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bounds": sim.Bounds()})
	}
}
