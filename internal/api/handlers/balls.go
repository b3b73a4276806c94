package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/letterdrop/internal/game"
)

// SpawnBall draws a letter and drops it in immediately
func SpawnBall(sim *game.Simulation) gin.HandlerFunc {
	return func(c *gin.Context) {
		ball, err := sim.SpawnBall()
		if err != nil {
			log.Printf("[API] Spawn failed: %v", err)
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ball": ball, "bag": sim.BagState()})
	}
}

// RemoveBall takes a ball off the board and returns its letter to the bag
func RemoveBall(sim *game.Simulation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		ball, err := sim.RemoveBall(id)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		log.Printf("[API] Removed ball %d (%s)", ball.BodyID, ball.Letter)
		c.JSON(http.StatusOK, gin.H{"ball": ball, "bag": sim.BagState()})
	}
}

// ResetBoard clears the board and queues a fresh set of balls
func ResetBoard(sim *game.Simulation) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sim.Reset(); err != nil {
			log.Printf("[API] Reset failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reset failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "pending": sim.PendingSpawns(), "bag": sim.BagState()})
	}
}

// GetBag returns the letter bag counts
func GetBag(sim *game.Simulation) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, sim.BagState())
	}
}
