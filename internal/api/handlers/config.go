package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/letterdrop/internal/config"
	"github.com/playmatatu/letterdrop/internal/game"
)

// GetConfig returns the values a renderer needs before the first frame
func GetConfig(cfg *config.Config, sim *game.Simulation) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tick_rate":  cfg.TickRate,
			"bounds":     sim.Bounds(),
			"num_balls":  cfg.NumBalls,
			"min_radius": game.MinRadius,
			"max_radius": game.MaxRadius,
		})
	}
}
