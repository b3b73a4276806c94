package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/letterdrop/internal/game"
	"github.com/playmatatu/letterdrop/internal/ws"
)

// HandleViewerWebSocket streams simulation frames to a viewer
func HandleViewerWebSocket(hub *ws.Hub, sim *game.Simulation) gin.HandlerFunc {
	return ws.HandleWebSocket(hub, sim)
}
