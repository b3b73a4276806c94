package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/letterdrop/internal/game"
	"github.com/playmatatu/letterdrop/internal/physics"
)

// statusForError maps domain errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, physics.ErrUnknownSetting),
		errors.Is(err, game.ErrBallNotFound),
		errors.Is(err, physics.ErrBodyNotFound):
		return http.StatusNotFound
	case errors.Is(err, physics.ErrInvalidSettings),
		errors.Is(err, physics.ErrInvalidBounds),
		errors.Is(err, physics.ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrBagEmpty),
		errors.Is(err, game.ErrNoSpawnSpace):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// parseIDParam reads a positive integer path parameter
func parseIDParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
