package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/letterdrop/internal/admin"
	"github.com/playmatatu/letterdrop/internal/config"
)

// AdminLogin exchanges the shared admin token for a session JWT
func AdminLogin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
			return
		}

		ttl := time.Duration(cfg.AdminTokenTTLMin) * time.Minute
		token, exp, err := admin.Login(cfg.AdminTokenHash, req.Token, cfg.JWTSecret, ttl)
		if err != nil {
			if errors.Is(err, admin.ErrAdminDisabled) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin login disabled"})
				return
			}
			log.Printf("[ADMIN] Login failed from %s", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		log.Printf("[ADMIN] Login from %s", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": exp.Unix()})
	}
}

// AuthMiddleware requires a valid admin bearer token
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := admin.ParseToken(cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("admin_role", claims["role"])
		c.Next()
	}
}
