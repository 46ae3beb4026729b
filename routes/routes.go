package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/openbingo/bingo-server/controllers"
)

func SetupRoutes(r *gin.Engine, h *controllers.Handler) {
	api := r.Group("/api")

	// ----------------------
	// Game routes
	// ----------------------
	api.GET("/games/active", h.ActiveGames) // Active game count

	// ----------------------
	// User routes
	// ----------------------
	api.POST("/users", h.CreateUser) // Provision a user
}
