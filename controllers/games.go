package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openbingo/bingo-server/store"
	"github.com/openbingo/bingo-server/utils/rng"
)

// Handler carries the HTTP surface's collaborators. These endpoints are
// thin wrappers around the store; game logic lives in services.
type Handler struct {
	Store          store.Store
	Rng            rng.Source
	StartingWallet int64
}

// ActiveGames returns the number of currently active games.
func (h *Handler) ActiveGames(c *gin.Context) {
	games, err := h.Store.ActiveGames(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get active games"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(games)})
}
