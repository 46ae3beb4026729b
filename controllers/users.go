package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openbingo/bingo-server/protocol"
)

// CreateUser provisions a throwaway user record with the starting
// wallet. The wallet crosses the boundary in dollars.
func (h *Handler) CreateUser(c *gin.Context) {
	username := fmt.Sprintf("player%d", h.Rng.Intn(10000))
	password := fmt.Sprintf("pass%d", h.Rng.Intn(10000))

	user, err := h.Store.CreateUser(c.Request.Context(), username, password, h.StartingWallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"wallet":   protocol.Dollars(user.Wallet),
	})
}
