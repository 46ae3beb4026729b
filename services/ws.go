package services

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/openbingo/bingo-server/utils/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades the request and hands the connection to the
// orchestrator for its lifetime.
func HandleWebSocket(orch *Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("[WS] upgrade error: %v", err)
			return
		}

		client := NewClient(conn, orch)
		logger.Debugf("[WS] client connected from %s", conn.RemoteAddr())

		orch.HandleConnect(c.Request.Context(), client)
		client.Run(c.Request.Context())
	}
}
