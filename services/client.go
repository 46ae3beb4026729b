package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/openbingo/bingo-server/protocol"
	"github.com/openbingo/bingo-server/utils/logger"
)

// Client is one WebSocket connection. Outbound messages go through a
// buffered channel so a slow reader never blocks game logic.
type Client struct {
	conn *websocket.Conn
	orch *Orchestrator
	send chan []byte
	once sync.Once
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn, orch *Orchestrator) *Client {
	return &Client{
		conn: conn,
		orch: orch,
		send: make(chan []byte, 32),
	}
}

// Send implements Conn. Messages to a backed-up client are dropped.
func (c *Client) Send(msg protocol.Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		logger.Errorf("[Client] marshal failed: %v", err)
		return
	}
	select {
	case c.send <- b:
	default:
		logger.Warnf("[Client] dropping %s message, send buffer full", msg.Type)
	}
}

// Close shuts the connection down exactly once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// Run starts the read/write pumps and blocks until the connection
// drops. Disconnection is treated as an implicit leave.
func (c *Client) Run(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.orch.HandleDisconnect(ctx, c)
		c.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("[Client] disconnected normally")
			} else {
				logger.Debugf("[Client] read error: %v", err)
			}
			return
		}

		func(msg []byte) {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("[Client] recovered from panic: %v", r)
					c.Send(protocol.ErrorMessage("Failed to process message"))
				}
			}()
			c.orch.Dispatch(ctx, c, msg)
		}(message)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Debugf("[Client] write error: %v", err)
			return
		}
	}
}
