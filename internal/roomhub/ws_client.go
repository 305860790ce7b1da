package roomhub

import (
	"encoding/json"
	"sync"
	"time"

	"roompad/backend/internal/config"
	"roompad/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketClient streams a room's events over a websocket. Incoming
// messages are read only to process control frames.
type WebSocketClient struct {
	ID   string
	Slug string
	Conn *websocket.Conn
	Hub  *Manager
	Send chan models.RoomEvent

	closeOnce sync.Once
}

// NewWebSocketClient wraps conn for slug.
func NewWebSocketClient(hub *Manager, conn *websocket.Conn, slug string) *WebSocketClient {
	return &WebSocketClient{
		ID:   uuid.NewString(),
		Slug: slug,
		Conn: conn,
		Hub:  hub,
		Send: make(chan models.RoomEvent, config.EventClientBuffer),
	}
}

func (c *WebSocketClient) GetClientID() string                     { return c.ID }
func (c *WebSocketClient) GetSlug() string                         { return c.Slug }
func (c *WebSocketClient) GetSendChannel() chan<- models.RoomEvent { return c.Send }

// Run starts the pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close stops writePump, which then closes the connection.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(config.EventMaxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(config.EventPongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(config.EventPongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("client_id", c.ID).Warn("Event stream closed unexpectedly")
			}
			return
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.EventPingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(config.EventWriteWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				logrus.WithError(err).WithField("client_id", c.ID).Error("Failed to encode room event")
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(config.EventWriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
