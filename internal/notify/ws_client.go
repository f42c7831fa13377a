package notify

import (
	"encoding/json"
	"time"

	"complaintdesk/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

// WebSocketClient pushes a user's notifications over one websocket.
type WebSocketClient struct {
	UserID uint
	Conn   *websocket.Conn
	Hub    *Hub
	Send   chan models.Notification
	Log    zerolog.Logger
}

func NewWebSocketClient(hub *Hub, userID uint, conn *websocket.Conn, log zerolog.Logger) *WebSocketClient {
	return &WebSocketClient{
		UserID: userID,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan models.Notification, sendBuffer),
		Log:    log,
	}
}

func (c *WebSocketClient) GetUserID() uint                            { return c.UserID }
func (c *WebSocketClient) GetSendChannel() chan<- models.Notification { return c.Send }

func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close stops the write pump; the read pump ends when the connection closes.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

// readPump only keeps the connection alive; clients never send notifications.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Log.Debug().Err(err).Uint("user_id", c.UserID).Msg("Websocket closed unexpectedly")
			}
			return
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case n, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(n)
			if err != nil {
				c.Log.Error().Err(err).Uint("user_id", c.UserID).Msg("Failed to encode notification")
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
