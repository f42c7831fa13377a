package handler

import (
	"net/http"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict to the web front-end origin once it has a fixed host.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades to a websocket that pushes the caller's notifications.
// Browsers cannot set headers on the handshake, so the token travels in the query.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	claims, err := h.Tokens.Verify(c.Query("token"))
	if err != nil {
		h.fail(c, apperr.Unauthorized("auth.invalid_token", "invalid token or expired"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.Log.Warn().Err(err).Uint("user_id", claims.UserID).Msg("Websocket upgrade failed")
		return
	}

	client := notify.NewWebSocketClient(h.Hub, claims.UserID, conn, h.Log)
	if !h.Hub.Register(client) {
		_ = conn.Close()
		return
	}
	client.Run()
}
