package handler

import (
	"net/http"

	"roompad/backend/internal/roomhub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Events carry no content and access is checked before the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeRoomEvents upgrades to a websocket streaming change notifications for
// one room. Browsers cannot set headers on websocket requests, so the access
// token may also arrive as the token query parameter.
func (h *Handler) ServeRoomEvents(c *gin.Context) {
	slug, ok := pathSlug(c)
	if !ok {
		return
	}

	cred := credentialFrom(c, nil)
	if cred.Token == "" {
		cred.Token = c.Query("token")
	}
	if _, err := h.Rooms.Authorize(c.Request.Context(), slug, cred); err != nil {
		writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the request.
		logrus.WithError(err).WithField("slug", slug).Warn("Websocket upgrade failed")
		return
	}

	client := roomhub.NewWebSocketClient(h.Hub, conn, slug)
	if !h.Hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}
	client.Run()
}
