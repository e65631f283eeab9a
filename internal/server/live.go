package server

import (
	"net/http"
	"time"

	"auction-engine/internal/broadcast"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the API carries no browser credentials; cross-origin reads are fine
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveHandler streams an auction's broadcast events over a websocket.
type LiveHandler struct {
	hub *broadcast.Hub
}

// NewLiveHandler creates a live-feed handler over the hub.
func NewLiveHandler(hub *broadcast.Hub) *LiveHandler {
	return &LiveHandler{hub: hub}
}

// Serve handles GET /auctions/:auction_id/live
func (h *LiveHandler) Serve(c *gin.Context) {
	auctionID := c.Param("auction_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.Warn("live: upgrade failed", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	events, cancel := h.hub.Subscribe(auctionID)
	defer cancel()
	defer conn.Close()

	// reader goroutine: we never expect client messages, but reading detects
	// the close handshake
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
