package sync

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict before exposing outside localhost
	},
}

// WSHandler upgrades the connection and keeps it subscribed to library
// events until the peer goes away. Clients only listen; inbound frames
// are drained and dropped.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[sync] upgrade failed: %v", err)
			return
		}

		hub.AddWS(ws)
		log.Printf("[sync] client connected from %s", ws.RemoteAddr())

		_ = ws.WriteMessage(
			websocket.TextMessage,
			[]byte(`{"type":"welcome","channel":"library"}`+"\n"),
		)

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.RemoveWS(ws)
		log.Printf("[sync] client disconnected from %s", ws.RemoteAddr())
	}
}
