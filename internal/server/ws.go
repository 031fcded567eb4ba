package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// handleEvents streams a job's progress events over a websocket. The
// connection closes after the terminal event.
func (a *api) handleEvents(c *gin.Context) {
	id := c.Param("id")
	if _, ok := a.manager.Status(id); !ok {
		respondMessage(c, http.StatusNotFound, "job not found")
		return
	}

	origins := a.store.Snapshot().Server.AllowedOrigins
	up := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range origins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the handshake failure.
		return
	}
	defer conn.Close()

	// The hijacked connection inherits the server's per-request
	// deadlines, which would sever a long-lived feed. Reads wait
	// indefinitely for the client; each write carries its own deadline.
	writeWait := a.store.Snapshot().Server.WriteTimeout()
	conn.SetReadDeadline(time.Time{})

	events, cancel := a.board.Subscribe(id)
	defer cancel()

	// The read pump exists only to notice client disconnects.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Send the current state up front so a late subscriber does not wait
	// for the next transition. A terminal state arrives through the
	// subscription instead.
	if st, ok := a.board.Read(id); ok && !st.Terminal {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(st.Event); err != nil {
			return
		}
	}

	for {
		select {
		case ev, open := <-events:
			if !open {
				deadline := time.Now().Add(time.Second)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-disconnected:
			return
		}
	}
}
