package web

import (
	"time"

	"StockPulse/internal/display"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Client represents a single WebSocket peer.
type Client struct {
	conn     *websocket.Conn
	hub      *Hub
	snapshot display.Snapshot
	events   <-chan display.Event
	cancel   func()
}

// snapshotMessage is the first frame every client receives.
type snapshotMessage struct {
	Type string `json:"type"`
	display.Snapshot
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(snapshotMessage{Type: "snapshot", Snapshot: c.snapshot}); err != nil {
		c.hub.RemoveClient(c)
		return
	}

	for {
		select {
		case e, ok := <-c.events:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(e); err != nil {
				c.hub.RemoveClient(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.RemoveClient(c)
				return
			}
		}
	}
}

// readPump discards inbound frames; it only keeps the read deadline alive
// and notices disconnects.
func (c *Client) readPump() {
	defer func() {
		c.hub.RemoveClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
