package realtime

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 64 << 10
	sendBufferSize = 256
)

// Client is one live websocket session of an authenticated user. A user can
// hold several sessions at once; each is its own Client.
type Client struct {
	userID uint64
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	once   chan struct{}
}

func newClient(userID uint64, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		once:   make(chan struct{}),
	}
}

// enqueue hands a frame to the write pump without blocking; a full buffer
// drops the frame.
func (c *Client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		log.Printf("realtime: dropping frame for user %d, send buffer full", c.userID)
	}
}

type joinRoomPayload struct {
	Room string `json:"room"`
}

type typingPayload struct {
	ChatID string `json:"chat_id"`
	UserID uint64 `json:"user_id,omitempty"`
	Typing bool   `json:"typing"`
}

// readPump consumes inbound frames until the connection dies. Runs on the
// request goroutine; returning tears the session down.
func (c *Client) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("realtime: read user %d: %v", c.userID, err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		c.handleEvent(env)
	}
}

func (c *Client) handleEvent(env Envelope) {
	switch env.Event {
	case "joinRoom":
		var p joinRoomPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.Room == "" {
			return
		}
		c.hub.Join(p.Room, c)
	case "leaveRoom":
		var p joinRoomPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.Room == "" {
			return
		}
		c.hub.Leave(p.Room, c)
	case "typing":
		var p typingPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.ChatID == "" {
			return
		}
		p.UserID = c.userID
		c.hub.EmitExcept(p.ChatID, c.userID, "typing", p)
	}
}

// writePump serializes all writes to the connection and keeps it alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.once:
			return
		}
	}
}

func (c *Client) close() {
	select {
	case <-c.once:
	default:
		close(c.once)
	}
}
