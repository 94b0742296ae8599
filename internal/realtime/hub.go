package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Envelope is the wire frame for every websocket event, inbound and
// outbound.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub tracks live sessions and their room memberships. Every connected user
// sits in their own user room; clients join and leave chat rooms
// explicitly. Emit never blocks: slow consumers lose frames.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]bool
	byClient map[*Client]map[string]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Client]bool),
		byClient: make(map[*Client]map[string]bool),
	}
}

// Join is idempotent: joining a room twice is a no-op.
func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true

	if h.byClient[c] == nil {
		h.byClient[c] = make(map[string]bool)
	}
	h.byClient[c][room] = true
}

func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(room, c)
}

func (h *Hub) leaveLocked(room string, c *Client) {
	if clients, ok := h.rooms[room]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	if rooms, ok := h.byClient[c]; ok {
		delete(rooms, room)
	}
}

// Remove drops a disconnected client from every room it joined.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.byClient[c] {
		h.leaveLocked(room, c)
	}
	delete(h.byClient, c)
}

// Emit sends an event to every session in a room. Fire and forget: a full
// send buffer drops the frame for that session rather than blocking the
// caller.
func (h *Hub) Emit(room string, event string, payload interface{}) {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		log.Printf("realtime: encode %s: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		c.enqueue(frame)
	}
}

// EmitExcept behaves like Emit but skips sessions of one user; used for
// typing indicators, which the typist does not need echoed back.
func (h *Hub) EmitExcept(room string, exceptUserID uint64, event string, payload interface{}) {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		log.Printf("realtime: encode %s: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if c.userID == exceptUserID {
			continue
		}
		c.enqueue(frame)
	}
}

// BroadcastAll sends an event to every connected session.
func (h *Hub) BroadcastAll(event string, payload interface{}) {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		log.Printf("realtime: encode %s: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byClient {
		c.enqueue(frame)
	}
}

func encodeFrame(event string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Payload: raw})
}
