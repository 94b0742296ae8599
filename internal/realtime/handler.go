package realtime

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"gochat/internal/common"
	"gochat/internal/user"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type userStatusPayload struct {
	UserID   uint64    `json:"user_id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}

// Handler upgrades authenticated websocket connections and ties session
// lifetime to presence.
type Handler struct {
	hub         *Hub
	userService user.UserService
}

func NewHandler(hub *Hub, userService user.UserService) *Handler {
	return &Handler{hub: hub, userService: userService}
}

// ServeWS authenticates via the token query parameter, upgrades the
// connection and joins the session to its user room. Presence flips on
// connect and disconnect, broadcast to everyone as userStatusChanged.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, err := common.ValidToken(r.URL.Query().Get("token"))
	if err != nil {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "invalid token"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: upgrade: %v", err)
		return
	}

	client := newClient(claims.UserID, h.hub, conn)
	h.hub.Join(strconv.FormatUint(claims.UserID, 10), client)

	if lastSeen, err := h.userService.SetPresence(r.Context(), claims.UserID, true); err == nil {
		h.hub.BroadcastAll("userStatusChanged", userStatusPayload{
			UserID:   claims.UserID,
			Online:   true,
			LastSeen: lastSeen,
		})
	}

	go client.writePump()
	client.readPump()

	h.hub.Remove(client)
	client.close()

	// the request context may be gone once the socket dies
	if lastSeen, err := h.userService.SetPresence(context.Background(), claims.UserID, false); err == nil {
		h.hub.BroadcastAll("userStatusChanged", userStatusPayload{
			UserID:   claims.UserID,
			Online:   false,
			LastSeen: lastSeen,
		})
	}
}
