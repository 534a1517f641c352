package websocket

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/studymart/studymart-api/internal/db"
	"github.com/studymart/studymart-api/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Origins are filtered by the CORS policy of the front door; the
	// connection itself is gated by the JWT handshake below.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewServer returns the realtime listener. Fiber runs on fasthttp, which
// cannot hand a hijacked connection to gorilla, so the WebSocket endpoint
// lives on its own net/http server inside the same binary.
func NewServer(addr string, manager *Manager, jwtService *utils.JWTService) *http.Server {
	manager.CanJoin = conversationMember

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		// The realtime channel reuses the REST bearer credential, passed
		// as a query parameter because browsers cannot set headers on
		// WebSocket dials.
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		userID, err := jwtService.ExtractUserID(token)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		if _, err := uuid.Parse(userID); err != nil {
			http.Error(w, "invalid user ID", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}

		NewClient(userID, conn, manager).Start()
	})

	return &http.Server{Addr: addr, Handler: mux}
}

// conversationMember checks room membership against the store.
func conversationMember(conversationID uuid.UUID, userID string) bool {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return false
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var count int
	err = db.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM conversations
        WHERE id = $1 AND (user_a = $2 OR user_b = $2)
    `, conversationID, userUUID).Scan(&count)

	if err != nil {
		log.Printf("error checking room membership: %v", err)
		return false
	}

	return count > 0
}
