package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager is the central registry of WebSocket connections and the
// conversation rooms they have joined. Presence lives entirely in the
// per-connection Client objects and this registry; there is no global
// user-to-socket map.
type Manager struct {
	clients      map[uuid.UUID]*Client
	clientsMutex sync.RWMutex
	rooms        map[uuid.UUID]map[uuid.UUID]*Client // conversationID -> clientID -> client
	roomsMutex   sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc

	// CanJoin verifies room membership against the store before a client
	// may subscribe to a conversation. Nil allows everything (tests).
	CanJoin func(conversationID uuid.UUID, userID string) bool
}

// EventType identifies a WebSocket event.
type EventType string

const (
	EventJoinRoom       EventType = "join_room"
	EventLeaveRoom      EventType = "leave_room"
	EventSendMessage    EventType = "send_message"
	EventReceiveMessage EventType = "receive_message"
	EventError          EventType = "error"
)

// Event is the wire format of the realtime channel.
type Event struct {
	Type           EventType       `json:"type"`
	ConversationID string          `json:"conversation_id,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

// NewManager creates a new Manager.
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		clients: make(map[uuid.UUID]*Client),
		rooms:   make(map[uuid.UUID]map[uuid.UUID]*Client),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// AddClient registers a new connection.
func (m *Manager) AddClient(client *Client) {
	m.clientsMutex.Lock()
	m.clients[client.ID] = client
	m.clientsMutex.Unlock()

	log.Printf("websocket client %s connected for user %s", client.ID, client.UserID)
}

// RemoveClient drops a connection and leaves all of its rooms.
func (m *Manager) RemoveClient(clientID uuid.UUID) {
	m.clientsMutex.RLock()
	client, exists := m.clients[clientID]
	m.clientsMutex.RUnlock()

	if !exists {
		return
	}

	m.roomsMutex.Lock()
	for conversationID, members := range m.rooms {
		delete(members, clientID)
		if len(members) == 0 {
			delete(m.rooms, conversationID)
		}
	}
	m.roomsMutex.Unlock()

	m.clientsMutex.Lock()
	delete(m.clients, clientID)
	m.clientsMutex.Unlock()

	log.Printf("websocket client %s disconnected for user %s", clientID, client.UserID)
}

// JoinRoom subscribes a connection to a conversation's broadcasts.
func (m *Manager) JoinRoom(conversationID uuid.UUID, client *Client) {
	m.roomsMutex.Lock()
	if _, exists := m.rooms[conversationID]; !exists {
		m.rooms[conversationID] = make(map[uuid.UUID]*Client)
	}
	m.rooms[conversationID][client.ID] = client
	m.roomsMutex.Unlock()
}

// LeaveRoom unsubscribes a connection from a conversation.
func (m *Manager) LeaveRoom(conversationID uuid.UUID, clientID uuid.UUID) {
	m.roomsMutex.Lock()
	if members, ok := m.rooms[conversationID]; ok {
		delete(members, clientID)
		if len(members) == 0 {
			delete(m.rooms, conversationID)
		}
	}
	m.roomsMutex.Unlock()
}

// Publish delivers an event to every subscriber of the conversation's
// room except the excluded connection and any connection belonging to
// excludeUserID. Delivery is best-effort: failures are logged and
// dropped, never raised back into the persistence path; clients
// reconcile by re-fetching message history on (re)join.
func (m *Manager) Publish(conversationID uuid.UUID, event Event, excludeClientID uuid.UUID, excludeUserID string) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("error marshaling event: %v", err)
		return
	}

	m.roomsMutex.RLock()
	members := make([]*Client, 0, len(m.rooms[conversationID]))
	for _, client := range m.rooms[conversationID] {
		members = append(members, client)
	}
	m.roomsMutex.RUnlock()

	for _, client := range members {
		if client.ID == excludeClientID {
			continue
		}
		if excludeUserID != "" && client.UserID == excludeUserID {
			continue
		}

		select {
		case client.send <- eventJSON:
		default:
			// Send buffer full: the consumer is too slow, drop it.
			log.Printf("send channel full for client %s, closing connection", client.ID)
			client.Close()
			m.RemoveClient(client.ID)
		}
	}
}

// RoomSize returns the number of subscribers of a conversation's room.
func (m *Manager) RoomSize(conversationID uuid.UUID) int {
	m.roomsMutex.RLock()
	defer m.roomsMutex.RUnlock()
	return len(m.rooms[conversationID])
}

// Shutdown closes every connection and clears the registry.
func (m *Manager) Shutdown() {
	m.cancel()

	m.clientsMutex.Lock()
	for _, client := range m.clients {
		client.Close()
	}
	m.clients = make(map[uuid.UUID]*Client)
	m.clientsMutex.Unlock()

	m.roomsMutex.Lock()
	m.rooms = make(map[uuid.UUID]map[uuid.UUID]*Client)
	m.roomsMutex.Unlock()
}
