package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Maximum time to wait for a pong from the client
	pongWait = 60 * time.Second

	// Send pings to the client at this interval
	pingPeriod = (pongWait * 9) / 10

	// Maximum incoming message size
	maxMessageSize = 64 * 1024 // 64KB

	// Outgoing message buffer size
	writeBufferSize = 256
)

// Client is a single WebSocket connection bound to an authenticated user.
type Client struct {
	ID        uuid.UUID
	UserID    string
	conn      *websocket.Conn
	send      chan []byte
	manager   *Manager
	closeChan chan struct{}
}

// NewClient creates a new Client.
func NewClient(userID string, conn *websocket.Conn, manager *Manager) *Client {
	return &Client{
		ID:        uuid.New(),
		UserID:    userID,
		conn:      conn,
		send:      make(chan []byte, writeBufferSize),
		manager:   manager,
		closeChan: make(chan struct{}),
	}
}

// Start registers the client and launches its read and write pumps.
func (c *Client) Start() {
	c.manager.AddClient(c)

	go c.readPump()
	go c.writePump()
}

// Close closes the underlying connection.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// readPump handles incoming events from the client.
func (c *Client) readPump() {
	defer func() {
		c.manager.RemoveClient(c.ID)
		c.Close()
		close(c.closeChan)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("unexpected close error: %v", err)
			}
			break
		}

		c.handleIncomingEvent(message)
	}
}

// writePump sends queued events to the client.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("error writing message: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeChan:
			return
		}
	}
}

// handleIncomingEvent dispatches a client event. The user id on the
// event is always the authenticated one; a client cannot impersonate.
func (c *Client) handleIncomingEvent(message []byte) {
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("error unmarshaling event: %v", err)
		return
	}

	event.UserID = c.UserID
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	conversationID, err := uuid.Parse(event.ConversationID)
	if err != nil {
		log.Printf("invalid conversation id in %s event from user %s", event.Type, c.UserID)
		return
	}

	switch event.Type {
	case EventJoinRoom:
		if c.manager.CanJoin != nil && !c.manager.CanJoin(conversationID, c.UserID) {
			log.Printf("user %s denied joining room %s", c.UserID, conversationID)
			return
		}
		c.manager.JoinRoom(conversationID, c)
	case EventLeaveRoom:
		c.manager.LeaveRoom(conversationID, c.ID)
	case EventSendMessage:
		// Messages are persisted over REST and mirrored by the server
		// after commit. A client-side publish would skip the membership
		// check and deliver the message a second time, so it is ignored.
		log.Printf("ignoring send_message from user %s; messages go through the REST path", c.UserID)
	default:
		log.Printf("unhandled event type: %s", event.Type)
	}
}
