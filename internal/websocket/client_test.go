package websocket

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func sendEvent(c *Client, eventType EventType, conversationID uuid.UUID, payload string) {
	event := Event{
		Type:           eventType,
		ConversationID: conversationID.String(),
		Payload:        json.RawMessage(payload),
	}
	raw, _ := json.Marshal(event)
	c.handleIncomingEvent(raw)
}

func TestJoinRoomRequiresMembership(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()
	m.CanJoin = func(uuid.UUID, string) bool { return false }

	conversationID := uuid.New()
	outsider := newTestClient(m)

	sendEvent(outsider, EventJoinRoom, conversationID, `{}`)
	assert.Equal(t, 0, m.RoomSize(conversationID))
}

func TestSendMessageEventCannotInjectIntoRoom(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()
	m.CanJoin = func(uuid.UUID, string) bool { return false }

	conversationID := uuid.New()
	member := newTestClient(m)
	m.JoinRoom(conversationID, member)

	attacker := newTestClient(m)
	sendEvent(attacker, EventSendMessage, conversationID, `{"text":"forged"}`)

	assert.Empty(t, member.send)
}

func TestSendMessageEventDoesNotDuplicateServerMirror(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	conversationID := uuid.New()
	sender := newTestClient(m)
	receiver := newTestClient(m)
	m.JoinRoom(conversationID, sender)
	m.JoinRoom(conversationID, receiver)

	// Server-side mirror after the message committed.
	m.Publish(conversationID, Event{
		Type:           EventReceiveMessage,
		ConversationID: conversationID.String(),
	}, uuid.Nil, sender.UserID)

	// A client that also emits send_message must not deliver it again.
	sendEvent(sender, EventSendMessage, conversationID, `{"text":"hi"}`)

	assert.Len(t, receiver.send, 1)
	assert.Empty(t, sender.send)
}

func TestLeaveRoomEvent(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	conversationID := uuid.New()
	c := newTestClient(m)
	m.JoinRoom(conversationID, c)

	sendEvent(c, EventLeaveRoom, conversationID, `{}`)
	assert.Equal(t, 0, m.RoomSize(conversationID))
}
