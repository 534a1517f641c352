package websocket

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(m *Manager) *Client {
	c := NewClient(uuid.New().String(), nil, m)
	m.AddClient(c)
	return c
}

func receiveEvent(t *testing.T, c *Client) Event {
	t.Helper()

	select {
	case raw := <-c.send:
		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		return event
	default:
		t.Fatal("expected an event, send channel is empty")
		return Event{}
	}
}

func TestJoinAndLeaveRoom(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	conversationID := uuid.New()
	c := newTestClient(m)

	m.JoinRoom(conversationID, c)
	assert.Equal(t, 1, m.RoomSize(conversationID))

	m.LeaveRoom(conversationID, c.ID)
	assert.Equal(t, 0, m.RoomSize(conversationID))
}

func TestPublishReachesRoomMembersOnly(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	conversationID := uuid.New()
	member := newTestClient(m)
	outsider := newTestClient(m)

	m.JoinRoom(conversationID, member)

	m.Publish(conversationID, Event{
		Type:           EventReceiveMessage,
		ConversationID: conversationID.String(),
		Payload:        json.RawMessage(`{"text":"hi"}`),
	}, uuid.Nil, "")

	event := receiveEvent(t, member)
	assert.Equal(t, EventReceiveMessage, event.Type)
	assert.Equal(t, conversationID.String(), event.ConversationID)

	assert.Empty(t, outsider.send)
}

func TestPublishExcludesOriginatingConnection(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	conversationID := uuid.New()
	sender := newTestClient(m)
	receiver := newTestClient(m)

	m.JoinRoom(conversationID, sender)
	m.JoinRoom(conversationID, receiver)

	m.Publish(conversationID, Event{Type: EventReceiveMessage}, sender.ID, "")

	assert.Empty(t, sender.send)
	assert.Len(t, receiver.send, 1)
}

func TestPublishExcludesSendingUserAcrossConnections(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	conversationID := uuid.New()

	// Same user connected twice, e.g. phone and laptop.
	userID := uuid.New().String()
	first := NewClient(userID, nil, m)
	second := NewClient(userID, nil, m)
	other := newTestClient(m)

	m.AddClient(first)
	m.AddClient(second)

	m.JoinRoom(conversationID, first)
	m.JoinRoom(conversationID, second)
	m.JoinRoom(conversationID, other)

	m.Publish(conversationID, Event{Type: EventReceiveMessage}, uuid.Nil, userID)

	assert.Empty(t, first.send)
	assert.Empty(t, second.send)
	assert.Len(t, other.send, 1)
}

func TestPublishDropsSlowConsumer(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	conversationID := uuid.New()
	slow := newTestClient(m)
	m.JoinRoom(conversationID, slow)

	for i := 0; i < writeBufferSize+5; i++ {
		m.Publish(conversationID, Event{Type: EventReceiveMessage}, uuid.Nil, "")
	}

	// The overflowing publish evicts the client from its rooms.
	assert.Equal(t, 0, m.RoomSize(conversationID))
}

func TestRemoveClientLeavesRooms(t *testing.T) {
	m := NewManager()
	defer m.Shutdown()

	conversationID := uuid.New()
	c := newTestClient(m)
	m.JoinRoom(conversationID, c)

	m.RemoveClient(c.ID)
	assert.Equal(t, 0, m.RoomSize(conversationID))
}
