package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a two-party thread unlocked by an accepted request.
// There is at most one conversation per unordered participant pair.
type Conversation struct {
	ID            uuid.UUID  `json:"id"`
	UserA         uuid.UUID  `json:"user_a"`
	UserB         uuid.UUID  `json:"user_b"`
	RequestID     uuid.UUID  `json:"request_id"`
	LastMessageID *uuid.UUID `json:"last_message_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Enriched for API responses
	OtherUser   *UserRef `json:"other_user,omitempty"`
	ItemTitle   string   `json:"item_title,omitempty"`
	LastMessage *Message `json:"last_message,omitempty"`
}

// Message is an append-only chat message. CreatedAt is assigned by the
// store and, with ID as the tie-break, orders a conversation's history.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`

	// Enriched for API responses
	Sender *UserRef `json:"sender,omitempty"`
}
