package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a one-time review of an item owner by a requester whose
// request was granted.
type Rating struct {
	ID         uuid.UUID `json:"id"`
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	ItemID     uuid.UUID `json:"item_id"`
	Rating     int       `json:"rating"`
	Review     string    `json:"review,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	// Enriched for API responses
	FromUser *UserRef `json:"from_user,omitempty"`
}
