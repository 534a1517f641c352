package models

import (
	"time"

	"github.com/google/uuid"
)

// Request statuses.
const (
	RequestPending   = "Pending"
	RequestAccepted  = "Accepted"
	RequestRejected  = "Rejected"
	RequestCompleted = "Completed"
)

// Request represents an exchange proposal for an item.
type Request struct {
	ID          uuid.UUID `json:"id"`
	ItemID      uuid.UUID `json:"item_id"`
	RequesterID uuid.UUID `json:"requester_id"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Rated       bool      `json:"rated"`
	CreatedAt   time.Time `json:"created_at"`

	// Enriched for API responses
	Item      *Item    `json:"item,omitempty"`
	Requester *UserRef `json:"requester,omitempty"`
}
