package models

import (
	"time"

	"github.com/google/uuid"
)

// Item statuses. Status only transitions via accepted/completed requests.
const (
	ItemAvailable = "Available"
	ItemClaimed   = "Claimed"
	ItemHidden    = "Hidden"
	ItemCompleted = "Completed"
)

// Exchange types.
const (
	ExchangeDonate = "Donate"
	ExchangeSwap   = "Swap"
)

// Item represents a listed academic good.
type Item struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"user_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Category     string      `json:"category"`
	ExchangeType string      `json:"exchange_type"`
	CourseCode   string      `json:"course_code"`
	Department   string      `json:"department"`
	Condition    string      `json:"condition"`
	Status       string      `json:"status"`
	Images       []ItemImage `json:"images"`
	CreatedAt    time.Time   `json:"created_at"`

	// Enriched for API responses
	Owner *UserRef `json:"owner,omitempty"`
}

// ItemImage represents an image attached to an item.
type ItemImage struct {
	ID       uuid.UUID `json:"id"`
	ItemID   uuid.UUID `json:"item_id"`
	URL      string    `json:"url"`
	PublicID string    `json:"public_id,omitempty"`
	Position int       `json:"position"`
}
