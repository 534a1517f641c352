package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the public view of a user returned by the API.
type User struct {
	ID                  uuid.UUID `json:"id"`
	Email               string    `json:"email"`
	Name                string    `json:"name,omitempty"`
	RollNo              string    `json:"roll_no,omitempty"`
	Degree              string    `json:"degree,omitempty"`
	Major               string    `json:"major,omitempty"`
	Bio                 string    `json:"bio,omitempty"`
	AvatarURL           string    `json:"avatar_url,omitempty"`
	SustainabilityScore int       `json:"sustainability_score"`
	CreatedAt           time.Time `json:"created_at,omitempty"`
}

// UserRef is the minimal identity attached to enriched API objects.
type UserRef struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	RollNo    string    `json:"roll_no,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}
