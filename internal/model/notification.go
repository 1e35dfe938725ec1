package model

import "time"

// Notification is an in-app notice about a claim's lifecycle.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"-"`
	ClaimID     string    `json:"claim_id,omitempty"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// MaxNotificationLength is the longest stored notification text, in characters.
const MaxNotificationLength = 255
