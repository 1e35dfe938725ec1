package model

import "time"

// Message is a single entry in a claim's anonymous chat thread.
type Message struct {
	// Seq is the storage insertion order; it defines thread order.
	Seq       int64     `json:"-"`
	ID        string    `json:"id"`
	ClaimID   string    `json:"claim_id"`
	SenderID  string    `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields (not always populated).
	SenderDisplayName string `json:"-"`
}

// MaxMessageLength is the longest accepted message body, in characters.
const MaxMessageLength = 1000

// Sender returns the message sender as a display-safe identity.
func (m *Message) Sender() User {
	return User{ID: m.SenderID, DisplayName: m.SenderDisplayName}
}
