package model

import (
	"fmt"
	"time"
)

// User is the identity reference the core works with. Only the opaque ID and
// the public name ever leave the auth layer.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"-"`
	DisplayName  string    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// PublicName returns the display-safe alias for u: the chosen display name,
// or "user-" followed by the first eight characters of the ID.
func (u User) PublicName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	id := u.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return "user-" + id
}

// ValidatePassword checks that a password meets the minimum length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
