// Package notify records in-app notifications about claim activity.
// Recording is best-effort: failures are logged and never reach the caller.
package notify

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Sink receives claim lifecycle events.
type Sink interface {
	Record(ctx context.Context, recipientID, claimID, text string)
}

// StoreSink persists notifications in the notifications table.
type StoreSink struct {
	db *sql.DB
}

// NewStoreSink returns a Sink backed by db.
func NewStoreSink(db *sql.DB) *StoreSink {
	return &StoreSink{db: db}
}

// Record stores a notification for recipientID, truncating text to
// model.MaxNotificationLength characters.
func (s *StoreSink) Record(ctx context.Context, recipientID, claimID, text string) {
	n := &model.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		ClaimID:     claimID,
		Message:     Truncate(text, model.MaxNotificationLength),
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.CreateNotification(ctx, s.db, n); err != nil {
		slog.Warn("recording notification failed", "recipient", recipientID, "claim", claimID, "error", err)
	}
}

// Truncate shortens s to at most n characters.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
