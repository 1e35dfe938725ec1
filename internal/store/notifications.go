package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// CreateNotification stores a notification.
func CreateNotification(ctx context.Context, db DBTX, n *model.Notification) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO notifications (id, recipient_id, claim_id, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.RecipientID, nullString(n.ClaimID), n.Message, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first.
func ListNotifications(ctx context.Context, db DBTX, recipientID string) ([]model.Notification, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, recipient_id, claim_id, message, is_read, created_at
		 FROM notifications WHERE recipient_id = ? ORDER BY rowid DESC`, recipientID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		var claimID sql.NullString
		if err := rows.Scan(&n.ID, &n.RecipientID, &claimID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.ClaimID = claimID.String
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CountUnreadNotifications returns how many of a user's notifications are unread.
func CountUnreadNotifications(ctx context.Context, db DBTX, recipientID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0`, recipientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// MarkNotificationRead marks one of the recipient's notifications as read.
// It returns ErrNotFound if the notification does not belong to the recipient.
func MarkNotificationRead(ctx context.Context, db DBTX, id, recipientID string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient_id = ?`,
		id, recipientID,
	)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if ok, err := affectedOne(res); err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	} else if !ok {
		return ErrNotFound
	}
	return nil
}
