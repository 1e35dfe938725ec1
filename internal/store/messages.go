package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

const messageSelect = `SELECT m.seq, m.id, m.claim_id, m.sender_id, m.body, m.created_at, u.display_name
	FROM messages m
	JOIN users u ON u.id = m.sender_id`

// CreateMessage appends a message to a claim's thread and fills in its Seq.
func CreateMessage(ctx context.Context, db DBTX, m *model.Message) error {
	res, err := db.ExecContext(ctx,
		`INSERT INTO messages (id, claim_id, sender_id, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.ClaimID, m.SenderID, m.Body, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating message: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting message seq: %w", err)
	}
	m.Seq = seq
	return nil
}

// GetMessage returns a message by ID.
func GetMessage(ctx context.Context, db DBTX, id string) (*model.Message, error) {
	m, err := scanMessageRow(db.QueryRowContext(ctx, messageSelect+` WHERE m.id = ?`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// ListMessages returns a claim's messages in thread order. Only messages
// stored after afterSeq are returned; pass 0 for the whole thread.
func ListMessages(ctx context.Context, db DBTX, claimID string, afterSeq int64) ([]model.Message, error) {
	rows, err := db.QueryContext(ctx,
		messageSelect+` WHERE m.claim_id = ? AND m.seq > ? ORDER BY m.seq`,
		claimID, afterSeq,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		m, err := scanMessageRow(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func scanMessageRow(row rowScanner) (*model.Message, error) {
	m := &model.Message{}
	var displayName sql.NullString
	err := row.Scan(&m.Seq, &m.ID, &m.ClaimID, &m.SenderID, &m.Body, &m.CreatedAt, &displayName)
	if err != nil {
		return nil, fmt.Errorf("scanning message: %w", err)
	}
	m.SenderDisplayName = displayName.String
	return m, nil
}
