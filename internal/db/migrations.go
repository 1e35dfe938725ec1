package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: public listing filters on status and sorts newest first.
	`CREATE INDEX IF NOT EXISTS idx_items_status ON items(status)`,
	`CREATE INDEX IF NOT EXISTS idx_items_finder ON items(finder_id)`,

	// Migration 2: claim lookups by seeker ("my claims") and thread reads.
	`CREATE INDEX IF NOT EXISTS idx_claims_seeker ON claims(seeker_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_claim_seq ON messages(claim_id, seq)`,

	// Migration 3: unread notification badge.
	`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, is_read)`,
}

// Migrate ensures the schema exists and then runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
