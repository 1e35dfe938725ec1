package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    display_name  TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS blobs (
    ref        TEXT PRIMARY KEY,
    mime       TEXT NOT NULL,
    data       BLOB NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id              TEXT PRIMARY KEY,
    finder_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title           TEXT NOT NULL,
    description     TEXT NOT NULL,
    category        TEXT NOT NULL DEFAULT 'other' CHECK (category IN
                        ('electronics', 'clothing', 'documents', 'keys', 'bags', 'pets', 'jewelry', 'other')),
    image_ref       TEXT,
    neighborhood    TEXT NOT NULL,
    city            TEXT NOT NULL DEFAULT 'Unknown',
    status          TEXT NOT NULL DEFAULT 'found' CHECK (status IN ('found', 'claimed', 'returned')),
    handshake_token TEXT NOT NULL UNIQUE,
    qr_ref          TEXT,
    created_at      DATETIME NOT NULL,
    updated_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS claims (
    id         TEXT PRIMARY KEY,
    item_id    TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    seeker_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    proof      TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    UNIQUE (item_id, seeker_id)
);

CREATE TABLE IF NOT EXISTS messages (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    id         TEXT NOT NULL UNIQUE,
    claim_id   TEXT NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
    sender_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    body       TEXT NOT NULL CHECK (length(body) BETWEEN 1 AND 1000),
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
    id           TEXT PRIMARY KEY,
    recipient_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    claim_id     TEXT REFERENCES claims(id) ON DELETE CASCADE,
    message      TEXT NOT NULL,
    is_read      INTEGER NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL
);

-- The handshake token is minted once and printed on paper; it never changes.
CREATE TRIGGER IF NOT EXISTS items_handshake_token_immutable
BEFORE UPDATE OF handshake_token ON items
WHEN NEW.handshake_token IS NOT OLD.handshake_token
BEGIN
    SELECT RAISE(ABORT, 'handshake_token is immutable');
END;

-- found -> claimed -> returned, never backwards.
CREATE TRIGGER IF NOT EXISTS items_status_forward_only
BEFORE UPDATE OF status ON items
WHEN NEW.status IS NOT OLD.status
 AND NOT ((OLD.status = 'found' AND NEW.status = 'claimed')
       OR (OLD.status = 'claimed' AND NEW.status = 'returned'))
BEGIN
    SELECT RAISE(ABORT, 'invalid item status transition');
END;

-- approved and rejected claims are terminal.
CREATE TRIGGER IF NOT EXISTS claims_status_terminal
BEFORE UPDATE OF status ON claims
WHEN NEW.status IS NOT OLD.status AND OLD.status <> 'pending'
BEGIN
    SELECT RAISE(ABORT, 'claim is no longer pending');
END;
`

// EnsureSchema creates all tables, indexes and triggers if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
