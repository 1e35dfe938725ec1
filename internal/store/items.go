package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

const itemColumns = `id, finder_id, title, description, category, image_ref, neighborhood, city,
	status, handshake_token, qr_ref, created_at, updated_at`

// ItemFilter narrows ListItems. Zero fields are ignored.
type ItemFilter struct {
	Status   string
	Category string
	FinderID string
	// Query is a case-insensitive substring matched against title,
	// description and neighborhood.
	Query string
}

// CreateItem inserts a new item. The caller assigns the ID, handshake token
// and timestamps.
func CreateItem(ctx context.Context, db DBTX, item *model.Item) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO items (id, finder_id, title, description, category, image_ref, neighborhood, city,
		                    status, handshake_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.FinderID, item.Title, item.Description, item.Category, nullString(item.ImageRef),
		item.Neighborhood, item.City, item.Status, item.HandshakeToken, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating item: %w", err)
	}
	return nil
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db DBTX, id string) (*model.Item, error) {
	return scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
}

// GetItemByHandshakeToken returns the item a handshake token was minted for.
func GetItemByHandshakeToken(ctx context.Context, db DBTX, token string) (*model.Item, error) {
	return scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE handshake_token = ?`, token,
	))
}

// ListItems returns items matching the filter, newest first.
func ListItems(ctx context.Context, db DBTX, f ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.FinderID != "" {
		query += ` AND finder_id = ?`
		args = append(args, f.FinderID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		query += ` AND (title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR neighborhood LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern, pattern)
	}

	// rowid follows insertion order, which is creation order.
	query += ` ORDER BY rowid DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItemRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItemDetails updates an item's descriptive fields. Status, finder and
// handshake token are deliberately not part of the statement.
func UpdateItemDetails(ctx context.Context, db DBTX, item *model.Item) error {
	res, err := db.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, category = ?, neighborhood = ?, city = ?, updated_at = ?
		 WHERE id = ?`,
		item.Title, item.Description, item.Category, item.Neighborhood, item.City, item.UpdatedAt, item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	if ok, err := affectedOne(res); err != nil {
		return fmt.Errorf("updating item: %w", err)
	} else if !ok {
		return ErrNotFound
	}
	return nil
}

// SetItemImageRef points an item at a stored photo ("" clears it).
func SetItemImageRef(ctx context.Context, db DBTX, id, ref string, now time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET image_ref = ?, updated_at = ? WHERE id = ?`,
		nullString(ref), now, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// SetItemQRRef records where the item's rendered handshake QR code is stored.
func SetItemQRRef(ctx context.Context, db DBTX, id, ref string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET qr_ref = ? WHERE id = ?`,
		nullString(ref), id,
	)
	if err != nil {
		return fmt.Errorf("setting item qr code: %w", err)
	}
	return nil
}

// AdvanceItemStatus moves an item from one status to another. It returns
// ErrStateChanged if the item is not currently in the from status.
func AdvanceItemStatus(ctx context.Context, db DBTX, id, from, to string, now time.Time) error {
	res, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, now, id, from,
	)
	if err != nil {
		return fmt.Errorf("advancing item status: %w", err)
	}
	if ok, err := affectedOne(res); err != nil {
		return fmt.Errorf("advancing item status: %w", err)
	} else if !ok {
		return ErrStateChanged
	}
	return nil
}

// DeleteItem deletes an item. Claims, messages and claim notifications go
// with it through ON DELETE CASCADE.
func DeleteItem(ctx context.Context, db DBTX, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if ok, err := affectedOne(res); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	} else if !ok {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItemRow(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var imageRef, qrRef sql.NullString
	err := row.Scan(&item.ID, &item.FinderID, &item.Title, &item.Description, &item.Category, &imageRef,
		&item.Neighborhood, &item.City, &item.Status, &item.HandshakeToken, &qrRef, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	item.ImageRef = imageRef.String
	item.QRRef = qrRef.String
	return item, nil
}

func scanItem(row *sql.Row) (*model.Item, error) {
	item, err := scanItemRow(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
