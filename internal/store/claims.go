package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

const claimSelect = `SELECT c.id, c.item_id, c.seeker_id, c.proof, c.status, c.created_at, c.updated_at,
	       i.finder_id, i.title, i.status
	FROM claims c
	JOIN items i ON i.id = c.item_id`

// CreateClaim inserts a pending claim. It runs in one transaction that first
// looks for the seeker's existing claim on the item, then checks the item is
// still open for claims, then inserts. The (item, seeker) UNIQUE constraint is
// the final arbiter: if a concurrent request won the insert, its claim is
// returned instead. The boolean reports whether a new row was created.
func CreateClaim(ctx context.Context, database *sql.DB, c *model.Claim) (*model.Claim, bool, error) {
	var (
		result  *model.Claim
		created bool
	)
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		result, created = nil, false

		existing, err := GetClaimBySeeker(ctx, tx, c.ItemID, c.SeekerID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		var status string
		err = tx.QueryRowContext(ctx, `SELECT status FROM items WHERE id = ?`, c.ItemID).Scan(&status)
		if isNoRows(err) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("checking item status: %w", err)
		}
		if status != model.ItemStatusFound {
			return ErrStateChanged
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO claims (id, item_id, seeker_id, proof, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.ItemID, c.SeekerID, c.Proof, model.ClaimStatusPending, c.CreatedAt, c.CreatedAt,
		)
		if db.IsUniqueViolation(err) {
			result, err = GetClaimBySeeker(ctx, tx, c.ItemID, c.SeekerID)
			return err
		}
		if err != nil {
			return fmt.Errorf("creating claim: %w", err)
		}

		created = true
		result, err = GetClaim(ctx, tx, c.ID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// GetClaim returns a claim by ID, joined with its item's finder, title and status.
func GetClaim(ctx context.Context, db DBTX, id string) (*model.Claim, error) {
	return scanClaim(db.QueryRowContext(ctx, claimSelect+` WHERE c.id = ?`, id))
}

// GetClaimBySeeker returns the seeker's claim on an item, if any.
func GetClaimBySeeker(ctx context.Context, db DBTX, itemID, seekerID string) (*model.Claim, error) {
	return scanClaim(db.QueryRowContext(ctx,
		claimSelect+` WHERE c.item_id = ? AND c.seeker_id = ?`, itemID, seekerID,
	))
}

// ListClaimsForItem returns every claim on an item, newest first.
func ListClaimsForItem(ctx context.Context, db DBTX, itemID string) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx, claimSelect+` WHERE c.item_id = ? ORDER BY c.rowid DESC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("listing item claims: %w", err)
	}
	defer rows.Close()
	return scanClaims(rows)
}

// ListClaimsBySeeker returns every claim a seeker submitted, with item
// summaries, newest first.
func ListClaimsBySeeker(ctx context.Context, db DBTX, seekerID string) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx, claimSelect+` WHERE c.seeker_id = ? ORDER BY c.rowid DESC`, seekerID)
	if err != nil {
		return nil, fmt.Errorf("listing seeker claims: %w", err)
	}
	defer rows.Close()
	return scanClaims(rows)
}

// ApproveClaim approves a pending claim and marks its item claimed in one
// transaction. Both conditional updates must match exactly one row; if either
// lost a race (claim already decided, item already claimed through a sibling
// claim) the transaction rolls back and ErrStateChanged is returned.
func ApproveClaim(ctx context.Context, database *sql.DB, claimID, itemID string, now time.Time) error {
	return db.WithTx(ctx, database, func(tx *sql.Tx) error {
		if err := DecideClaim(ctx, tx, claimID, model.ClaimStatusApproved, now); err != nil {
			return err
		}
		return AdvanceItemStatus(ctx, tx, itemID, model.ItemStatusFound, model.ItemStatusClaimed, now)
	})
}

// DecideClaim moves a pending claim to a terminal status. It returns
// ErrStateChanged if the claim is no longer pending.
func DecideClaim(ctx context.Context, db DBTX, claimID, status string, now time.Time) error {
	res, err := db.ExecContext(ctx,
		`UPDATE claims SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		status, now, claimID, model.ClaimStatusPending,
	)
	if err != nil {
		return fmt.Errorf("deciding claim: %w", err)
	}
	if ok, err := affectedOne(res); err != nil {
		return fmt.Errorf("deciding claim: %w", err)
	} else if !ok {
		return ErrStateChanged
	}
	return nil
}

func scanClaimRow(row rowScanner) (*model.Claim, error) {
	c := &model.Claim{}
	err := row.Scan(&c.ID, &c.ItemID, &c.SeekerID, &c.Proof, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		&c.FinderID, &c.ItemTitle, &c.ItemStatus)
	if err != nil {
		return nil, fmt.Errorf("scanning claim: %w", err)
	}
	return c, nil
}

func scanClaim(row *sql.Row) (*model.Claim, error) {
	c, err := scanClaimRow(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func scanClaims(rows *sql.Rows) ([]model.Claim, error) {
	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaimRow(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}
