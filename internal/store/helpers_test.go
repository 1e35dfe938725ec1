package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/model"
)

func mustUser(t *testing.T, database *sql.DB, username string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, username, "", "hash")
	if err != nil {
		t.Fatalf("CreateUser(%q): %v", username, err)
	}
	return u
}

func mustItem(t *testing.T, database *sql.DB, finderID, title string) *model.Item {
	t.Helper()
	now := time.Now().UTC()
	item := &model.Item{
		ID:             uuid.NewString(),
		FinderID:       finderID,
		Title:          title,
		Description:    "found on the bench",
		Category:       model.CategoryOther,
		Neighborhood:   "Center",
		City:           model.DefaultCity,
		Status:         model.ItemStatusFound,
		HandshakeToken: uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := CreateItem(context.Background(), database, item); err != nil {
		t.Fatalf("CreateItem(%q): %v", title, err)
	}
	return item
}

func mustClaim(t *testing.T, database *sql.DB, itemID, seekerID string) *model.Claim {
	t.Helper()
	c, created, err := CreateClaim(context.Background(), database, &model.Claim{
		ID:        uuid.NewString(),
		ItemID:    itemID,
		SeekerID:  seekerID,
		Proof:     "it has a red sticker",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	if !created {
		t.Fatal("expected a new claim")
	}
	return c
}
