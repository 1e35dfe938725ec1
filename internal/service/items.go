package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/blob"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/handshake"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ItemInput carries the finder-editable fields of an item.
type ItemInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`

	// Photo, if set, is normalized and stored as the item's image.
	Photo io.Reader `json:"-"`
}

func (in *ItemInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Neighborhood = strings.TrimSpace(in.Neighborhood)
	in.City = strings.TrimSpace(in.City)

	if in.Category == "" {
		in.Category = model.CategoryOther
	}
	if in.City == "" {
		in.City = model.DefaultCity
	}

	switch {
	case in.Title == "":
		return newError(ErrValidation, "title is required")
	case utf8.RuneCountInString(in.Title) > model.MaxTitleLength:
		return newError(ErrValidation, "title must be at most %d characters", model.MaxTitleLength)
	case in.Description == "":
		return newError(ErrValidation, "description is required")
	case !model.ValidCategory(in.Category):
		return newError(ErrValidation, "unknown category %q", in.Category)
	case in.Neighborhood == "":
		return newError(ErrValidation, "neighborhood is required")
	case utf8.RuneCountInString(in.Neighborhood) > model.MaxLocationLength:
		return newError(ErrValidation, "neighborhood must be at most %d characters", model.MaxLocationLength)
	case utf8.RuneCountInString(in.City) > model.MaxLocationLength:
		return newError(ErrValidation, "city must be at most %d characters", model.MaxLocationLength)
	}
	return nil
}

// ItemDetail is an item as seen by a particular caller. Claims are only
// filled in for the item's finder.
type ItemDetail struct {
	Item     *model.Item   `json:"item"`
	IsFinder bool          `json:"is_finder"`
	Claims   []model.Claim `json:"claims,omitempty"`
}

// CreateItem posts a new found item. It mints the handshake token, which
// never changes afterwards.
func (s *Service) CreateItem(ctx context.Context, actor string, in ItemInput) (*model.Item, error) {
	if actor == "" {
		return nil, newError(ErrForbidden, "sign in to post an item")
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	now := s.timestamp()
	item := &model.Item{
		ID:             uuid.NewString(),
		FinderID:       actor,
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		Neighborhood:   in.Neighborhood,
		City:           in.City,
		Status:         model.ItemStatusFound,
		HandshakeToken: handshake.NewToken(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if in.Photo != nil {
		ref, err := s.storePhoto(ctx, in.Photo)
		if err != nil {
			return nil, err
		}
		item.ImageRef = ref
	}

	if err := store.CreateItem(ctx, s.db, item); err != nil {
		s.dropBlob(ctx, item.ImageRef)
		return nil, storageError(err)
	}

	s.tokens.Set(item.HandshakeToken, item.ID)
	s.metrics.ItemCreated()
	slog.Info("item created", "item", item.ID, "finder", actor, "category", item.Category)
	return item, nil
}

// GetItem returns an item by ID.
func (s *Service) GetItem(ctx context.Context, id string) (*model.Item, error) {
	item, err := store.GetItem(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, newError(ErrNotFound, "item not found")
	}
	return item, nil
}

// ItemDetail returns an item; the finder also gets every claim on it.
func (s *Service) ItemDetail(ctx context.Context, actor, id string) (*ItemDetail, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ItemDetail{Item: item, IsFinder: actor != "" && actor == item.FinderID}
	if detail.IsFinder {
		detail.Claims, err = store.ListClaimsForItem(ctx, s.db, item.ID)
		if err != nil {
			return nil, err
		}
	}
	return detail, nil
}

// ListItems returns items still waiting for their owner, newest first,
// optionally narrowed by a search query and category.
func (s *Service) ListItems(ctx context.Context, query, category string) ([]model.Item, error) {
	return store.ListItems(ctx, s.db, store.ItemFilter{
		Status:   model.ItemStatusFound,
		Category: strings.TrimSpace(category),
		Query:    query,
	})
}

// ListItemsForFinder returns every item the actor posted, in any status.
func (s *Service) ListItemsForFinder(ctx context.Context, actor string) ([]model.Item, error) {
	return store.ListItems(ctx, s.db, store.ItemFilter{FinderID: actor})
}

// UpdateItem changes an item's descriptive fields. Only the finder may do
// this, and status is never touched here.
func (s *Service) UpdateItem(ctx context.Context, actor, id string, in ItemInput) (*model.Item, error) {
	item, err := s.finderItem(ctx, actor, id, "edit")
	if err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	// The photo is checked and stored before the row is touched, so a bad
	// upload leaves the item as it was.
	var ref string
	if in.Photo != nil {
		if ref, err = s.storePhoto(ctx, in.Photo); err != nil {
			return nil, err
		}
	}

	updated := *item
	updated.Title = in.Title
	updated.Description = in.Description
	updated.Category = in.Category
	updated.Neighborhood = in.Neighborhood
	updated.City = in.City
	updated.UpdatedAt = s.timestamp()
	if ref != "" {
		updated.ImageRef = ref
	}

	err = db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := store.UpdateItemDetails(ctx, tx, &updated); err != nil {
			return err
		}
		if ref == "" {
			return nil
		}
		return store.SetItemImageRef(ctx, tx, updated.ID, ref, updated.UpdatedAt)
	})
	if err != nil {
		s.dropBlob(ctx, ref)
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrNotFound, "item not found")
		}
		return nil, storageError(err)
	}

	if ref != "" {
		s.dropBlob(ctx, item.ImageRef)
	}
	slog.Info("item updated", "item", updated.ID, "photo_replaced", ref != "")
	return &updated, nil
}

// SetItemPhoto replaces an item's photo. Only the finder may do this.
func (s *Service) SetItemPhoto(ctx context.Context, actor, id string, r io.Reader) (*model.Item, error) {
	item, err := s.finderItem(ctx, actor, id, "change the photo of")
	if err != nil {
		return nil, err
	}
	return s.replacePhoto(ctx, item, r)
}

// ItemPhoto returns an item's stored photo.
func (s *Service) ItemPhoto(ctx context.Context, id string) (*blob.Object, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.ImageRef == "" {
		return nil, newError(ErrNotFound, "item has no photo")
	}
	obj, err := s.blobs.Get(ctx, item.ImageRef)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, newError(ErrNotFound, "item has no photo")
	}
	return obj, err
}

// DeleteItem removes an item with its claims and messages. Only the finder
// may do this.
func (s *Service) DeleteItem(ctx context.Context, actor, id string) error {
	item, err := s.finderItem(ctx, actor, id, "delete")
	if err != nil {
		return err
	}

	if err := store.DeleteItem(ctx, s.db, item.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return newError(ErrNotFound, "item not found")
		}
		return err
	}

	s.tokens.Forget(item.HandshakeToken)
	s.dropBlob(ctx, item.ImageRef)
	s.dropBlob(ctx, item.QRRef)
	slog.Info("item deleted", "item", item.ID)
	return nil
}

// MarkReturned records that a claimed item went back to its owner.
func (s *Service) MarkReturned(ctx context.Context, actor, id string) (*model.Item, error) {
	item, err := s.finderItem(ctx, actor, id, "update")
	if err != nil {
		return nil, err
	}
	if !model.ItemStatusAdvances(item.Status, model.ItemStatusReturned) {
		return nil, newError(ErrInvalidState, "only a claimed item can be marked returned (item is %s)", item.Status)
	}

	now := s.timestamp()
	err = store.AdvanceItemStatus(ctx, s.db, item.ID, model.ItemStatusClaimed, model.ItemStatusReturned, now)
	if errors.Is(err, store.ErrStateChanged) {
		return nil, newError(ErrInvalidState, "item is no longer claimed")
	}
	if err != nil {
		return nil, storageError(err)
	}

	item.Status = model.ItemStatusReturned
	item.UpdatedAt = now
	slog.Info("item returned", "item", item.ID)
	return item, nil
}

// finderItem loads an item and checks that actor posted it.
func (s *Service) finderItem(ctx context.Context, actor, id, verb string) (*model.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == "" || actor != item.FinderID {
		return nil, newError(ErrForbidden, "only the finder can %s this item", verb)
	}
	return item, nil
}

func (s *Service) storePhoto(ctx context.Context, r io.Reader) (string, error) {
	photo, err := imaging.NormalizePhoto(r)
	if err != nil {
		return "", newError(ErrValidation, "invalid photo: %v", err)
	}
	ref, err := s.blobs.Put(ctx, photo.Data, photo.MIME)
	if err != nil {
		return "", fmt.Errorf("storing photo: %w", err)
	}
	return ref, nil
}

func (s *Service) replacePhoto(ctx context.Context, item *model.Item, r io.Reader) (*model.Item, error) {
	ref, err := s.storePhoto(ctx, r)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	if err := store.SetItemImageRef(ctx, s.db, item.ID, ref, now); err != nil {
		s.dropBlob(ctx, ref)
		return nil, err
	}

	s.dropBlob(ctx, item.ImageRef)
	item.ImageRef = ref
	item.UpdatedAt = now
	slog.Info("item photo updated", "item", item.ID)
	return item, nil
}

// dropBlob deletes a blob that is no longer referenced. Failure only leaks
// storage, so it is logged and ignored.
func (s *Service) dropBlob(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.blobs.Delete(ctx, ref); err != nil {
		slog.Warn("deleting blob failed", "ref", ref, "error", err)
	}
}
