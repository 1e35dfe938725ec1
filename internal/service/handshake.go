package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/najdeno/internal/blob"
	"github.com/erazemk/najdeno/internal/handshake"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// HandshakeResult is where a scanned QR code leads.
type HandshakeResult struct {
	Item *model.Item
	// Available is false once the item has been claimed or returned. The
	// caller still routes onward so re-scans land somewhere useful.
	Available bool
}

// ResolveHandshake maps a scanned token to its item. Malformed and unknown
// tokens are both ErrNotFound.
func (s *Service) ResolveHandshake(ctx context.Context, raw string) (*HandshakeResult, error) {
	token, err := handshake.ParseToken(raw)
	if err != nil {
		return nil, newError(ErrNotFound, "unknown handshake code")
	}

	var item *model.Item
	if id, ok := s.tokens.Get(token); ok {
		item, err = store.GetItem(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			s.tokens.Forget(token)
		}
	}
	if item == nil {
		item, err = store.GetItemByHandshakeToken(ctx, s.db, token)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, newError(ErrNotFound, "unknown handshake code")
		}
		s.tokens.Set(token, item.ID)
	}

	return &HandshakeResult{Item: item, Available: item.Status == model.ItemStatusFound}, nil
}

// EnsureHandshakeAsset returns the item's rendered QR code, rendering and
// storing it first if it is missing. Concurrent calls for one item share a
// single render. Only the finder may fetch the code: it is the key to the
// claim form.
func (s *Service) EnsureHandshakeAsset(ctx context.Context, actor, itemID, baseURL string) (*blob.Object, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if actor == "" || actor != item.FinderID {
		return nil, newError(ErrForbidden, "only the finder can view this item's code")
	}

	// The render is shared by every caller in the flight, so it must outlive
	// the request that happened to start it.
	renderCtx := context.WithoutCancel(ctx)
	v, err, _ := s.qr.Do(item.ID, func() (any, error) {
		return s.ensureQR(renderCtx, item.ID, baseURL)
	})
	if err != nil {
		return nil, err
	}
	return v.(*blob.Object), nil
}

func (s *Service) ensureQR(ctx context.Context, itemID, baseURL string) (*blob.Object, error) {
	// Reload: an earlier flight may have stored the code already.
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.QRRef != "" {
		obj, err := s.blobs.Get(ctx, item.QRRef)
		if err == nil {
			return obj, nil
		}
		if !errors.Is(err, blob.ErrNotFound) {
			return nil, err
		}
		slog.Warn("handshake code missing from blob store, rendering again", "item", item.ID)
	}

	link, err := handshake.URL(baseURL, item.HandshakeToken)
	if err != nil {
		return nil, fmt.Errorf("building handshake url: %w", err)
	}
	data, mime, err := s.codec.Encode(link)
	if err != nil {
		return nil, err
	}
	ref, err := s.blobs.Put(ctx, data, mime)
	if err != nil {
		return nil, fmt.Errorf("storing handshake code: %w", err)
	}
	if err := store.SetItemQRRef(ctx, s.db, item.ID, ref); err != nil {
		s.dropBlob(ctx, ref)
		return nil, err
	}
	s.dropBlob(ctx, item.QRRef)

	slog.Info("handshake code rendered", "item", item.ID)
	return &blob.Object{Ref: ref, MIME: mime, Data: data}, nil
}
