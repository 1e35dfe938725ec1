package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ClaimEntry is what a seeker sees on arriving at an item's claim form.
type ClaimEntry struct {
	Item      *model.Item  `json:"item"`
	Available bool         `json:"available"`
	IsFinder  bool         `json:"is_finder"`
	Claim     *model.Claim `json:"claim,omitempty"`
}

// ClaimDetail is a claim with its item and thread, for one of its two parties.
type ClaimDetail struct {
	Claim    *model.Claim  `json:"claim"`
	Item     *model.Item   `json:"item"`
	IsFinder bool          `json:"is_finder"`
	Messages []MessageView `json:"messages"`
}

// SubmitClaim records a seeker's claim on an item. Submitting again for the
// same item returns the first claim unchanged. The boolean reports whether a
// new claim was created.
func (s *Service) SubmitClaim(ctx context.Context, seeker, itemID, proof string) (*model.Claim, bool, error) {
	if seeker == "" {
		return nil, false, newError(ErrForbidden, "sign in to claim an item")
	}

	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, false, err
	}
	if item.FinderID == seeker {
		return nil, false, newError(ErrForbidden, "you cannot claim your own item")
	}

	existing, err := store.GetClaimBySeeker(ctx, s.db, item.ID, seeker)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	proof = strings.TrimSpace(proof)
	if proof == "" {
		return nil, false, newError(ErrValidation, "describe why the item is yours")
	}
	if item.Status != model.ItemStatusFound {
		return nil, false, newError(ErrInvalidState, "item is no longer available")
	}

	claim, created, err := store.CreateClaim(ctx, s.db, &model.Claim{
		ID:        uuid.NewString(),
		ItemID:    item.ID,
		SeekerID:  seeker,
		Proof:     proof,
		CreatedAt: s.timestamp(),
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, false, newError(ErrNotFound, "item not found")
	case errors.Is(err, store.ErrStateChanged):
		return nil, false, newError(ErrInvalidState, "item is no longer available")
	case err != nil:
		return nil, false, storageError(err)
	}

	if created {
		s.metrics.ClaimSubmitted()
		s.notifier.Record(ctx, item.FinderID, claim.ID,
			fmt.Sprintf("New claim on %q. Review the proof and reply in the chat.", item.Title))
		slog.Info("claim submitted", "claim", claim.ID, "item", item.ID)
	}
	return claim, created, nil
}

// RespondClaim approves or rejects a pending claim. Only the item's finder
// may respond. Approval also marks the item claimed; once one claim on an
// item is approved, approving any sibling claim fails with ErrInvalidState.
func (s *Service) RespondClaim(ctx context.Context, actor, claimID string, decision model.Decision) (*model.Claim, error) {
	claim, err := store.GetClaim(ctx, s.db, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, newError(ErrNotFound, "claim not found")
	}
	if actor == "" || actor != claim.FinderID {
		return nil, newError(ErrForbidden, "only the finder can respond to this claim")
	}
	if claim.Status != model.ClaimStatusPending {
		return nil, newError(ErrInvalidState, "claim has already been %s", claim.Status)
	}

	now := s.timestamp()
	switch decision {
	case model.DecisionApprove:
		if claim.ItemStatus != model.ItemStatusFound {
			return nil, newError(ErrInvalidState, "item has already been %s", claim.ItemStatus)
		}
		err = store.ApproveClaim(ctx, s.db, claim.ID, claim.ItemID, now)
	case model.DecisionReject:
		err = store.DecideClaim(ctx, s.db, claim.ID, model.ClaimStatusRejected, now)
	default:
		return nil, newError(ErrValidation, "unknown decision %q", decision)
	}
	if errors.Is(err, store.ErrStateChanged) {
		return nil, newError(ErrInvalidState, "claim or item changed, reload and try again")
	}
	if err != nil {
		return nil, storageError(err)
	}

	claim, err = store.GetClaim(ctx, s.db, claim.ID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, newError(ErrNotFound, "claim not found")
	}

	s.metrics.ClaimDecided(string(decision))
	s.notifier.Record(ctx, claim.SeekerID, claim.ID,
		fmt.Sprintf("Your claim on %q was %s.", claim.ItemTitle, claim.Status))
	slog.Info("claim decided", "claim", claim.ID, "item", claim.ItemID, "status", claim.Status)
	return claim, nil
}

// ClaimsForItem lists every claim on an item. Only the finder may list them.
func (s *Service) ClaimsForItem(ctx context.Context, actor, itemID string) ([]model.Claim, error) {
	item, err := s.finderItem(ctx, actor, itemID, "review claims on")
	if err != nil {
		return nil, err
	}
	return store.ListClaimsForItem(ctx, s.db, item.ID)
}

// ClaimsForSeeker lists the claims a seeker submitted, with item summaries.
func (s *Service) ClaimsForSeeker(ctx context.Context, seeker string) ([]model.Claim, error) {
	return store.ListClaimsBySeeker(ctx, s.db, seeker)
}

// ClaimEntry returns the claim form state of an item for actor, including
// actor's existing claim if there is one.
func (s *Service) ClaimEntry(ctx context.Context, actor, itemID string) (*ClaimEntry, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	entry := &ClaimEntry{
		Item:      item,
		Available: item.Status == model.ItemStatusFound,
		IsFinder:  actor != "" && actor == item.FinderID,
	}
	if actor != "" && !entry.IsFinder {
		entry.Claim, err = store.GetClaimBySeeker(ctx, s.db, item.ID, actor)
		if err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// ClaimDetail returns a claim with its item and whole thread. Callers who
// are not one of the claim's two parties get ErrNotFound, so claim IDs
// cannot be probed.
func (s *Service) ClaimDetail(ctx context.Context, actor, claimID string) (*ClaimDetail, error) {
	claim, err := store.GetClaim(ctx, s.db, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil || !claim.IsParticipant(actor) {
		return nil, newError(ErrNotFound, "claim not found")
	}

	item, err := s.GetItem(ctx, claim.ItemID)
	if err != nil {
		return nil, err
	}
	messages, err := store.ListMessages(ctx, s.db, claim.ID, 0)
	if err != nil {
		return nil, err
	}

	return &ClaimDetail{
		Claim:    claim,
		Item:     item,
		IsFinder: actor == claim.FinderID,
		Messages: s.messageViews(actor, messages),
	}, nil
}
