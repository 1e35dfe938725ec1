package service

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// TimeDisplayLayout formats message times for chat bubbles.
const TimeDisplayLayout = "03:04 PM"

// MessageView is a message as shown to one of the thread's parties. It
// carries the sender's public name only.
type MessageView struct {
	ID          string    `json:"id"`
	Body        string    `json:"body"`
	SenderName  string    `json:"sender_name"`
	IsMine      bool      `json:"is_mine"`
	CreatedAt   time.Time `json:"created_at"`
	TimeDisplay string    `json:"time_display"`
}

func (s *Service) messageView(actor string, m *model.Message) MessageView {
	return MessageView{
		ID:          m.ID,
		Body:        m.Body,
		SenderName:  m.Sender().PublicName(),
		IsMine:      m.SenderID == actor,
		CreatedAt:   m.CreatedAt,
		TimeDisplay: m.CreatedAt.In(s.location).Format(TimeDisplayLayout),
	}
}

func (s *Service) messageViews(actor string, messages []model.Message) []MessageView {
	views := make([]MessageView, 0, len(messages))
	for i := range messages {
		views = append(views, s.messageView(actor, &messages[i]))
	}
	return views
}

// Authorize reports whether actor may read and write the claim's thread.
func Authorize(actor string, claim *model.Claim) bool {
	return claim != nil && claim.IsParticipant(actor)
}

// ListMessagesSince returns a claim's thread in order. If after names a
// message of this thread, only messages stored after it are returned;
// otherwise the whole thread is.
func (s *Service) ListMessagesSince(ctx context.Context, actor, claimID, after string) ([]MessageView, error) {
	claim, err := s.threadClaim(ctx, actor, claimID)
	if err != nil {
		return nil, err
	}

	var afterSeq int64
	if after != "" {
		cursor, err := store.GetMessage(ctx, s.db, after)
		if err != nil {
			return nil, err
		}
		if cursor != nil && cursor.ClaimID == claim.ID {
			afterSeq = cursor.Seq
		}
	}

	messages, err := store.ListMessages(ctx, s.db, claim.ID, afterSeq)
	if err != nil {
		return nil, err
	}
	return s.messageViews(actor, messages), nil
}

// SendMessage appends a message from actor to the claim's thread and returns
// it for immediate echo.
func (s *Service) SendMessage(ctx context.Context, actor, claimID, body string) (*MessageView, error) {
	claim, err := s.threadClaim(ctx, actor, claimID)
	if err != nil {
		return nil, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, newError(ErrValidation, "empty message")
	}
	if utf8.RuneCountInString(body) > model.MaxMessageLength {
		return nil, newError(ErrValidation, "message must be at most %d characters", model.MaxMessageLength)
	}

	sender, err := store.GetUser(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}

	m := &model.Message{
		ID:        uuid.NewString(),
		ClaimID:   claim.ID,
		SenderID:  actor,
		Body:      body,
		CreatedAt: s.timestamp(),
	}
	if sender != nil {
		m.SenderDisplayName = sender.DisplayName
	}
	if err := store.CreateMessage(ctx, s.db, m); err != nil {
		return nil, err
	}

	s.metrics.MessageSent()
	slog.Debug("message sent", "claim", claim.ID, "message", m.ID)
	view := s.messageView(actor, m)
	return &view, nil
}

// threadClaim loads a claim for a thread operation. Unknown claims are
// ErrNotFound; known claims the actor is not part of are ErrForbidden.
func (s *Service) threadClaim(ctx context.Context, actor, claimID string) (*model.Claim, error) {
	claim, err := store.GetClaim(ctx, s.db, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, newError(ErrNotFound, "claim not found")
	}
	if !Authorize(actor, claim) {
		return nil, newError(ErrForbidden, "forbidden")
	}
	return claim, nil
}
