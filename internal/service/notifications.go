package service

import (
	"context"
	"errors"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Inbox is a user's notifications with the unread count.
type Inbox struct {
	Notifications []model.Notification `json:"notifications"`
	Unread        int                  `json:"unread"`
}

// Notifications returns actor's notifications, newest first.
func (s *Service) Notifications(ctx context.Context, actor string) (*Inbox, error) {
	list, err := store.ListNotifications(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}
	unread, err := store.CountUnreadNotifications(ctx, s.db, actor)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Notification{}
	}
	return &Inbox{Notifications: list, Unread: unread}, nil
}

// MarkNotificationRead marks one of actor's notifications read.
func (s *Service) MarkNotificationRead(ctx context.Context, actor, id string) error {
	err := store.MarkNotificationRead(ctx, s.db, id, actor)
	if errors.Is(err, store.ErrNotFound) {
		return newError(ErrNotFound, "notification not found")
	}
	return err
}
