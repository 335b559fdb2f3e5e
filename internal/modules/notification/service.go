// README: Notification service: append-only mailbox written by the engine,
// polled and marked read by the recipient.
package notification

import (
	"context"
	"errors"
	"time"

	"parcelbid/internal/types"
)

var ErrNotFound = errors.New("notification not found")

const defaultListLimit = 50

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Notify satisfies the order engine's Notifier interface.
func (s *Service) Notify(ctx context.Context, userID, orderID types.ID, typ, title, message string) error {
	n := &Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if orderID != "" {
		n.OrderID = &orderID
	}
	return s.store.Append(ctx, n)
}

func (s *Service) List(ctx context.Context, userID types.ID) ([]*Notification, error) {
	return s.store.ListByUser(ctx, userID, defaultListLimit)
}

func (s *Service) MarkRead(ctx context.Context, id int64, userID types.ID) error {
	ok, err := s.store.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) UnreadCount(ctx context.Context, userID types.ID) (int, error) {
	return s.store.CountUnread(ctx, userID)
}
