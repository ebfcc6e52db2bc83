package service

import (
	"context"

	"github.com/batikin/tailor-backend/internal/model"
	"github.com/batikin/tailor-backend/internal/repository"
	"github.com/rs/zerolog"
)

type NotificationService interface {
	Notify(ctx context.Context, userID, typ, title, body string, orderID, chatID *string)
	List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, userID string) error
	MarkByOrder(ctx context.Context, userID, orderID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// Notify is best-effort; failures are logged and never returned.
func (s *notificationService) Notify(ctx context.Context, userID, typ, title, body string, orderID, chatID *string) {
	if userID == "" || typ == "" {
		return
	}
	n := &model.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Body:    body,
		OrderID: orderID,
		ChatID:  chatID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("notify_user", userID).Str("type", typ).Msg("notification not stored")
	}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) MarkByOrder(ctx context.Context, userID, orderID string) error {
	if userID == "" || orderID == "" {
		return nil
	}
	return s.repo.MarkByOrder(ctx, userID, orderID)
}
