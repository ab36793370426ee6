package notification

import (
	"context"
	"log/slog"
	"time"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Notification, int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id int64, at time.Time) error
	MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service struct {
	repo        Repository
	broadcaster Broadcaster
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(repo Repository, broadcaster Broadcaster, logger *slog.Logger) *Service {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	return &Service{
		repo:        repo,
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
	}
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

func (s *Service) List(ctx context.Context, userID int64, page, limit int) (*ListResult, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	items, total, err := s.repo.ListByUserID(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error("failed to list notifications", "error", err, "user_id", userID)
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("failed to count unread notifications", "error", err, "user_id", userID)
		return nil, err
	}

	return &ListResult{Notifications: items, Total: total, Unread: unread, Page: page, Limit: limit}, nil
}

// MarkRead flips one notification to read. Notifications of other users are
// reported as not found.
func (s *Service) MarkRead(ctx context.Context, userID, id int64) (*Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		s.logger.Warn("mark read on foreign notification", "notification_id", id, "user_id", userID)
		return nil, ErrNotificationNotFound
	}
	if n.IsRead() {
		return n, nil
	}

	at := s.now()
	if err := s.repo.MarkRead(ctx, id, at); err != nil {
		s.logger.Error("failed to mark notification read", "error", err, "notification_id", id)
		return nil, err
	}
	n.MarkRead(at)

	s.broadcast(ctx, Message{Kind: MessageRead, UserID: userID, Notification: n})
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	if userID == 0 {
		return 0, ErrUnauthenticated
	}

	count, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		s.logger.Error("failed to mark all notifications read", "error", err, "user_id", userID)
		return 0, err
	}

	if count > 0 {
		s.broadcast(ctx, Message{Kind: MessageReadAll, UserID: userID})
	}
	s.logger.Info("notifications marked read", "user_id", userID, "count", count)
	return count, nil
}

// Notify stores a notification and pushes it to the user's channel.
func (s *Service) Notify(ctx context.Context, userID int64, kind, message string, eventID *int64) (*Notification, error) {
	n := &Notification{
		UserID:  userID,
		EventID: eventID,
		Type:    kind,
		Message: message,
		Status:  StatusUnread,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to store notification", "error", err, "user_id", userID, "type", kind)
		return nil, err
	}

	s.broadcast(ctx, Message{Kind: MessageCreated, UserID: userID, Notification: n})
	return n, nil
}

// PruneRead deletes read notifications older than the retention window.
func (s *Service) PruneRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan)
	count, err := s.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to prune notifications", "error", err, "cutoff", cutoff)
		return 0, err
	}
	s.logger.Info("pruned read notifications", "count", count, "cutoff", cutoff)
	return count, nil
}

// broadcast is fire-and-forget: the stored row is the source of truth.
func (s *Service) broadcast(ctx context.Context, msg Message) {
	if err := s.broadcaster.Broadcast(ctx, msg); err != nil {
		s.logger.Warn("notification broadcast failed", "error", err, "user_id", msg.UserID, "kind", msg.Kind)
	}
}
