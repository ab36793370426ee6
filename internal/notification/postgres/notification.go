package postgres

import (
	"context"
	"errors"
	"time"

	notificationDatamodel "github.com/frahmantamala/event-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/event-management/internal/notification"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	row := notification.ToDataModel(n)
	if row.Status == "" {
		row.Status = notification.StatusUnread
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*n = *notification.FromDataModel(row)
	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*notification.Notification, error) {
	var row notificationDatamodel.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, err
	}
	return notification.FromDataModel(&row), nil
}

// ListByUserID returns newest first.
func (r *NotificationRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*notification.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&notificationDatamodel.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*notificationDatamodel.Notification
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return notification.FromDataModelSlice(rows), total, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&notificationDatamodel.Notification{}).
		Where("user_id = ? AND status = ?", userID, notification.StatusUnread).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&notificationDatamodel.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  notification.StatusRead,
			"read_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&notificationDatamodel.Notification{}).
		Where("user_id = ? AND status = ?", userID, notification.StatusUnread).
		Updates(map[string]interface{}{
			"status":  notification.StatusRead,
			"read_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND read_at < ?", notification.StatusRead, cutoff).
		Delete(&notificationDatamodel.Notification{})
	return res.RowsAffected, res.Error
}
