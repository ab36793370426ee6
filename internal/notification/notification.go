package notification

import (
	"time"

	"github.com/frahmantamala/event-management/internal"
	notificationDatamodel "github.com/frahmantamala/event-management/internal/core/datamodel/notification"
)

type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	EventID   *int64     `json:"event_id,omitempty"`
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	Status    string     `json:"status"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

const (
	TypeEventCreated = "event_created"
	TypeEventRSVP    = "event_rsvp"
)

var (
	ErrNotificationNotFound = internal.ErrNotificationNotFound
	ErrUnauthenticated      = internal.ErrUnauthenticated
)

func (n *Notification) IsRead() bool {
	return n.Status == StatusRead
}

func (n *Notification) MarkRead(at time.Time) {
	n.Status = StatusRead
	n.ReadAt = &at
}

func ToDataModel(n *Notification) *notificationDatamodel.Notification {
	return &notificationDatamodel.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		EventID:   n.EventID,
		Type:      n.Type,
		Message:   n.Message,
		Status:    n.Status,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func FromDataModel(n *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		EventID:   n.EventID,
		Type:      n.Type,
		Message:   n.Message,
		Status:    n.Status,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func FromDataModelSlice(rows []*notificationDatamodel.Notification) []*Notification {
	result := make([]*Notification, len(rows))
	for i, n := range rows {
		result[i] = FromDataModel(n)
	}
	return result
}

type ListResult struct {
	Notifications []*Notification `json:"notifications"`
	Total         int64           `json:"total"`
	Unread        int64           `json:"unread"`
	Page          int             `json:"page"`
	Limit         int             `json:"limit"`
}
