package notification

import "time"

type Notification struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"column:user_id;not null;index"`
	EventID   *int64     `gorm:"column:event_id"`
	Type      string     `gorm:"column:type;not null"`
	Message   string     `gorm:"column:message;not null"`
	Status    string     `gorm:"column:status;not null;default:unread;index"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
