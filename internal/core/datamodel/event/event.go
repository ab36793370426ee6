package event

import "time"

type Event struct {
	ID          int64     `gorm:"primaryKey"`
	UserID      int64     `gorm:"column:user_id;not null;index"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description"`
	Date        time.Time `gorm:"column:date;not null;index"`
	Location    string    `gorm:"column:location"`
	Category    string    `gorm:"column:category;not null;index"`
	RSVPCount   int64     `gorm:"column:rsvp_count;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Event) TableName() string {
	return "events"
}
