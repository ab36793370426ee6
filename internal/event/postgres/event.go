package postgres

import (
	"context"
	"errors"

	eventDatamodel "github.com/frahmantamala/event-management/internal/core/datamodel/event"
	"github.com/frahmantamala/event-management/internal/event"
	"gorm.io/gorm"
)

// EventRepository implements event.Repository using GORM
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) event.Repository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	row := event.ToDataModel(e)
	row.RSVPCount = 0
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*e = *event.FromDataModel(row)
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*event.Event, error) {
	var row eventDatamodel.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, event.ErrEventNotFound
		}
		return nil, err
	}
	return event.FromDataModel(&row), nil
}

func (r *EventRepository) List(ctx context.Context, filter event.ListFilter) ([]*event.Event, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&eventDatamodel.Event{}), filter)
}

func (r *EventRepository) ListByUserID(ctx context.Context, userID int64, filter event.ListFilter) ([]*event.Event, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&eventDatamodel.Event{}).Where("user_id = ?", userID), filter)
}

func (r *EventRepository) page(q *gorm.DB, filter event.ListFilter) ([]*event.Event, int64, error) {
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*eventDatamodel.Event
	err := q.Order("date ASC").Order("id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return event.FromDataModelSlice(rows), total, nil
}

func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	res := r.db.WithContext(ctx).
		Model(&eventDatamodel.Event{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"title":       e.Title,
			"description": e.Description,
			"date":        e.Date,
			"location":    e.Location,
			"category":    e.Category,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&eventDatamodel.Event{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// IncrementRSVP runs UPDATE ... SET rsvp_count = rsvp_count + 1 so concurrent
// RSVPs never lose an update, then reads the row back in the same transaction.
func (r *EventRepository) IncrementRSVP(ctx context.Context, id int64) (*event.Event, error) {
	var row eventDatamodel.Event
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&eventDatamodel.Event{}).
			Where("id = ?", id).
			UpdateColumn("rsvp_count", gorm.Expr("rsvp_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return event.ErrEventNotFound
		}
		return tx.Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return event.FromDataModel(&row), nil
}
