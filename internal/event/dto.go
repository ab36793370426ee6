package event

import (
	"strings"
	"time"

	"github.com/frahmantamala/event-management/internal"
	"github.com/frahmantamala/event-management/internal/core/common/validation"
	"github.com/go-playground/validator/v10"
)

func init() {
	validation.Register("eventcategory", func(fl validator.FieldLevel) bool {
		_, ok := NormalizeCategory(fl.Field().String())
		return ok
	})
}

// Accepted layouts for the date field, most specific first.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

type CreateEventDTO struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Date        string `json:"date" validate:"required"`
	Location    string `json:"location" validate:"max=255"`
	Category    string `json:"category" validate:"required,eventcategory"`
}

func (d CreateEventDTO) Validate() (time.Time, error) {
	if err := validation.Struct(d); err != nil {
		return time.Time{}, err
	}
	return ParseDate(d.Date)
}

// UpdateEventDTO carries a partial update; nil fields are left untouched.
type UpdateEventDTO struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Date        *string `json:"date,omitempty"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=255"`
	Category    *string `json:"category,omitempty" validate:"omitempty,eventcategory"`
}

func (d UpdateEventDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	if d.Date != nil {
		if _, err := ParseDate(*d.Date); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the set fields onto e.
func (d UpdateEventDTO) Apply(e *Event) {
	if d.Title != nil {
		e.Title = strings.TrimSpace(*d.Title)
	}
	if d.Description != nil {
		e.Description = *d.Description
	}
	if d.Date != nil {
		if date, err := ParseDate(*d.Date); err == nil {
			e.Date = date
		}
	}
	if d.Location != nil {
		e.Location = *d.Location
	}
	if d.Category != nil {
		if c, ok := NormalizeCategory(*d.Category); ok {
			e.Category = c
		}
	}
}

// ListFilter selects a page of events. An empty Category matches all.
type ListFilter struct {
	Category string
	Page     int
	Limit    int
}

func (f ListFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type ListResult struct {
	Events []*Event `json:"events"`
	Total  int64    `json:"total"`
	Page   int      `json:"page"`
	Limit  int      `json:"limit"`
}

func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, internal.NewValidationFieldErrors([]internal.ValidationError{{
		Field:   "date",
		Message: "date must be an ISO-8601 date or timestamp",
		Code:    string(internal.ErrCodeInvalidDate),
	}})
}
