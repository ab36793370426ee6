package event

import (
	"strings"
	"time"

	"github.com/frahmantamala/event-management/internal"
	eventDatamodel "github.com/frahmantamala/event-management/internal/core/datamodel/event"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Event struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	RSVPCount   int64     `json:"rsvp_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	CategoryConference = "Conference"
	CategoryWorkshop   = "Workshop"
	CategorySocial     = "Social"
	CategoryOther      = "Other"
)

var categories = []string{CategoryConference, CategoryWorkshop, CategorySocial, CategoryOther}

// Categories returns the accepted category names in display order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// NormalizeCategory maps "workshop", " WORKSHOP " and "Workshop" to the
// canonical name. ok is false for anything outside the list.
func NormalizeCategory(raw string) (string, bool) {
	// Casers keep state, so each call gets its own.
	name := cases.Title(language.English).String(strings.TrimSpace(raw))
	for _, c := range categories {
		if c == name {
			return c, true
		}
	}
	return "", false
}

var (
	ErrEventNotFound   = internal.ErrEventNotFound
	ErrForbidden       = internal.ErrPermissionDenied
	ErrUnauthenticated = internal.ErrUnauthenticated
	ErrInvalidCategory = internal.NewValidationError("Unknown event category", internal.ErrCodeInvalidCategory)
)

func NewEvent(ownerID int64, dto CreateEventDTO, date time.Time) *Event {
	category, _ := NormalizeCategory(dto.Category)
	return &Event{
		UserID:      ownerID,
		Title:       strings.TrimSpace(dto.Title),
		Description: dto.Description,
		Date:        date,
		Location:    dto.Location,
		Category:    category,
	}
}

func ToDataModel(e *Event) *eventDatamodel.Event {
	return &eventDatamodel.Event{
		ID:          e.ID,
		UserID:      e.UserID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Category:    e.Category,
		RSVPCount:   e.RSVPCount,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func FromDataModel(e *eventDatamodel.Event) *Event {
	return &Event{
		ID:          e.ID,
		UserID:      e.UserID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Category:    e.Category,
		RSVPCount:   e.RSVPCount,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func FromDataModelSlice(events []*eventDatamodel.Event) []*Event {
	result := make([]*Event, len(events))
	for i, e := range events {
		result[i] = FromDataModel(e)
	}
	return result
}
