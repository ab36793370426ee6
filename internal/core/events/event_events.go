package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeEventCreated = "event.created"
	EventTypeEventRSVPed  = "event.rsvped"
)

// EventCreatedEvent is published after an event row is stored.
// TargetEventID is the stored event; EventID() is this message's own id.
type EventCreatedEvent struct {
	BaseEvent
	TargetEventID int64  `json:"event_id"`
	OwnerID       int64  `json:"owner_id"`
	Title         string `json:"title"`
}

func NewEventCreatedEvent(eventID, ownerID int64, title string) *EventCreatedEvent {
	return &EventCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEventCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"event_id": eventID,
				"owner_id": ownerID,
				"title":    title,
			},
		},
		TargetEventID: eventID,
		OwnerID:       ownerID,
		Title:         title,
	}
}

type EventRSVPedEvent struct {
	BaseEvent
	TargetEventID int64  `json:"event_id"`
	OwnerID       int64  `json:"owner_id"`
	AttendeeID    int64  `json:"attendee_id"`
	Title         string `json:"title"`
	RSVPCount     int64  `json:"rsvp_count"`
}

func NewEventRSVPedEvent(eventID, ownerID, attendeeID int64, title string, rsvpCount int64) *EventRSVPedEvent {
	return &EventRSVPedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEventRSVPed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"event_id":    eventID,
				"owner_id":    ownerID,
				"attendee_id": attendeeID,
				"title":       title,
				"rsvp_count":  rsvpCount,
			},
		},
		TargetEventID: eventID,
		OwnerID:       ownerID,
		AttendeeID:    attendeeID,
		Title:         title,
		RSVPCount:     rsvpCount,
	}
}
