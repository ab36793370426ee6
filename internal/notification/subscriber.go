package notification

import (
	"context"
	"fmt"

	"github.com/frahmantamala/event-management/internal/core/events"
)

type Notifier interface {
	Notify(ctx context.Context, userID int64, kind, message string, eventID *int64) (*Notification, error)
}

// RegisterEventHandlers turns domain events into owner notifications.
func RegisterEventHandlers(bus *events.EventBus, notifier Notifier) {
	bus.Subscribe(events.EventTypeEventCreated, func(ctx context.Context, e events.Event) error {
		created, ok := e.(*events.EventCreatedEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", e, e.EventType())
		}
		eventID := created.TargetEventID
		_, err := notifier.Notify(ctx, created.OwnerID, TypeEventCreated,
			fmt.Sprintf("Your event %q was created", created.Title), &eventID)
		return err
	})

	bus.Subscribe(events.EventTypeEventRSVPed, func(ctx context.Context, e events.Event) error {
		rsvp, ok := e.(*events.EventRSVPedEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", e, e.EventType())
		}
		if rsvp.AttendeeID == rsvp.OwnerID {
			return nil
		}
		eventID := rsvp.TargetEventID
		_, err := notifier.Notify(ctx, rsvp.OwnerID, TypeEventRSVP,
			fmt.Sprintf("Someone RSVPed to %q (%d attending)", rsvp.Title, rsvp.RSVPCount), &eventID)
		return err
	})
}
