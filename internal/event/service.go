package event

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/event-management/internal/auth"
	"github.com/frahmantamala/event-management/internal/core/events"
	"github.com/frahmantamala/event-management/internal/observability"
	"github.com/frahmantamala/event-management/internal/permission"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	List(ctx context.Context, filter ListFilter) ([]*Event, int64, error)
	ListByUserID(ctx context.Context, userID int64, filter ListFilter) ([]*Event, int64, error)
	// Update writes the editable columns only; rsvp_count is never touched.
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id int64) error
	// IncrementRSVP adds one to rsvp_count in a single statement and returns
	// the updated row, or ErrEventNotFound.
	IncrementRSVP(ctx context.Context, id int64) (*Event, error)
}

// CategoryValidator reports whether a category may be used for new or edited events.
type CategoryValidator interface {
	IsValidCategory(ctx context.Context, name string) (bool, error)
}

type Service struct {
	repo       Repository
	publisher  events.Publisher
	categories CategoryValidator
	metrics    *observability.Metrics
	logger     *slog.Logger
}

type Option func(*Service)

// WithCategoryValidator makes Create and Update reject categories that have
// been disabled in the store. Without it only the built-in list is checked.
func WithCategoryValidator(v CategoryValidator) Option {
	return func(s *Service) { s.categories = v }
}

func NewService(repo Repository, publisher events.Publisher, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new event owned by the caller. Requires event.create.
func (s *Service) Create(ctx context.Context, id *auth.Identity, dto CreateEventDTO) (*Event, error) {
	if err := s.require(id, permission.EventCreate); err != nil {
		return nil, err
	}

	date, err := dto.Validate()
	if err != nil {
		return nil, err
	}

	e := NewEvent(id.ID, dto, date)
	if err := s.checkCategory(ctx, e.Category); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("failed to create event", "error", err, "user_id", id.ID)
		return nil, err
	}

	s.publish(ctx, events.NewEventCreatedEvent(e.ID, e.UserID, e.Title))
	s.logger.Info("event created", "event_id", e.ID, "user_id", id.ID, "category", e.Category)
	return e, nil
}

func (s *Service) Get(ctx context.Context, eventID int64) (*Event, error) {
	return s.repo.GetByID(ctx, eventID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list events", "error", err)
		return nil, err
	}
	return &ListResult{Events: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ListByOwner returns the caller's own events.
func (s *Service) ListByOwner(ctx context.Context, id *auth.Identity, filter ListFilter) (*ListResult, error) {
	if id == nil {
		return nil, ErrUnauthenticated
	}
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.ListByUserID(ctx, id.ID, filter)
	if err != nil {
		s.logger.Error("failed to list user events", "error", err, "user_id", id.ID)
		return nil, err
	}
	return &ListResult{Events: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Update applies dto when the caller holds event.update.all, or owns the
// event and holds event.update.own.
func (s *Service) Update(ctx context.Context, id *auth.Identity, eventID int64, dto UpdateEventDTO) (*Event, error) {
	if id == nil {
		return nil, ErrUnauthenticated
	}

	e, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !auth.CanActOnEvent(id, e.UserID, "event.update") {
		s.logger.Warn("event update denied", "event_id", eventID, "user_id", id.ID, "owner_id", e.UserID)
		return nil, ErrForbidden
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.Category != nil {
		if err := s.checkCategory(ctx, *dto.Category); err != nil {
			return nil, err
		}
	}

	dto.Apply(e)
	if err := s.repo.Update(ctx, e); err != nil {
		if !errors.Is(err, ErrEventNotFound) {
			s.logger.Error("failed to update event", "error", err, "event_id", eventID)
		}
		return nil, err
	}

	s.logger.Info("event updated", "event_id", eventID, "user_id", id.ID)
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id *auth.Identity, eventID int64) error {
	if id == nil {
		return ErrUnauthenticated
	}

	e, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	if !auth.CanActOnEvent(id, e.UserID, "event.delete") {
		s.logger.Warn("event delete denied", "event_id", eventID, "user_id", id.ID, "owner_id", e.UserID)
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, eventID); err != nil {
		if !errors.Is(err, ErrEventNotFound) {
			s.logger.Error("failed to delete event", "error", err, "event_id", eventID)
		}
		return err
	}

	s.logger.Info("event deleted", "event_id", eventID, "user_id", id.ID)
	return nil
}

// RSVP increments the attendance counter by one. The permission check runs
// before the store is touched, so a denied call never mutates anything.
// Repeat calls by the same user each count.
func (s *Service) RSVP(ctx context.Context, id *auth.Identity, eventID int64) (*Event, error) {
	if err := s.require(id, permission.EventRSVP); err != nil {
		s.metrics.RecordRSVP("denied")
		return nil, err
	}

	e, err := s.repo.IncrementRSVP(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			s.metrics.RecordRSVP("not_found")
			return nil, err
		}
		s.metrics.RecordRSVP("error")
		s.logger.Error("failed to record rsvp", "error", err, "event_id", eventID, "user_id", id.ID)
		return nil, err
	}

	s.metrics.RecordRSVP("ok")
	s.publish(ctx, events.NewEventRSVPedEvent(e.ID, e.UserID, id.ID, e.Title, e.RSVPCount))
	s.logger.Info("rsvp recorded", "event_id", eventID, "user_id", id.ID, "rsvp_count", e.RSVPCount)
	return e, nil
}

func (s *Service) require(id *auth.Identity, capability string) error {
	if id == nil {
		return ErrUnauthenticated
	}
	if !auth.HasPermission(id, capability) {
		s.logger.Warn("permission denied", "user_id", id.ID, "permission", capability)
		return ErrForbidden
	}
	return nil
}

func (s *Service) checkCategory(ctx context.Context, name string) error {
	if s.categories == nil {
		return nil
	}
	ok, err := s.categories.IsValidCategory(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("category rejected", "category", name)
		return ErrInvalidCategory
	}
	return nil
}

// publish never fails the caller; the mutation has already been committed.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", e.EventType())
	}
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

func normalizeFilter(f ListFilter) (ListFilter, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Category != "" {
		c, ok := NormalizeCategory(f.Category)
		if !ok {
			return f, ErrInvalidCategory
		}
		f.Category = c
	}
	return f, nil
}
