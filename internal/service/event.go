package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/campusevents/calendar/internal/clock"
	"github.com/campusevents/calendar/internal/domain"
	"github.com/campusevents/calendar/internal/repository"
	"github.com/google/uuid"
)

// EventService validates event mutations and computes the upcoming/past partition.
// The partition boundary is the injected clock's current instant, read on every query.
type EventService struct {
	events   repository.EventRepository
	clock    clock.Clock
	location *time.Location
	logger   *slog.Logger
}

// NewEventService creates a new EventService. Zone-less timestamps are read in loc.
func NewEventService(events repository.EventRepository, clk clock.Clock, loc *time.Location, logger *slog.Logger) *EventService {
	if loc == nil {
		loc = time.UTC
	}
	return &EventService{
		events:   events,
		clock:    clk,
		location: loc,
		logger:   logger,
	}
}

// EventInput holds the create/update request fields.
type EventInput struct {
	Title    string `json:"title" validate:"required"`
	OccursAt string `json:"occurs_at" validate:"required"`
	Location string `json:"location" validate:"required"`
	Details  string `json:"details"`
}

// ListUpcoming returns events at or after now, soonest first.
func (s *EventService) ListUpcoming(ctx context.Context) ([]domain.Event, error) {
	events, err := s.events.ListUpcoming(ctx, s.clock.Now())
	if err != nil {
		return nil, domain.ErrInternal("list upcoming events", err)
	}
	return events, nil
}

// ListPast returns events strictly before now, most recent first.
func (s *EventService) ListPast(ctx context.Context) ([]domain.Event, error) {
	events, err := s.events.ListPast(ctx, s.clock.Now())
	if err != nil {
		return nil, domain.ErrInternal("list past events", err)
	}
	return events, nil
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	ev, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, domain.ErrInternal("find event", err)
	}
	if ev == nil {
		return nil, domain.ErrNotFound("event", id.String())
	}
	return ev, nil
}

// Create validates and stores a new event. Events in the past are accepted.
func (s *EventService) Create(ctx context.Context, input EventInput) (*domain.Event, error) {
	fields, err := domain.ValidateEventFields(input.Title, input.OccursAt, input.Location, input.Details, s.location)
	if err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	ev, err := s.events.Create(ctx, fields)
	if err != nil {
		return nil, domain.ErrInternal("create event", err)
	}

	s.logger.Info("event created", "event_id", ev.ID, "occurs_at", ev.OccursAt)
	return ev, nil
}

// Update overwrites title, occurs_at, location and details. A missing id
// yields 0 affected rows, not an error.
func (s *EventService) Update(ctx context.Context, id uuid.UUID, input EventInput) (int64, error) {
	fields, err := domain.ValidateEventFields(input.Title, input.OccursAt, input.Location, input.Details, s.location)
	if err != nil {
		return 0, domain.ErrValidation(err.Error())
	}

	affected, err := s.events.Update(ctx, id, fields)
	if err != nil {
		return 0, domain.ErrInternal("update event", err)
	}

	s.logger.Info("event updated", "event_id", id, "affected", affected)
	return affected, nil
}

// Delete permanently removes an event. Repeated deletes return 0.
func (s *EventService) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	affected, err := s.events.Delete(ctx, id)
	if err != nil {
		return 0, domain.ErrInternal("delete event", err)
	}

	s.logger.Info("event deleted", "event_id", id, "affected", affected)
	return affected, nil
}
