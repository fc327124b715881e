package handler

import (
	"context"
	"net/http"

	"github.com/campusevents/calendar/internal/domain"
	"github.com/campusevents/calendar/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// EventService is the subset of service.EventService the handlers call.
type EventService interface {
	ListUpcoming(ctx context.Context) ([]domain.Event, error)
	ListPast(ctx context.Context) ([]domain.Event, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	Create(ctx context.Context, input service.EventInput) (*domain.Event, error)
	Update(ctx context.Context, id uuid.UUID, input service.EventInput) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// EventHandler serves the public calendar views and admin event mutations.
type EventHandler struct {
	events EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events EventService) *EventHandler {
	return &EventHandler{events: events}
}

type idResponse struct {
	ID uuid.UUID `json:"id"`
}

type affectedResponse struct {
	AffectedCount int64 `json:"affectedCount"`
}

// ListUpcoming handles GET /events/upcoming.
func (h *EventHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListUpcoming(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, nonNil(events))
}

// ListPast handles GET /events/past.
func (h *EventHandler) ListPast(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListPast(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, nonNil(events))
}

// Get handles GET /events/{id}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	ev, err := h.events.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, ev)
}

// Create handles POST /events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.EventInput
	if err := DecodeJSON(w, r, &input); err != nil {
		RespondError(w, err)
		return
	}
	ev, err := h.events.Create(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, idResponse{ID: ev.ID})
}

// Update handles PUT /events/{id}. A missing id answers 200 with affectedCount 0.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var input service.EventInput
	if err := DecodeJSON(w, r, &input); err != nil {
		RespondError(w, err)
		return
	}
	affected, err := h.events.Update(r.Context(), id, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, affectedResponse{AffectedCount: affected})
}

// Delete handles DELETE /events/{id}.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	affected, err := h.events.Delete(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, affectedResponse{AffectedCount: affected})
}

func eventID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid event id")
	}
	return id, nil
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
