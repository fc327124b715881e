package handler

import (
	"context"
	"time"

	"github.com/campusevents/calendar/internal/domain"
	"github.com/campusevents/calendar/internal/service"
	"github.com/google/uuid"
)

type stubEvents struct {
	upcoming []domain.Event
	past     []domain.Event
	byID     map[uuid.UUID]*domain.Event
	err      error

	lastInput service.EventInput
	lastID    uuid.UUID
}

func (s *stubEvents) ListUpcoming(context.Context) ([]domain.Event, error) {
	return s.upcoming, s.err
}

func (s *stubEvents) ListPast(context.Context) ([]domain.Event, error) {
	return s.past, s.err
}

func (s *stubEvents) Get(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	if ev, ok := s.byID[id]; ok {
		return ev, nil
	}
	return nil, domain.ErrNotFound("event", id.String())
}

func (s *stubEvents) Create(_ context.Context, input service.EventInput) (*domain.Event, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	ev := &domain.Event{ID: uuid.New(), Title: input.Title, Location: input.Location, Details: input.Details}
	s.byID[ev.ID] = ev
	return ev, nil
}

func (s *stubEvents) Update(_ context.Context, id uuid.UUID, input service.EventInput) (int64, error) {
	s.lastID, s.lastInput = id, input
	if s.err != nil {
		return 0, s.err
	}
	if _, ok := s.byID[id]; !ok {
		return 0, nil
	}
	return 1, nil
}

func (s *stubEvents) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	s.lastID = id
	if _, ok := s.byID[id]; !ok {
		return 0, nil
	}
	delete(s.byID, id)
	return 1, nil
}

type stubAccess struct {
	users   map[string]string
	ids     map[string]uuid.UUID
	admins  []domain.AdminUser
	lastIP  string
	lastBy  domain.Identity
	lastAdd service.AddAdminInput
	deleted []uuid.UUID
}

func newStubAccess() *stubAccess {
	return &stubAccess{users: map[string]string{}, ids: map[string]uuid.UUID{}}
}

func (s *stubAccess) withUser(username, password string) uuid.UUID {
	id := uuid.New()
	s.users[username] = password
	s.ids[username] = id
	return id
}

func (s *stubAccess) Authenticate(_ context.Context, input service.LoginInput) (*domain.Identity, error) {
	s.lastIP = input.IP
	if pw, ok := s.users[input.Username]; !ok || pw != input.Password {
		return nil, domain.ErrUnauthorized(domain.MsgInvalidCredentials)
	}
	return &domain.Identity{ID: s.ids[input.Username], Username: input.Username}, nil
}

func (s *stubAccess) ListAdmins(context.Context) ([]domain.AdminUser, error) {
	return s.admins, nil
}

func (s *stubAccess) AddAdmin(_ context.Context, input service.AddAdminInput, requester domain.Identity) (*domain.AdminUser, error) {
	s.lastAdd, s.lastBy = input, requester
	if _, ok := s.users[input.Username]; ok {
		return nil, domain.ErrConflict(domain.MsgUsernameExists)
	}
	id := s.withUser(input.Username, input.Password)
	return &domain.AdminUser{ID: id, Username: input.Username, CreatedAt: time.Now()}, nil
}

func (s *stubAccess) DeleteAdmin(_ context.Context, id uuid.UUID, requester domain.Identity) (int64, error) {
	s.lastBy = requester
	if id == requester.ID {
		return 0, domain.ErrForbidden(domain.MsgCannotDeleteSelf)
	}
	for name, uid := range s.ids {
		if uid == id {
			delete(s.ids, name)
			delete(s.users, name)
			s.deleted = append(s.deleted, id)
			return 1, nil
		}
	}
	return 0, nil
}
