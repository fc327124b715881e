package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/campusevents/calendar/internal/domain"
	"github.com/campusevents/calendar/internal/repository"
	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memEventRepo is an in-memory EventRepository.
type memEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]domain.Event
	err    error
	calls  int
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[uuid.UUID]domain.Event)}
}

func (r *memEventRepo) filter(keep func(domain.Event) bool, less func(a, b domain.Event) bool) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Event, 0)
	for _, ev := range r.events {
		if keep(ev) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

func (r *memEventRepo) ListUpcoming(_ context.Context, now time.Time) ([]domain.Event, error) {
	return r.filter(
		func(ev domain.Event) bool { return !ev.OccursAt.Before(now) },
		func(a, b domain.Event) bool { return a.OccursAt.Before(b.OccursAt) },
	)
}

func (r *memEventRepo) ListPast(_ context.Context, now time.Time) ([]domain.Event, error) {
	return r.filter(
		func(ev domain.Event) bool { return ev.OccursAt.Before(now) },
		func(a, b domain.Event) bool { return a.OccursAt.After(b.OccursAt) },
	)
}

func (r *memEventRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	ev, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	return &ev, nil
}

func (r *memEventRepo) Create(_ context.Context, f domain.EventFields) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	now := time.Now().UTC()
	ev := domain.Event{
		ID:        uuid.New(),
		Title:     f.Title,
		OccursAt:  f.OccursAt,
		Location:  f.Location,
		Details:   f.Details,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.events[ev.ID] = ev
	return &ev, nil
}

func (r *memEventRepo) Update(_ context.Context, id uuid.UUID, f domain.EventFields) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return 0, r.err
	}
	ev, ok := r.events[id]
	if !ok {
		return 0, nil
	}
	ev.Title, ev.OccursAt, ev.Location, ev.Details = f.Title, f.OccursAt, f.Location, f.Details
	ev.UpdatedAt = time.Now().UTC()
	r.events[id] = ev
	return 1, nil
}

func (r *memEventRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return 0, r.err
	}
	if _, ok := r.events[id]; !ok {
		return 0, nil
	}
	delete(r.events, id)
	return 1, nil
}

// memAdminRepo is an in-memory AdminRepository.
type memAdminRepo struct {
	mu     sync.Mutex
	admins []domain.AdminUser
	err    error
	calls  int
	// raceOnCreate simulates another request inserting the same username
	// between the pre-check and the insert.
	raceOnCreate bool
}

func (r *memAdminRepo) FindByUsername(_ context.Context, username string) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	for _, a := range r.admins {
		if a.Username == username {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (r *memAdminRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, a := range r.admins {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (r *memAdminRepo) List(_ context.Context) ([]domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := append([]domain.AdminUser(nil), r.admins...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memAdminRepo) Create(_ context.Context, username, hash string, createdBy *string) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.raceOnCreate {
		return nil, repository.ErrUsernameTaken
	}
	for _, a := range r.admins {
		if a.Username == username {
			return nil, repository.ErrUsernameTaken
		}
	}
	u := domain.AdminUser{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC().Add(time.Duration(len(r.admins)) * time.Millisecond),
	}
	r.admins = append(r.admins, u)
	return &u, nil
}

func (r *memAdminRepo) CreateIfEmpty(_ context.Context, username, hash, createdBy string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return false, r.err
	}
	if len(r.admins) > 0 {
		return false, nil
	}
	r.admins = append(r.admins, domain.AdminUser{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedBy:    &createdBy,
		CreatedAt:    time.Now().UTC(),
	})
	return true, nil
}

func (r *memAdminRepo) Delete(_ context.Context, id uuid.UUID, _ string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return 0, r.err
	}
	if len(r.admins) <= 1 {
		return 0, nil
	}
	for i, a := range r.admins {
		if a.ID == id {
			r.admins = append(r.admins[:i], r.admins[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *memAdminRepo) hashOf(username string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Username == username {
			return a.PasswordHash
		}
	}
	return ""
}

func (r *memAdminRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.admins)
}

// recordingGuard is a LoginGuard that remembers attempts.
type recordingGuard struct {
	locked   map[string]bool
	attempts []bool
}

func (g *recordingGuard) CheckLocked(_ context.Context, username string) error {
	if g.locked[username] {
		return domain.ErrAccountLocked("locked")
	}
	return nil
}

func (g *recordingGuard) RecordAttempt(_ context.Context, _, _ string, success bool) {
	g.attempts = append(g.attempts, success)
}
