package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestParseOccursAt(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"rfc3339 utc", "2099-01-01T10:00:00Z", time.Date(2099, 1, 1, 10, 0, 0, 0, time.UTC), false},
		{"rfc3339 offset", "2099-01-01T10:00:00+02:00", time.Date(2099, 1, 1, 8, 0, 0, 0, time.UTC), false},
		{"iso without zone", "2099-01-01T10:00:00", time.Date(2099, 1, 1, 10, 0, 0, 0, time.UTC), false},
		{"mysql datetime", "2099-01-01 10:00:00", time.Date(2099, 1, 1, 10, 0, 0, 0, time.UTC), false},
		{"datetime-local input", "2099-01-01T10:30", time.Date(2099, 1, 1, 10, 30, 0, 0, time.UTC), false},
		{"minute precision with space", "2099-01-01 10:30", time.Date(2099, 1, 1, 10, 30, 0, 0, time.UTC), false},
		{"date only is midnight", "2099-01-01", time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"surrounding spaces", "  2099-01-01 10:00  ", time.Date(2099, 1, 1, 10, 0, 0, 0, time.UTC), false},
		{"empty", "", time.Time{}, true},
		{"garbage", "next tuesday", time.Time{}, true},
		{"invalid month", "2099-13-01", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOccursAt(tt.raw, time.UTC)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseOccursAt_UsesCalendarLocation(t *testing.T) {
	loc := time.FixedZone("campus", -5*3600)

	got, err := ParseOccursAt("2099-01-01 10:00", loc)
	require.NoError(t, err)
	assert.True(t, time.Date(2099, 1, 1, 15, 0, 0, 0, time.UTC).Equal(got))

	// An explicit offset wins over the calendar location.
	got, err = ParseOccursAt("2099-01-01T10:00:00Z", loc)
	require.NoError(t, err)
	assert.True(t, time.Date(2099, 1, 1, 10, 0, 0, 0, time.UTC).Equal(got))
}

func TestValidateEventFields(t *testing.T) {
	t.Run("valid keeps text verbatim", func(t *testing.T) {
		f, err := ValidateEventFields("  Robotics Fair ", "2099-01-01 10:00:00", "Hall A", "Bring a robot\n", time.UTC)
		require.NoError(t, err)
		assert.Equal(t, "  Robotics Fair ", f.Title)
		assert.Equal(t, "Hall A", f.Location)
		assert.Equal(t, "Bring a robot\n", f.Details)
		assert.Equal(t, 10, f.OccursAt.Hour())
	})

	t.Run("details optional", func(t *testing.T) {
		_, err := ValidateEventFields("Fair", "2099-01-01", "Hall A", "", time.UTC)
		require.NoError(t, err)
	})

	t.Run("missing fields are listed", func(t *testing.T) {
		_, err := ValidateEventFields(" ", "", "", "", time.UTC)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "title, occurs_at, location")
	})

	t.Run("unparseable date", func(t *testing.T) {
		_, err := ValidateEventFields("Fair", "01/01/2099", "Hall A", "", time.UTC)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a valid date-time")
	})
}

func TestValidateCredentials(t *testing.T) {
	assert.NoError(t, ValidateCredentials("admin", "admin123"))
	assert.Error(t, ValidateCredentials("", "admin123"))
	assert.Error(t, ValidateCredentials("   ", "admin123"))
	assert.Error(t, ValidateCredentials("admin", ""))
}

// --- Event Tests ---

func TestEvent_IsUpcoming(t *testing.T) {
	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, Event{OccursAt: now}.IsUpcoming(now), "boundary instant is upcoming")
	assert.True(t, Event{OccursAt: now.Add(time.Second)}.IsUpcoming(now))
	assert.False(t, Event{OccursAt: now.Add(-time.Nanosecond)}.IsUpcoming(now))
}

// --- AppError Tests ---

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := ErrNotFound("event", "abc-123")
		assert.Equal(t, "NOT_FOUND: event abc-123 not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrInternal("database error", cause)
		assert.Contains(t, err.Error(), "INTERNAL_ERROR")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrInternal("wrapped", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestErrorFactories(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"ErrNotFound", ErrNotFound("event", "123"), "NOT_FOUND", 404},
		{"ErrConflict", ErrConflict(MsgUsernameExists), "CONFLICT", 400},
		{"ErrValidation", ErrValidation("bad input"), "VALIDATION_ERROR", 400},
		{"ErrUnauthorized", ErrUnauthorized(MsgInvalidCredentials), "UNAUTHORIZED", 401},
		{"ErrForbidden", ErrForbidden(MsgCannotDeleteSelf), "FORBIDDEN", 403},
		{"ErrAccountLocked", ErrAccountLocked("too many attempts"), "ACCOUNT_LOCKED", 429},
		{"ErrRateLimited", ErrRateLimited("slow down"), "RATE_LIMITED", 429},
		{"ErrInternal", ErrInternal("oops", nil), "INTERNAL_ERROR", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

// --- Outbox Tests ---

func TestNewEventChange(t *testing.T) {
	at := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	ev := &Event{ID: uuid.New(), Title: "Robotics Fair", Location: "Hall A"}

	d := NewEventChange(ChangeEventCreated, ev, at)
	assert.NotEqual(t, uuid.Nil, d.MessageID)
	assert.Equal(t, AggregateEvent, d.AggregateType)
	assert.Equal(t, ev.ID.String(), d.AggregateID)
	assert.Equal(t, "calendar.event.created", d.Topic())
	assert.Equal(t, at, d.OccurredAt)

	var decoded Event
	require.NoError(t, json.Unmarshal(d.Payload, &decoded))
	assert.Equal(t, "Robotics Fair", decoded.Title)

	deleted := NewEventChange(ChangeEventDeleted, ev, at)
	var idOnly map[string]string
	require.NoError(t, json.Unmarshal(deleted.Payload, &idOnly))
	assert.Equal(t, map[string]string{"id": ev.ID.String()}, idOnly)
}

func TestNewAdminChange_OmitsSecrets(t *testing.T) {
	id := uuid.New()
	d := NewAdminChange(ChangeAdminCreated, id, "alice", "admin", time.Now())

	assert.Equal(t, AggregateAdmin, d.AggregateType)
	assert.NotContains(t, string(d.Payload), "password")
	assert.Contains(t, string(d.Payload), "alice")
}

func TestAdminUser_JSONHidesHash(t *testing.T) {
	u := AdminUser{ID: uuid.New(), Username: "alice", PasswordHash: "$2a$10$secret"}
	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "$2a$10$secret")
	assert.Contains(t, string(b), `"username":"alice"`)
}
