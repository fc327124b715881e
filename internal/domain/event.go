package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is a calendar entry. OccursAt alone decides whether the event is
// upcoming or past.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	OccursAt  time.Time `json:"occurs_at"`
	Location  string    `json:"location"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventFields holds the four mutable fields of an event after validation.
type EventFields struct {
	Title    string
	OccursAt time.Time
	Location string
	Details  string
}

// IsUpcoming reports whether the event belongs to the upcoming partition at now.
func (e Event) IsUpcoming(now time.Time) bool {
	return !e.OccursAt.Before(now)
}
