package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChangeType enumerates the change-feed message types.
type ChangeType string

const (
	ChangeEventCreated ChangeType = "calendar.event.created"
	ChangeEventUpdated ChangeType = "calendar.event.updated"
	ChangeEventDeleted ChangeType = "calendar.event.deleted"
	ChangeAdminCreated ChangeType = "calendar.admin.created"
	ChangeAdminDeleted ChangeType = "calendar.admin.deleted"
)

// AggregateType enumerates the aggregate root types for outbox rows.
type AggregateType string

const (
	AggregateEvent AggregateType = "event"
	AggregateAdmin AggregateType = "admin"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	SeqID         int64           `json:"-"`
	MessageID     uuid.UUID       `json:"message_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	ChangeType    ChangeType      `json:"change_type"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewEventChange builds the outbox draft for an event mutation. The payload is
// the event itself for create/update and just the id for delete.
func NewEventChange(changeType ChangeType, ev *Event, at time.Time) OutboxDraft {
	var payload []byte
	if changeType == ChangeEventDeleted {
		payload, _ = json.Marshal(map[string]string{"id": ev.ID.String()})
	} else {
		payload, _ = json.Marshal(ev)
	}
	return OutboxDraft{
		MessageID:     uuid.New(),
		AggregateType: AggregateEvent,
		AggregateID:   ev.ID.String(),
		ChangeType:    changeType,
		Payload:       payload,
		OccurredAt:    at,
	}
}

// NewAdminChange builds the outbox draft for an admin account mutation.
// The password hash never reaches the payload.
func NewAdminChange(changeType ChangeType, adminID uuid.UUID, username, actor string, at time.Time) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"id":       adminID.String(),
		"username": username,
		"actor":    actor,
	})
	return OutboxDraft{
		MessageID:     uuid.New(),
		AggregateType: AggregateAdmin,
		AggregateID:   adminID.String(),
		ChangeType:    changeType,
		Payload:       payload,
		OccurredAt:    at,
	}
}

// Topic returns the Kafka topic the draft is published to.
func (d OutboxDraft) Topic() string {
	return string(d.ChangeType)
}
