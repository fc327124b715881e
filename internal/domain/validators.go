package domain

import (
	"fmt"
	"strings"
	"time"
)

// occursAtLayouts lists the accepted wire formats for an event timestamp,
// most specific first. Layouts without a zone are read in the calendar location.
var occursAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseOccursAt parses an event timestamp. Date-only values resolve to midnight.
func ParseOccursAt(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("occurs_at is required")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range occursAtLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("occurs_at %q is not a valid date-time", raw)
}

// ValidateEventFields checks the required event fields and parses the timestamp.
// Title, location and details are kept byte-for-byte; only blankness is checked.
func ValidateEventFields(title, occursAt, location, details string, loc *time.Location) (EventFields, error) {
	var missing []string
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(occursAt) == "" {
		missing = append(missing, "occurs_at")
	}
	if strings.TrimSpace(location) == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return EventFields{}, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	at, err := ParseOccursAt(occursAt, loc)
	if err != nil {
		return EventFields{}, err
	}
	return EventFields{
		Title:    title,
		OccursAt: at,
		Location: location,
		Details:  details,
	}, nil
}

// ValidateCredentials checks that a username/password pair is present.
// Length and charset rules are left to callers.
func ValidateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return fmt.Errorf("username and password required")
	}
	return nil
}
