package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidEntry indicates an activity log or important date is missing required fields.
var ErrInvalidEntry = errors.New("invalid entry")

// ActivityType enumerates the kinds of activity that can be logged.
type ActivityType string

const (
	ActivityFeeding     ActivityType = "Feeding"
	ActivityMedication  ActivityType = "Medication"
	ActivityVaccination ActivityType = "Vaccination"
	ActivityObservation ActivityType = "Observation"
	ActivityOther       ActivityType = "Other"
)

// ParseActivityType resolves an activity type case-insensitively.
func ParseActivityType(value string) (ActivityType, error) {
	for _, t := range []ActivityType{ActivityFeeding, ActivityMedication, ActivityVaccination, ActivityObservation, ActivityOther} {
		if strings.EqualFold(string(t), strings.TrimSpace(value)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown activity type %q", ErrInvalidEntry, value)
}

// ActivityLog is a timestamped action taken on a livestock record.
type ActivityLog struct {
	ID          string       `json:"id"`
	Date        time.Time    `json:"date"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
}

// Validate checks the fields a log entry must carry.
func (a ActivityLog) Validate() error {
	if a.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}
	if _, err := ParseActivityType(string(a.Type)); err != nil {
		return err
	}
	if strings.TrimSpace(a.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidEntry)
	}
	return nil
}

// ImportantDate is a milestone or reminder attached to a livestock record.
type ImportantDate struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	EventName string    `json:"eventName"`
	Notes     string    `json:"notes,omitempty"`
}

// Validate checks the fields an important date must carry.
func (d ImportantDate) Validate() error {
	if d.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}
	if strings.TrimSpace(d.EventName) == "" {
		return fmt.Errorf("%w: event name is required", ErrInvalidEntry)
	}
	return nil
}
