// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Status names with behavior attached to them.
const (
	StatusNeedToContact     = "Need to Contact"
	StatusScheduledCallback = "Scheduled Callback"
	StatusConverted         = "Converted"
)

// ErrLeaveFinalStatus is returned when a lead on a final status is moved to a
// non-final one.
var ErrLeaveFinalStatus = errors.New("cannot leave a final status")

// Status is a named pipeline stage. Final statuses are terminal outcomes.
type Status struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	IsFinal bool      `json:"isFinal"`
}

// CheckTransition enforces the only rule of the status graph: a final status
// can only be followed by another final status. Every other move, including
// staying on the same status, is allowed.
func CheckTransition(from, to Status) error {
	if from.IsFinal && !to.IsFinal {
		return ErrLeaveFinalStatus
	}
	return nil
}

// SchedulesCallback reports whether entering s materializes a callback.
func (s Status) SchedulesCallback() bool {
	return s.Name == StatusScheduledCallback
}

// PickDefaultStatus returns the status new leads start on: "Need to Contact"
// when present, otherwise the first non-final status by name.
func PickDefaultStatus(statuses []Status) (Status, bool) {
	var fallback *Status
	for i := range statuses {
		s := statuses[i]
		if s.Name == StatusNeedToContact {
			return s, true
		}
		if s.IsFinal {
			continue
		}
		if fallback == nil || strings.Compare(s.Name, fallback.Name) < 0 {
			fallback = &statuses[i]
		}
	}
	if fallback == nil {
		return Status{}, false
	}
	return *fallback, true
}
