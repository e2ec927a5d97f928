package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func status(name string, final bool) Status {
	return Status{ID: uuid.New(), Name: name, IsFinal: final}
}

func TestCheckTransition(t *testing.T) {
	needToContact := status(StatusNeedToContact, false)
	busy := status("Busy", false)
	converted := status(StatusConverted, true)
	notConverted := status("Not Converted", true)

	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{"working to working", needToContact, busy, false},
		{"working to final", busy, converted, false},
		{"same status", busy, busy, false},
		{"final to other final", converted, notConverted, false},
		{"final to same final", converted, converted, false},
		{"final to working", converted, needToContact, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrLeaveFinalStatus)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSchedulesCallback(t *testing.T) {
	assert.True(t, status(StatusScheduledCallback, false).SchedulesCallback())
	assert.False(t, status("scheduled callback", false).SchedulesCallback())
}

func TestPickDefaultStatus(t *testing.T) {
	t.Run("prefers need to contact", func(t *testing.T) {
		want := status(StatusNeedToContact, false)
		got, ok := PickDefaultStatus([]Status{status("Busy", false), want, status(StatusConverted, true)})
		assert.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("falls back to first non-final by name", func(t *testing.T) {
		attempted := status("Attempted Contact", false)
		got, ok := PickDefaultStatus([]Status{status("Busy", false), status("Archived", true), attempted})
		assert.True(t, ok)
		assert.Equal(t, attempted, got)
	})

	t.Run("none", func(t *testing.T) {
		_, ok := PickDefaultStatus([]Status{status(StatusConverted, true)})
		assert.False(t, ok)
	})
}
