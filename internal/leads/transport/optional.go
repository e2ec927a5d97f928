package transport

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// Optional tells an absent JSON field apart from an explicit clear.
// Set is true whenever the key was present; Value is nil for null or "".
type Optional[T any] struct {
	Value *T
	Set   bool
}

// OptionalUUID is the bulk-update assignee: absent keeps, null unassigns.
type OptionalUUID = Optional[uuid.UUID]

func (o Optional[T]) IsZero() bool { return !o.Set }

// Clears reports a present key that asks for the value to be removed.
func (o Optional[T]) Clears() bool { return o.Set && o.Value == nil }

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		return nil
	}

	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
