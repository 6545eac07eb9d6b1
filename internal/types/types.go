// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Student represents a persisted student record.
//
// ID is assigned by the store on creation and never changes.
// CreatedAt and UpdatedAt are maintained by the store as well: the former
// is fixed at creation, the latter moves forward on every update.
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender"`
	Age       string    `json:"age"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StudentInput is the body of a create request.
//
// validate:"required" rejects missing keys and empty strings alike, so the
// store never sees a record without all three fields.
type StudentInput struct {
	Name   Text `json:"name"   validate:"required"`
	Gender Text `json:"gender" validate:"required"`
	Age    Text `json:"age"    validate:"required"`
}

// StudentPatch is the body of a partial update. A nil field means "leave
// unchanged"; a supplied field must not be empty.
type StudentPatch struct {
	Name   *Text `json:"name,omitempty"   validate:"omitnil,min=1"`
	Gender *Text `json:"gender,omitempty" validate:"omitnil,min=1"`
	Age    *Text `json:"age,omitempty"    validate:"omitnil,min=1"`
}

// IsEmpty reports whether the patch changes nothing.
func (p StudentPatch) IsEmpty() bool {
	return p.Name == nil && p.Gender == nil && p.Age == nil
}

// Apply overwrites the fields of s that are set in p.
func (p StudentPatch) Apply(s *Student) {
	if p.Name != nil {
		s.Name = string(*p.Name)
	}
	if p.Gender != nil {
		s.Gender = string(*p.Gender)
	}
	if p.Age != nil {
		s.Age = string(*p.Age)
	}
}

// Text is a string that also accepts JSON numbers and booleans, keeping
// their literal text. Clients commonly send "age": 24 instead of "24";
// the value is stored as "24" without being reinterpreted.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		// null behaves like an absent key
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*t = Text(b)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", b)
	}
	*t = Text(n.String())
	return nil
}

// String returns the underlying string.
func (t Text) String() string { return string(t) }
