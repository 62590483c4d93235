package domain

import (
	"fmt"
	"iter"
	"slices"

	"github.com/goccy/go-json"
)

// PresentationType is an opaque rendering hint ("text", "number", "checkbox",
// "password", "email", "tel", "date", ...). It never affects validation.
type PresentationType string

const (
	TypeText     PresentationType = "text"
	TypeNumber   PresentationType = "number"
	TypeCheckbox PresentationType = "checkbox"
	TypePassword PresentationType = "password"
)

// FieldConfig carries what a renderer needs to draw a field.
type FieldConfig struct {
	Type  PresentationType `json:"type"`
	Label string           `json:"label"`
}

// FieldState is the live state of a single field.
// An empty Error means the field has no validation error.
type FieldState struct {
	Value  Value       `json:"value"`
	Config FieldConfig `json:"config"`
	Error  string      `json:"error,omitempty"`
}

// Equal reports structural equality.
func (f FieldState) Equal(o FieldState) bool {
	return f.Value.Equal(o.Value) && f.Config == o.Config && f.Error == o.Error
}

// NamedField pairs a field name with its state.
type NamedField struct {
	Name string `json:"name"`
	FieldState
}

// FormState is an ordered, immutable mapping from field name to FieldState.
// Every mutation returns a new FormState; receivers are never modified.
// Enumeration follows declaration order.
type FormState struct {
	names  []string
	fields map[string]FieldState
}

// NewFormState builds a state from fields in order.
// A repeated name replaces the earlier entry in place.
func NewFormState(fields ...NamedField) FormState {
	s := FormState{
		names:  make([]string, 0, len(fields)),
		fields: make(map[string]FieldState, len(fields)),
	}
	for _, f := range fields {
		if _, exists := s.fields[f.Name]; !exists {
			s.names = append(s.names, f.Name)
		}
		s.fields[f.Name] = f.FieldState
	}
	return s
}

// Len returns the number of fields.
func (s FormState) Len() int { return len(s.names) }

// Names returns field names in declaration order.
func (s FormState) Names() []string { return slices.Clone(s.names) }

// Get returns the state of a field.
func (s FormState) Get(name string) (FieldState, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Has reports whether the form has a field with this name.
func (s FormState) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// All iterates fields in declaration order.
func (s FormState) All() iter.Seq2[string, FieldState] {
	return func(yield func(string, FieldState) bool) {
		for _, name := range s.names {
			if !yield(name, s.fields[name]) {
				return
			}
		}
	}
}

// Fields returns the fields in declaration order.
func (s FormState) Fields() []NamedField {
	out := make([]NamedField, 0, len(s.names))
	for name, f := range s.All() {
		out = append(out, NamedField{Name: name, FieldState: f})
	}
	return out
}

// With returns a copy of s where name holds f. Unknown names are appended.
func (s FormState) With(name string, f FieldState) FormState {
	next := FormState{
		names:  slices.Clone(s.names),
		fields: make(map[string]FieldState, len(s.fields)+1),
	}
	for k, v := range s.fields {
		next.fields[k] = v
	}
	if _, exists := next.fields[name]; !exists {
		next.names = append(next.names, name)
	}
	next.fields[name] = f
	return next
}

// Values flattens the state into field values.
func (s FormState) Values() map[string]Value {
	out := make(map[string]Value, len(s.fields))
	for k, f := range s.fields {
		out[k] = f.Value
	}
	return out
}

// Errors returns the non-empty field errors.
func (s FormState) Errors() map[string]string {
	out := make(map[string]string)
	for k, f := range s.fields {
		if f.Error != "" {
			out[k] = f.Error
		}
	}
	return out
}

// SameFields reports whether both states describe the same set of field names.
func (s FormState) SameFields(o FormState) bool {
	if len(s.fields) != len(o.fields) {
		return false
	}
	for k := range s.fields {
		if _, ok := o.fields[k]; !ok {
			return false
		}
	}
	return true
}

// Equal reports structural equality, including field order.
func (s FormState) Equal(o FormState) bool {
	if !slices.Equal(s.names, o.names) {
		return false
	}
	for k, f := range s.fields {
		if !f.Equal(o.fields[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the state as an ordered list of named fields.
func (s FormState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Fields())
}

// UnmarshalJSON decodes the list produced by MarshalJSON.
func (s *FormState) UnmarshalJSON(data []byte) error {
	var fields []NamedField
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field without name", ErrMalformedSnapshot)
		}
	}
	*s = NewFormState(fields...)
	return nil
}
