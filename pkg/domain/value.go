package domain

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// ValueKind tags the variant held by a Value.
type ValueKind string

const (
	ValueUnanswered ValueKind = "unanswered"
	ValueText       ValueKind = "text"
	ValueNumber     ValueKind = "number"
	ValueBool       ValueKind = "bool"
)

// Value is the current content of a field.
// It is one of: Unanswered (no answer yet), Text, Number or Bool.
// A Number can be invalid: it then carries the raw input that failed to parse
// and flattens to NaN, so validation reports it instead of the engine failing.
type Value struct {
	kind    ValueKind
	text    string
	number  float64
	boolean bool
	invalid bool
}

// Unanswered returns the "not yet answered" value used by boolean fields.
func Unanswered() Value { return Value{kind: ValueUnanswered} }

// Text returns a textual value.
func Text(s string) Value { return Value{kind: ValueText, text: s} }

// Number returns a numeric value.
func Number(n float64) Value {
	if math.IsNaN(n) {
		return InvalidNumber("NaN")
	}
	return Value{kind: ValueNumber, number: n}
}

// InvalidNumber records numeric input that could not be parsed.
func InvalidNumber(raw string) Value {
	return Value{kind: ValueNumber, text: raw, invalid: true}
}

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: ValueBool, boolean: b} }

// ValueOf converts a plain Go value (as found in defaults or decoded JSON)
// into a Value. Nil maps to Unanswered.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Unanswered()
	case Value:
		return x
	case string:
		return Text(x)
	case bool:
		return Bool(x)
	case int:
		return Number(float64(x))
	case int8:
		return Number(float64(x))
	case int16:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint8:
		return Number(float64(x))
	case uint16:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case float32:
		return Number(float64(x))
	case float64:
		return Number(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return Number(f)
		}
		return InvalidNumber(x.String())
	default:
		return Text(fmt.Sprint(x))
	}
}

// Kind reports which variant the value holds. The zero Value is Unanswered.
func (v Value) Kind() ValueKind {
	if v.kind == "" {
		return ValueUnanswered
	}
	return v.kind
}

// IsUnanswered reports whether the field has not been answered yet.
func (v Value) IsUnanswered() bool { return v.Kind() == ValueUnanswered }

// Valid is false only for numbers whose input did not parse.
func (v Value) Valid() bool { return !v.invalid }

// AsText returns the text held by a Text value.
func (v Value) AsText() (string, bool) {
	if v.kind != ValueText {
		return "", false
	}
	return v.text, true
}

// AsNumber returns the number held by a valid Number value.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != ValueNumber || v.invalid {
		return 0, false
	}
	return v.number, true
}

// AsBool returns the boolean held by a Bool value.
func (v Value) AsBool() (bool, bool) {
	if v.kind != ValueBool {
		return false, false
	}
	return v.boolean, true
}

// Raw returns the rejected input of an invalid Number.
func (v Value) Raw() string {
	if v.invalid {
		return v.text
	}
	return ""
}

// Interface flattens the value into the plain form the validator consumes.
// Unanswered reports ok=false (the field is absent); an invalid number is NaN.
func (v Value) Interface() (any, bool) {
	switch v.Kind() {
	case ValueText:
		return v.text, true
	case ValueNumber:
		if v.invalid {
			return math.NaN(), true
		}
		return v.number, true
	case ValueBool:
		return v.boolean, true
	default:
		return nil, false
	}
}

// Equal reports structural equality.
func (v Value) Equal(o Value) bool {
	return v.Kind() == o.Kind() &&
		v.text == o.text &&
		v.number == o.number &&
		v.boolean == o.boolean &&
		v.invalid == o.invalid
}

// String renders the value for display.
func (v Value) String() string {
	switch v.Kind() {
	case ValueText:
		return v.text
	case ValueNumber:
		if v.invalid {
			return v.text
		}
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.boolean)
	default:
		return ""
	}
}

type valueWire struct {
	Kind   ValueKind `json:"kind"`
	Text   *string   `json:"text,omitempty"`
	Number *float64  `json:"number,omitempty"`
	Bool   *bool     `json:"bool,omitempty"`
	Raw    *string   `json:"raw,omitempty"`
}

// MarshalJSON encodes the value as a tagged object.
func (v Value) MarshalJSON() ([]byte, error) {
	w := valueWire{Kind: v.Kind()}
	switch w.Kind {
	case ValueText:
		w.Text = &v.text
	case ValueNumber:
		if v.invalid {
			w.Raw = &v.text
		} else {
			w.Number = &v.number
		}
	case ValueBool:
		w.Bool = &v.boolean
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the tagged object produced by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w valueWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: value: %v", ErrMalformedSnapshot, err)
	}
	switch w.Kind {
	case ValueUnanswered, "":
		*v = Unanswered()
	case ValueText:
		if w.Text == nil {
			return fmt.Errorf("%w: text value without text", ErrMalformedSnapshot)
		}
		*v = Text(*w.Text)
	case ValueNumber:
		switch {
		case w.Number != nil:
			*v = Number(*w.Number)
		case w.Raw != nil:
			*v = InvalidNumber(*w.Raw)
		default:
			return fmt.Errorf("%w: number value without number", ErrMalformedSnapshot)
		}
	case ValueBool:
		if w.Bool == nil {
			return fmt.Errorf("%w: bool value without bool", ErrMalformedSnapshot)
		}
		*v = Bool(*w.Bool)
	default:
		return fmt.Errorf("%w: unknown value kind %q", ErrMalformedSnapshot, w.Kind)
	}
	return nil
}
