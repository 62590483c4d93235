package schema

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind is the explicit tag of a field's underlying data kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindNumber
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Type defines the contract for field validation.
// Parse receives a present (non-nil) value and returns the normalized output,
// or an Issues error whose paths are relative to the field.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "optional").
	Name() string
	// Kind returns the kind of the innermost type.
	Kind() Kind
	// Description returns the description attached to this layer, if any.
	Description() string
	// Parse validates a value and returns its normalized form.
	Parse(value any) (any, error)
}

// Wrapper is implemented by types that decorate another type.
type Wrapper interface {
	Unwrap() Type
}

type check struct {
	op      string
	limit   float64
	pattern *regexp.Regexp
	refine  func(any) bool
	message string
}

func (c check) msg(fallback string) string {
	if c.message != "" {
		return c.message
	}
	return fallback
}

func firstOr(messages []string, fallback string) string {
	if len(messages) > 0 && messages[0] != "" {
		return messages[0]
	}
	return fallback
}

func formatLimit(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// --- Text ---

// StringType validates text values.
type StringType struct {
	desc   string
	checks []check
}

// String creates a text type.
func String() *StringType { return &StringType{} }

func (t *StringType) Name() string        { return "string" }
func (t *StringType) Kind() Kind          { return KindText }
func (t *StringType) Description() string { return t.desc }

func (t *StringType) with(c check) *StringType {
	next := *t
	next.checks = append(append([]check(nil), t.checks...), c)
	return &next
}

// Min requires at least n characters.
func (t *StringType) Min(n int, message ...string) *StringType {
	return t.with(check{op: "min", limit: float64(n), message: firstOr(message, "")})
}

// Max allows at most n characters.
func (t *StringType) Max(n int, message ...string) *StringType {
	return t.with(check{op: "max", limit: float64(n), message: firstOr(message, "")})
}

// Length requires exactly n characters.
func (t *StringType) Length(n int, message ...string) *StringType {
	return t.with(check{op: "length", limit: float64(n), message: firstOr(message, "")})
}

// NonEmpty is Min(1).
func (t *StringType) NonEmpty(message ...string) *StringType {
	return t.Min(1, message...)
}

// Email requires an e-mail address.
func (t *StringType) Email(message ...string) *StringType {
	return t.with(check{op: "email", message: firstOr(message, "")})
}

// Pattern requires the text to match re.
func (t *StringType) Pattern(re *regexp.Regexp, message ...string) *StringType {
	return t.with(check{op: "pattern", pattern: re, message: firstOr(message, "")})
}

// Refine adds a custom check.
func (t *StringType) Refine(fn func(string) bool, message ...string) *StringType {
	return t.with(check{
		op:      "refine",
		refine:  func(v any) bool { return fn(v.(string)) },
		message: firstOr(message, ""),
	})
}

// Describe attaches a description, used by forms as the presentation type.
func (t *StringType) Describe(desc string) *StringType {
	next := *t
	next.desc = desc
	return &next
}

// Optional allows the field to be absent.
func (t *StringType) Optional() *OptionalType { return Optional(t) }

// Default substitutes v when the field is absent.
func (t *StringType) Default(v string) *DefaultType { return Default(t, v) }

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9_'+\-.]*[A-Za-z0-9_+\-]@([A-Za-z0-9][A-Za-z0-9\-]*\.)+[A-Za-z]{2,}$`)

func isEmail(s string) bool {
	if strings.HasPrefix(s, ".") || strings.Contains(s, "..") {
		return false
	}
	return emailPattern.MatchString(s)
}

func (t *StringType) Parse(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, issue(CodeInvalidType, fmt.Sprintf("Expected string, received %s", parsedType(value)))
	}

	var issues Issues
	length := float64(utf8.RuneCountInString(s))
	for _, c := range t.checks {
		switch c.op {
		case "min":
			if length < c.limit {
				issues = append(issues, Issue{Code: CodeTooSmall, Message: c.msg(
					fmt.Sprintf("String must contain at least %s character(s)", formatLimit(c.limit)))})
			}
		case "max":
			if length > c.limit {
				issues = append(issues, Issue{Code: CodeTooBig, Message: c.msg(
					fmt.Sprintf("String must contain at most %s character(s)", formatLimit(c.limit)))})
			}
		case "length":
			if length < c.limit {
				issues = append(issues, Issue{Code: CodeTooSmall, Message: c.msg(
					fmt.Sprintf("String must contain exactly %s character(s)", formatLimit(c.limit)))})
			} else if length > c.limit {
				issues = append(issues, Issue{Code: CodeTooBig, Message: c.msg(
					fmt.Sprintf("String must contain exactly %s character(s)", formatLimit(c.limit)))})
			}
		case "email":
			if !isEmail(s) {
				issues = append(issues, Issue{Code: CodeInvalidString, Message: c.msg("Invalid email")})
			}
		case "pattern":
			if !c.pattern.MatchString(s) {
				issues = append(issues, Issue{Code: CodeInvalidString, Message: c.msg("Invalid")})
			}
		case "refine":
			if !c.refine(s) {
				issues = append(issues, Issue{Code: CodeCustom, Message: c.msg("Invalid input")})
			}
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return s, nil
}

// --- Number ---

// NumberType validates numeric values.
type NumberType struct {
	desc   string
	checks []check
}

// Number creates a numeric type.
func Number() *NumberType { return &NumberType{} }

// Int creates a numeric type that only accepts whole numbers.
func Int() *NumberType { return Number().Int() }

func (t *NumberType) Name() string {
	if t.IsInt() {
		return "int"
	}
	return "number"
}
func (t *NumberType) Kind() Kind          { return KindNumber }
func (t *NumberType) Description() string { return t.desc }

func (t *NumberType) with(c check) *NumberType {
	next := *t
	next.checks = append(append([]check(nil), t.checks...), c)
	return &next
}

// Int requires a whole number.
func (t *NumberType) Int(message ...string) *NumberType {
	return t.with(check{op: "int", message: firstOr(message, "")})
}

// Min requires a value greater than or equal to n.
func (t *NumberType) Min(n float64, message ...string) *NumberType {
	return t.with(check{op: "min", limit: n, message: firstOr(message, "")})
}

// Max requires a value less than or equal to n.
func (t *NumberType) Max(n float64, message ...string) *NumberType {
	return t.with(check{op: "max", limit: n, message: firstOr(message, "")})
}

// Refine adds a custom check.
func (t *NumberType) Refine(fn func(float64) bool, message ...string) *NumberType {
	return t.with(check{
		op:      "refine",
		refine:  func(v any) bool { return fn(v.(float64)) },
		message: firstOr(message, ""),
	})
}

// Describe attaches a description, used by forms as the presentation type.
func (t *NumberType) Describe(desc string) *NumberType {
	next := *t
	next.desc = desc
	return &next
}

// Optional allows the field to be absent.
func (t *NumberType) Optional() *OptionalType { return Optional(t) }

// Default substitutes v when the field is absent.
func (t *NumberType) Default(v float64) *DefaultType {
	if t.IsInt() && v == math.Trunc(v) {
		return Default(t, int(v))
	}
	return Default(t, v)
}

// IsInt reports whether the type carries an integer check.
func (t *NumberType) IsInt() bool {
	for _, c := range t.checks {
		if c.op == "int" {
			return true
		}
	}
	return false
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// maxSafeInt is the largest integer a float64 holds exactly (2^53 - 1).
// Integer types reject anything beyond it.
const maxSafeInt = 1<<53 - 1

func (t *NumberType) Parse(value any) (any, error) {
	n, ok := toFloat(value)
	if !ok || math.IsNaN(n) {
		return nil, issue(CodeInvalidType, fmt.Sprintf("Expected number, received %s", parsedType(value)))
	}

	var issues Issues
	for _, c := range t.checks {
		switch c.op {
		case "int":
			switch {
			case n != math.Trunc(n) || math.IsInf(n, 0):
				issues = append(issues, Issue{Code: CodeInvalidType, Message: c.msg("Expected integer, received float")})
			case n > maxSafeInt:
				issues = append(issues, Issue{Code: CodeTooBig, Message: c.msg(
					fmt.Sprintf("Number must be less than or equal to %d", int64(maxSafeInt)))})
			case n < -maxSafeInt:
				issues = append(issues, Issue{Code: CodeTooSmall, Message: c.msg(
					fmt.Sprintf("Number must be greater than or equal to %d", int64(-maxSafeInt)))})
			}
		case "min":
			if n < c.limit {
				issues = append(issues, Issue{Code: CodeTooSmall, Message: c.msg(
					fmt.Sprintf("Number must be greater than or equal to %s", formatLimit(c.limit)))})
			}
		case "max":
			if n > c.limit {
				issues = append(issues, Issue{Code: CodeTooBig, Message: c.msg(
					fmt.Sprintf("Number must be less than or equal to %s", formatLimit(c.limit)))})
			}
		case "refine":
			if !c.refine(n) {
				issues = append(issues, Issue{Code: CodeCustom, Message: c.msg("Invalid input")})
			}
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}
	if t.IsInt() {
		return int(n), nil
	}
	return n, nil
}

// --- Boolean ---

// BoolType validates boolean values.
type BoolType struct {
	desc   string
	checks []check
}

// Bool creates a boolean type.
func Bool() *BoolType { return &BoolType{} }

func (t *BoolType) Name() string        { return "boolean" }
func (t *BoolType) Kind() Kind          { return KindBoolean }
func (t *BoolType) Description() string { return t.desc }

// Refine adds a custom check (e.g. terms must be accepted).
func (t *BoolType) Refine(fn func(bool) bool, message ...string) *BoolType {
	next := *t
	next.checks = append(append([]check(nil), t.checks...), check{
		op:      "refine",
		refine:  func(v any) bool { return fn(v.(bool)) },
		message: firstOr(message, ""),
	})
	return &next
}

// Describe attaches a description, used by forms as the presentation type.
func (t *BoolType) Describe(desc string) *BoolType {
	next := *t
	next.desc = desc
	return &next
}

// Optional allows the field to be absent.
func (t *BoolType) Optional() *OptionalType { return Optional(t) }

// Default substitutes v when the field is absent.
func (t *BoolType) Default(v bool) *DefaultType { return Default(t, v) }

func (t *BoolType) Parse(value any) (any, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, issue(CodeInvalidType, fmt.Sprintf("Expected boolean, received %s", parsedType(value)))
	}
	for _, c := range t.checks {
		if c.op == "refine" && !c.refine(b) {
			return nil, issue(CodeCustom, c.msg("Invalid input"))
		}
	}
	return b, nil
}

// --- Wrappers ---

// OptionalType lets a field be absent; absent optional fields are omitted from results.
type OptionalType struct {
	inner Type
	desc  string
}

// Optional wraps t so the field may be absent.
func Optional(t Type) *OptionalType { return &OptionalType{inner: t} }

func (t *OptionalType) Name() string                 { return "optional" }
func (t *OptionalType) Kind() Kind                   { return t.inner.Kind() }
func (t *OptionalType) Description() string          { return t.desc }
func (t *OptionalType) Unwrap() Type                 { return t.inner }
func (t *OptionalType) Parse(value any) (any, error) { return t.inner.Parse(value) }

// Describe attaches a description to the wrapper.
func (t *OptionalType) Describe(desc string) *OptionalType {
	next := *t
	next.desc = desc
	return &next
}

// Default substitutes v when the field is absent.
func (t *OptionalType) Default(v any) *DefaultType { return Default(t, v) }

// DefaultType substitutes a value when the field is absent.
type DefaultType struct {
	inner Type
	value any
	desc  string
}

// Default wraps t so that an absent field takes the value v.
func Default(t Type, v any) *DefaultType { return &DefaultType{inner: t, value: v} }

func (t *DefaultType) Name() string                 { return "default" }
func (t *DefaultType) Kind() Kind                   { return t.inner.Kind() }
func (t *DefaultType) Description() string          { return t.desc }
func (t *DefaultType) Unwrap() Type                 { return t.inner }
func (t *DefaultType) Value() any                   { return t.value }
func (t *DefaultType) Parse(value any) (any, error) { return t.inner.Parse(value) }

// Describe attaches a description to the wrapper.
func (t *DefaultType) Describe(desc string) *DefaultType {
	next := *t
	next.desc = desc
	return &next
}

// --- Introspection helpers ---

// Innermost strips every wrapper layer from t.
func Innermost(t Type) Type {
	for {
		w, ok := t.(Wrapper)
		if !ok {
			return t
		}
		t = w.Unwrap()
	}
}

// DefaultOf returns the declared default from the outermost default layer.
func DefaultOf(t Type) (any, bool) {
	for t != nil {
		if d, ok := t.(*DefaultType); ok {
			return d.value, true
		}
		w, ok := t.(Wrapper)
		if !ok {
			break
		}
		t = w.Unwrap()
	}
	return nil, false
}

// DescriptionOf returns the outermost non-empty description.
func DescriptionOf(t Type) string {
	for t != nil {
		if d := t.Description(); d != "" {
			return d
		}
		w, ok := t.(Wrapper)
		if !ok {
			break
		}
		t = w.Unwrap()
	}
	return ""
}

// IsOptional reports whether an absent field is accepted without a default.
func IsOptional(t Type) bool {
	for t != nil {
		switch t.(type) {
		case *OptionalType:
			return true
		case *DefaultType:
			return false
		}
		w, ok := t.(Wrapper)
		if !ok {
			break
		}
		t = w.Unwrap()
	}
	return false
}

// parsedType names the runtime type of value the way messages report it.
func parsedType(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float32:
		if math.IsNaN(float64(v)) {
			return "nan"
		}
		return "number"
	case float64:
		if math.IsNaN(v) {
			return "nan"
		}
		return "number"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// ParseType converts a type name to a Type.
// Supports: "string"/"text", "number"/"float", "int"/"integer", "bool"/"boolean".
func ParseType(typeStr string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(typeStr)) {
	case "string", "text":
		return String(), nil
	case "number", "float":
		return Number(), nil
	case "int", "integer":
		return Int(), nil
	case "bool", "boolean":
		return Bool(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}
