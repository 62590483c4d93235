package runtime

import (
	"strconv"
	"strings"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/schema"
)

// Coercion is the initial presentation type and value for a field kind.
type Coercion struct {
	Type  domain.PresentationType
	Value domain.Value
}

// CoercionTable maps each field kind to its initial rendering and value.
// Kinds missing from the table fall back to text.
var CoercionTable = map[schema.Kind]Coercion{
	schema.KindText:    {Type: domain.TypeText, Value: domain.Text("")},
	schema.KindNumber:  {Type: domain.TypeNumber, Value: domain.Number(0)},
	schema.KindBoolean: {Type: domain.TypeCheckbox, Value: domain.Unanswered()},
}

// Coerce looks up the coercion for kind.
func Coerce(kind schema.Kind) Coercion {
	if c, ok := CoercionTable[kind]; ok {
		return c
	}
	return CoercionTable[schema.KindText]
}

// ParseInt reads a leading integer from raw: optional whitespace, an optional
// sign and decimal digits; anything after the digits is ignored.
// Input with no leading digits yields an invalid number that keeps raw.
func ParseInt(raw string) domain.Value {
	s := strings.TrimLeft(raw, " \t\n\r\f\v")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return domain.InvalidNumber(raw)
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return domain.InvalidNumber(raw)
	}
	return domain.Number(n)
}

// ParseCheckbox reads a checkbox input. It accepts the strconv.ParseBool
// spellings plus "on"/"off"; anything else is kept as text.
func ParseCheckbox(raw string) domain.Value {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "yes":
		return domain.Bool(true)
	case "off", "no":
		return domain.Bool(false)
	case "":
		return domain.Unanswered()
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
		return domain.Bool(b)
	}
	return domain.Text(raw)
}

// CoerceInput converts raw input for a field rendered as ptype.
func CoerceInput(ptype domain.PresentationType, raw string) domain.Value {
	switch ptype {
	case domain.TypeNumber:
		return ParseInt(raw)
	case domain.TypeCheckbox:
		return ParseCheckbox(raw)
	default:
		return domain.Text(raw)
	}
}
