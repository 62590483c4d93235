package schema

import (
	"math"
	"regexp"
	"testing"
)

func messages(err error) []string {
	issues, ok := AsIssues(err)
	if !ok {
		return nil
	}
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Message
	}
	return out
}

func TestStringType(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		value   any
		wantErr string
	}{
		{"plain", String(), "hello", ""},
		{"wrong type", String(), 42, "Expected string, received number"},
		{"bool received", String(), true, "Expected string, received boolean"},
		{"min ok", String().Min(1), "a", ""},
		{"min fails", String().Min(1), "", "String must contain at least 1 character(s)"},
		{"min counts runes", String().Min(3), "héé", ""},
		{"max fails", String().Max(2), "abc", "String must contain at most 2 character(s)"},
		{"length fails", String().Length(3), "ab", "String must contain exactly 3 character(s)"},
		{"email ok", String().Email(), "ada@example.com", ""},
		{"email fails", String().Email(), "ada@", "Invalid email"},
		{"email double dot", String().Email(), "ada..l@example.com", "Invalid email"},
		{"pattern fails", String().Pattern(regexp.MustCompile(`^\d+$`)), "12a", "Invalid"},
		{"custom message", String().Min(10, "Phone number is too short"), "123", "Phone number is too short"},
		{"refine", String().Refine(func(s string) bool { return s != "admin" }, "Reserved"), "admin", "Reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.typ.Parse(tt.value)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Parse(%v) error = %v, want nil", tt.value, err)
				}
				return
			}
			got := messages(err)
			if len(got) == 0 || got[0] != tt.wantErr {
				t.Errorf("Parse(%v) messages = %v, want %q", tt.value, got, tt.wantErr)
			}
		})
	}
}

func TestNumberType(t *testing.T) {
	tests := []struct {
		name    string
		typ     *NumberType
		value   any
		want    any
		wantErr string
	}{
		{"int value", Number(), 30, 30.0, ""},
		{"float value", Number(), 2.5, 2.5, ""},
		{"int type output", Int(), 30.0, 30, ""},
		{"not integer", Int(), 2.5, nil, "Expected integer, received float"},
		{"string received", Number(), "30", nil, "Expected number, received string"},
		{"nan received", Number(), math.NaN(), nil, "Expected number, received nan"},
		{"min fails", Int().Min(18), 10, nil, "Number must be greater than or equal to 18"},
		{"max fails", Int().Max(99), 120, nil, "Number must be less than or equal to 99"},
		{"beyond safe integer", Int().Min(18), 1e23, nil, "Number must be less than or equal to 9007199254740991"},
		{"below safe integer", Int(), -1e23, nil, "Number must be greater than or equal to -9007199254740991"},
		{"largest safe integer", Int(), float64(1<<53 - 1), 9007199254740991, ""},
		{"float type has no safe bound", Number(), 1e23, 1e23, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.typ.Parse(tt.value)
			if tt.wantErr != "" {
				msgs := messages(err)
				if len(msgs) == 0 || msgs[0] != tt.wantErr {
					t.Errorf("Parse(%v) messages = %v, want %q", tt.value, msgs, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%v) error = %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%v) = %#v, want %#v", tt.value, got, tt.want)
			}
		})
	}
}

func TestBoolType(t *testing.T) {
	if _, err := Bool().Parse(false); err != nil {
		t.Errorf("Bool().Parse(false) error = %v", err)
	}
	msgs := messages(func() error { _, err := Bool().Parse("on"); return err }())
	if len(msgs) != 1 || msgs[0] != "Expected boolean, received string" {
		t.Errorf("unexpected messages %v", msgs)
	}
	accepted := Bool().Refine(func(b bool) bool { return b }, "You must accept the terms")
	msgs = messages(func() error { _, err := accepted.Parse(false); return err }())
	if len(msgs) != 1 || msgs[0] != "You must accept the terms" {
		t.Errorf("unexpected messages %v", msgs)
	}
}

func TestBuildersDoNotShareChecks(t *testing.T) {
	base := String()
	strict := base.Min(5)

	if _, err := base.Parse(""); err != nil {
		t.Errorf("deriving a type must not change the original: %v", err)
	}
	if _, err := strict.Parse(""); err == nil {
		t.Error("derived type should enforce its check")
	}
}

func TestIntrospectionHelpers(t *testing.T) {
	day := String().Default("2024-05-01").Describe("date")
	if got := Innermost(day).Kind(); got != KindText {
		t.Errorf("Innermost kind = %v, want %v", got, KindText)
	}
	if v, ok := DefaultOf(day); !ok || v != "2024-05-01" {
		t.Errorf("DefaultOf = %v, %v", v, ok)
	}
	if got := DescriptionOf(day); got != "date" {
		t.Errorf("DescriptionOf = %q, want date", got)
	}

	inner := String().Describe("email").Optional()
	if got := DescriptionOf(inner); got != "email" {
		t.Errorf("DescriptionOf inner = %q, want email", got)
	}
	outer := String().Describe("inner").Optional().Describe("outer")
	if got := DescriptionOf(outer); got != "outer" {
		t.Errorf("DescriptionOf outer = %q, want outer", got)
	}

	if !IsOptional(inner) {
		t.Error("optional type should report IsOptional")
	}
	if IsOptional(day) {
		t.Error("default type is not optional")
	}
	if got := Int().Min(18).Default(18).Kind(); got != KindNumber {
		t.Errorf("wrapper kind = %v, want %v", got, KindNumber)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantKind Kind
		wantName string
		wantErr  bool
	}{
		{"string", KindText, "string", false},
		{"text", KindText, "string", false},
		{"number", KindNumber, "number", false},
		{"int", KindNumber, "int", false},
		{"integer", KindNumber, "int", false},
		{"bool", KindBoolean, "boolean", false},
		{"boolean", KindBoolean, "boolean", false},
		{"date", KindUnknown, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseType(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseType(%q) error = %v", tt.input, err)
			}
			if got.Kind() != tt.wantKind || got.Name() != tt.wantName {
				t.Errorf("ParseType(%q) = %s/%v, want %s/%v", tt.input, got.Name(), got.Kind(), tt.wantName, tt.wantKind)
			}
		})
	}
}
