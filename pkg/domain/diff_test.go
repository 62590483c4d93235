package domain

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func field(v Value, typ PresentationType, label string) FieldState {
	return FieldState{Value: v, Config: FieldConfig{Type: typ, Label: label}}
}

func TestDiff(t *testing.T) {
	base := NewFormState(
		NamedField{Name: "name", FieldState: field(Text(""), TypeText, "name")},
		NamedField{Name: "age", FieldState: field(Number(0), TypeNumber, "age")},
	)

	tests := []struct {
		name        string
		old         *FormState
		new         FormState
		wantNil     bool
		wantFields  []string
		wantRemoved []string
		wantOrder   bool
	}{
		{
			name:       "Initial Load (Old is Nil)",
			old:        nil,
			new:        base,
			wantFields: []string{"name", "age"},
			wantOrder:  true,
		},
		{
			name:    "No Changes",
			old:     &base,
			new:     base,
			wantNil: true,
		},
		{
			name:       "Value Modified",
			old:        &base,
			new:        base.With("name", field(Text("Ada"), TypeText, "name")),
			wantFields: []string{"name"},
		},
		{
			name:       "Error Set",
			old:        &base,
			new:        base.With("age", FieldState{Value: Number(0), Config: FieldConfig{Type: TypeNumber, Label: "age"}, Error: "Required"}),
			wantFields: []string{"age"},
		},
		{
			name:        "Field Removed",
			old:         &base,
			new:         NewFormState(NamedField{Name: "name", FieldState: field(Text(""), TypeText, "name")}),
			wantRemoved: []string{"age"},
			wantOrder:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Diff() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Diff() = nil, want a diff")
			}
			if len(got.Fields) != len(tt.wantFields) {
				t.Errorf("Diff().Fields = %v, want keys %v", got.Fields, tt.wantFields)
			}
			for _, name := range tt.wantFields {
				if _, ok := got.Fields[name]; !ok {
					t.Errorf("Diff().Fields missing %q", name)
				}
			}
			if strings.Join(got.Removed, ",") != strings.Join(tt.wantRemoved, ",") {
				t.Errorf("Diff().Removed = %v, want %v", got.Removed, tt.wantRemoved)
			}
			if (got.Order != nil) != tt.wantOrder {
				t.Errorf("Diff().Order = %v, wantOrder %v", got.Order, tt.wantOrder)
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Unchanged Fields Omitted", func(t *testing.T) {
		s1 := NewFormState(
			NamedField{Name: "a", FieldState: field(Text("x"), TypeText, "a")},
			NamedField{Name: "b", FieldState: field(Text("y"), TypeText, "b")},
		)
		s2 := s1.With("b", field(Text("z"), TypeText, "b"))

		diff := Diff(&s1, s2)
		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}

		bytes, err := json.Marshal(diff)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(bytes), `"a"`) {
			t.Errorf("JSON should not contain unchanged field 'a', got: %s", string(bytes))
		}
		if strings.Contains(string(bytes), `"order"`) {
			t.Errorf("JSON should not contain 'order' when order is unchanged, got: %s", string(bytes))
		}
	})
}
