package runtime

import (
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/schema"
)

// Introspect derives the initial form state from a schema.
// For each field, in declaration order: the innermost kind selects the
// coercion, a declared default replaces the coerced value and a description
// replaces the presentation type. The label is the field name.
func Introspect(s *schema.Schema) domain.FormState {
	if s == nil {
		return domain.NewFormState()
	}
	fields := make([]domain.NamedField, 0, s.Len())
	for _, p := range s.Fields() {
		fields = append(fields, domain.NamedField{
			Name:       p.Name,
			FieldState: introspectField(p.Name, p.Type),
		})
	}
	return domain.NewFormState(fields...)
}

func introspectField(name string, t schema.Type) domain.FieldState {
	c := Coerce(schema.Innermost(t).Kind())

	value := c.Value
	if def, ok := schema.DefaultOf(t); ok {
		value = domain.ValueOf(def)
	}

	ptype := c.Type
	if desc := schema.DescriptionOf(t); desc != "" {
		ptype = domain.PresentationType(desc)
	}

	return domain.FieldState{
		Value:  value,
		Config: domain.FieldConfig{Type: ptype, Label: name},
	}
}
