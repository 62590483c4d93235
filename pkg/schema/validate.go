package schema

import (
	"fmt"
	"slices"
)

// Property is one named field of a Schema.
type Property struct {
	Name string
	Type Type
}

// Field declares a named field.
func Field(name string, t Type) Property {
	return Property{Name: name, Type: t}
}

type refinement struct {
	check   func(Result) bool
	message string
	path    []string
}

// Schema is an ordered set of named fields plus object-level refinements.
// Schemas are immutable: every derivation returns a new Schema.
type Schema struct {
	name        string
	props       []Property
	refinements []refinement
}

// Object creates a schema from fields in declaration order.
// A repeated name replaces the earlier declaration in place.
func Object(props ...Property) *Schema {
	s := &Schema{}
	for _, p := range props {
		s.put(p)
	}
	return s
}

func (s *Schema) put(p Property) {
	for i, existing := range s.props {
		if existing.Name == p.Name {
			s.props[i] = p
			return
		}
	}
	s.props = append(s.props, p)
}

func (s *Schema) clone() *Schema {
	return &Schema{
		name:        s.name,
		props:       slices.Clone(s.props),
		refinements: slices.Clone(s.refinements),
	}
}

// Name returns the schema name (empty unless set with Named or loaded from a file).
func (s *Schema) Name() string { return s.name }

// Named returns a copy of s carrying a name.
func (s *Schema) Named(name string) *Schema {
	next := s.clone()
	next.name = name
	return next
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.props) }

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []Property { return slices.Clone(s.props) }

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.props))
	for i, p := range s.props {
		names[i] = p.Name
	}
	return names
}

// Lookup returns the type declared for name.
func (s *Schema) Lookup(name string) (Type, bool) {
	for _, p := range s.props {
		if p.Name == name {
			return p.Type, true
		}
	}
	return nil, false
}

// Merge returns a schema with the fields of s followed by the fields of others.
// Later declarations of the same name win but keep the first position.
func (s *Schema) Merge(others ...*Schema) *Schema {
	next := s.clone()
	for _, o := range others {
		for _, p := range o.props {
			next.put(p)
		}
		next.refinements = append(next.refinements, o.refinements...)
	}
	return next
}

// Pick returns a schema with only the named fields, in the order of s.
// Refinements survive only when they point at a kept field.
func (s *Schema) Pick(names ...string) *Schema {
	keep := func(name string) bool { return slices.Contains(names, name) }
	return s.filter(keep)
}

// Omit returns a schema without the named fields.
func (s *Schema) Omit(names ...string) *Schema {
	keep := func(name string) bool { return !slices.Contains(names, name) }
	return s.filter(keep)
}

func (s *Schema) filter(keep func(string) bool) *Schema {
	next := &Schema{name: s.name}
	for _, p := range s.props {
		if keep(p.Name) {
			next.props = append(next.props, p)
		}
	}
	for _, r := range s.refinements {
		if len(r.path) > 0 && keep(r.path[0]) {
			next.refinements = append(next.refinements, r)
		}
	}
	return next
}

// Refine adds an object-level check that runs once every field is valid.
// path names the field that receives the message; without it the message is form-wide.
func (s *Schema) Refine(check func(Result) bool, message string, path ...string) *Schema {
	if message == "" {
		message = "Invalid input"
	}
	next := s.clone()
	next.refinements = append(next.refinements, refinement{
		check:   check,
		message: message,
		path:    slices.Clone(path),
	})
	return next
}

// Parse validates data against the schema.
// Unknown keys are stripped, absent fields take their defaults and absent
// optional fields are omitted. Nil values count as absent.
// On failure the error is Issues.
func (s *Schema) Parse(data map[string]any) (Result, error) {
	out := make(Result, len(s.props))
	var issues Issues

	for _, p := range s.props {
		if p.Type == nil {
			return nil, fmt.Errorf("field %s: type is nil", p.Name)
		}
		value, present := data[p.Name]
		if value == nil {
			present = false
		}

		parsed, keep, err := parseField(p.Type, value, present)
		if err != nil {
			fieldIssues, ok := AsIssues(err)
			if !ok {
				return nil, fmt.Errorf("field %s: %w", p.Name, err)
			}
			issues = append(issues, fieldIssues.prefixed(p.Name)...)
			continue
		}
		if keep {
			out[p.Name] = parsed
		}
	}

	if len(issues) > 0 {
		return nil, issues
	}

	for _, r := range s.refinements {
		if !r.check(out) {
			issues = append(issues, Issue{Path: slices.Clone(r.path), Code: CodeCustom, Message: r.message})
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}

	return out, nil
}

func parseField(t Type, value any, present bool) (any, bool, error) {
	switch w := t.(type) {
	case *DefaultType:
		if !present {
			return parseField(w.inner, w.value, true)
		}
		return parseField(w.inner, value, true)
	case *OptionalType:
		if !present {
			return nil, false, nil
		}
		return parseField(w.inner, value, true)
	}

	if !present {
		return nil, false, Issues{{Code: CodeInvalidType, Message: "Required"}}
	}
	if w, ok := t.(Wrapper); ok {
		return parseField(w.Unwrap(), value, true)
	}

	parsed, err := t.Parse(value)
	if err != nil {
		return nil, false, err
	}
	return parsed, true, nil
}

// Validate checks if data conforms to the schema.
// Returns nil or the failure reported by Parse.
func Validate(s *Schema, data map[string]any) error {
	if s == nil || s.Len() == 0 {
		// No schema = no validation
		return nil
	}
	_, err := s.Parse(data)
	return err
}
