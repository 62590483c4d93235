package schema

import (
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Definition is the file representation of a Schema.
//
//	name: basic-info
//	fields:
//	  - name: age
//	    type: int
//	    min: 18
//	    max: 99
//	    default: 18
//	  - name: phone
//	    type: string
//	    min: 10
//	    description: tel
type Definition struct {
	Name   string            `yaml:"name,omitempty" json:"name,omitempty"`
	Fields []FieldDefinition `yaml:"fields" json:"fields"`
}

// FieldDefinition describes one field. Message, when set, replaces the
// message of every check on the field.
type FieldDefinition struct {
	Name        string   `yaml:"name" json:"name"`
	Type        string   `yaml:"type" json:"type"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Optional    bool     `yaml:"optional,omitempty" json:"optional,omitempty"`
	Default     any      `yaml:"default,omitempty" json:"default,omitempty"`
	Min         *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max         *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Length      *int     `yaml:"length,omitempty" json:"length,omitempty"`
	Email       bool     `yaml:"email,omitempty" json:"email,omitempty"`
	Pattern     string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Message     string   `yaml:"message,omitempty" json:"message,omitempty"`
}

// Build turns the definition into a Schema.
func (d Definition) Build() (*Schema, error) {
	if len(d.Fields) == 0 {
		return nil, fmt.Errorf("schema %q: no fields", d.Name)
	}
	props := make([]Property, 0, len(d.Fields))
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %q: field without name", d.Name)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("schema %q: duplicate field %s", d.Name, f.Name)
		}
		seen[f.Name] = true

		t, err := f.build()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		props = append(props, Field(f.Name, t))
	}
	return Object(props...).Named(d.Name), nil
}

func (f FieldDefinition) build() (Type, error) {
	base, err := ParseType(f.Type)
	if err != nil {
		return nil, err
	}

	var msg []string
	if f.Message != "" {
		msg = []string{f.Message}
	}

	var t Type
	switch leaf := base.(type) {
	case *StringType:
		if f.Min != nil {
			leaf = leaf.Min(int(*f.Min), msg...)
		}
		if f.Max != nil {
			leaf = leaf.Max(int(*f.Max), msg...)
		}
		if f.Length != nil {
			leaf = leaf.Length(*f.Length, msg...)
		}
		if f.Email {
			leaf = leaf.Email(msg...)
		}
		if f.Pattern != "" {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern: %w", err)
			}
			leaf = leaf.Pattern(re, msg...)
		}
		t = leaf
	case *NumberType:
		if f.Message != "" && leaf.IsInt() {
			leaf = Number().Int(f.Message)
		}
		if f.Min != nil {
			leaf = leaf.Min(*f.Min, msg...)
		}
		if f.Max != nil {
			leaf = leaf.Max(*f.Max, msg...)
		}
		t = leaf
	default:
		if f.Min != nil || f.Max != nil || f.Email || f.Pattern != "" || f.Length != nil {
			return nil, fmt.Errorf("constraints are not supported on %s", base.Name())
		}
		t = base
	}

	if f.Default != nil {
		if _, err := t.Parse(f.Default); err != nil {
			return nil, fmt.Errorf("invalid default: %w", err)
		}
	}
	// Default goes outermost so an absent field takes it even when optional.
	if f.Optional {
		t = Optional(t)
	}
	if f.Default != nil {
		t = Default(t, f.Default)
	}
	if f.Description != "" {
		t = describe(t, f.Description)
	}
	return t, nil
}

func describe(t Type, desc string) Type {
	switch v := t.(type) {
	case *StringType:
		return v.Describe(desc)
	case *NumberType:
		return v.Describe(desc)
	case *BoolType:
		return v.Describe(desc)
	case *OptionalType:
		return v.Describe(desc)
	case *DefaultType:
		return v.Describe(desc)
	default:
		return t
	}
}

// Definition returns the file representation of s.
// Custom refinements have no file form and are left out.
func (s *Schema) Definition() Definition {
	d := Definition{Name: s.name, Fields: make([]FieldDefinition, 0, len(s.props))}
	for _, p := range s.props {
		d.Fields = append(d.Fields, definitionOf(p.Name, p.Type))
	}
	return d
}

func definitionOf(name string, t Type) FieldDefinition {
	f := FieldDefinition{
		Name:        name,
		Type:        Innermost(t).Name(),
		Description: DescriptionOf(t),
		Optional:    IsOptional(t),
	}
	if v, ok := DefaultOf(t); ok {
		f.Default = v
	}

	var checks []check
	switch leaf := Innermost(t).(type) {
	case *StringType:
		checks = leaf.checks
	case *NumberType:
		checks = leaf.checks
	}
	for _, c := range checks {
		limit := c.limit
		switch c.op {
		case "min":
			f.Min = &limit
		case "max":
			f.Max = &limit
		case "length":
			n := int(limit)
			f.Length = &n
		case "email":
			f.Email = true
		case "pattern":
			f.Pattern = c.pattern.String()
		}
		if c.message != "" && f.Message == "" {
			f.Message = c.message
		}
	}
	return f
}

// ParseDefinition reads a YAML (or JSON) schema document.
func ParseDefinition(data []byte) (*Schema, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return d.Build()
}

// LoadFile reads a schema document from path.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	s, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// MarshalJSON serializes the schema as its Definition.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.Definition())
}

// UnmarshalJSON deserializes the schema from a Definition.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}
	var d Definition
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	parsed, err := d.Build()
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// MarshalYAML serializes the schema as its Definition.
func (s *Schema) MarshalYAML() (any, error) {
	return s.Definition(), nil
}

// UnmarshalYAML deserializes the schema from a Definition.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	var d Definition
	if err := node.Decode(&d); err != nil {
		return err
	}
	parsed, err := d.Build()
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}
