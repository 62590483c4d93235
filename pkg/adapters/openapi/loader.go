// Package openapi imports form schemas from the object components of an OpenAPI 3 document.
package openapi

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/aretw0/formstate/pkg/ports"
	"github.com/aretw0/formstate/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// ExtPresentation overrides the presentation type of a property.
const ExtPresentation = "x-presentation"

// Loader implements ports.SchemaLoader over components.schemas.
// Every component of type object becomes a schema of the same name.
type Loader struct {
	schemas map[string]*schema.Schema
}

var _ ports.SchemaLoader = (*Loader)(nil)

// Load parses a YAML or JSON OpenAPI document.
func Load(ctx context.Context, data []byte) (*Loader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("openapi: document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}

	order, err := propertyOrder(data)
	if err != nil {
		return nil, err
	}

	l := &Loader{schemas: make(map[string]*schema.Schema)}
	if doc.Components == nil {
		return l, nil
	}
	for name, ref := range doc.Components.Schemas {
		if ref == nil || ref.Value == nil || !ref.Value.Type.Is(openapi3.TypeObject) {
			continue
		}
		s, err := convert(name, ref.Value, order[name])
		if err != nil {
			return nil, fmt.Errorf("openapi: component %s: %w", name, err)
		}
		l.schemas[name] = s
	}
	return l, nil
}

// LoadFile reads an OpenAPI document from path.
func LoadFile(ctx context.Context, path string) (*Loader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	return Load(ctx, data)
}

// GetSchema returns the schema built from the named component.
func (l *Loader) GetSchema(name string) (*schema.Schema, error) {
	s, ok := l.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrSchemaNotFound, name)
	}
	return s, nil
}

// ListSchemas returns the imported component names, sorted.
func (l *Loader) ListSchemas() ([]string, error) {
	names := make([]string, 0, len(l.schemas))
	for name := range l.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func convert(name string, src *openapi3.Schema, order []string) (*schema.Schema, error) {
	names := make([]string, 0, len(src.Properties))
	for prop := range src.Properties {
		names = append(names, prop)
	}
	// Document order first; anything the node walk missed goes last, sorted.
	sort.Slice(names, func(i, j int) bool {
		oi, oj := slices.Index(order, names[i]), slices.Index(order, names[j])
		switch {
		case oi >= 0 && oj >= 0:
			return oi < oj
		case oi >= 0:
			return true
		case oj >= 0:
			return false
		default:
			return names[i] < names[j]
		}
	})

	def := schema.Definition{Name: name}
	for _, prop := range names {
		ref := src.Properties[prop]
		if ref == nil || ref.Value == nil {
			return nil, fmt.Errorf("property %s: unresolved reference", prop)
		}
		field, err := fieldDefinition(prop, ref.Value)
		if err != nil {
			return nil, err
		}
		field.Optional = !slices.Contains(src.Required, prop)
		def.Fields = append(def.Fields, field)
	}
	return def.Build()
}

func fieldDefinition(name string, p *openapi3.Schema) (schema.FieldDefinition, error) {
	f := schema.FieldDefinition{
		Name:    name,
		Default: p.Default,
		Pattern: p.Pattern,
	}

	switch {
	case p.Type.Is(openapi3.TypeString):
		f.Type = "string"
		if p.MinLength > 0 {
			minLen := float64(p.MinLength)
			f.Min = &minLen
		}
		if p.MaxLength != nil {
			maxLen := float64(*p.MaxLength)
			f.Max = &maxLen
		}
		switch p.Format {
		case "email":
			f.Email = true
		case "password":
			f.Description = "password"
		}
	case p.Type.Is(openapi3.TypeInteger):
		f.Type = "integer"
		f.Min, f.Max = p.Min, p.Max
	case p.Type.Is(openapi3.TypeNumber):
		f.Type = "number"
		f.Min, f.Max = p.Min, p.Max
	case p.Type.Is(openapi3.TypeBoolean):
		f.Type = "boolean"
	default:
		return f, fmt.Errorf("property %s: unsupported type %v", name, p.Type)
	}

	if v, ok := p.Extensions[ExtPresentation].(string); ok && v != "" {
		f.Description = v
	}
	return f, nil
}

// propertyOrder recovers the declaration order of each component's
// properties, which openapi3.Schemas (a map) does not keep.
func propertyOrder(data []byte) (map[string][]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("openapi: parse document: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return map[string][]string{}, nil
	}

	order := make(map[string][]string)
	components := child(child(root.Content[0], "components"), "schemas")
	if components == nil || components.Kind != yaml.MappingNode {
		return order, nil
	}
	for i := 0; i+1 < len(components.Content); i += 2 {
		props := child(components.Content[i+1], "properties")
		if props == nil || props.Kind != yaml.MappingNode {
			continue
		}
		var keys []string
		for j := 0; j+1 < len(props.Content); j += 2 {
			keys = append(keys, props.Content[j].Value)
		}
		order[components.Content[i].Value] = keys
	}
	return order, nil
}

func child(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
