package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/formstate/pkg/adapters/memory"
	"github.com/aretw0/formstate/pkg/adapters/openapi"
	"github.com/aretw0/formstate/pkg/schema"
	"gopkg.in/yaml.v3"
)

var schemaExtensions = []string{".yaml", ".yml", ".json"}

// LoadSchema reads a schema file. OpenAPI documents are recognized by their
// "openapi" key; component selects the schema inside them and may be empty
// when the document has exactly one object component.
func LoadSchema(ctx context.Context, path, component string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	if !isOpenAPI(data) {
		if component != "" {
			return nil, fmt.Errorf("%s: --component only applies to OpenAPI documents", path)
		}
		s, err := schema.ParseDefinition(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if s.Name() == "" {
			s = s.Named(baseName(path))
		}
		return s, nil
	}

	loader, err := openapi.Load(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if component == "" {
		names, _ := loader.ListSchemas()
		if len(names) != 1 {
			return nil, fmt.Errorf("%s: document has %d object components %v, pick one with --component", path, len(names), names)
		}
		component = names[0]
	}
	return loader.GetSchema(component)
}

// LoadDir registers every schema file in dir. Plain schema files are named
// after their "name" key (or file name); OpenAPI documents contribute each
// object component under its component name.
func LoadDir(ctx context.Context, dir string) (*memory.Loader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	loader := memory.NewLoader(nil)
	seen := make(map[string]string)
	register := func(name string, s *schema.Schema, path string) error {
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("schema %q defined in both %s and %s", name, prev, path)
		}
		seen[name] = path
		loader.Register(name, s)
		return nil
	}

	for _, e := range entries {
		if e.IsDir() || !slices.Contains(schemaExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		if isOpenAPI(data) {
			doc, err := openapi.Load(ctx, data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			names, _ := doc.ListSchemas()
			for _, name := range names {
				s, _ := doc.GetSchema(name)
				if err := register(name, s, path); err != nil {
					return nil, err
				}
			}
			continue
		}

		s, err := schema.ParseDefinition(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		name := s.Name()
		if name == "" {
			name = baseName(path)
		}
		if err := register(name, s.Named(name), path); err != nil {
			return nil, err
		}
	}
	return loader, nil
}

func isOpenAPI(data []byte) bool {
	var probe struct {
		OpenAPI string `yaml:"openapi"`
	}
	return yaml.Unmarshal(data, &probe) == nil && probe.OpenAPI != ""
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// LoadValues reads a YAML or JSON object of field values.
func LoadValues(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%s: failed to parse values: %w", path, err)
	}
	return values, nil
}
