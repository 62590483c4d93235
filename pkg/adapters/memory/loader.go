package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/formstate/pkg/ports"
	"github.com/aretw0/formstate/pkg/schema"
)

// Loader implements ports.SchemaLoader using an in-memory map.
type Loader struct {
	mu      sync.RWMutex
	schemas map[string]*schema.Schema
}

// NewLoader creates a loader holding the given named schemas.
func NewLoader(schemas map[string]*schema.Schema) *Loader {
	l := &Loader{schemas: make(map[string]*schema.Schema, len(schemas))}
	for name, s := range schemas {
		l.schemas[name] = s
	}
	return l
}

// NewFromSchemas creates a loader keyed by each schema's Name.
func NewFromSchemas(schemas ...*schema.Schema) (*Loader, error) {
	l := &Loader{schemas: make(map[string]*schema.Schema, len(schemas))}
	for _, s := range schemas {
		if s.Name() == "" {
			return nil, fmt.Errorf("schema without name (fields %v)", s.Names())
		}
		if _, exists := l.schemas[s.Name()]; exists {
			return nil, fmt.Errorf("duplicate schema %q", s.Name())
		}
		l.schemas[s.Name()] = s
	}
	return l, nil
}

// Register adds or replaces a schema.
func (l *Loader) Register(name string, s *schema.Schema) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.schemas[name] = s
}

// GetSchema returns the schema registered under name.
func (l *Loader) GetSchema(name string) (*schema.Schema, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrSchemaNotFound, name)
	}
	return s, nil
}

// ListSchemas returns the registered names, sorted.
func (l *Loader) ListSchemas() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.schemas))
	for name := range l.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
