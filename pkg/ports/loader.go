package ports

import (
	"errors"

	"github.com/aretw0/formstate/pkg/schema"
)

// ErrSchemaNotFound is returned when a loader has no schema under the requested name.
var ErrSchemaNotFound = errors.New("schema not found")

// SchemaLoader resolves form schemas by name.
type SchemaLoader interface {
	// GetSchema returns the schema registered under name.
	// Returns an error wrapping ErrSchemaNotFound if there is none.
	GetSchema(name string) (*schema.Schema, error)

	// ListSchemas returns the available schema names, sorted.
	ListSchemas() ([]string, error)
}
