package memory_test

import (
	"testing"

	"github.com/aretw0/formstate/pkg/adapters/memory"
	"github.com/aretw0/formstate/pkg/ports"
	"github.com/aretw0/formstate/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader(t *testing.T) {
	login := schema.Object(schema.Field("email", schema.String().Email())).Named("login")
	booking := schema.Object(schema.Field("title", schema.String().Min(1))).Named("appointment")

	loader, err := memory.NewFromSchemas(login, booking)
	require.NoError(t, err)

	names, err := loader.ListSchemas()
	require.NoError(t, err)
	assert.Equal(t, []string{"appointment", "login"}, names)

	got, err := loader.GetSchema("login")
	require.NoError(t, err)
	assert.Equal(t, []string{"email"}, got.Names())

	_, err = loader.GetSchema("missing")
	assert.ErrorIs(t, err, ports.ErrSchemaNotFound)

	loader.Register("signup", login)
	names, _ = loader.ListSchemas()
	assert.Contains(t, names, "signup")
}

func TestNewFromSchemas_Errors(t *testing.T) {
	unnamed := schema.Object(schema.Field("a", schema.String()))
	_, err := memory.NewFromSchemas(unnamed)
	assert.Error(t, err)

	named := unnamed.Named("a")
	_, err = memory.NewFromSchemas(named, named)
	assert.Error(t, err)
}
