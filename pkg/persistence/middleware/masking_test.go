package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/formstate/pkg/adapters/memory"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(name string, v domain.Value, typ domain.PresentationType) domain.NamedField {
	return domain.NamedField{Name: name, FieldState: domain.FieldState{
		Value:  v,
		Config: domain.FieldConfig{Type: typ, Label: name},
	}}
}

func TestMaskingMiddleware(t *testing.T) {
	underlyingStore := memory.NewStore()
	secureStore := middleware.NewMaskingMiddleware([]string{"ssn", "^pin$"})(underlyingStore)

	ctx := context.Background()
	key := "masked-form"
	state := domain.NewFormState(
		field("username", domain.Text("jdoe"), domain.TypeText),
		field("password", domain.Text("secret123"), domain.TypePassword),
		field("ssn_number", domain.Text("999-99-9999"), domain.TypeText),
		field("pin", domain.Number(1234), domain.TypeNumber),
		field("pin_hint", domain.Text("birthday"), domain.TypeText),
	)

	require.NoError(t, secureStore.Save(ctx, key, domain.NewSnapshot(key, state)))

	pw, _ := state.Get("password")
	assert.Equal(t, "secret123", pw.Value.String(), "middleware must not modify the caller's state")

	stored, err := underlyingStore.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, state.Names(), stored.Fields.Names())

	get := func(name string) domain.Value {
		f, _ := stored.Fields.Get(name)
		return f.Value
	}
	assert.Equal(t, "jdoe", get("username").String())
	assert.Equal(t, "birthday", get("pin_hint").String())
	assert.True(t, get("password").Equal(domain.Text("")))
	assert.True(t, get("ssn_number").Equal(domain.Text("")))
	assert.True(t, get("pin").Equal(domain.Number(0)))
}

func TestChain(t *testing.T) {
	underlyingStore := memory.NewStore()
	store := middleware.Chain(underlyingStore,
		middleware.NewMaskingMiddleware(nil),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)

	ctx := context.Background()
	state := domain.NewFormState(
		field("email", domain.Text("ada@example.com"), domain.TypeText),
		field("password", domain.Text("hunter22"), domain.TypePassword),
	)
	require.NoError(t, store.Save(ctx, "k", domain.NewSnapshot("k", state)))

	raw, err := underlyingStore.Load(ctx, "k")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)

	loaded, err := store.Load(ctx, "k")
	require.NoError(t, err)
	email, _ := loaded.Fields.Get("email")
	password, _ := loaded.Fields.Get("password")
	assert.Equal(t, "ada@example.com", email.Value.String())
	assert.Equal(t, "", password.Value.String())
}
