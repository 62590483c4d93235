package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/formstate/pkg/adapters/sqlite"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SnapshotStore = (*sqlite.Store)(nil)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "forms.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, openStore(t))
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer store.Close()

	ports.RunSnapshotStoreContract(t, store)
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "forms.db")

	first, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	state := domain.NewFormState(domain.NamedField{Name: "name", FieldState: domain.FieldState{
		Value:  domain.Text("Ada"),
		Config: domain.FieldConfig{Type: domain.TypeText, Label: "name"},
	}})
	require.NoError(t, first.Save(ctx, "signup", domain.NewSnapshot("signup", state)))
	require.NoError(t, first.Close())

	second, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	loaded, err := second.Load(ctx, "signup")
	require.NoError(t, err)
	assert.True(t, state.Equal(loaded.Fields))
}

func TestSQLiteStore_EmptyKey(t *testing.T) {
	store := openStore(t)
	err := store.Save(context.Background(), "", domain.NewSnapshot("", domain.NewFormState()))
	assert.ErrorIs(t, err, domain.ErrMissingKey)
}
