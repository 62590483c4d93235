package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractState() domain.FormState {
	return domain.NewFormState(
		domain.NamedField{Name: "name", FieldState: domain.FieldState{
			Value:  domain.Text("Ada"),
			Config: domain.FieldConfig{Type: domain.TypeText, Label: "name"},
		}},
		domain.NamedField{Name: "age", FieldState: domain.FieldState{
			Value:  domain.Number(30),
			Config: domain.FieldConfig{Type: domain.TypeNumber, Label: "age"},
			Error:  "Number must be less than or equal to 25",
		}},
		domain.NamedField{Name: "terms", FieldState: domain.FieldState{
			Value:  domain.Unanswered(),
			Config: domain.FieldConfig{Type: domain.TypeCheckbox, Label: "terms"},
		}},
		domain.NamedField{Name: "zip", FieldState: domain.FieldState{
			Value:  domain.InvalidNumber("12a"),
			Config: domain.FieldConfig{Type: domain.TypeNumber, Label: "zip"},
		}},
	)
}

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	key := "contract/test-form-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := contractState()

		err := store.Save(ctx, key, domain.NewSnapshot(key, state))
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, key, loaded.Key)
		assert.Equal(t, state.Names(), loaded.Fields.Names(), "field order must survive persistence")
		assert.True(t, state.Equal(loaded.Fields), "loaded state should equal the saved state")

		terms, _ := loaded.Fields.Get("terms")
		assert.True(t, terms.Value.IsUnanswered())
		zip, _ := loaded.Fields.Get("zip")
		assert.False(t, zip.Value.Valid())
		assert.Equal(t, "12a", zip.Value.Raw())
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		state := contractState().With("name", domain.FieldState{
			Value:  domain.Text("Grace"),
			Config: domain.FieldConfig{Type: domain.TypeText, Label: "name"},
		})
		require.NoError(t, store.Save(ctx, key, domain.NewSnapshot(key, state)))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		name, _ := loaded.Fields.Get("name")
		assert.Equal(t, "Grace", name.Value.String())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, key, domain.NewSnapshot(key, contractState()))
		require.NoError(t, err)

		err = store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		assert.NoError(t, store.Delete(ctx, key), "deleting a missing key is not an error")
	})

	t.Run("List", func(t *testing.T) {
		k1 := key + "-1"
		k2 := key + "-2"
		_ = store.Save(ctx, k1, domain.NewSnapshot(k1, contractState()))
		_ = store.Save(ctx, k2, domain.NewSnapshot(k2, contractState()))

		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
