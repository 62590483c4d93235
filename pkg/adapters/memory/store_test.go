package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/formstate/pkg/adapters/memory"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSnapshotStoreContract(t, store)
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	_ = store.Save(ctx, "k", domain.NewSnapshot("k", domain.NewFormState()))

	first, _ := store.Load(ctx, "k")
	first.Key = "tampered"

	second, _ := store.Load(ctx, "k")
	assert.Equal(t, "k", second.Key)
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDiscard()

	assert.NoError(t, store.Save(ctx, "k", domain.NewSnapshot("k", domain.NewFormState())))
	_, err := store.Load(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	keys, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, keys)
	assert.NoError(t, store.Delete(ctx, "k"))
}
