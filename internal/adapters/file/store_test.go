package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/formstate/internal/adapters/file"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements SnapshotStore
var _ ports.SnapshotStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_KeysWithSlashes(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()
	key := "tutor/application"

	require.NoError(t, store.Save(ctx, key, domain.NewSnapshot(key, domain.NewFormState())))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "the key is stored as a single flat file")
	assert.False(t, entries[0].IsDir())

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, "k", domain.NewSnapshot("k", domain.NewFormState())))
	}

	matches, err := filepath.Glob(filepath.Join(dir, "tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileStore_Malformed(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{oops"), 0644))

	_, err := store.Load(context.Background(), "broken")
	assert.ErrorIs(t, err, domain.ErrMalformedSnapshot)
}

func TestFileStore_EmptyKey(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, "", domain.NewSnapshot("", domain.NewFormState())), domain.ErrMissingKey)
	_, err := store.Load(ctx, "")
	assert.ErrorIs(t, err, domain.ErrMissingKey)
	assert.ErrorIs(t, store.Delete(ctx, ""), domain.ErrMissingKey)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "nope"))
	keys, err := store.List(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, keys)
}
