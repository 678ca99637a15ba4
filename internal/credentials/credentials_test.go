package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "stride", "api_key"))

	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("sk-secret-key"))

	key, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-secret-key", key)

	require.NoError(t, store.Delete())
	_, err = store.Get()
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error
	assert.NoError(t, store.Delete())
}

func TestFileStore_OwnerOnlyPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_key")
	store := NewFileStore(path)
	require.NoError(t, store.Set("sk-secret-key"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_Overwrite(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "api_key"))

	require.NoError(t, store.Set("old-key"))
	require.NoError(t, store.Set("new-key"))

	key, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "new-key", key)
}
