package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileStore(path, nil)

	_, has := store.Token()
	assert.False(t, has)

	require.NoError(t, store.Save("tok-xyz"))
	tok, has := store.Token()
	assert.True(t, has)
	assert.Equal(t, "tok-xyz", tok)

	require.NoError(t, store.Clear())
	_, has = store.Token()
	assert.False(t, has)

	// Clearing an already-empty store is fine.
	require.NoError(t, store.Clear())
}

func TestFileStoreCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "token")
	store := NewFileStore(path, nil)

	require.NoError(t, store.Save("tok"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreSealsWithKey(t *testing.T) {
	key := []byte("thisis32byteslongsecretkey123456")
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileStore(path, key)

	require.NoError(t, store.Save("secret-token"))

	// On disk the token is ciphertext.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")

	tok, has := store.Token()
	assert.True(t, has)
	assert.Equal(t, "secret-token", tok)
}

func TestFileStoreWrongKeyReadsAsMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, NewFileStore(path, []byte("thisis32byteslongsecretkey123456")).Save("tok"))

	other := NewFileStore(path, []byte("another32bytelongsecretkey000000"))
	_, has := other.Token()
	assert.False(t, has)
}
