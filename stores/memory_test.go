package stores

import (
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/brettbedarf/assetfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AddFile_CreatesParents(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	require.NoError(t, m.AddFile("a/b/c.txt", []byte("c")))

	names, err := m.ListChildren("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)

	names, err = m.ListChildren("a/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"c.txt"}, names)
}

func TestMemoryStore_AddFile_CopiesData(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	data := []byte("original")
	require.NoError(t, m.AddFile("f", data))
	data[0] = 'X'

	rc, err := m.OpenForRead("f")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}

func TestMemoryStore_Conflicts(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	require.NoError(t, m.AddFile("a/file", nil))
	require.NoError(t, m.AddDir("a/dir"))

	assert.ErrorIs(t, m.AddDir("a/file"), assetfs.ErrExist, "dir over file")
	assert.ErrorIs(t, m.AddDir("a/file/sub"), assetfs.ErrExist, "dir under file")
	assert.ErrorIs(t, m.AddFile("a/dir", nil), assetfs.ErrExist, "file over dir")
	assert.NoError(t, m.AddFile("a/file", []byte("replaced")), "file over file")
	assert.NoError(t, m.AddDir("a/dir"), "existing dir")
}

func TestMemoryStore_InvalidPaths(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	assert.ErrorIs(t, m.AddFile("", nil), assetfs.ErrInvalidPath)
	assert.ErrorIs(t, m.AddFile("a//b", nil), assetfs.ErrInvalidPath)
	assert.NoError(t, m.AddDir(""), "root always exists")
}

func TestMemoryStore_NoNormalization(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	require.NoError(t, m.AddFile("music/theme.ogg", nil))

	_, err := m.OpenForRead("music/./theme.ogg")
	assert.ErrorIs(t, err, assetfs.ErrNotFound)
	_, err = m.OpenForRead("/music/theme.ogg")
	assert.ErrorIs(t, err, assetfs.ErrNotFound)
	_, err = m.ListChildren("music/")
	assert.ErrorIs(t, err, assetfs.ErrNotFound)
}

func TestMemoryStore_SetNilListing(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	require.NoError(t, m.AddFile("weird/thing", nil))
	require.NoError(t, m.SetNilListing("weird"))

	names, err := m.ListChildren("weird")
	assert.NoError(t, err)
	assert.Nil(t, names)

	assert.ErrorIs(t, m.SetNilListing("weird/thing"), assetfs.ErrNotFound)
	assert.ErrorIs(t, m.SetNilListing("missing"), assetfs.ErrNotFound)
}

func TestMemoryStore_ConcurrentWritesAndReads(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.AddFile(fmt.Sprintf("shared/f%02d", i), []byte{byte(i)}))
		}()
		go func() {
			defer wg.Done()
			// may or may not exist yet; must not race
			_, _ = m.ListChildren("shared")
		}()
	}
	wg.Wait()

	names, err := m.ListChildren("shared")
	require.NoError(t, err)
	assert.Len(t, names, 50)
	assert.IsNonDecreasing(t, names)
}

func TestMemoryProvider_NewStore(t *testing.T) {
	t.Parallel()

	t.Run("full definition", func(t *testing.T) {
		store, err := MemoryProvider{}.NewStore([]byte(`{
			"type": "memory",
			"files": {"music/theme.ogg": "OggS"},
			"dirs": ["music/empty", "weird"],
			"nil_listings": ["weird"]
		}`))
		require.NoError(t, err)

		names, err := store.ListChildren("music")
		require.NoError(t, err)
		assert.Equal(t, []string{"empty", "theme.ogg"}, names)

		names, err = store.ListChildren("weird")
		require.NoError(t, err)
		assert.Nil(t, names)
	})

	t.Run("conflicting definition", func(t *testing.T) {
		_, err := MemoryProvider{}.NewStore([]byte(`{"files":{"a":"x"},"dirs":["a"]}`))
		assert.ErrorIs(t, err, assetfs.ErrExist)
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := MemoryProvider{}.NewStore([]byte(`{"files":[]}`))
		assert.Error(t, err)
	})
}
