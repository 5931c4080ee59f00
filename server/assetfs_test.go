package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brettbedarf/assetfs"
	"github.com/brettbedarf/assetfs/config"
	"github.com/brettbedarf/assetfs/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *stores.MemoryStore {
	t.Helper()
	m := stores.NewMemoryStore()
	require.NoError(t, m.AddFile("readme.txt", []byte("hi")))
	require.NoError(t, m.AddFile("music/theme.ogg", []byte("OggS")))
	require.NoError(t, m.AddDir("music/empty"))
	return m
}

func TestMountOptions(t *testing.T) {
	t.Parallel()

	t.Run("session name by default", func(t *testing.T) {
		afs := New(config.NewDefaultConfig(), newTestStore(t))
		opts := afs.MountOptions()
		assert.Equal(t, afs.Session().String(), opts.Name)
		assert.Equal(t, config.DefaultFsName, opts.FsName)
		assert.Contains(t, opts.Options, "ro")
		assert.False(t, opts.Debug)
		require.NotNil(t, opts.Logger)
		require.NotNil(t, opts.AttrTimeout)
		assert.Equal(t, "1s", opts.AttrTimeout.String())
	})

	t.Run("configured name and debug", func(t *testing.T) {
		name, debug := "assets", true
		afs := New(config.NewConfig(&config.ConfigOverride{Name: &name, Debug: &debug}), newTestStore(t))
		opts := afs.MountOptions()
		assert.Equal(t, "assets", opts.Name)
		assert.True(t, opts.Debug)
	})

	t.Run("sessions differ", func(t *testing.T) {
		a := New(config.NewDefaultConfig(), newTestStore(t))
		b := New(config.NewDefaultConfig(), newTestStore(t))
		assert.NotEqual(t, a.Session(), b.Session())
	})
}

func TestServe_RejectsInvalidRoot(t *testing.T) {
	t.Parallel()

	root := "music/empty"
	afs := New(config.NewConfig(&config.ConfigOverride{Root: &root}), newTestStore(t))
	err := <-afs.ServeAsync(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, assetfs.ErrNotFound)
	assert.NoError(t, afs.Unmount(), "unmount without a mount is a no-op")
}

func TestServe_MountAndRead(t *testing.T) {
	if _, err := os.Stat("/dev/fuse"); err != nil {
		t.Skip("fuse not available")
	}
	mnt := t.TempDir()
	afs := New(config.NewDefaultConfig(), newTestStore(t))
	if err := afs.Serve(mnt); err != nil {
		t.Skipf("mount not permitted: %v", err)
	}
	defer func() {
		require.NoError(t, afs.Unmount())
		afs.Wait()
	}()

	data, err := os.ReadFile(filepath.Join(mnt, "music", "theme.ogg"))
	require.NoError(t, err)
	assert.Equal(t, "OggS", string(data))

	entries, err := os.ReadDir(mnt)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"music", "readme.txt"}, names)

	_, err = os.Stat(filepath.Join(mnt, "music", "empty"))
	assert.True(t, os.IsNotExist(err), "empty directories are not visible")

	err = os.WriteFile(filepath.Join(mnt, "readme.txt"), []byte("x"), 0o644)
	assert.Error(t, err)
}
