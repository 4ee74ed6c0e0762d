package memoize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDirStoreMissingDirectory(t *testing.T) {
	_, err := NewDirStore(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreNotExist))
}

func TestNewDirStoreNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err := NewDirStore(file)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreNotExist))
}

func TestDirStoreReadWrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewDirStore(dir)
	require.NoError(t, err)
	defer store.Close()

	// Miss on empty store.
	found, data, err := store.Read(ctx, "0123456789abcdef")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)

	require.NoError(t, store.Write(ctx, "0123456789abcdef", []byte("payload")))
	found, data, err = store.Read(ctx, "0123456789abcdef")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("payload"), data)

	// The entry is a single file named by the key; no temp files remain.
	matches, err := filepath.Glob(filepath.Join(dir, "*"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "0123456789abcdef"+EntryExtension, filepath.Base(matches[0]))
}

func TestDirStoreWriteLastWriterWins(t *testing.T) {
	ctx := context.Background()
	store, _ := newDirStore(t)
	defer store.Close()

	require.NoError(t, store.Write(ctx, "k", []byte("first")))
	require.NoError(t, store.Write(ctx, "k", []byte("second")))
	found, data, err := store.Read(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("second"), data)
}
