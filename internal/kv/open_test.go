package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLite_MigratesAndReopens(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "dash.db")

	store, err := Open(ctx, Config{Backend: BackendSQLite, DSN: dsn})
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, store.Backend)
	require.NoError(t, store.Set(ctx, "accessToken", []byte("tok")))
	require.NoError(t, store.Close())

	store, err = Open(ctx, Config{DSN: dsn})
	require.NoError(t, err)
	defer store.Close()

	v, err := store.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok"), v)
}

func TestOpen_Memory(t *testing.T) {
	store, err := Open(context.Background(), Config{Backend: BackendMemory})
	require.NoError(t, err)
	assert.NoError(t, store.Close())
	assert.IsType(t, &MemoryRepository{}, store.Repository)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "etcd"})
	require.ErrorIs(t, err, ErrUnknownBackend)
}

func TestOpen_SQLite_CreatesParentDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "dash.db")

	store, err := Open(context.Background(), Config{Backend: BackendSQLite, DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, store.Close())
	assert.FileExists(t, dsn)
}
