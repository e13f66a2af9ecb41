package kv

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/gophdash/internal/kv/migrations"
)

func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(context.Background(), db, migrations.SQLite, "sqlite3", "sqlite"))
	return db
}

func TestSQLite_SetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "accessToken", []byte("tok-1")))

	v, err := r.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok-1"), v)
}

func TestSQLite_GetMissing_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSQLite_SetOverwrites(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestSQLite_ListDeleteClear(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": {0xAA}, "b": {0xBB, 0xCC}}, m)

	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"))
	v, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, r.Clear(ctx))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestSQLite_DeleteKeys(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))
	ctx := context.Background()

	for _, k := range []string{"accessToken", "refreshToken", "userInfo", "app_settings"} {
		require.NoError(t, r.Set(ctx, k, []byte(k)))
	}

	require.NoError(t, r.DeleteKeys(ctx, "accessToken", "refreshToken", "userInfo", "absent"))

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"app_settings": []byte("app_settings")}, all)
}

func TestSQLite_ClosedDB_ErrorsAreWrapped(t *testing.T) {
	db := setupSQLite(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get key[k]")

	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set key[k]")
	require.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete key[k]")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear storage")

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list storage")
}
