package sessionstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/session"
)

func stores(t *testing.T) map[string]session.Store {
	dir := t.TempDir()

	fs, err := NewFileStore(filepath.Join(dir, "nested", "session.json"))
	require.NoError(t, err)

	sq, err := OpenSQLite(filepath.Join(dir, "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]session.Store{
		"memory": session.NewMemoryStore(),
		"file":   fs,
		"sqlite": sq,
	}
}

func TestStores(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(session.KeyToken)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(session.KeyToken, "t1"))
			require.NoError(t, store.Set(session.KeyToken, "t2"))
			require.NoError(t, store.Set(session.KeyUserType, "student"))

			v, ok, err := store.Get(session.KeyToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "t2", v)

			require.NoError(t, store.Delete(session.AllKeys...))
			for _, k := range session.AllKeys {
				_, ok, err := store.Get(k)
				require.NoError(t, err)
				assert.False(t, ok, k)
			}

			// deleting absent keys is fine
			assert.NoError(t, store.Delete("nope"))
		})
	}
}

func TestFileStore_permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Set(session.KeyToken, "secret"))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	require.NoError(t, store.Delete(session.KeyToken))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "an empty session leaves no file behind")
}

func TestFileStore_corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	_, ok, err := store.Get(session.KeyToken)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		store   string
		wantErr bool
	}{
		{name: "memory", store: core.StoreMemory},
		{name: "file", store: core.StoreFile},
		{name: "sqlite", store: core.StoreSQLite},
		{name: "unknown", store: "redis", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := &core.Config{}
			conf.Session.Store = tt.store
			conf.Session.Path = filepath.Join(dir, tt.name, "session.json")

			store, closeFn, err := Open(conf)
			defer func() { _ = closeFn() }()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, store.Set(session.KeyToken, "x"))
		})
	}
}
