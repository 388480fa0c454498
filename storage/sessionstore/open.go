// Package sessionstore persists the client session keys outside of any server store.
package sessionstore

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/session"
)

// Open returns the store selected by `session.store` and a function releasing it.
func Open(conf *core.Config) (session.Store, func() error, error) {
	nop := func() error { return nil }

	switch conf.Session.Store {
	case core.StoreMemory:
		return session.NewMemoryStore(), nop, nil
	case "", core.StoreFile:
		s, err := NewFileStore(conf.Session.Path)
		return s, nop, err
	case core.StoreSQLite:
		path := conf.Session.Path
		if strings.EqualFold(filepath.Ext(path), ".json") {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + ".db"
		}
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, nop, err
		}
		return s, s.Close, nil
	}
	return nil, nop, errors.Errorf("unknown session.store %q", conf.Session.Store)
}
