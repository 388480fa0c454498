package sessionstore

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core/session"
)

// FileStore keeps the session keys in a JSON file readable by the owner only.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ session.Store = (*FileStore)(nil)

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "creating session directory")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) read() (map[string]string, error) {
	vals := make(map[string]string)
	data, err := ioutil.ReadFile(s.path)
	if os.IsNotExist(err) {
		return vals, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading session file")
	}
	if len(data) == 0 {
		return vals, nil
	}
	if err := json.Unmarshal(data, &vals); err != nil {
		// a corrupted file holds no usable session
		return make(map[string]string), nil
	}
	return vals, nil
}

func (s *FileStore) write(vals map[string]string) error {
	if len(vals) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "removing session file")
		}
		return nil
	}
	data, err := json.Marshal(vals)
	if err != nil {
		return errors.Wrap(err, "encoding session file")
	}
	tmp := s.path + ".tmp"
	if err := ioutil.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "writing session file")
	}
	return errors.Wrap(os.Rename(tmp, s.path), "replacing session file")
}

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := vals[key]
	return v, ok, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals, err := s.read()
	if err != nil {
		return err
	}
	vals[key] = value
	return s.write(vals)
}

func (s *FileStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals, err := s.read()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(vals, k)
	}
	return s.write(vals)
}
