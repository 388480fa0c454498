package session

import (
	"sort"
	"sync"
)

// persisted keys
const (
	KeyToken     = "auth_token"
	KeyUserType  = "user_type"
	KeyUserInfo  = "user_info"
	KeyAdminInfo = "admin_info"
)

// AllKeys lists every key a session may persist.
var AllKeys = []string{KeyToken, KeyUserType, KeyUserInfo, KeyAdminInfo}

// Store persists the session keys. Values are sensitive.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// MemoryStore keeps the keys for the lifetime of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	vals map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vals: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vals[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[key] = value
	return nil
}

func (s *MemoryStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.vals, k)
	}
	return nil
}

// Keys returns the stored keys, sorted.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.vals))
	for k := range s.vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
