package storage

import (
	"strings"
	"sync"
	"time"
)

// memoryStore keeps the token for the lifetime of the process.
type memoryStore struct {
	mu       sync.RWMutex
	token    string
	expiry   time.Time
	tokenTTL time.Duration
	now      func() time.Time
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{tokenTTL: opts.TokenTTL, now: time.Now}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) Get() (string, error) {
	m.mu.RLock()
	token, expiry := m.token, m.expiry
	m.mu.RUnlock()

	if token == "" {
		return "", nil
	}
	if expiry.After(m.now()) {
		return token, nil
	}

	// Re-check under the write lock so a concurrent Set is not wiped.
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != "" && m.expiry.After(m.now()) {
		return m.token, nil
	}
	m.token = ""
	m.expiry = time.Time{}
	return "", nil
}

func (m *memoryStore) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = strings.TrimSpace(token)
	m.expiry = m.now().Add(m.tokenTTL)
	return nil
}

func (m *memoryStore) Clear() error {
	m.mu.Lock()
	m.token = ""
	m.expiry = time.Time{}
	m.mu.Unlock()
	return nil
}
