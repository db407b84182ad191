package cache

import (
	"bytes"
	"context"
	"sync"
	"time"
)

type mockEntry struct {
	value     []byte
	expiresAt time.Time
}

// MockRedisClient provides an in-memory Store for development and tests when
// Redis is not available. Expired keys are dropped lazily on access.
type MockRedisClient struct {
	mu     sync.Mutex
	data   map[string]mockEntry
	prefix string
	now    func() time.Time
}

var _ Store = (*MockRedisClient)(nil)

func NewMockRedisClient(prefix string) *MockRedisClient {
	return &MockRedisClient{
		data:   make(map[string]mockEntry),
		prefix: prefix,
		now:    time.Now,
	}
}

func (m *MockRedisClient) Close() error {
	return nil
}

func (m *MockRedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(m.prefix + key)
	if !ok {
		return nil, ErrMiss
	}
	return append([]byte(nil), e.value...), nil
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[m.prefix+key] = m.entry(value, ttl)
	return nil
}

func (m *MockRedisClient) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(m.prefix + key); ok {
		return false, nil
	}
	m.data[m.prefix+key] = m.entry(value, ttl)
	return true, nil
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.data, m.prefix+k)
	}
	return nil
}

func (m *MockRedisClient) DelIfValue(ctx context.Context, key string, value []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(m.prefix + key)
	if !ok || !bytes.Equal(e.value, value) {
		return false, nil
	}
	delete(m.data, m.prefix+key)
	return true, nil
}

// Len returns the number of live keys.
func (m *MockRedisClient) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k := range m.data {
		if _, ok := m.lookup(k); ok {
			n++
		}
	}
	return n
}

func (m *MockRedisClient) entry(value []byte, ttl time.Duration) mockEntry {
	e := mockEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	return e
}

// lookup must be called with mu held.
func (m *MockRedisClient) lookup(key string) (mockEntry, bool) {
	e, ok := m.data[key]
	if !ok {
		return mockEntry{}, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.data, key)
		return mockEntry{}, false
	}
	return e, true
}
