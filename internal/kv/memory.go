package kv

import (
	"sync"
	"time"
)

// Memory is a process-local Store used when the durable backend cannot
// be opened, and in tests. Contents are lost on restart.
type Memory struct {
	mu     sync.RWMutex
	values map[string]memoryValue
	hashes map[string]map[string][]byte
	sets   map[string]map[string]struct{}
}

type memoryValue struct {
	data      []byte
	expiresAt time.Time // zero = no expiry
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]memoryValue),
		hashes: make(map[string]map[string][]byte),
		sets:   make(map[string]map[string]struct{}),
	}
}

func (m *Memory) Set(key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := memoryValue{data: append([]byte(nil), value...)}
	if ttl > 0 {
		v.expiresAt = time.Now().Add(ttl)
	}
	m.values[key] = v
	return nil
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	v, ok := m.values[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !v.expiresAt.IsZero() && time.Now().After(v.expiresAt) {
		m.mu.Lock()
		delete(m.values, key)
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return append([]byte(nil), v.data...), nil
}

func (m *Memory) HSet(key, field string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string][]byte)
		m.hashes[key] = h
	}
	h[field] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) HGet(key, field string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.hashes[key][field]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) HDel(key, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hashes[key], field)
	return nil
}

func (m *Memory) HGetAll(key string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte, len(m.hashes[key]))
	for field, v := range m.hashes[key] {
		out[field] = append([]byte(nil), v...)
	}
	return out, nil
}

func (m *Memory) SAdd(key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sets[key]
	if !ok {
		s = make(map[string]struct{})
		m.sets[key] = s
	}
	s[member] = struct{}{}
	return nil
}

func (m *Memory) SIsMember(key, member string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sets[key][member]
	return ok, nil
}

func (m *Memory) Close() error { return nil }
