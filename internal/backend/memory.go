package backend

import (
	"sort"
	"sync"
)

// Memory is an in-process backend used by tests, CI runs, and the
// --backend memory flag. It mirrors the keyring backend's semantics exactly,
// including ErrItemNotFound on missing entries.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]map[string]string
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]map[string]string)}
}

// Store writes value under (namespace, identifier).
func (m *Memory) Store(namespace, identifier, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries[namespace] == nil {
		m.entries[namespace] = make(map[string]string)
	}
	m.entries[namespace][identifier] = value
	return nil
}

// Retrieve returns the value for (namespace, identifier).
func (m *Memory) Retrieve(namespace, identifier string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if ns, ok := m.entries[namespace]; ok {
		if value, ok := ns[identifier]; ok {
			return value, nil
		}
	}
	return "", ErrItemNotFound
}

// Erase removes (namespace, identifier).
func (m *Memory) Erase(namespace, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.entries[namespace]
	if !ok {
		return ErrItemNotFound
	}
	if _, ok := ns[identifier]; !ok {
		return ErrItemNotFound
	}
	delete(ns, identifier)
	if len(ns) == 0 {
		delete(m.entries, namespace)
	}
	return nil
}

// Enumerate lists identifiers under namespace, sorted.
func (m *Memory) Enumerate(namespace string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.entries[namespace]))
	for id := range m.entries[namespace] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// EraseAll removes every entry under namespace.
func (m *Memory) EraseAll(namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, namespace)
	return nil
}

// Available always succeeds for the in-memory backend.
func (m *Memory) Available() error {
	return nil
}

// Len reports the number of entries under namespace. Test helper.
func (m *Memory) Len(namespace string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries[namespace])
}

var _ Backend = (*Memory)(nil)
