// Package session tracks which secret keys have been loaded into a process
// environment, per deployment environment. The tracker is explicit state
// owned by the caller rather than process-wide mutable state, so flows that
// need an environment reset stay testable in isolation.
package session

import (
	"sort"
	"sync"
)

// Session records loaded keys per environment.
type Session struct {
	mu     sync.Mutex
	loaded map[string]map[string]struct{}
}

// New creates an empty session.
func New() *Session {
	return &Session{loaded: make(map[string]map[string]struct{})}
}

// MarkLoaded records that key was injected for env. Marking the same key
// twice is harmless.
func (s *Session) MarkLoaded(env, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded[env] == nil {
		s.loaded[env] = make(map[string]struct{})
	}
	s.loaded[env][key] = struct{}{}
}

// LoadedKeys returns the keys recorded for env, sorted.
func (s *Session) LoadedKeys(env string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.loaded[env])
}

// Reset clears the record for env and returns the keys that were loaded, so
// the caller can unset them.
func (s *Session) Reset(env string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := sortedKeys(s.loaded[env])
	delete(s.loaded, env)
	return keys
}

// Environments returns the environments with loaded keys, sorted.
func (s *Session) Environments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	envs := make([]string, 0, len(s.loaded))
	for env := range s.loaded {
		envs = append(envs, env)
	}
	sort.Strings(envs)
	return envs
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
