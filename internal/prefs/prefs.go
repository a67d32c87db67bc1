// Package prefs provides namespaced flat key-value stores persisted as
// JSON files, one file per namespace.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is one namespace of string keys and values. Values round-trip
// verbatim; callers serialize their own structures into them. Writes are
// serialized within the process; concurrent writers in separate processes
// race with last-writer-wins semantics.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns the store for the given namespace under dir. The backing
// file is created lazily on first Put.
func Open(dir, namespace string) *Store {
	return &Store{path: filepath.Join(dir, namespace+".json")}
}

// Get returns the value for key, or "" if the key or the whole store is
// missing or unreadable. Absence is never an error.
func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return ""
	}
	return m[key]
}

// Put stores the value for key, persisting the whole namespace.
func (s *Store) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		m = map[string]string{}
	}
	m[key] = value
	return s.save(m)
}

// Delete removes a key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return nil
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return s.save(m)
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

// save writes the full map via a temp file and rename so a crash mid-write
// never leaves a truncated store behind.
func (s *Store) save(m map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create prefs directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}
