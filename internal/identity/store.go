// Package identity implements the bounded identity collections that give
// Muse a persistent voice: emotions, topics, personality traits, and social
// context. Each collection lives in a flat text file (one item per line) and
// is mutated only by its evolution engine.
package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists named line-collections under a state directory.
// Concurrent evolves of the same collection are serialized per key.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a store rooted at the given state directory.
func NewStore(stateDir string) *Store {
	return &Store{
		dir:   stateDir,
		locks: make(map[string]*sync.Mutex),
	}
}

// Path returns the file path backing a collection key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".txt")
}

// Lock returns the per-key mutex, creating it on first use.
func (s *Store) Lock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Load reads a collection. An absent file is an empty collection, not an
// error. Blank lines are dropped.
func (s *Store) Load(key string) ([]string, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var items []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items, nil
}

// Save overwrites a collection as newline-joined text with a trailing
// newline.
func (s *Store) Save(key string, items []string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	content := strings.Join(items, "\n") + "\n"
	if err := os.WriteFile(s.Path(key), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
