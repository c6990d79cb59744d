// Package preferences persists the client's appearance settings (mode, theme
// and font) as a small YAML file of string pairs.
package preferences

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Known preference keys.
const (
	KeyMode  = "mode"
	KeyTheme = "theme"
	KeyFont  = "font"
)

// ErrEmptyKey is returned when a preference key is blank.
var ErrEmptyKey = errors.New("preference key cannot be empty")

// Store is a write-through key/value store backed by a YAML file.
// It is safe for concurrent use.
type Store struct {
	path   string
	mu     sync.RWMutex
	values map[string]string
}

// Open loads the preferences at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: map[string]string{}}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load re-reads the file, replacing the in-memory values.
func (s *Store) Load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.mu.Lock()
		s.values = map[string]string{}
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read preferences: %w", err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("parse preferences %s: %w", filepath.Base(s.path), err)
	}
	if values == nil {
		values = map[string]string{}
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetOr returns the value stored under key or fallback.
func (s *Store) GetOr(key, fallback string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return fallback
}

// Set stores value under key and writes the file.
func (s *Store) Set(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.save(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// save writes the file atomically. Caller holds mu.
func (s *Store) save() error {
	raw, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp preferences: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}
