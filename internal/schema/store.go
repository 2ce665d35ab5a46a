package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"sync"
)

// Store persists the table-to-columns cache. Load returns the full map;
// Save overwrites the persisted cache with the full map.
type Store interface {
	Load() (map[string][]string, error)
	Save(cache map[string][]string) error
}

// FileStore keeps the cache as a JSON object on disk, table name to
// ordered column array. A missing or unreadable file loads as an empty
// cache so a corrupt file degrades to re-resolution instead of an error.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load() (map[string][]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return map[string][]string{}, nil
	}
	var cache map[string][]string
	if err := json.Unmarshal(data, &cache); err != nil {
		return map[string][]string{}, nil
	}
	if cache == nil {
		cache = map[string][]string{}
	}
	return cache, nil
}

func (s *FileStore) Save(cache map[string][]string) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema cache: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("write schema cache: %w", err)
	}
	return nil
}

// MemoryStore keeps the cache in memory, for tests and ephemeral runs.
type MemoryStore struct {
	mu    sync.Mutex
	cache map[string][]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: map[string][]string{}}
}

func (s *MemoryStore) Load() (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.cache), nil
}

func (s *MemoryStore) Save(cache map[string][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = maps.Clone(cache)
	return nil
}
