package analysis

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Store keeps the latest result per file. It is shared between the runner
// and the web server.
type Store struct {
	mu      sync.RWMutex
	results map[string]*FileResult
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{results: make(map[string]*FileResult)}
}

// Put stores or replaces the result for its path
func (s *Store) Put(fr *FileResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[fr.Path] = fr
}

// Remove drops the result for a path
func (s *Store) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, path)
}

// Lookup returns the result stored under exactly this path
func (s *Store) Lookup(path string) (*FileResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fr, ok := s.results[path]
	return fr, ok
}

// Get finds a result by path. A bare file name, with or without the .pd
// extension, matches if it is unambiguous.
func (s *Store) Get(name string) (*FileResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if fr, ok := s.results[name]; ok {
		return fr, true
	}
	if fr, ok := s.results[filepath.Clean(name)]; ok {
		return fr, true
	}

	var match *FileResult
	for path, fr := range s.results {
		base := filepath.Base(path)
		if base == name || strings.TrimSuffix(base, filepath.Ext(base)) == name {
			if match != nil {
				return nil, false
			}
			match = fr
		}
	}
	return match, match != nil
}

// List returns all results sorted by path
func (s *Store) List() []*FileResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*FileResult, 0, len(s.results))
	for _, fr := range s.results {
		list = append(list, fr)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Path < list[j].Path })
	return list
}

// Len returns the number of stored results
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
