package store

import (
	"context"
	"sync"

	pkgio "github.com/matzehuels/layerstack/pkg/io"
)

// MemoryStore keeps documents in process memory.
// Useful for testing and for a throwaway server.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*pkgio.Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*pkgio.Document)}
}

func (s *MemoryStore) Get(ctx context.Context, name string) (*pkgio.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[name]
	if !ok {
		return nil, notFound(name)
	}
	return d.Clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, name string, doc *pkgio.Document) error {
	if err := validate(name, doc); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var current string
	cur, exists := s.docs[name]
	if exists {
		current = cur.Revision
	}
	if err := checkRevision(name, doc.Revision, current, exists); err != nil {
		return err
	}
	s.docs[name] = stamp(name, doc)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, name)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.docs))
	for n := range s.docs {
		names = append(names, n)
	}
	return sortedNames(names), nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
