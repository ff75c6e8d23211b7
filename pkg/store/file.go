package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	errs "github.com/matzehuels/layerstack/pkg/errors"
	pkgio "github.com/matzehuels/layerstack/pkg/io"
)

// FileStore keeps one JSON document per file in a directory.
// Intended for the CLI and single-instance servers; it is safe for
// concurrent use within one process only.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file store in dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "file store requires a directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) Get(ctx context.Context, name string) (*pkgio.Document, error) {
	if err := errs.ValidateDocumentName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(name)
}

func (s *FileStore) read(name string) (*pkgio.Document, error) {
	d, err := pkgio.Import(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, notFound(name)
	}
	return d, err
}

func (s *FileStore) Put(ctx context.Context, name string, doc *pkgio.Document) error {
	if err := validate(name, doc); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var current string
	cur, err := s.read(name)
	exists := err == nil
	switch {
	case exists:
		current = cur.Revision
	case !errors.Is(err, ErrNotFound):
		return err
	}
	if err := checkRevision(name, doc.Revision, current, exists); err != nil {
		return err
	}

	prev := doc.Revision
	if err := pkgio.Export(stamp(name, doc), s.path(name)); err != nil {
		doc.Revision = prev
		return err
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errs.ValidateDocumentName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() || errs.ValidateDocumentName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	return sortedNames(names), nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
