package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	errs "github.com/matzehuels/layerstack/pkg/errors"
	pkgio "github.com/matzehuels/layerstack/pkg/io"
	"github.com/matzehuels/layerstack/pkg/observability"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned by Get when no document has the given name.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned by Put when the document's revision does not
	// match the stored one.
	ErrConflict = errors.New("revision conflict")
)

// Store persists style documents by name.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns a copy of the named document, or an error wrapping
	// ErrNotFound.
	Get(ctx context.Context, name string) (*pkgio.Document, error)

	// Put saves doc under name and stamps doc.Name and a fresh doc.Revision.
	// A non-empty doc.Revision must match the stored document's revision;
	// otherwise Put fails with an error wrapping ErrConflict. An empty
	// revision overwrites unconditionally.
	Put(ctx context.Context, name string, doc *pkgio.Document) error

	// Delete removes the named document. Deleting a missing document is not
	// an error.
	Delete(ctx context.Context, name string) error

	// List returns all document names in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	Dir     string // file backend
	Redis   RedisConfig
	Mongo   MongoConfig
}

// Open builds the backend named in cfg and wraps it with observability hooks.
// If logger is nil, log.Default() is used.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = log.Default()
	}

	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case "", BackendMemory:
		s = NewMemoryStore()
	case BackendFile:
		s, err = NewFileStore(cfg.Dir)
	case BackendRedis:
		s, err = NewRedisStore(ctx, cfg.Redis)
	case BackendMongo:
		s, err = NewMongoStore(ctx, cfg.Mongo)
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	backend := cfg.Backend
	if backend == "" {
		backend = BackendMemory
	}
	logger.Debug("store opened", "backend", backend)
	return Instrument(backend, s), nil
}

// =============================================================================
// Shared helpers
// =============================================================================

func notFound(name string) error {
	return errs.Wrap(errs.ErrCodeDocumentNotFound, ErrNotFound, "document %q", name)
}

func conflict(name, want, have string) error {
	return errs.Wrap(errs.ErrCodeConflict, ErrConflict,
		"document %q is at revision %q, not %q", name, have, want)
}

func unavailable(err error, format string, args ...any) error {
	return errs.Wrap(errs.ErrCodeStoreUnavailable, err, format, args...)
}

// validate checks name and doc before any backend access.
func validate(name string, doc *pkgio.Document) error {
	if err := errs.ValidateDocumentName(name); err != nil {
		return err
	}
	if doc == nil {
		return errs.New(errs.ErrCodeInvalidDocument, "nil document")
	}
	return doc.Validate()
}

// stamp sets doc's name and a fresh revision and returns the copy to persist.
func stamp(name string, doc *pkgio.Document) *pkgio.Document {
	if doc.Version == 0 {
		doc.Version = pkgio.FormatVersion
	}
	doc.Name = name
	doc.Revision = uuid.NewString()
	return doc.Clone()
}

// checkRevision enforces the Put contract against the currently stored
// revision. exists is false when nothing is stored under name.
func checkRevision(name, expected, current string, exists bool) error {
	if expected == "" || !exists || expected == current {
		return nil
	}
	return conflict(name, expected, current)
}

func sortedNames(names []string) []string {
	sort.Strings(names)
	return names
}

// =============================================================================
// Instrumentation
// =============================================================================

type instrumented struct {
	backend string
	next    Store
}

// Instrument wraps s so every call is reported to the registered
// observability store hooks under the given backend name.
func Instrument(backend string, s Store) Store {
	return &instrumented{backend: backend, next: s}
}

func (s *instrumented) Get(ctx context.Context, name string) (*pkgio.Document, error) {
	start := time.Now()
	doc, err := s.next.Get(ctx, name)
	hookErr := err
	if errors.Is(err, ErrNotFound) {
		hookErr = nil
	}
	observability.Store().OnLoad(ctx, s.backend, name, err == nil, time.Since(start), hookErr)
	return doc, err
}

func (s *instrumented) Put(ctx context.Context, name string, doc *pkgio.Document) error {
	start := time.Now()
	err := s.next.Put(ctx, name, doc)
	size := 0
	if doc != nil {
		size = len(doc.Layers)
	}
	observability.Store().OnSave(ctx, s.backend, name, size, time.Since(start), err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, name string) error {
	err := s.next.Delete(ctx, name)
	observability.Store().OnDelete(ctx, s.backend, name, err)
	return err
}

func (s *instrumented) List(ctx context.Context) ([]string, error) { return s.next.List(ctx) }
func (s *instrumented) Close() error                               { return s.next.Close() }
