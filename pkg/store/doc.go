// Package store persists style documents.
//
// Backends implement the [Store] interface:
//   - [MemoryStore]: process memory, for tests and throwaway servers
//   - [FileStore]: one JSON file per document, for the CLI and single hosts
//   - [RedisStore]: JSON strings under a key prefix, for shared deployments
//   - [MongoStore]: one BSON document per style keyed by name
//
// [Open] selects a backend from a [Config] and wraps it with [Instrument], so
// loads, saves and deletions are reported to the observability store hooks.
//
// # Revisions
//
// Every successful Put stamps the document with a fresh random revision.
// A caller that read a document, edited it and saves it again passes the
// revision it read; if another writer saved in between, Put fails with an
// error wrapping [ErrConflict] and the CONFLICT code:
//
//	doc, err := s.Get(ctx, "streets")
//	if err != nil {
//	    return err
//	}
//	// ... edit doc.Layers ...
//	if err := s.Put(ctx, "streets", doc); errors.Is(err, store.ErrConflict) {
//	    // reload and retry
//	}
//
// Documents saved without a revision overwrite unconditionally.
//
// # Errors
//
// Network backends retry transient failures with exponential backoff (see
// [RetryWithBackoff]) and report persistent ones with the STORE_UNAVAILABLE
// code.
package store
