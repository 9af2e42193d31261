// Package manifest publishes a single committed snapshot value behind one
// blob-store key: instead of a directory of versioned manifest files plus
// a CURRENT pointer on a local filesystem, a blob store key is overwritten
// directly, since the Store contract already guarantees a reader never
// observes a half-written value at a key. Publish only after the
// underlying write succeeds, and never let a failed publish disturb the
// last value that did succeed.
package manifest

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/segdb/blobstore"
	"github.com/hupe1980/segdb/codec"
)

// Store publishes values of type T under one blob-store key. Save makes a
// new value visible via Current only once the underlying store write has
// returned successfully; a failed Save leaves both the store's blob at key
// and Current's last-reported value exactly as they were.
type Store[T any] struct {
	store blobstore.Store
	codec codec.Codec
	key   string

	mu      sync.Mutex
	current T
	has     bool
}

// NewStore creates a Store that publishes snapshots under key via c. A nil
// codec falls back to codec.Default.
func NewStore[T any](store blobstore.Store, c codec.Codec, key string) *Store[T] {
	if c == nil {
		c = codec.Default
	}
	return &Store[T]{store: store, codec: c, key: key}
}

// Load fetches the value currently persisted at key and adopts it as
// Current. ok is false if nothing has ever been saved there.
func (s *Store[T]) Load(ctx context.Context) (v T, ok bool, err error) {
	raw, found, err := s.store.Get(ctx, s.key)
	if err != nil {
		return v, false, fmt.Errorf("manifest: load %q: %w", s.key, err)
	}
	if !found {
		return v, false, nil
	}
	if err := s.codec.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("manifest: load %q: %w", s.key, err)
	}

	s.mu.Lock()
	s.current, s.has = v, true
	s.mu.Unlock()
	return v, true, nil
}

// Save persists v under key. Only once store.Set has returned nil does
// Current begin reporting v; on any error, the store's blob at key and
// Current's reported value are both left untouched.
func (s *Store[T]) Save(ctx context.Context, v T) error {
	raw, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("manifest: save %q: %w", s.key, err)
	}
	if err := s.store.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("manifest: save %q: %w", s.key, err)
	}

	s.mu.Lock()
	s.current, s.has = v, true
	s.mu.Unlock()
	return nil
}

// Current returns the last value this Store successfully Saved or Loaded,
// and whether one exists yet.
func (s *Store[T]) Current() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.has
}

// CommitStore is the shape both Store and DynamoStore implement: publish a
// value of type T, and report the last one that was successfully published
// or loaded. table.Table depends on this interface rather than the
// concrete Store type, so a caller can swap in DynamoStore's
// compare-and-swap commit for deployments with more than one writer
// process against the same table.
type CommitStore[T any] interface {
	Load(ctx context.Context) (T, bool, error)
	Save(ctx context.Context, v T) error
	Current() (T, bool)
}

var (
	_ CommitStore[int] = (*Store[int])(nil)
	_ CommitStore[int] = (*DynamoStore[int])(nil)
)
