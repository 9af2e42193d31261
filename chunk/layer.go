package chunk

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/segdb/blobstore"
	"github.com/hupe1980/segdb/codec"
)

// Layer is the copy-on-write chunk store for one sequence. It groups up to
// C segments into a single blob per chunk index, decoding/encoding via
// codec.Codec plus a configurable block compressor, and caches the decoded
// slots of each chunk it has touched this session.
type Layer[T any] struct {
	store       blobstore.Store
	codec       codec.Codec
	c           int
	namespace   string
	compression Compression

	mu    sync.Mutex
	cache map[int][][]T
}

// Option configures a Layer created via New.
type Option func(*layerOptions)

type layerOptions struct {
	compression Compression
}

// WithCompression selects the block compressor applied to chunks this
// Layer commits. Defaults to CompressionZSTD when not given. Chunks
// already on disk under the other compressor remain readable regardless
// of this setting.
func WithCompression(compression Compression) Option {
	return func(o *layerOptions) { o.compression = compression }
}

// New creates a chunk layer for a sequence identified by namespace, with c
// segments per chunk. c <= 0 is treated as 1 (one segment per chunk).
func New[T any](store blobstore.Store, namespace string, c int, opts ...Option) *Layer[T] {
	if c <= 0 {
		c = 1
	}
	o := layerOptions{compression: CompressionZSTD}
	for _, fn := range opts {
		fn(&o)
	}
	return &Layer[T]{
		store:       store,
		codec:       codec.Default,
		c:           c,
		namespace:   namespace,
		compression: o.compression,
		cache:       make(map[int][][]T),
	}
}

// C returns the configured segments-per-chunk.
func (l *Layer[T]) C() int { return l.c }

// Load returns the C slots of chunk cidx as currently committed under key.
// An empty key (chunk never written) yields C empty slots. The returned
// slice and its elements are a deep copy; callers may mutate freely.
func (l *Layer[T]) Load(ctx context.Context, cidx int, key string) ([][]T, error) {
	l.mu.Lock()
	if slots, ok := l.cache[cidx]; ok {
		l.mu.Unlock()
		return deepCopy(slots), nil
	}
	l.mu.Unlock()

	var slots [][]T
	if key == "" {
		slots = emptySlots[T](l.c)
	} else {
		raw, ok, err := l.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("chunk: load cidx=%d: %w", cidx, err)
		}
		if !ok {
			return nil, fmt.Errorf("chunk: load cidx=%d: key %q: %w", cidx, key, blobstore.ErrNotFound)
		}
		slots, err = decode[T](l.codec, raw)
		if err != nil {
			return nil, fmt.Errorf("chunk: load cidx=%d: %w", cidx, err)
		}
		if len(slots) < l.c {
			slots = append(slots, emptySlots[T](l.c-len(slots))...)
		}
	}

	l.mu.Lock()
	l.cache[cidx] = deepCopy(slots)
	l.mu.Unlock()
	return deepCopy(slots), nil
}

// Commit applies overrides (local slot index within the chunk -> new
// values) to chunk cidx's current contents under key, writes the resulting
// whole chunk under a freshly generated key, and returns that key. All
// slots not named in overrides are preserved byte-identical to the prior
// write.
func (l *Layer[T]) Commit(ctx context.Context, cidx int, key string, overrides map[int][]T) (string, error) {
	slots, err := l.Load(ctx, cidx, key)
	if err != nil {
		return "", err
	}

	for local, values := range overrides {
		for local >= len(slots) {
			slots = append(slots, []T{})
		}
		slots[local] = values
	}

	payload, err := encode(l.codec, slots, l.compression)
	if err != nil {
		return "", fmt.Errorf("chunk: commit cidx=%d: %w", cidx, err)
	}

	newKey := newKey(l.namespace, cidx)
	if err := l.store.Set(ctx, newKey, payload); err != nil {
		return "", fmt.Errorf("chunk: commit cidx=%d: %w", cidx, err)
	}

	l.mu.Lock()
	l.cache[cidx] = deepCopy(slots)
	l.mu.Unlock()

	return newKey, nil
}

func emptySlots[T any](n int) [][]T {
	slots := make([][]T, n)
	for i := range slots {
		slots[i] = []T{}
	}
	return slots
}

func deepCopy[T any](slots [][]T) [][]T {
	out := make([][]T, len(slots))
	for i, s := range slots {
		cp := make([]T, len(s))
		copy(cp, s)
		out[i] = cp
	}
	return out
}
