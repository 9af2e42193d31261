package sequence

import (
	"cmp"
	"context"
	"fmt"
	"sort"

	"github.com/hupe1980/segdb/blobstore"
	"github.com/hupe1980/segdb/chunk"
	"github.com/hupe1980/segdb/meta"
)

// Ordered is a Fenwick-indexed sequence that keeps its values in sorted
// order, partitioned into segments carrying their own (min, max) bounds.
type Ordered[T cmp.Ordered] struct {
	b *base[T]
}

// NewOrdered creates an empty ordered sequence persisted under namespace,
// with at most s values per segment and c segments per chunk. opts
// configures the underlying chunk layer, e.g. chunk.WithCompression.
func NewOrdered[T cmp.Ordered](store blobstore.Store, namespace string, s, c int, opts ...chunk.Option) *Ordered[T] {
	return &Ordered[T]{b: newBase[T](store, namespace, s, c, opts...)}
}

// Len returns the number of elements currently in the sequence.
func (seq *Ordered[T]) Len() int { return seq.b.Len() }

// Get returns the element at global position i.
func (seq *Ordered[T]) Get(ctx context.Context, i int) (T, error) {
	return seq.b.get(ctx, i)
}

// Range returns a deep copy of elements [a, b) in sorted order.
func (seq *Ordered[T]) Range(ctx context.Context, a, b int) ([]T, error) {
	return seq.b.rng(ctx, a, b)
}

// Flush writes every dirty segment's chunk under a fresh key and returns
// the set of newly written keys.
func (seq *Ordered[T]) Flush(ctx context.Context) ([]string, error) {
	return seq.b.flush(ctx)
}

// GetMeta returns a snapshot of the sequence's current live state.
func (seq *Ordered[T]) GetMeta() meta.SequenceMeta[T] { return seq.b.snapshotMeta() }

// SetMeta discards live state and rehydrates from m.
func (seq *Ordered[T]) SetMeta(m meta.SequenceMeta[T]) { seq.b.restoreMeta(m) }

// RebuildCount returns the number of whole-Fenwick-tree rebuilds performed
// so far. Exposed for tests asserting the "exactly one rebuild per batch"
// invariant.
func (seq *Ordered[T]) RebuildCount() int { return seq.b.tree.Rebuilds }

func boundsOf[T cmp.Ordered](values []T) (bool, T, T) {
	if len(values) == 0 {
		var zero T
		return false, zero, zero
	}
	return true, values[0], values[len(values)-1]
}

// routeSegment returns the index of the first segment whose max >= v,
// using only each segment's (cold-safe) bounds — no load required. If no
// segment qualifies (v is greater than every bound), the last segment is
// returned.
func (seq *Ordered[T]) routeSegment(v T) int {
	segs := seq.b.segments
	idx := sort.Search(len(segs), func(i int) bool {
		return segs[i].HasBounds && segs[i].Max >= v
	})
	if idx == len(segs) {
		return len(segs) - 1
	}
	return idx
}

// lowerBound returns the first index in values whose element is >= v.
func lowerBound[T cmp.Ordered](values []T, v T) int {
	return sort.Search(len(values), func(i int) bool { return values[i] >= v })
}

// Insert splices v into sorted position, splitting its segment if it
// overflows. Returns the new global position.
func (seq *Ordered[T]) Insert(ctx context.Context, v T) (int, error) {
	b := seq.b
	if len(b.segments) == 0 {
		b.ensureFirstSegment()
	}

	segIdx := seq.routeSegment(v)
	if err := b.ensureLoaded(ctx, segIdx); err != nil {
		return 0, fmt.Errorf("sequence: insert: %w", err)
	}
	local := lowerBound(b.segments[segIdx].Values, v)

	if err := b.insertOne(ctx, segIdx, local, v, boundsOf[T]); err != nil {
		return 0, fmt.Errorf("sequence: insert: %w", err)
	}
	return b.tree.PrefixSum(segIdx) + local, nil
}

// Scan returns every element in the half-open range [lo, hi), in sorted
// order, along with each element's global index.
func (seq *Ordered[T]) Scan(ctx context.Context, lo, hi T) ([]T, []int, error) {
	b := seq.b
	if len(b.segments) == 0 {
		return []T{}, []int{}, nil
	}

	start := sort.Search(len(b.segments), func(i int) bool {
		return b.segments[i].HasBounds && b.segments[i].Max >= lo
	})
	if start == len(b.segments) {
		return []T{}, []int{}, nil
	}

	end := start
	for end < len(b.segments) && b.segments[end].HasBounds && b.segments[end].Min < hi {
		end++
	}

	touched := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		touched = append(touched, i)
	}
	if err := b.ensureLoadedMany(ctx, touched); err != nil {
		return nil, nil, fmt.Errorf("sequence: scan: %w", err)
	}

	var values []T
	var indexes []int
	pos := b.tree.PrefixSum(start)
	for _, segIdx := range touched {
		seg := b.segments[segIdx]
		from := lowerBound(seg.Values, lo)
		to := lowerBound(seg.Values, hi)
		for local := from; local < to; local++ {
			values = append(values, seg.Values[local])
			indexes = append(indexes, pos+local)
		}
		if to < seg.Count {
			// The upper bound fell strictly inside this segment: no later
			// segment can hold elements < hi.
			break
		}
		pos += seg.Count
	}
	if values == nil {
		values = []T{}
	}
	if indexes == nil {
		indexes = []int{}
	}
	return values, indexes, nil
}

// GetIndex returns the lower-bound global index of v: the position of the
// first element >= v, or Len() if v is greater than every element.
func (seq *Ordered[T]) GetIndex(ctx context.Context, v T) (int, error) {
	b := seq.b
	if len(b.segments) == 0 {
		return 0, nil
	}
	segIdx := seq.routeSegment(v)
	if err := b.ensureLoaded(ctx, segIdx); err != nil {
		return 0, fmt.Errorf("sequence: getIndex: %w", err)
	}
	local := lowerBound(b.segments[segIdx].Values, v)
	return b.tree.PrefixSum(segIdx) + local, nil
}
