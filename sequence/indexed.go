package sequence

import (
	"context"
	"fmt"
	"sort"

	"github.com/hupe1980/segdb/blobstore"
	"github.com/hupe1980/segdb/chunk"
	"github.com/hupe1980/segdb/meta"
)

// IndexValue pairs a target position with the value to insert there, for
// Indexed.InsertManyAt.
type IndexValue[T any] struct {
	Index int
	Value T
}

// Indexed is a Fenwick-indexed sequence supporting positional insert,
// lookup, and range.
type Indexed[T any] struct {
	b *base[T]
}

// NewIndexed creates an empty indexed sequence persisted under namespace,
// with at most s values per segment and c segments per chunk. opts
// configures the underlying chunk layer, e.g. chunk.WithCompression.
func NewIndexed[T any](store blobstore.Store, namespace string, s, c int, opts ...chunk.Option) *Indexed[T] {
	return &Indexed[T]{b: newBase[T](store, namespace, s, c, opts...)}
}

// Len returns the number of elements currently in the sequence.
func (seq *Indexed[T]) Len() int { return seq.b.Len() }

// Get returns the element at global position i.
func (seq *Indexed[T]) Get(ctx context.Context, i int) (T, error) {
	return seq.b.get(ctx, i)
}

// Range returns a deep copy of elements [a, b).
func (seq *Indexed[T]) Range(ctx context.Context, a, b int) ([]T, error) {
	return seq.b.rng(ctx, a, b)
}

// Flush writes every dirty segment's chunk under a fresh key and returns
// the set of newly written keys. A no-op (empty result, no error) if
// nothing is dirty.
func (seq *Indexed[T]) Flush(ctx context.Context) ([]string, error) {
	return seq.b.flush(ctx)
}

// GetMeta returns a snapshot of the sequence's current live state.
func (seq *Indexed[T]) GetMeta() meta.SequenceMeta[T] { return seq.b.snapshotMeta() }

// SetMeta discards live state and rehydrates from m.
func (seq *Indexed[T]) SetMeta(m meta.SequenceMeta[T]) { seq.b.restoreMeta(m) }

// RebuildCount returns the number of whole-Fenwick-tree rebuilds performed
// so far. Exposed for tests asserting the "exactly one rebuild per batch"
// invariant.
func (seq *Indexed[T]) RebuildCount() int { return seq.b.tree.Rebuilds }

// InsertAt inserts value at global position index, clamped to
// [0, Len()]. Returns the (clamped) index it was inserted at.
//
// Fast paths: an empty sequence creates its first segment; an append
// (index == Len()) routes directly to the last segment without a Locate
// call. Otherwise the Fenwick tree locates the owning segment.
func (seq *Indexed[T]) InsertAt(ctx context.Context, index int, value T) (int, error) {
	b := seq.b
	if index < 0 {
		index = 0
	}
	if index > b.total {
		index = b.total
	}

	if len(b.segments) == 0 {
		b.ensureFirstSegment()
	}

	var segIdx, local int
	if index == b.total {
		segIdx = len(b.segments) - 1
		if err := b.ensureLoaded(ctx, segIdx); err != nil {
			return 0, err
		}
		local = b.segments[segIdx].Count
	} else {
		segIdx, local = b.locate(index)
	}

	if err := b.insertOne(ctx, segIdx, local, value, nil); err != nil {
		return 0, fmt.Errorf("sequence: insertAt: %w", err)
	}
	return index, nil
}

// InsertManyAt applies pairs as if each were inserted via InsertAt in input
// order, but does so as one batch: target indexes are converted to
// pre-existing-array coordinates via a stable rank transform, touched
// segments are pre-loaded concurrently (no waterfall), each segment is
// merged in one pass, overflowing segments are split, and the Fenwick tree
// is rebuilt exactly once at the end.
func (seq *Indexed[T]) InsertManyAt(ctx context.Context, pairs []IndexValue[T]) error {
	b := seq.b
	n := len(pairs)
	if n == 0 {
		return nil
	}

	total := b.total

	if len(b.segments) == 0 {
		b.ensureFirstSegment()
	}

	// Fast path: sequence was empty before this batch. The general rank
	// transform below degenerates when total_count is 0 (every target
	// clamps to the same old_index), so build the initial segment by
	// literally replaying each pair's splice against a growing slice in
	// input order instead.
	if total == 0 {
		vals := make([]T, 0, n)
		for _, p := range pairs {
			idx := p.Index
			if idx < 0 {
				idx = 0
			}
			if idx > len(vals) {
				idx = len(vals)
			}
			vals = append(vals, p.Value)
			copy(vals[idx+1:], vals[idx:len(vals)-1])
			vals[idx] = p.Value
		}
		seg := b.segments[0]
		seg.Load(vals)
		b.markDirty(0)
		b.total = n

		cur := 0
		for b.trySplitOnce(cur, nil) {
			cur++
		}
		b.rebuildTree()
		return nil
	}

	// General case: convert each target (given in the array coordinates
	// the pair would see if every earlier-in-input-order pair had already
	// been spliced in) back to a position in the pre-existing array.
	//
	// Sorting by target ascending groups pairs that land in the same
	// pre-existing gap together. Within such a group, sequential splicing
	// means each later (by input order) insert lands to the left of the
	// earlier ones at that exact target, so ties break by order
	// descending. Pairs in a strictly smaller target group have all
	// already been counted once the group is reached, so every pair in a
	// group shares one old_index: its target minus the running count of
	// pairs seen so far (not its individual rank).
	type annotated struct {
		target int
		order  int
		value  T
	}
	items := make([]annotated, n)
	for i, p := range pairs {
		items[i] = annotated{target: p.Index, order: i, value: p.Value}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].target != items[j].target {
			return items[i].target < items[j].target
		}
		return items[i].order > items[j].order
	})

	type placedItem struct {
		oldIndex int
		value    T
	}
	placed := make([]placedItem, 0, n)
	shift := 0
	for i := 0; i < len(items); {
		j := i
		for j < len(items) && items[j].target == items[i].target {
			j++
		}
		old := items[i].target - shift
		if old < 0 {
			old = 0
		}
		if old > total {
			old = total
		}
		for k := i; k < j; k++ {
			placed = append(placed, placedItem{oldIndex: old, value: items[k].value})
		}
		shift += j - i
		i = j
	}

	type segItem struct {
		local int
		value T
	}
	groups := make(map[int][]segItem)
	var segOrder []int
	for _, p := range placed {
		var segIdx, local int
		if p.oldIndex == total {
			segIdx = len(b.segments) - 1
			local = b.segments[segIdx].Count
		} else {
			segIdx, local = b.locate(p.oldIndex)
		}
		if _, ok := groups[segIdx]; !ok {
			segOrder = append(segOrder, segIdx)
		}
		groups[segIdx] = append(groups[segIdx], segItem{local, p.value})
	}

	if err := b.ensureLoadedMany(ctx, segOrder); err != nil {
		return fmt.Errorf("sequence: insertManyAt: %w", err)
	}

	for _, segIdx := range segOrder {
		items := groups[segIdx]
		sort.SliceStable(items, func(i, j int) bool { return items[i].local < items[j].local })

		seg := b.segments[segIdx]
		merged := make([]T, 0, seg.Count+len(items))
		ii := 0
		for localPos := 0; localPos <= seg.Count; localPos++ {
			for ii < len(items) && items[ii].local == localPos {
				merged = append(merged, items[ii].value)
				ii++
			}
			if localPos < seg.Count {
				merged = append(merged, seg.Values[localPos])
			}
		}
		seg.Load(merged)
		b.markDirty(segIdx)
	}
	b.total += n

	// Descending order: splitting a lower segIdx shifts every later one, so
	// the highest-indexed group must be finalized (and realigned) before an
	// earlier split can safely touch its own still-correct addressing.
	sort.Sort(sort.Reverse(sort.IntSlice(segOrder)))
	for _, segIdx := range segOrder {
		if _, err := b.splitToFit(ctx, segIdx, nil); err != nil {
			return fmt.Errorf("sequence: insertManyAt: %w", err)
		}
	}
	b.rebuildTree()
	return nil
}
