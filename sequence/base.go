// Package sequence implements the Fenwick-indexed segmented substrate
// shared by the indexed and ordered sequence variants, plus the two
// variants themselves. Indexed and Ordered each wrap the unexported base
// and share one discipline: segments are loaded
// on demand, dirty segments are tracked until Flush, and every multi-segment
// operation pre-loads its segments concurrently (no read waterfall), via
// golang.org/x/sync/errgroup: every segment load is fanned out to its own
// goroutine and joined with g.Wait(), so no single slow segment blocks the
// rest from starting.
package sequence

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/segdb/blobstore"
	"github.com/hupe1980/segdb/chunk"
	"github.com/hupe1980/segdb/internal/fenwick"
	"github.com/hupe1980/segdb/internal/segment"
	"github.com/hupe1980/segdb/meta"
)

// base is the Fenwick-indexed segment list shared by Indexed[T] and
// Ordered[T]. Not safe for concurrent use: callers serialize at the
// sequence boundary (single-writer discipline).
type base[T any] struct {
	s     int
	layer *chunk.Layer[T]

	segments []*segment.Segment[T]
	chunks   []string // chunks[cidx]: chunk index -> current store key
	tree     *fenwick.Tree
	dirty    map[int]struct{}
	total    int
}

func newBase[T any](store blobstore.Store, namespace string, s, c int, opts ...chunk.Option) *base[T] {
	if s <= 0 {
		s = 1
	}
	return &base[T]{
		s:     s,
		layer: chunk.New[T](store, namespace, c, opts...),
		tree:  &fenwick.Tree{},
		dirty: make(map[int]struct{}),
	}
}

// Len returns total_count, the number of elements across all segments.
func (b *base[T]) Len() int { return b.total }

func (b *base[T]) segCount(idx int) int { return b.segments[idx].Count }

func (b *base[T]) markDirty(idx int) { b.dirty[idx] = struct{}{} }

// ensureLoaded loads a single cold segment from its chunk.
func (b *base[T]) ensureLoaded(ctx context.Context, segIdx int) error {
	seg := b.segments[segIdx]
	if seg.Loaded() {
		return nil
	}
	cidx := segIdx / b.layer.C()
	local := segIdx % b.layer.C()
	key := ""
	if cidx < len(b.chunks) {
		key = b.chunks[cidx]
	}
	slots, err := b.layer.Load(ctx, cidx, key)
	if err != nil {
		return err
	}
	if local >= len(slots) {
		seg.Load([]T{})
		return nil
	}
	seg.Load(slots[local])
	return nil
}

// ensureLoadedMany loads every named cold segment concurrently: a single
// "batch" of concurrent loads rather than one load per segment awaited in
// turn. This is the no-waterfall property range, scan, and insertManyAt
// all require: none of them may await one segment load before starting the
// next.
func (b *base[T]) ensureLoadedMany(ctx context.Context, segIdxs []int) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, idx := range segIdxs {
		idx := idx
		g.Go(func() error {
			return b.ensureLoaded(ctx, idx)
		})
	}
	return g.Wait()
}

// locate finds (segIdx, local) for global position i via the Fenwick tree.
func (b *base[T]) locate(i int) (int, int) { return b.tree.Locate(i) }

// ensureFirstSegment creates the sequence's first (empty) segment the first
// time anything is inserted into an empty sequence. This is the single
// tree rebuild an incremental-Fenwick discipline allows: every insertAt
// thereafter uses PointAdd unless a split occurs.
func (b *base[T]) ensureFirstSegment() {
	if len(b.segments) == 0 {
		b.segments = append(b.segments, segment.New[T]())
		b.rebuildTree()
	}
}

// insertOne splices v into segIdx at local position (the segment must
// already be the loaded, correct target), updates its count and bounds,
// marks it dirty, and either point-updates the Fenwick tree or — if the
// insert overflowed the segment — splits it (which rebuilds the tree
// wholesale instead of point-updating).
func (b *base[T]) insertOne(ctx context.Context, segIdx, local int, v T, boundsFn func([]T) (bool, T, T)) error {
	if err := b.ensureLoaded(ctx, segIdx); err != nil {
		return err
	}
	seg := b.segments[segIdx]

	seg.Values = append(seg.Values, v)
	copy(seg.Values[local+1:], seg.Values[local:len(seg.Values)-1])
	seg.Values[local] = v
	seg.Count++
	if boundsFn != nil {
		seg.HasBounds, seg.Min, seg.Max = boundsFn(seg.Values)
	}
	b.markDirty(segIdx)
	b.total++

	split, err := b.splitToFit(ctx, segIdx, boundsFn)
	if err != nil {
		return err
	}
	if !split {
		b.tree.PointAdd(segIdx, 1)
	}
	return nil
}

// get returns a deep-copy-free read of element i (the caller must not
// mutate the returned segment backing array via this path; callers needing
// a safe copy use Range).
func (b *base[T]) get(ctx context.Context, i int) (T, error) {
	var zero T
	if i < 0 || i >= b.total {
		return zero, fmt.Errorf("sequence: index %d out of range [0, %d)", i, b.total)
	}
	segIdx, local := b.locate(i)
	if err := b.ensureLoaded(ctx, segIdx); err != nil {
		return zero, err
	}
	return b.segments[segIdx].Values[local], nil
}

// rng returns a deep copy of elements [a, b).
func (b *base[T]) rng(ctx context.Context, a, bEnd int) ([]T, error) {
	if a < 0 || bEnd > b.total || a > bEnd {
		return nil, fmt.Errorf("sequence: range [%d, %d) out of bounds [0, %d)", a, bEnd, b.total)
	}
	if a == bEnd {
		return []T{}, nil
	}

	startSeg, _ := b.locate(a)
	endSeg, _ := b.locate(bEnd - 1)
	touched := make([]int, 0, endSeg-startSeg+1)
	for idx := startSeg; idx <= endSeg; idx++ {
		touched = append(touched, idx)
	}
	if err := b.ensureLoadedMany(ctx, touched); err != nil {
		return nil, err
	}

	out := make([]T, 0, bEnd-a)
	pos := b.tree.PrefixSum(startSeg)
	for _, idx := range touched {
		seg := b.segments[idx]
		for local, v := range seg.Values {
			global := pos + local
			if global >= a && global < bEnd {
				out = append(out, v)
			}
		}
		pos += seg.Count
	}
	return out, nil
}

// trySplitOnce splits segIdx once if it has overflowed S, inserting the new
// right half immediately after it. Does not touch the Fenwick tree —
// callers that may perform several splits in a batch rebuild once after
// all of them. Returns false (no-op) if the segment doesn't overflow, or
// if splitting would produce an empty half (tolerated as transient S+1
// overflow).
func (b *base[T]) trySplitOnce(segIdx int, boundsFn func([]T) (bool, T, T)) bool {
	seg := b.segments[segIdx]
	if seg.Count <= b.s {
		return false
	}

	mid := seg.Count / 2
	if mid == 0 || seg.Count-mid == 0 {
		return false
	}

	left := append([]T{}, seg.Values[:mid]...)
	right := append([]T{}, seg.Values[mid:]...)

	newLeft := &segment.Segment[T]{Values: left, Count: len(left), Dirty: true}
	newRight := &segment.Segment[T]{Values: right, Count: len(right), Dirty: true}
	if boundsFn != nil {
		newLeft.HasBounds, newLeft.Min, newLeft.Max = boundsFn(left)
		newRight.HasBounds, newRight.Min, newRight.Max = boundsFn(right)
	}

	b.segments[segIdx] = newLeft
	b.segments = append(b.segments, nil)
	copy(b.segments[segIdx+2:], b.segments[segIdx+1:])
	b.segments[segIdx+1] = newRight

	b.markDirty(segIdx)
	b.markDirty(segIdx + 1)
	return true
}

// splitToFit repeatedly splits segIdx (then its resulting right half, and
// so on) until every resulting segment fits within S, rebuilding the
// Fenwick tree once at the end if any split occurred. Returns whether a
// split happened.
//
// A split at segIdx shifts the position — and therefore the chunk slot,
// since a chunk's logical address is floor(segIdx/C) — of every later
// segment. Before shifting anything, realignTail loads and dirties that
// tail using its still-valid current addressing, so the next Flush
// rewrites every downstream chunk in full under its new grouping instead
// of leaving stale slots from the old grouping in place.
func (b *base[T]) splitToFit(ctx context.Context, segIdx int, boundsFn func([]T) (bool, T, T)) (bool, error) {
	if b.segments[segIdx].Count <= b.s {
		return false, nil
	}
	if err := b.realignTail(ctx, segIdx+1); err != nil {
		return false, err
	}

	split := false
	cur := segIdx
	for b.trySplitOnce(cur, boundsFn) {
		split = true
		cur++
	}
	if split {
		b.rebuildTree()
	}
	return split, nil
}

// realignTail loads every segment from index from to the end of the list
// (using their current, still-accurate chunk addressing) and marks them
// dirty, ahead of a split that is about to shift their position.
func (b *base[T]) realignTail(ctx context.Context, from int) error {
	if from >= len(b.segments) {
		return nil
	}
	idxs := make([]int, 0, len(b.segments)-from)
	for i := from; i < len(b.segments); i++ {
		idxs = append(idxs, i)
	}
	if err := b.ensureLoadedMany(ctx, idxs); err != nil {
		return err
	}
	for _, i := range idxs {
		b.markDirty(i)
	}
	return nil
}

func (b *base[T]) rebuildTree() {
	counts := make([]int, len(b.segments))
	for i, seg := range b.segments {
		counts[i] = seg.Count
	}
	b.tree.Rebuild(counts)
}

// flush groups dirty segments by chunk index, commits each affected chunk
// concurrently, updates the chunk-key table, and clears the dirty set.
// Idempotent: flushing with no dirty segments is a no-op.
func (b *base[T]) flush(ctx context.Context) ([]string, error) {
	if len(b.dirty) == 0 {
		return nil, nil
	}

	byChunk := make(map[int]map[int][]T)
	for segIdx := range b.dirty {
		cidx := segIdx / b.layer.C()
		local := segIdx % b.layer.C()
		if byChunk[cidx] == nil {
			byChunk[cidx] = make(map[int][]T)
		}
		byChunk[cidx][local] = b.segments[segIdx].Snapshot()
	}

	cidxs := make([]int, 0, len(byChunk))
	for cidx := range byChunk {
		cidxs = append(cidxs, cidx)
	}
	sort.Ints(cidxs)

	for len(b.chunks) < len(b.segments)/b.layer.C()+1 {
		b.chunks = append(b.chunks, "")
	}

	newKeys := make([]string, len(cidxs))
	g, gctx := errgroup.WithContext(ctx)
	for i, cidx := range cidxs {
		i, cidx := i, cidx
		g.Go(func() error {
			key := ""
			if cidx < len(b.chunks) {
				key = b.chunks[cidx]
			}
			newKey, err := b.layer.Commit(gctx, cidx, key, byChunk[cidx])
			if err != nil {
				return err
			}
			newKeys[i] = newKey
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, cidx := range cidxs {
		b.chunks[cidx] = newKeys[i]
	}
	b.dirty = make(map[int]struct{})
	return newKeys, nil
}

// snapshotMeta builds a SequenceMeta from current live state.
func (b *base[T]) snapshotMeta() meta.SequenceMeta[T] {
	descs := make([]segment.Descriptor[T], len(b.segments))
	for i, seg := range b.segments {
		descs[i] = seg.Descriptor()
	}
	chunks := make([]string, len(b.chunks))
	copy(chunks, b.chunks)
	return meta.SequenceMeta[T]{S: b.s, C: b.layer.C(), Segments: descs, Chunks: chunks}
}

// restoreMeta rehydrates live state from a persisted snapshot: segments are
// recreated cold (no working arrays), the Fenwick tree is rebuilt from
// counts, total_count is derived, and the chunk cache starts empty (a fresh
// base's layer has never cached anything).
func (b *base[T]) restoreMeta(m meta.SequenceMeta[T]) {
	b.s = m.S
	b.segments = make([]*segment.Segment[T], len(m.Segments))
	total := 0
	for i, d := range m.Segments {
		b.segments[i] = segment.FromDescriptor(d)
		total += d.Count
	}
	b.chunks = append([]string{}, m.Chunks...)
	b.total = total
	b.dirty = make(map[int]struct{})
	b.rebuildTree()
}
