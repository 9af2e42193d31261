package sequence

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/hupe1980/segdb/blobstore"
)

// buildPairs turns a slice of raw, unconstrained target candidates into a
// batch of (target, value) pairs valid for InsertManyAt: pair i's target is
// raw[i] clamped into [0, i], matching the range InsertAt itself would
// clamp index into after i prior sequential inserts.
func buildPairs(raw []int) []IndexValue[int] {
	pairs := make([]IndexValue[int], len(raw))
	for i, r := range raw {
		idx := r
		if idx < 0 {
			idx = 0
		}
		if idx > i {
			idx = i
		}
		pairs[i] = IndexValue[int]{Index: idx, Value: idx*1000 + i}
	}
	return pairs
}

// TestProperty_InsertManyAtMatchesSequentialInserts: for any
// sequence of (target, value) pairs, applying them via one InsertManyAt
// batch must produce exactly the array that applying them one at a time via
// InsertAt, in the same order, would produce — regardless of segment size,
// so both the unsplit and the splitting code paths are exercised.
func TestProperty_InsertManyAtMatchesSequentialInserts(t *testing.T) {
	ctx := context.Background()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("InsertManyAt matches sequential InsertAt", prop.ForAll(
		func(raw []int, s int) bool {
			pairs := buildPairs(raw)

			batch := NewIndexed[int](blobstore.NewMemoryStore(), "batch", s, 3)
			if err := batch.InsertManyAt(ctx, pairs); err != nil {
				return false
			}

			ref := NewIndexed[int](blobstore.NewMemoryStore(), "ref", s, 3)
			for _, p := range pairs {
				if _, err := ref.InsertAt(ctx, p.Index, p.Value); err != nil {
					return false
				}
			}

			if batch.Len() != ref.Len() {
				return false
			}
			got, err := batch.Range(ctx, 0, batch.Len())
			if err != nil {
				return false
			}
			want, err := ref.Range(ctx, 0, ref.Len())
			if err != nil {
				return false
			}
			if len(got) != len(want) {
				return false
			}
			for i := range got {
				if got[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(12, gen.IntRange(-5, 20)),
		gen.IntRange(1, 6),
	))

	properties.TestingRun(t)
}

// TestProperty_OrderedInsertKeepsSortedOrder: inserting
// any sequence of ints one at a time via Ordered.Insert always leaves the
// sequence sorted ascending, regardless of segment size.
func TestProperty_OrderedInsertKeepsSortedOrder(t *testing.T) {
	ctx := context.Background()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Ordered.Insert keeps the sequence sorted", prop.ForAll(
		func(values []int, s int) bool {
			seq := NewOrdered[int](blobstore.NewMemoryStore(), "ord", s, 3)
			for _, v := range values {
				if _, err := seq.Insert(ctx, v); err != nil {
					return false
				}
			}
			if seq.Len() != len(values) {
				return false
			}
			got, err := seq.Range(ctx, 0, seq.Len())
			if err != nil {
				return false
			}
			for i := 1; i < len(got); i++ {
				if got[i-1] > got[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(20, gen.IntRange(-50, 50)),
		gen.IntRange(1, 6),
	))

	properties.TestingRun(t)
}
