package chunk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segdb/blobstore"
)

func TestLayer_CommitPreservesOtherSlots(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	layer := New[int](store, "seq-1", 4)

	key, err := layer.Commit(ctx, 0, "", map[int][]int{0: {1, 2, 3}})
	require.NoError(t, err)
	require.NotEmpty(t, key)

	key2, err := layer.Commit(ctx, 0, key, map[int][]int{2: {9}})
	require.NoError(t, err)
	require.NotEqual(t, key, key2, "copy-on-write must produce a new key")

	slots, err := layer.Load(ctx, 0, key2)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, slots[0])
	require.Equal(t, []int{9}, slots[2])
	require.Empty(t, slots[1])
	require.Empty(t, slots[3])

	// The original key's blob must be untouched (copy-on-write).
	oldSlots, err := New[int](store, "seq-1", 4).Load(ctx, 0, key)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, oldSlots[0])
	require.Empty(t, oldSlots[2])
}

func TestLayer_EmptyKeyYieldsCSlots(t *testing.T) {
	ctx := context.Background()
	layer := New[string](blobstore.NewMemoryStore(), "seq", 3)
	slots, err := layer.Load(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, slots, 3)
}

func TestLayer_ZeroCTreatedAsOne(t *testing.T) {
	layer := New[int](blobstore.NewMemoryStore(), "seq", 0)
	require.Equal(t, 1, layer.C())
}
