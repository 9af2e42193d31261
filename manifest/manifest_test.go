package manifest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segdb/blobstore"
	"github.com/hupe1980/segdb/codec"
)

type snapshot struct {
	Version int
	Note    string
}

func TestStore_SaveThenCurrentAndLoad(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := NewStore[snapshot](store, codec.Default, "k")

	_, ok := m.Current()
	assert.False(t, ok)

	require.NoError(t, m.Save(ctx, snapshot{Version: 1, Note: "first"}))
	v, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, snapshot{Version: 1, Note: "first"}, v)

	other := NewStore[snapshot](store, codec.Default, "k")
	loaded, ok, err := other.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, v, loaded)
}

func TestStore_LoadMissingKey(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	m := NewStore[snapshot](store, codec.Default, "absent")

	_, ok, err := m.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveFailureLeavesCurrentUntouched(t *testing.T) {
	ctx := context.Background()
	inner := blobstore.NewMemoryStore()
	faulty := blobstore.NewFaultyStore(inner)
	m := NewStore[snapshot](faulty, codec.Default, "k")

	require.NoError(t, m.Save(ctx, snapshot{Version: 1}))

	faulty.AddRule("k", blobstore.Fault{FailSet: true})
	err := m.Save(ctx, snapshot{Version: 2})
	assert.Error(t, err)

	v, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, snapshot{Version: 1}, v)

	raw, found, err := inner.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)

	var persisted snapshot
	require.NoError(t, codec.Default.Unmarshal(raw, &persisted))
	assert.Equal(t, snapshot{Version: 1}, persisted)
}
