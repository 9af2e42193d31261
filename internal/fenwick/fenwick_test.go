package fenwick

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTree_PrefixSumAndTotal(t *testing.T) {
	counts := []int{3, 0, 2, 5, 1}
	tree := New(counts)

	require.Equal(t, 0, tree.PrefixSum(0))
	require.Equal(t, 3, tree.PrefixSum(1))
	require.Equal(t, 3, tree.PrefixSum(2))
	require.Equal(t, 5, tree.PrefixSum(3))
	require.Equal(t, 10, tree.PrefixSum(4))
	require.Equal(t, 11, tree.PrefixSum(5))
	require.Equal(t, 11, tree.Total())
}

func TestTree_Locate(t *testing.T) {
	counts := []int{3, 0, 2, 5, 1}
	tree := New(counts)

	cases := []struct {
		i              int
		segIdx, local int
	}{
		{0, 0, 0},
		{2, 0, 2},
		{3, 2, 0}, // segment 1 is empty, so position 3 routes into segment 2
		{4, 2, 1},
		{5, 3, 0},
		{9, 3, 4},
		{10, 4, 0},
	}
	for _, c := range cases {
		segIdx, local := tree.Locate(c.i)
		require.Equalf(t, c.segIdx, segIdx, "i=%d segIdx", c.i)
		require.Equalf(t, c.local, local, "i=%d local", c.i)
	}
}

func TestTree_PointAdd(t *testing.T) {
	tree := New([]int{1, 1, 1})
	tree.PointAdd(1, 5)
	require.Equal(t, 1, tree.PrefixSum(1))
	require.Equal(t, 7, tree.PrefixSum(2))
	require.Equal(t, 8, tree.PrefixSum(3))
	require.Equal(t, 8, tree.Total())
}

func TestTree_RebuildCountsAsOne(t *testing.T) {
	tree := New([]int{1, 2, 3})
	require.Equal(t, 1, tree.Rebuilds)
	tree.Rebuild([]int{1, 2, 3, 4})
	require.Equal(t, 2, tree.Rebuilds)
}
