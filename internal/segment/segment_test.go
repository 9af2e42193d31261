package segment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegment_LoadAndSnapshot(t *testing.T) {
	s := FromDescriptor(Descriptor[int]{Count: 3})
	require.False(t, s.Loaded())

	s.Load([]int{1, 2, 3})
	require.True(t, s.Loaded())
	require.Equal(t, 3, s.Count)

	snap := s.Snapshot()
	snap[0] = 99
	require.Equal(t, 1, s.Values[0], "snapshot must be a deep copy")
}

func TestSegment_New(t *testing.T) {
	s := New[string]()
	require.True(t, s.Loaded())
	require.Equal(t, 0, s.Count)
}
