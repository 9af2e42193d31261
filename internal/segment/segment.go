// Package segment defines the bounded, in-memory working set a sequence
// operates on, and the cold descriptor that survives rehydration when a
// segment's array has not been loaded.
package segment

// Descriptor is the persisted, cold shape of a segment: everything known
// about it without loading its working array. Meta snapshots carry one
// Descriptor per segment.
type Descriptor[T any] struct {
	Count     int
	HasBounds bool
	Min, Max  T
}

// Segment is a bounded, in-memory working copy of at most S values of type
// T. It is owned exclusively by its parent sequence; a segment is never
// shared across sequences and never aliases the chunk cache's copy.
//
// Values is nil for a cold segment whose Count is known from metadata but
// whose content has not yet been loaded from the chunk layer. Once loaded,
// len(Values) must equal Count.
type Segment[T any] struct {
	Values    []T
	Count     int
	HasBounds bool
	Min, Max  T
	Dirty     bool
}

// New creates an empty, already-loaded segment.
func New[T any]() *Segment[T] {
	return &Segment[T]{Values: []T{}}
}

// FromDescriptor creates a cold segment (Values == nil) from a persisted
// descriptor.
func FromDescriptor[T any](d Descriptor[T]) *Segment[T] {
	return &Segment[T]{
		Count:     d.Count,
		HasBounds: d.HasBounds,
		Min:       d.Min,
		Max:       d.Max,
	}
}

// Loaded reports whether the segment's working array is currently present.
func (s *Segment[T]) Loaded() bool {
	return s.Values != nil
}

// Load installs a working array loaded from the chunk layer (a deep copy,
// never aliasing the chunk cache) and recomputes Count from it.
func (s *Segment[T]) Load(values []T) {
	s.Values = values
	s.Count = len(values)
}

// Descriptor returns the cold, persistable shape of the segment.
func (s *Segment[T]) Descriptor() Descriptor[T] {
	return Descriptor[T]{
		Count:     s.Count,
		HasBounds: s.HasBounds,
		Min:       s.Min,
		Max:       s.Max,
	}
}

// Snapshot returns a deep copy of the segment's current values, safe to
// hand to a chunk write or to a caller without risk of later aliasing.
func (s *Segment[T]) Snapshot() []T {
	out := make([]T, len(s.Values))
	copy(out, s.Values)
	return out
}
