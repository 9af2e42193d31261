// Package meta defines the serializable snapshots that let a sequence or
// table be rehydrated against the same blob store: enough to reconstruct
// the Fenwick tree, segment list, and chunk-key table without replaying any
// history.
package meta

import (
	"github.com/hupe1980/segdb/internal/segment"
	"github.com/hupe1980/segdb/value"
)

// SequenceMeta is the persisted snapshot of one Fenwick-based sequence: its
// configuration, the cold descriptor of every segment in order, and the
// chunk key table indexed by chunk index. Rehydration rebuilds the Fenwick
// tree from Segments' counts and derives total_count as their sum; segment
// working arrays and the chunk cache start empty.
type SequenceMeta[T any] struct {
	S        int                     `json:"s"`
	C        int                     `json:"c"`
	Segments []segment.Descriptor[T] `json:"segments"`
	Chunks   []string                `json:"chunks"`
}

// Clone returns a deep copy, safe to hand out as the table's "committed"
// snapshot without risking later aliasing by live sequence state.
func (m SequenceMeta[T]) Clone() SequenceMeta[T] {
	segs := make([]segment.Descriptor[T], len(m.Segments))
	copy(segs, m.Segments)
	chunks := make([]string, len(m.Chunks))
	copy(chunks, m.Chunks)
	return SequenceMeta[T]{S: m.S, C: m.C, Segments: segs, Chunks: chunks}
}

// ColumnKind tags the declared element type of a table column.
type ColumnKind int

const (
	KindNumber ColumnKind = iota
	KindString
)

func (k ColumnKind) String() string {
	if k == KindString {
		return "string"
	}
	return "number"
}

// OrderMeta is the persisted snapshot of a table's order (key) column.
// Exactly one of NumberMeta/StringMeta is populated, selected by ValueType.
type OrderMeta struct {
	Key       string              `json:"key"`
	ValueType ColumnKind          `json:"valueType"`
	NumberMeta *SequenceMeta[float64] `json:"numberMeta,omitempty"`
	StringMeta *SequenceMeta[string]  `json:"stringMeta,omitempty"`
}

// TableDefaults carries the segment/chunk sizing applied to sequences a
// table creates implicitly on first sighting of a column.
type TableDefaults struct {
	S int `json:"s"`
	C int `json:"c"`
}

// TableMeta is the persisted snapshot of an entire table: the order column
// plus every typed data column, grouped by declared kind.
type TableMeta struct {
	Defaults      TableDefaults                        `json:"defaults"`
	Order         OrderMeta                             `json:"order"`
	NumberColumns map[string]SequenceMeta[value.Value] `json:"numberColumns"`
	StringColumns map[string]SequenceMeta[value.Value] `json:"stringColumns"`
}

// Clone returns a deep copy of the table snapshot.
func (m TableMeta) Clone() TableMeta {
	out := TableMeta{
		Defaults:      m.Defaults,
		Order:         m.Order,
		NumberColumns: make(map[string]SequenceMeta[value.Value], len(m.NumberColumns)),
		StringColumns: make(map[string]SequenceMeta[value.Value], len(m.StringColumns)),
	}
	if m.Order.NumberMeta != nil {
		c := m.Order.NumberMeta.Clone()
		out.Order.NumberMeta = &c
	}
	if m.Order.StringMeta != nil {
		c := m.Order.StringMeta.Clone()
		out.Order.StringMeta = &c
	}
	for name, sm := range m.NumberColumns {
		out.NumberColumns[name] = sm.Clone()
	}
	for name, sm := range m.StringColumns {
		out.StringColumns[name] = sm.Clone()
	}
	return out
}
