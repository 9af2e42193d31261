// Package value defines the tagged-union cell type tables use for both
// their public row representation and their internal typed-column storage,
// so that a column's indexed sequence can represent "this row never set
// this column" without a nil interface{} or a parallel presence bitmap.
//
// This mirrors vecgo's model.Record, whose Metadata is an open
// map[string]interface{}; segdb closes that union down to the two
// concrete kinds a column may declare (number, string) plus an explicit
// Missing kind, trading the flexibility of interface{} for a type a
// column's sequence can store and compare directly.
package value

// Kind discriminates a Value's payload.
type Kind int

const (
	// Missing marks a cell a row never set for a column that exists on
	// other rows. Never compares equal to any Number or String value.
	Missing Kind = iota
	Number
	String
)

// Value is a nullable, typed table cell.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
}

// Of wraps a concrete Go value as a Value. Panics on any type other than
// float64 and string, since a table column is never declared any other
// way.
func Of(v any) Value {
	switch x := v.(type) {
	case float64:
		return Value{Kind: Number, Num: x}
	case string:
		return Value{Kind: String, Str: x}
	default:
		panic("value: unsupported column value type")
	}
}

// IsMissing reports whether v represents an unset cell.
func (v Value) IsMissing() bool { return v.Kind == Missing }

// Less orders two same-kind values; used by the order column's segment
// bounds and lower-bound search. Values of differing kind are never
// compared within one column.
func (v Value) Less(other Value) bool {
	switch v.Kind {
	case Number:
		return v.Num < other.Num
	case String:
		return v.Str < other.Str
	default:
		return false
	}
}

// Equal reports whether v and other carry the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case Number:
		return v.Num == other.Num
	case String:
		return v.Str == other.Str
	default:
		return true
	}
}
