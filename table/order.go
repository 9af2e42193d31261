package table

import (
	"context"
	"fmt"

	"github.com/hupe1980/segdb/blobstore"
	"github.com/hupe1980/segdb/chunk"
	"github.com/hupe1980/segdb/meta"
	"github.com/hupe1980/segdb/sequence"
	"github.com/hupe1980/segdb/value"
)

// orderColumn hides whether the table's designated key column is backed by
// an Ordered[float64] or an Ordered[string] sequence. Go generics can't
// abstract over a type parameter chosen at runtime, so the two concrete
// instantiations are wrapped behind one interface instead — the table
// itself only ever sees value.Value.
type orderColumn interface {
	Len() int
	Insert(ctx context.Context, v value.Value) (int, error)
	Range(ctx context.Context, a, b int) ([]value.Value, error)
	Flush(ctx context.Context) ([]string, error)
	Snapshot() meta.OrderMeta
	ValueType() meta.ColumnKind
}

type numberOrder struct {
	seq *sequence.Ordered[float64]
}

func newNumberOrder(store blobstore.Store, namespace string, s, c int, opts ...chunk.Option) *numberOrder {
	return &numberOrder{seq: sequence.NewOrdered[float64](store, namespace, s, c, opts...)}
}

func (o *numberOrder) Len() int { return o.seq.Len() }

func (o *numberOrder) Insert(ctx context.Context, v value.Value) (int, error) {
	if v.Kind != value.Number {
		return 0, &ErrOrderTypeMismatch{Expected: meta.KindNumber, Actual: kindOf(v)}
	}
	return o.seq.Insert(ctx, v.Num)
}

func (o *numberOrder) Range(ctx context.Context, a, b int) ([]value.Value, error) {
	vals, err := o.seq.Range(ctx, a, b)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(vals))
	for i, f := range vals {
		out[i] = value.Value{Kind: value.Number, Num: f}
	}
	return out, nil
}

func (o *numberOrder) Flush(ctx context.Context) ([]string, error) { return o.seq.Flush(ctx) }

func (o *numberOrder) Snapshot() meta.OrderMeta {
	m := o.seq.GetMeta()
	return meta.OrderMeta{ValueType: meta.KindNumber, NumberMeta: &m}
}

func (o *numberOrder) ValueType() meta.ColumnKind { return meta.KindNumber }

type stringOrder struct {
	seq *sequence.Ordered[string]
}

func newStringOrder(store blobstore.Store, namespace string, s, c int, opts ...chunk.Option) *stringOrder {
	return &stringOrder{seq: sequence.NewOrdered[string](store, namespace, s, c, opts...)}
}

func (o *stringOrder) Len() int { return o.seq.Len() }

func (o *stringOrder) Insert(ctx context.Context, v value.Value) (int, error) {
	if v.Kind != value.String {
		return 0, &ErrOrderTypeMismatch{Expected: meta.KindString, Actual: kindOf(v)}
	}
	return o.seq.Insert(ctx, v.Str)
}

func (o *stringOrder) Range(ctx context.Context, a, b int) ([]value.Value, error) {
	vals, err := o.seq.Range(ctx, a, b)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(vals))
	for i, s := range vals {
		out[i] = value.Value{Kind: value.String, Str: s}
	}
	return out, nil
}

func (o *stringOrder) Flush(ctx context.Context) ([]string, error) { return o.seq.Flush(ctx) }

func (o *stringOrder) Snapshot() meta.OrderMeta {
	m := o.seq.GetMeta()
	return meta.OrderMeta{ValueType: meta.KindString, StringMeta: &m}
}

func (o *stringOrder) ValueType() meta.ColumnKind { return meta.KindString }

func kindOf(v value.Value) meta.ColumnKind {
	if v.Kind == value.String {
		return meta.KindString
	}
	return meta.KindNumber
}

// newOrderColumn creates an empty order column of the given declared kind.
func newOrderColumn(kind meta.ColumnKind, store blobstore.Store, namespace string, s, c int, opts ...chunk.Option) (orderColumn, error) {
	switch kind {
	case meta.KindNumber:
		return newNumberOrder(store, namespace, s, c, opts...), nil
	case meta.KindString:
		return newStringOrder(store, namespace, s, c, opts...), nil
	default:
		return nil, fmt.Errorf("table: unknown order value type %v", kind)
	}
}

// restoreOrderColumn rehydrates an order column from a persisted snapshot.
func restoreOrderColumn(m meta.OrderMeta, store blobstore.Store, namespace string, s, c int, opts ...chunk.Option) (orderColumn, error) {
	switch m.ValueType {
	case meta.KindNumber:
		if m.NumberMeta == nil {
			return nil, fmt.Errorf("table: order meta declares number type with no numberMeta")
		}
		o := newNumberOrder(store, namespace, s, c, opts...)
		o.seq.SetMeta(*m.NumberMeta)
		return o, nil
	case meta.KindString:
		if m.StringMeta == nil {
			return nil, fmt.Errorf("table: order meta declares string type with no stringMeta")
		}
		o := newStringOrder(store, namespace, s, c, opts...)
		o.seq.SetMeta(*m.StringMeta)
		return o, nil
	default:
		return nil, fmt.Errorf("table: unknown order value type %v", m.ValueType)
	}
}
