// Package table composes one ordered sequence (the designated order/key
// column) with dynamically-created typed indexed columns into a table,
// committed atomically as a whole.
package table

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/segdb/blobstore"
	"github.com/hupe1980/segdb/chunk"
	"github.com/hupe1980/segdb/codec"
	"github.com/hupe1980/segdb/manifest"
	"github.com/hupe1980/segdb/meta"
	"github.com/hupe1980/segdb/sequence"
	"github.com/hupe1980/segdb/value"
)

// Value re-exports value.Value as the table's public cell type, closed to
// the two concrete kinds a column may declare: number and string.
type Value = value.Value

// Row is one table row: column name to cell value. The designated order
// key must be present and non-missing for Insert to accept the row.
type Row = map[string]Value

// CommitStoreFactory builds the manifest.CommitStore a Table publishes its
// committed snapshot through. The default, installed by New, is
// manifest.NewStore; SetCommitStoreFactory swaps in an alternative such as
// manifest.NewDynamoStore for deployments with more than one writer against
// the same metaKey.
type CommitStoreFactory func(store blobstore.Store, c codec.Codec, key string) manifest.CommitStore[meta.TableMeta]

func defaultCommitStoreFactory(store blobstore.Store, c codec.Codec, key string) manifest.CommitStore[meta.TableMeta] {
	return manifest.NewStore[meta.TableMeta](store, c, key)
}

// Table composes an ordered key column with dynamically-created typed
// (number/string) indexed columns under one atomically-committed meta
// snapshot. Not safe for concurrent use — single-writer discipline, same as
// the sequence package it builds on.
type Table struct {
	store     blobstore.Store
	codec     codec.Codec
	namespace string
	s, c      int
	chunkOpts []chunk.Option

	orderKey string
	order    orderColumn

	numberCols map[string]*sequence.Indexed[Value]
	stringCols map[string]*sequence.Indexed[Value]

	commitStoreFactory CommitStoreFactory

	committed    meta.TableMeta
	hasCommitted bool
}

// New creates an empty table persisted under namespace, with orderKey as
// its designated order column of declared kind orderType. s and c are the
// segment/chunk defaults applied to every sequence the table owns,
// including columns created implicitly on first sighting. chunkOpts
// configures every column's underlying chunk layer, e.g.
// chunk.WithCompression.
func New(store blobstore.Store, namespace, orderKey string, orderType meta.ColumnKind, s, c int, chunkOpts ...chunk.Option) (*Table, error) {
	order, err := newOrderColumn(orderType, store, namespace+"/order", s, c, chunkOpts...)
	if err != nil {
		return nil, fmt.Errorf("table: new: %w", err)
	}
	return &Table{
		store:              store,
		codec:              codec.Default,
		namespace:          namespace,
		s:                  s,
		c:                  c,
		chunkOpts:          chunkOpts,
		orderKey:           orderKey,
		order:              order,
		numberCols:         make(map[string]*sequence.Indexed[Value]),
		stringCols:         make(map[string]*sequence.Indexed[Value]),
		commitStoreFactory: defaultCommitStoreFactory,
	}, nil
}

// SetCommitStoreFactory replaces the factory Flush uses to build the
// manifest.CommitStore it publishes the committed snapshot through. Must be
// called before the first Flush; a nil factory restores the default.
func (t *Table) SetCommitStoreFactory(f CommitStoreFactory) {
	if f == nil {
		f = defaultCommitStoreFactory
	}
	t.commitStoreFactory = f
}

func (t *Table) columnNamespace(kind meta.ColumnKind, name string) string {
	if kind == meta.KindString {
		return t.namespace + "/str/" + name
	}
	return t.namespace + "/num/" + name
}

// Insert appends rows in order. Each row's order-key value is inserted
// into the order column to obtain its global position P; every other
// non-missing cell is inserted at P into its (possibly newly created)
// column, and every pre-existing column the row omits is padded with the
// Missing sentinel at P to preserve C.total_count == order.total_count.
//
// On error, earlier rows in rows have already been inserted — Insert does
// not roll back a partially-applied batch.
func (t *Table) Insert(ctx context.Context, rows []Row) error {
	for _, row := range rows {
		if err := t.insertRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) insertRow(ctx context.Context, row Row) error {
	ov, ok := row[t.orderKey]
	if !ok || ov.IsMissing() {
		return ErrMissingOrderKey
	}
	idx, err := t.order.Insert(ctx, ov)
	if err != nil {
		return fmt.Errorf("table: insert: %w", err)
	}
	total := t.order.Len()

	mentioned := make(map[string]bool, len(row))
	for name, v := range row {
		if name == t.orderKey {
			continue
		}
		if v.IsMissing() {
			continue
		}
		if v.Kind != value.Number && v.Kind != value.String {
			return ErrUnsupportedColumnType
		}
		mentioned[name] = true

		col, isNew, err := t.columnFor(v.Kind, name)
		if err != nil {
			return err
		}
		if isNew {
			if err := seedNewColumn(ctx, col, idx, total, v); err != nil {
				return fmt.Errorf("table: insert: %w", err)
			}
			continue
		}
		if _, err := col.InsertAt(ctx, idx, v); err != nil {
			return fmt.Errorf("table: insert: %w", err)
		}
	}

	missing := Value{Kind: value.Missing}
	for name, col := range t.numberCols {
		if mentioned[name] {
			continue
		}
		if _, err := col.InsertAt(ctx, idx, missing); err != nil {
			return fmt.Errorf("table: insert: %w", err)
		}
	}
	for name, col := range t.stringCols {
		if mentioned[name] {
			continue
		}
		if _, err := col.InsertAt(ctx, idx, missing); err != nil {
			return fmt.Errorf("table: insert: %w", err)
		}
	}
	return nil
}

// columnFor returns the named column of the given kind, creating it (and
// reporting isNew) the first time it is sighted. An existing column
// previously created under the other kind is a type conflict.
func (t *Table) columnFor(kind value.Kind, name string) (col *sequence.Indexed[Value], isNew bool, err error) {
	switch kind {
	case value.Number:
		if existing, ok := t.numberCols[name]; ok {
			return existing, false, nil
		}
		if _, ok := t.stringCols[name]; ok {
			return nil, false, ErrColumnTypeConflict
		}
		col = sequence.NewIndexed[Value](t.store, t.columnNamespace(meta.KindNumber, name), t.s, t.c, t.chunkOpts...)
		t.numberCols[name] = col
		return col, true, nil
	case value.String:
		if existing, ok := t.stringCols[name]; ok {
			return existing, false, nil
		}
		if _, ok := t.numberCols[name]; ok {
			return nil, false, ErrColumnTypeConflict
		}
		col = sequence.NewIndexed[Value](t.store, t.columnNamespace(meta.KindString, name), t.s, t.c, t.chunkOpts...)
		t.stringCols[name] = col
		return col, true, nil
	default:
		return nil, false, ErrUnsupportedColumnType
	}
}

// seedNewColumn builds a column from empty to length total in one batch,
// placing v at idx and the Missing sentinel at every other position, so a
// column created mid-history still satisfies the alignment invariant the
// moment it comes into existence.
func seedNewColumn(ctx context.Context, col *sequence.Indexed[Value], idx, total int, v Value) error {
	pairs := make([]sequence.IndexValue[Value], total)
	for i := 0; i < total; i++ {
		cell := Value{Kind: value.Missing}
		if i == idx {
			cell = v
		}
		pairs[i] = sequence.IndexValue[Value]{Index: i, Value: cell}
	}
	return col.InsertManyAt(ctx, pairs)
}

// Get fetches position-i values from every non-order column and assembles
// them into a Row; missing cells are omitted. The order column's own value
// is not included — see Range for rows that include it.
func (t *Table) Get(ctx context.Context, i int) (Row, error) {
	row := make(Row)
	for name, col := range t.numberCols {
		v, err := col.Get(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("table: get: %w", err)
		}
		if !v.IsMissing() {
			row[name] = v
		}
	}
	for name, col := range t.stringCols {
		v, err := col.Get(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("table: get: %w", err)
		}
		if !v.IsMissing() {
			row[name] = v
		}
	}
	return row, nil
}

// Range fetches a positional slice [offset, offset+limit) of the order
// column and every non-order column, and assembles aligned Rows. A
// negative limit means "to the end".
func (t *Table) Range(ctx context.Context, offset, limit int) ([]Row, error) {
	total := t.order.Len()
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}

	orderVals, err := t.order.Range(ctx, offset, end)
	if err != nil {
		return nil, fmt.Errorf("table: range: %w", err)
	}

	rows := make([]Row, len(orderVals))
	for i, v := range orderVals {
		rows[i] = Row{t.orderKey: v}
	}

	for name, col := range t.numberCols {
		vals, err := col.Range(ctx, offset, end)
		if err != nil {
			return nil, fmt.Errorf("table: range: %w", err)
		}
		for i, v := range vals {
			if !v.IsMissing() {
				rows[i][name] = v
			}
		}
	}
	for name, col := range t.stringCols {
		vals, err := col.Range(ctx, offset, end)
		if err != nil {
			return nil, fmt.Errorf("table: range: %w", err)
		}
		for i, v := range vals {
			if !v.IsMissing() {
				rows[i][name] = v
			}
		}
	}
	return rows, nil
}

// Flush flushes every column (order plus all typed columns) concurrently,
// then persists a cloned meta snapshot under metaKey — in that order. If
// any column's flush fails, the committed snapshot (and the store's blob at
// metaKey) are left exactly as they were.
func (t *Table) Flush(ctx context.Context, metaKey string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := t.order.Flush(gctx)
		return err
	})
	for _, col := range t.numberCols {
		col := col
		g.Go(func() error {
			_, err := col.Flush(gctx)
			return err
		})
	}
	for _, col := range t.stringCols {
		col := col
		g.Go(func() error {
			_, err := col.Flush(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("table: flush: %w", err)
	}

	snapshot := t.snapshot()
	commit := t.commitStoreFactory(t.store, t.codec, metaKey)
	if err := commit.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("table: flush: %w", err)
	}

	t.committed = snapshot.Clone()
	t.hasCommitted = true
	return nil
}

// GetMeta returns the last committed snapshot, or a fresh empty one if
// Flush has never succeeded.
func (t *Table) GetMeta() meta.TableMeta {
	if !t.hasCommitted {
		return t.freshMeta()
	}
	return t.committed.Clone()
}

// SetMeta discards all live column state and rehydrates every column —
// order plus typed — from m.
func (t *Table) SetMeta(m meta.TableMeta) error {
	if want := t.order.ValueType(); m.Order.ValueType != want {
		return fmt.Errorf("table: setMeta: %w", &ErrOrderTypeMismatch{Expected: want, Actual: m.Order.ValueType})
	}
	t.s, t.c = m.Defaults.S, m.Defaults.C

	order, err := restoreOrderColumn(m.Order, t.store, t.namespace+"/order", t.s, t.c, t.chunkOpts...)
	if err != nil {
		return fmt.Errorf("table: setMeta: %w", err)
	}
	t.order = order
	t.orderKey = m.Order.Key

	numberCols := make(map[string]*sequence.Indexed[Value], len(m.NumberColumns))
	for name, sm := range m.NumberColumns {
		col := sequence.NewIndexed[Value](t.store, t.columnNamespace(meta.KindNumber, name), t.s, t.c, t.chunkOpts...)
		col.SetMeta(sm)
		numberCols[name] = col
	}
	stringCols := make(map[string]*sequence.Indexed[Value], len(m.StringColumns))
	for name, sm := range m.StringColumns {
		col := sequence.NewIndexed[Value](t.store, t.columnNamespace(meta.KindString, name), t.s, t.c, t.chunkOpts...)
		col.SetMeta(sm)
		stringCols[name] = col
	}
	t.numberCols = numberCols
	t.stringCols = stringCols

	t.committed = m.Clone()
	t.hasCommitted = true
	return nil
}

func (t *Table) snapshot() meta.TableMeta {
	om := t.order.Snapshot()
	om.Key = t.orderKey

	numberCols := make(map[string]meta.SequenceMeta[Value], len(t.numberCols))
	for name, col := range t.numberCols {
		numberCols[name] = col.GetMeta()
	}
	stringCols := make(map[string]meta.SequenceMeta[Value], len(t.stringCols))
	for name, col := range t.stringCols {
		stringCols[name] = col.GetMeta()
	}

	return meta.TableMeta{
		Defaults:      meta.TableDefaults{S: t.s, C: t.c},
		Order:         om,
		NumberColumns: numberCols,
		StringColumns: stringCols,
	}
}

func (t *Table) freshMeta() meta.TableMeta {
	om := meta.OrderMeta{Key: t.orderKey, ValueType: t.order.ValueType()}
	if om.ValueType == meta.KindString {
		om.StringMeta = &meta.SequenceMeta[string]{S: t.s, C: t.c}
	} else {
		om.NumberMeta = &meta.SequenceMeta[float64]{S: t.s, C: t.c}
	}
	return meta.TableMeta{
		Defaults:      meta.TableDefaults{S: t.s, C: t.c},
		Order:         om,
		NumberColumns: map[string]meta.SequenceMeta[Value]{},
		StringColumns: map[string]meta.SequenceMeta[Value]{},
	}
}
