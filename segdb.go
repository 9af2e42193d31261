package segdb

import (
	"context"
	"fmt"

	"github.com/hupe1980/segdb/blobstore"
	"github.com/hupe1980/segdb/codec"
	"github.com/hupe1980/segdb/manifest"
	"github.com/hupe1980/segdb/meta"
	"github.com/hupe1980/segdb/table"
)

// DB is a thin, logging facade over a single table.Table.
type DB struct {
	t      *table.Table
	logger *Logger
}

// Open creates a new, empty table under namespace in store, with orderKey
// as its designated order column of declared kind orderType.
func Open(store blobstore.Store, namespace, orderKey string, orderType meta.ColumnKind, opts ...Option) (*DB, error) {
	o := applyOptions(opts)

	t, err := table.New(store, namespace, orderKey, orderType, o.segmentSize, o.chunkSize, o.chunkOpts...)
	if err != nil {
		return nil, fmt.Errorf("segdb: open: %w", err)
	}
	factory := o.commitStoreFactory
	if factory == nil {
		factory = func(store blobstore.Store, c codec.Codec, key string) manifest.CommitStore[meta.TableMeta] {
			return manifest.NewStore[meta.TableMeta](store, c, key)
		}
	}
	t.SetCommitStoreFactory(func(store blobstore.Store, _ codec.Codec, key string) manifest.CommitStore[meta.TableMeta] {
		return factory(store, o.codec, key)
	})
	return &DB{t: t, logger: o.logger.WithTable(namespace)}, nil
}

// Insert appends rows in order, inserting each row's order-key value into
// the order column and every other non-missing cell into its (possibly
// newly created) column. See table.Table.Insert for the alignment and
// partial-batch-progress guarantees.
func (db *DB) Insert(ctx context.Context, rows []table.Row) error {
	err := db.t.Insert(ctx, rows)
	db.logger.LogInsert(ctx, len(rows), err)
	if err != nil {
		return translateError(fmt.Errorf("segdb: insert: %w", err))
	}
	return nil
}

// Get fetches position-i values from every non-order column.
func (db *DB) Get(ctx context.Context, i int) (table.Row, error) {
	row, err := db.t.Get(ctx, i)
	db.logger.LogGet(ctx, i, err)
	if err != nil {
		return nil, translateError(fmt.Errorf("segdb: get: %w", err))
	}
	return row, nil
}

// Range fetches rows [offset, offset+limit), including the order key. A
// negative limit means "to the end".
func (db *DB) Range(ctx context.Context, offset, limit int) ([]table.Row, error) {
	if offset < 0 {
		db.logger.LogRange(ctx, offset, limit, 0, ErrInvalidOffset)
		return nil, ErrInvalidOffset
	}
	rows, err := db.t.Range(ctx, offset, limit)
	db.logger.LogRange(ctx, offset, limit, len(rows), err)
	if err != nil {
		return nil, translateError(fmt.Errorf("segdb: range: %w", err))
	}
	return rows, nil
}

// Flush flushes every column, then atomically publishes a new meta
// snapshot under metaKey. See table.Table.Flush for the rollback guarantee.
func (db *DB) Flush(ctx context.Context, metaKey string) error {
	err := db.t.Flush(ctx, metaKey)
	db.logger.LogFlush(ctx, metaKey, err)
	if err != nil {
		return fmt.Errorf("segdb: flush: %w", err)
	}
	return nil
}

// GetMeta returns the last committed meta snapshot, for persisting
// out-of-band (e.g. a separate catalog of table -> metaKey mappings).
func (db *DB) GetMeta() meta.TableMeta { return db.t.GetMeta() }

// SetMeta discards live state and rehydrates every column from m — the
// counterpart to loading a table back from a previously flushed metaKey.
func (db *DB) SetMeta(ctx context.Context, m meta.TableMeta) error {
	err := db.t.SetMeta(m)
	db.logger.LogRestore(ctx, "", err)
	if err != nil {
		return fmt.Errorf("segdb: setMeta: %w", err)
	}
	return nil
}
