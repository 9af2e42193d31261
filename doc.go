// Package segdb provides an embedded, append-ordered, columnar storage
// engine for time-series-shaped data.
//
// segdb is built from three layers: a segmented Fenwick-tree positional
// index (package sequence/internal structures), an ordered sequence and an
// indexed sequence layered on it, and a table that composes one ordered key
// column with any number of dynamically-typed data columns under one
// atomically-committed meta snapshot.
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blobstore.NewMemoryStore()
//	db, _ := segdb.Open(store, "events", "ts", meta.KindNumber)
//
//	db.Insert(ctx, []table.Row{
//	    {"ts": value.Of(1.0), "name": value.Of("first")},
//	})
//	db.Flush(ctx, "events/meta")
//
//	row, _ := db.Get(ctx, 0)
//	rows, _ := db.Range(ctx, 0, 10)
//
// # Storage
//
// A Store is an opaque key-value map (blobstore.Store); segdb ships
// in-memory, local-filesystem, and S3-backed implementations. Re-opening a
// table from an existing store is GetMeta/SetMeta round-tripped through the
// same key the table was last flushed under.
//
// # Durability Model
//
// segdb has no WAL: Insert mutates in-memory segments only, and Flush
// writes every dirty segment plus a new meta snapshot. A Flush that fails
// partway through a column leaves the previously committed snapshot, and
// the store's value at its meta key, untouched.
package segdb
