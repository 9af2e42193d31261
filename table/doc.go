// Package table composes an ordered key column with dynamically-typed data
// columns into a row-oriented view over the sequence package, and commits
// their combined state atomically.
//
// A Table has exactly one designated order column (number or string
// kind) and any number of data columns, created the first time a row sets
// them. Every data column is kept aligned to the order column's length:
// rows that omit a column receive the Missing sentinel at their position,
// and a column created mid-history is seeded in one batch so it starts out
// aligned rather than catching up row by row.
//
//	t, _ := table.New(store, "events", "ts", meta.KindNumber, 256, 16)
//	t.Insert(ctx, []table.Row{{"ts": value.Of(1.0), "name": value.Of("a")}})
//	row, _ := t.Get(ctx, 0)
//	err := t.Flush(ctx, "events/meta")
package table
