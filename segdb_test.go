package segdb

import (
	"context"
	"testing"

	"github.com/hupe1980/segdb/blobstore"
	"github.com/hupe1980/segdb/meta"
	"github.com/hupe1980/segdb/table"
	"github.com/hupe1980/segdb/value"
)

func TestDB_InsertGetRangeFlushRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	db, err := Open(store, "metrics", "ts", meta.KindNumber, WithSegmentSize(4), WithChunkSize(2))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	rows := []table.Row{
		{"ts": value.Of(2.0), "cpu": value.Of(50.0)},
		{"ts": value.Of(1.0), "cpu": value.Of(10.0)},
		{"ts": value.Of(3.0), "host": value.Of("a")},
	}
	if err := db.Insert(ctx, rows); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := db.Get(ctx, 0)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cpu, ok := got["cpu"]; !ok || cpu.Num != 10.0 {
		t.Fatalf("Get(0) = %+v, want cpu=10 (row with ts=1 sorts first)", got)
	}

	ranged, err := db.Range(ctx, 0, -1)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(ranged) != 3 {
		t.Fatalf("Range returned %d rows, want 3", len(ranged))
	}
	if ranged[0]["ts"].Num != 1.0 {
		t.Fatalf("Range[0].ts = %v, want 1", ranged[0]["ts"].Num)
	}

	if err := db.Flush(ctx, "metrics/current"); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	m := db.GetMeta()
	if m.Order.Key != "ts" {
		t.Fatalf("GetMeta().Order.Key = %q, want ts", m.Order.Key)
	}

	restored, err := Open(store, "metrics", "ts", meta.KindNumber)
	if err != nil {
		t.Fatalf("Open (restore target): %v", err)
	}
	if err := restored.SetMeta(ctx, m); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	again, err := restored.Get(ctx, 0)
	if err != nil {
		t.Fatalf("Get after SetMeta: %v", err)
	}
	if cpu, ok := again["cpu"]; !ok || cpu.Num != 10.0 {
		t.Fatalf("Get(0) after SetMeta = %+v, want cpu=10", again)
	}
}

func TestDB_Insert_MissingOrderKeyIsRejected(t *testing.T) {
	ctx := context.Background()
	db, err := Open(blobstore.NewMemoryStore(), "t", "id", meta.KindNumber)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	err = db.Insert(ctx, []table.Row{{"other": value.Of(1.0)}})
	if err == nil {
		t.Fatal("expected an error for a row missing its order key")
	}
}

func TestDB_Range_NegativeOffsetRejected(t *testing.T) {
	ctx := context.Background()
	db, err := Open(blobstore.NewMemoryStore(), "t", "id", meta.KindNumber)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := db.Range(ctx, -1, 10); err != ErrInvalidOffset {
		t.Fatalf("Range(-1, 10) error = %v, want ErrInvalidOffset", err)
	}
}
