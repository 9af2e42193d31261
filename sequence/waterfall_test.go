package sequence

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/segdb/blobstore"
)

// countingStore wraps a blobstore.Store and tracks the peak number of Get
// calls in flight simultaneously, so tests can assert that a multi-segment
// operation issues its loads as one concurrent batch rather than a serial
// waterfall.
type countingStore struct {
	blobstore.Store
	inFlight int64
	peak     int64
	gets     int64
}

func newCountingStore(inner blobstore.Store) *countingStore {
	return &countingStore{Store: inner}
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	atomic.AddInt64(&s.gets, 1)
	cur := atomic.AddInt64(&s.inFlight, 1)
	defer atomic.AddInt64(&s.inFlight, -1)
	for {
		p := atomic.LoadInt64(&s.peak)
		if cur <= p || atomic.CompareAndSwapInt64(&s.peak, p, cur) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond) // widen the concurrency window for the test
	return s.Store.Get(ctx, key)
}

func (s *countingStore) PeakInFlight() int { return int(atomic.LoadInt64(&s.peak)) }
func (s *countingStore) TotalGets() int    { return int(atomic.LoadInt64(&s.gets)) }
