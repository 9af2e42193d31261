package segdb

import (
	"log/slog"

	"github.com/hupe1980/segdb/chunk"
	"github.com/hupe1980/segdb/codec"
	"github.com/hupe1980/segdb/table"
)

// Default segment/chunk sizing applied when no WithSegmentSize/WithChunkSize
// option is given.
const (
	DefaultSegmentSize = 256
	DefaultChunkSize   = 16
)

type options struct {
	codec              codec.Codec
	logger             *Logger
	segmentSize        int
	chunkSize          int
	chunkOpts          []chunk.Option
	commitStoreFactory table.CommitStoreFactory
}

// Option configures Open.
type Option func(*options)

// WithCodec configures the codec used to marshal meta snapshots.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures structured logging for table operations. Pass nil
// to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger at the given level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithSegmentSize configures the maximum number of values held in one
// working segment before it splits, for every column the table owns
// (including columns created implicitly on first sighting). Must be
// positive; non-positive values are ignored.
func WithSegmentSize(s int) Option {
	return func(o *options) {
		if s > 0 {
			o.segmentSize = s
		}
	}
}

// WithChunkSize configures the number of consecutive segments grouped into
// one persisted chunk blob. Must be positive; non-positive values are
// ignored.
func WithChunkSize(c int) Option {
	return func(o *options) {
		if c > 0 {
			o.chunkSize = c
		}
	}
}

// WithChunkCompression selects the block compressor used for every
// column's persisted chunks (chunk.CompressionZSTD by default).
// chunk.CompressionLZ4 trades ratio for speed on workloads that flush
// often.
func WithChunkCompression(c chunk.Compression) Option {
	return func(o *options) {
		o.chunkOpts = append(o.chunkOpts, chunk.WithCompression(c))
	}
}

// WithManifestStore replaces the manifest.CommitStore a table publishes its
// committed snapshot through at flush time. The default is a plain
// manifest.Store (one blob-store key, last write wins); pass a factory
// wrapping manifest.NewDynamoStore to get compare-and-swap commit semantics
// when more than one writer can flush the same table.
func WithManifestStore(f table.CommitStoreFactory) Option {
	return func(o *options) {
		o.commitStoreFactory = f
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:       codec.Default,
		logger:      NoopLogger(),
		segmentSize: DefaultSegmentSize,
		chunkSize:   DefaultChunkSize,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
