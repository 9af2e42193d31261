// Package chunk implements the copy-on-write persistence layer shared by
// every sequence: a chunk groups up to C segments into one stored blob,
// keyed by chunk index. A write to any one segment's slot re-serializes the
// whole chunk under a freshly generated key and leaves every other slot
// byte-identical to the prior write — callers never mutate a chunk blob in
// place.
//
// Wire format: a codec.Codec payload (the per-segment value arrays) is
// checksummed, then compressed with klauspost/compress/zstd (the default) or
// pierrec/lz4, behind a one-byte compressor tag, before being written to the
// blob store.
package chunk
