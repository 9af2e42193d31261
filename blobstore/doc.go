// Package blobstore provides the single external storage abstraction the
// core depends on: an opaque key to byte-value map.
//
// Store is intentionally minimal — Get and Set only. Everything segdb
// persists (chunk blobs, meta snapshots) is a whole value under one key;
// there is no append, no range read, no listing. Implementations must
// deep-copy on both Get and Set so that a caller mutating a returned slice,
// or the store's own caller mutating the slice passed to Set, can never
// alias another copy of the same bytes.
//
// # Built-in implementations
//
//   - MemoryStore: in-memory, for tests and ephemeral tables.
//   - LocalStore: one file per key under a root directory, reads via mmap.
//   - s3.Store: Amazon S3, one object per key.
package blobstore
