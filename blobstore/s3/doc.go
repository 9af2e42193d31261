// Package s3 implements blobstore.Store on top of Amazon S3, one object per
// key. It is grounded on vecgo's blobstore/s3 package, reduced from vecgo's
// streaming Blob/WritableBlob/ReadRange abstraction (built for random-access
// reads into partially-loaded vector indexes) down to the whole-value
// Get/Set the core needs: a chunk or meta snapshot is always read and
// written in full, never by byte range.
package s3
