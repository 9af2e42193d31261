package segdb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/segdb/persistence"
)

// A checksum mismatch surfaced by any column's chunk layer must be
// translated into an ErrCorruptChunk by the time it reaches a DB caller,
// the same way table's ErrOrderTypeMismatch is translated today.
func TestTranslateError_ChecksumMismatchBecomesErrCorruptChunk(t *testing.T) {
	cause := fmt.Errorf("chunk: %w", &persistence.ChecksumMismatchError{Expected: 1, Actual: 2})
	wrapped := fmt.Errorf("segdb: get: %w", cause)

	err := translateError(wrapped)

	var corrupt *ErrCorruptChunk
	if !errors.As(err, &corrupt) {
		t.Fatalf("translateError(%v) = %v, want an *ErrCorruptChunk", wrapped, err)
	}
	if errors.Unwrap(corrupt) != wrapped {
		t.Fatal("ErrCorruptChunk must unwrap to the original error chain")
	}
	if !persistence.IsChecksumMismatch(err) {
		t.Fatal("the checksum mismatch must still be reachable via persistence.IsChecksumMismatch through the translated error")
	}
}

func TestTranslateError_NilIsNil(t *testing.T) {
	if err := translateError(nil); err != nil {
		t.Fatalf("translateError(nil) = %v, want nil", err)
	}
}

func TestTranslateError_UnrelatedErrorPassesThrough(t *testing.T) {
	original := errors.New("boom")
	if err := translateError(original); err != original {
		t.Fatalf("translateError(%v) = %v, want the same error back", original, err)
	}
}
