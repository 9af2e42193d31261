package segdb

import (
	"errors"
	"fmt"

	"github.com/hupe1980/segdb/persistence"
	"github.com/hupe1980/segdb/table"
)

// Re-exported so callers can errors.Is/errors.As against the facade package
// without importing table or blobstore directly.
var (
	ErrMissingOrderKey      = table.ErrMissingOrderKey
	ErrUnsupportedColumnType = table.ErrUnsupportedColumnType
	ErrColumnTypeConflict   = table.ErrColumnTypeConflict
)

// ErrInvalidOffset is returned by Range when offset is negative.
var ErrInvalidOffset = errors.New("segdb: offset must be non-negative")

// ErrOrderTypeMismatch indicates a row's order-key value kind doesn't match
// the table's declared order value type.
//
// The underlying cause, if any, can be reached via errors.Unwrap.
type ErrOrderTypeMismatch struct {
	cause error
}

func (e *ErrOrderTypeMismatch) Error() string {
	return fmt.Sprintf("segdb: order type mismatch: %v", e.cause)
}

func (e *ErrOrderTypeMismatch) Unwrap() error { return e.cause }

// ErrCorruptChunk indicates a stored chunk's contents no longer match its
// checksum — the underlying storage returned bytes that don't match what
// was written.
//
// The underlying persistence.ChecksumMismatchError can be reached via
// errors.Unwrap.
type ErrCorruptChunk struct {
	cause error
}

func (e *ErrCorruptChunk) Error() string {
	return fmt.Sprintf("segdb: corrupt chunk: %v", e.cause)
}

func (e *ErrCorruptChunk) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var otm *table.ErrOrderTypeMismatch
	if errors.As(err, &otm) {
		return &ErrOrderTypeMismatch{cause: err}
	}

	if persistence.IsChecksumMismatch(err) {
		return &ErrCorruptChunk{cause: err}
	}

	return err
}
