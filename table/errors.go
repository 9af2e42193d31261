package table

import (
	"errors"
	"fmt"

	"github.com/hupe1980/segdb/meta"
)

// ErrMissingOrderKey is returned by Insert when a row omits the designated
// order column or sets it to the Missing sentinel.
var ErrMissingOrderKey = errors.New("table: row missing order key")

// ErrUnsupportedColumnType is returned by Insert when a row sets a column to
// a value.Value whose Kind is neither Number nor String.
var ErrUnsupportedColumnType = errors.New("table: unsupported column value kind")

// ErrColumnTypeConflict is returned by Insert when a row sets a column to a
// kind (number/string) that differs from the kind it was first created
// with.
var ErrColumnTypeConflict = errors.New("table: column already exists with a different value kind")

// ErrOrderTypeMismatch is returned when a row's order-key value kind
// doesn't match the table's declared order value type, or when rehydrating
// a meta snapshot whose order kind conflicts with the table's configuration.
//
// The underlying cause, if any, can be reached via errors.Unwrap.
type ErrOrderTypeMismatch struct {
	Expected meta.ColumnKind
	Actual   meta.ColumnKind
	cause    error
}

func (e *ErrOrderTypeMismatch) Error() string {
	return fmt.Sprintf("table: order type mismatch: expected %s, got %s", e.Expected, e.Actual)
}

func (e *ErrOrderTypeMismatch) Unwrap() error { return e.cause }
