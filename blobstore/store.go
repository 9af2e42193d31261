package blobstore

import (
	"context"
	"os"
)

// ErrNotFound marks a key that was expected to hold a value but has none.
// Store.Get does not return it: a key that has never been set is reported
// as ok=false with a nil error. chunk.Layer.Load wraps ErrNotFound when a
// chunk key recorded in a sequence's meta has no value in the store.
var ErrNotFound = os.ErrNotExist

// Store is the opaque key-value map the entire core is built on.
//
// Get returns ok=false (not an error) when key has never been set. Store
// failures propagate as err. Both directions must deep-copy: the bytes
// handed to Set must not be retained by reference, and the bytes returned
// by Get must not alias whatever the implementation holds internally.
//
// No ordering is assumed between concurrent Set calls to unrelated keys;
// implementations need only guarantee read-your-writes for a single key.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}
