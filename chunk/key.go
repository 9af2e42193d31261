package chunk

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// newKey generates a fresh, collision-free blob store key for a chunk
// write, namespaced under the owning sequence so that a shared store can
// host many sequences without key collisions. Every commit of a chunk gets
// a new key (copy-on-write); the time component keeps keys roughly
// lexicographically append-ordered for store implementations that benefit
// from it (e.g. S3 prefix distribution aside, local directory listings).
func newKey(namespace string, cidx int) string {
	return fmt.Sprintf("%s/chunk/%d/%d-%s", namespace, cidx, time.Now().UnixNano(), uuid.NewString())
}
