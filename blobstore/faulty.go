package blobstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Fault describes injected failure behavior for keys matching a pattern.
type Fault struct {
	FailGet bool
	FailSet bool
	Err     error
}

// FaultyStore wraps a Store and can be told to fail Get/Set for keys
// matching a substring pattern, adapted from internal/fs.FaultyFS's
// pattern-match rule table to blob-store Get/Set instead of file Write/Sync.
// Used to exercise the atomic-commit rollback guarantee: a table's Flush
// must leave the committed meta snapshot untouched if any column's flush
// (and therefore some chunk Set) fails.
type FaultyStore struct {
	inner Store
	mu    sync.Mutex
	rules map[string]Fault
}

// NewFaultyStore creates a FaultyStore wrapping inner with no rules active.
func NewFaultyStore(inner Store) *FaultyStore {
	return &FaultyStore{inner: inner, rules: make(map[string]Fault)}
}

// AddRule installs a fault for every key containing pattern as a substring.
func (f *FaultyStore) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// ClearRules removes every installed fault.
func (f *FaultyStore) ClearRules() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = make(map[string]Fault)
}

func (f *FaultyStore) matching(key string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for pattern, fault := range f.rules {
		if strings.Contains(key, pattern) {
			return fault, true
		}
	}
	return Fault{}, false
}

func (f *FaultyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if fault, ok := f.matching(key); ok && fault.FailGet {
		if fault.Err != nil {
			return nil, false, fault.Err
		}
		return nil, false, fmt.Errorf("blobstore: injected get fault for %q", key)
	}
	return f.inner.Get(ctx, key)
}

func (f *FaultyStore) Set(ctx context.Context, key string, value []byte) error {
	if fault, ok := f.matching(key); ok && fault.FailSet {
		if fault.Err != nil {
			return fault.Err
		}
		return fmt.Errorf("blobstore: injected set fault for %q", key)
	}
	return f.inner.Set(ctx, key, value)
}

var _ Store = (*FaultyStore)(nil)
