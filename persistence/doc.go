// Package persistence provides checksum utilities for detecting accidental
// corruption of persisted bytes — used by chunk to guard every stored
// chunk blob against silent storage-layer corruption.
package persistence
