// Package kv provides the capability-shaped key-value store the engine
// persists through: plain keys with TTL, hashes, and sets.
package kv

import (
	"errors"
	"time"
)

// ErrNotFound is returned by reads when the key, field, or member is
// absent (or its TTL has expired).
var ErrNotFound = errors.New("kv: not found")

// Store is the persistence contract. Implementations must treat each
// operation as atomic per key; callers rely on reads observing either
// the prior or the new fully-written value, never a partial one.
type Store interface {
	// Set writes value under key. ttl <= 0 means no expiry.
	Set(key string, value []byte, ttl time.Duration) error
	// Get returns the value under key, or ErrNotFound.
	Get(key string) ([]byte, error)

	HSet(key, field string, value []byte) error
	HGet(key, field string) ([]byte, error)
	HDel(key, field string) error
	HGetAll(key string) (map[string][]byte, error)

	SAdd(key, member string) error
	SIsMember(key, member string) (bool, error)

	Close() error
}
