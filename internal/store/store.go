// Package store provides the persistent key/value blob store backing the
// settings repository. Two backends exist: a GORM-backed table and a
// flock-protected JSON file.
package store

import "errors"

var (
	// ErrKeyNotFound is returned when a key has no persisted value.
	ErrKeyNotFound = errors.New("key not found")
	// ErrKeyEmpty is returned when attempting to use an empty key.
	ErrKeyEmpty = errors.New("key cannot be empty")
)

// Store is a persistent string-keyed blob store.
type Store interface {
	// Load returns the value stored under key, or ErrKeyNotFound.
	Load(key string) ([]byte, error)

	// Save writes value under key, creating or replacing it. Quota and
	// disk-full failures are reported as apperr.KindStorage errors.
	Save(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Keys returns all stored keys beginning with prefix.
	Keys(prefix string) ([]string, error)
}
