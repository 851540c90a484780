// internal/prefs/prefs.go
//
// Key-value persistence substrate for small engine blobs: daily progress
// records, migration flags, user defaults. Implementations may be backed by
// memory (tests) or a JSON file on disk.

package prefs

import (
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = errors.New("key not found")

// KV is the persistence substrate the engine consumes. Values are opaque
// bytes; JSON helpers below cover the common case.
type KV interface {
	// Get returns the stored value, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set stores or replaces the value for a key.
	Set(key string, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error

	// Keys returns all keys with the given prefix, sorted.
	Keys(prefix string) ([]string, error)
}

// GetJSON unmarshals the value stored under key into v.
func GetJSON(kv KV, key string, v any) error {
	b, err := kv.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// SetJSON marshals v and stores it under key.
func SetJSON(kv KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.Set(key, b)
}
