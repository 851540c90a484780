// internal/prefs/file.go
//
// File-backed implementation of the KV substrate: one JSON document holding
// every key, loaded at open, rewritten atomically (temp file + rename) on
// each change. Daily progress blobs are upserts, so a half-written file must
// never be observable.

package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// File is a single-document JSON KV.
type File struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

// OpenFile loads (or creates) the KV document at path. The parent directory
// is created if missing.
func OpenFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f := &File{path: path, data: make(map[string]json.RawMessage)}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &f.data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return f, nil
}

func (f *File) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

// Set stores a value. The document is itself JSON, so values must be valid
// JSON; SetJSON is the usual entry point.
func (f *File) Set(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make(json.RawMessage, len(value))
	copy(cp, value)
	f.data[key] = cp
	return f.flushLocked()
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return nil
	}
	delete(f.data, key)
	return f.flushLocked()
}

func (f *File) Keys(prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.data))
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// flushLocked writes the whole document to a temp file in the same
// directory and renames it over the target. Rename is atomic on the
// filesystems we care about.
func (f *File) flushLocked() error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".prefs-*.json")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f.data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", f.path, err)
	}
	return nil
}
