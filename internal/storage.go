package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Slot is a named key-value persistence area, the on-disk counterpart of a
// browser's local storage.
type Slot interface {
	// Read returns the stored value and whether the key exists
	Read(key string) ([]byte, bool, error)
	// Write replaces the value stored under key
	Write(key string, data []byte) error
	// Delete removes key; deleting a missing key is not an error
	Delete(key string) error
}

var slotKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func validateSlotKey(key string) error {
	if !slotKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid slot key %q", key)
	}
	return nil
}

// FileSlot stores each key as <dir>/<key>.json
type FileSlot struct {
	dir string
}

// NewFileSlot creates a file-backed slot rooted at dir
func NewFileSlot(dir string) (*FileSlot, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, &StorageError{Key: dir, Op: "open", Err: err}
	}
	return &FileSlot{dir: dir}, nil
}

// Path returns the file backing key
func (s *FileSlot) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Read implements Slot
func (s *FileSlot) Read(key string) ([]byte, bool, error) {
	if err := validateSlotKey(key); err != nil {
		return nil, false, &StorageError{Key: key, Op: "read", Err: err}
	}
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StorageError{Key: key, Op: "read", Err: err}
	}
	return data, true, nil
}

// Write implements Slot. The value is written to a temp file and renamed into
// place so a crash never leaves a half-written slot.
func (s *FileSlot) Write(key string, data []byte) error {
	if err := validateSlotKey(key); err != nil {
		return &StorageError{Key: key, Op: "write", Err: err}
	}
	path := s.Path(key)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return &StorageError{Key: key, Op: "write", Err: err}
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return &StorageError{Key: key, Op: "write", Err: err}
	}
	return nil
}

// Delete implements Slot
func (s *FileSlot) Delete(key string) error {
	if err := validateSlotKey(key); err != nil {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Keys lists the stored keys in name order
func (s *FileSlot) Keys() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		key := strings.TrimSuffix(filepath.Base(m), ".json")
		if slotKeyPattern.MatchString(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// MemorySlot keeps values in memory only
type MemorySlot struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemorySlot creates an empty in-memory slot
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

// Read implements Slot
func (s *MemorySlot) Read(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Write implements Slot
func (s *MemorySlot) Write(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), data...)
	return nil
}

// Delete implements Slot
func (s *MemorySlot) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Keys lists the stored keys in name order
func (s *MemorySlot) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
