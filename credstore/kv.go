package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrKeyNotFound is returned by [KV.GetItem] when the key is absent.
// Absence is distinct from storage failure: a missing key is a normal state.
var ErrKeyNotFound = errors.New("credstore: key not found")

// ErrStorageUnavailable wraps backend failures (unreadable file, quota,
// permission). Callers decide whether to degrade or propagate.
var ErrStorageUnavailable = errors.New("credstore: storage unavailable")

// KV is the raw durable key-value contract. Implementations must be safe for
// concurrent use.
type KV interface {
	GetItem(key string) (string, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// MemoryKV is a process-local KV. It survives nothing, which makes it the
// right backend for tests and for callers that opt out of durability.
type MemoryKV struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryKV returns an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: make(map[string]string)}
}

// GetItem returns the stored value or [ErrKeyNotFound].
func (m *MemoryKV) GetItem(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.items[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// SetItem stores value under key.
func (m *MemoryKV) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = value
	return nil
}

// RemoveItem deletes key. Removing an absent key is a no-op.
func (m *MemoryKV) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// FileKV is a durable KV backed by a single JSON file. Writes are
// atomic (temp file + rename) so a crash mid-write never corrupts the
// previous state.
type FileKV struct {
	mu   sync.Mutex
	path string
}

// NewFileKV returns a FileKV persisting to path. The file and its parent
// directory are created lazily on first write.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

// GetItem returns the stored value, [ErrKeyNotFound] when the key or the
// file itself does not exist, or a wrapped [ErrStorageUnavailable].
func (f *FileKV) GetItem(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return "", err
	}

	value, ok := items[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// SetItem stores value under key and flushes the file.
func (f *FileKV) SetItem(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}

	items[key] = value
	return f.flush(items)
}

// RemoveItem deletes key and flushes the file. Removing an absent key is a
// no-op.
func (f *FileKV) RemoveItem(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return f.flush(items)
}

func (f *FileKV) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	items := map[string]string{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return items, nil
}

func (f *FileKV) flush(items map[string]string) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	tmp, err := os.CreateTemp(dir, ".credstore-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
