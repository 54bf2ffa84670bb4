package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/gofrs/flock"

	"github.com/ai-scholar/scholar-admin/internal/apperr"
)

// FileStore implements Store as a single JSON file holding a map of
// key to raw JSON value. A flock-based lock file serializes access
// across processes; writes go through a temp file and rename so a
// crash never leaves a half-written store behind.
type FileStore struct {
	path     string
	fileLock *flock.Flock
}

// NewFileStore creates a file-backed blob store at path. The parent
// directory is created if missing.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	return &FileStore{
		path:     path,
		fileLock: flock.New(path + ".lock"),
	}, nil
}

// Load retrieves the value stored under key.
func (s *FileStore) Load(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}

	if err := s.fileLock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to acquire read lock: %w", err)
	}
	defer func() { _ = s.fileLock.Unlock() }()

	data, err := s.read()
	if err != nil {
		return nil, err
	}

	value, ok := data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	return value, nil
}

// Save writes value under key.
func (s *FileStore) Save(key string, value []byte) error {
	if key == "" {
		return ErrKeyEmpty
	}

	return s.update(func(data map[string]json.RawMessage) {
		data[key] = json.RawMessage(value)
	})
}

// Delete removes key from the store.
func (s *FileStore) Delete(key string) error {
	if key == "" {
		return ErrKeyEmpty
	}

	return s.update(func(data map[string]json.RawMessage) {
		delete(data, key)
	})
}

// Keys returns all stored keys beginning with prefix, sorted.
func (s *FileStore) Keys(prefix string) ([]string, error) {
	if err := s.fileLock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to acquire read lock: %w", err)
	}
	defer func() { _ = s.fileLock.Unlock() }()

	data, err := s.read()
	if err != nil {
		return nil, err
	}

	var keys []string
	for k := range data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	return keys, nil
}

// read loads the whole store file. A missing file is an empty store.
func (s *FileStore) read() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	data := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to parse store file: %w", err)
		}
	}

	return data, nil
}

// update applies mutate under the exclusive lock and flushes atomically.
func (s *FileStore) update(mutate func(map[string]json.RawMessage)) error {
	if err := s.fileLock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire write lock: %w", err)
	}
	defer func() { _ = s.fileLock.Unlock() }()

	data, err := s.read()
	if err != nil {
		return err
	}

	mutate(data)

	return s.flush(data)
}

// flush writes data to a temp file in the same directory and renames it
// over the store file.
func (s *FileStore) flush(data map[string]json.RawMessage) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store data: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return classifyFileError(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return classifyFileError(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return classifyFileError(err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return classifyFileError(err)
	}

	return nil
}

// classifyFileError tags out-of-space failures as storage errors.
func classifyFileError(err error) error {
	if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT) {
		return apperr.Wrap(apperr.KindStorage, "store file write failed", err)
	}

	return fmt.Errorf("failed to write store file: %w", err)
}
