// Package store implements the durable, crash-safe JSON persistence
// layer. Every write goes to a sibling temp file in the target
// directory, is fsynced, and is renamed into place; the prior version
// is kept as a .backup sibling. A single process-wide mutex serializes
// all operations; correctness first, since contention is negligible
// at this scale.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fixedratiolabs/frt-stress/internal/errclass"
)

// Store persists workers, statistics, pools, sessions and the core
// wallet under dataDir. Worker wallet secret keys are sealed with
// secretPassphrase before they ever reach disk; the core wallet is
// handed to SaveCoreWallet already sealed.
type Store struct {
	dataDir          string
	secretPassphrase string
	mu               sync.Mutex
}

// New returns a Store rooted at dataDir, creating it and its
// subdirectories if they do not already exist. secretPassphrase seals
// every worker wallet secret key persisted through this Store.
func New(dataDir, secretPassphrase string) (*Store, error) {
	for _, sub := range []string{"", "errors", "sessions"} {
		if err := os.MkdirAll(filepath.Join(dataDir, sub), 0o755); err != nil {
			return nil, &errclass.StorageError{Err: fmt.Errorf("mkdir %s: %w", sub, err)}
		}
	}
	return &Store{dataDir: dataDir, secretPassphrase: secretPassphrase}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dataDir, name)
}

// writeAtomic writes data to path via a sibling temp file, fsync,
// rename, preserving whatever was previously at path as path+".backup".
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &errclass.StorageError{Err: fmt.Errorf("create temp file: %w", err)}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &errclass.StorageError{Err: fmt.Errorf("write temp file: %w", err)}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &errclass.StorageError{Err: fmt.Errorf("fsync temp file: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		return &errclass.StorageError{Err: fmt.Errorf("close temp file: %w", err)}
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".backup"); err != nil {
			return &errclass.StorageError{Err: fmt.Errorf("back up previous version: %w", err)}
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &errclass.StorageError{Err: fmt.Errorf("rename into place: %w", err)}
	}
	return nil
}

// readJSON reads path into v, tolerating a missing file by leaving v
// untouched (the caller's zero value stands in for the empty collection).
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &errclass.StorageError{Err: fmt.Errorf("read %s: %w", path, err)}
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &errclass.StorageError{Err: fmt.Errorf("unmarshal %s: %w", path, err)}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &errclass.StorageError{Err: fmt.Errorf("marshal %s: %w", path, err)}
	}
	return writeAtomic(path, data)
}
