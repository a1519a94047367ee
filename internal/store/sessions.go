package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fixedratiolabs/frt-stress/internal/errclass"
	"github.com/fixedratiolabs/frt-stress/internal/model"
)

// SaveSession appends a new, immutable session record under
// sessions/<workerId>/session_<unixNanoTimestamp>.json.
func (s *Store) SaveSession(sess model.Session, timestamp int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.path(filepath.Join("sessions", sess.WorkerID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &errclass.StorageError{Err: fmt.Errorf("mkdir %s: %w", dir, err)}
	}
	path := filepath.Join(dir, fmt.Sprintf("session_%d.json", timestamp))
	return writeJSON(path, sess)
}

// LoadSessions returns every persisted session for workerID, in
// directory order (not necessarily chronological; callers that need
// chronological order should sort on StartedAt).
func (s *Store) LoadSessions(workerID string) ([]model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.path(filepath.Join("sessions", workerID))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &errclass.StorageError{Err: fmt.Errorf("readdir %s: %w", dir, err)}
	}

	sessions := make([]model.Session, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var sess model.Session
		if err := readJSON(filepath.Join(dir, entry.Name()), &sess); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}
