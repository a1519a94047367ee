package store

import "github.com/fixedratiolabs/frt-stress/internal/model"

const statisticsFile = "statistics.json"

// SaveStats upserts stats for stats.WorkerID into statistics.json.
func (s *Store) SaveStats(stats model.Statistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := map[string]model.Statistics{}
	if err := readJSON(s.path(statisticsFile), &all); err != nil {
		return err
	}
	all[stats.WorkerID] = stats
	return writeJSON(s.path(statisticsFile), all)
}

// LoadStats returns the persisted statistics for workerID, or the zero
// value and false if none are on disk.
func (s *Store) LoadStats(workerID string) (model.Statistics, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := map[string]model.Statistics{}
	if err := readJSON(s.path(statisticsFile), &all); err != nil {
		return model.Statistics{}, false, err
	}
	st, ok := all[workerID]
	return st, ok, nil
}

// AppendError appends e to the bounded (last model.MaxRecentErrors)
// error log for workerID under errors/<workerId>.json.
func (s *Store) AppendError(workerID string, e model.OperationError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path("errors/" + workerID + ".json")
	var errs []model.OperationError
	if err := readJSON(path, &errs); err != nil {
		return err
	}
	errs = append(errs, e)
	if len(errs) > model.MaxRecentErrors {
		errs = errs[len(errs)-model.MaxRecentErrors:]
	}
	return writeJSON(path, errs)
}

// LoadErrors returns the bounded error log for workerID.
func (s *Store) LoadErrors(workerID string) ([]model.OperationError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path("errors/" + workerID + ".json")
	var errs []model.OperationError
	if err := readJSON(path, &errs); err != nil {
		return nil, err
	}
	return errs, nil
}
