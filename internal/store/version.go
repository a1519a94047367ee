package store

import "github.com/fixedratiolabs/frt-stress/internal/model"

// SaveVersionProbe persists the latest contract-version probe result.
func (s *Store) SaveVersionProbe(v model.VersionProbe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.path("version.json"), v)
}

// LoadVersionProbe returns the last persisted probe result, found=false
// if no probe has ever been recorded.
func (s *Store) LoadVersionProbe() (model.VersionProbe, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v model.VersionProbe
	if err := readJSON(s.path("version.json"), &v); err != nil {
		return model.VersionProbe{}, false, err
	}
	return v, !v.ProbedAt.IsZero(), nil
}
