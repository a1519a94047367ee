package store

import "github.com/fixedratiolabs/frt-stress/internal/model"

const (
	poolsFile       = "pools.json"
	activePoolsFile = "active_pools.json"
)

// SavePool upserts p into the pool registry.
func (s *Store) SavePool(p model.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pools := map[string]model.Pool{}
	if err := readJSON(s.path(poolsFile), &pools); err != nil {
		return err
	}
	pools[p.PoolID.String()] = p
	return writeJSON(s.path(poolsFile), pools)
}

// LoadPool returns the registered pool with id poolID.
func (s *Store) LoadPool(poolID string) (model.Pool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pools := map[string]model.Pool{}
	if err := readJSON(s.path(poolsFile), &pools); err != nil {
		return model.Pool{}, false, err
	}
	p, ok := pools[poolID]
	return p, ok, nil
}

// LoadAllPools returns every registered pool, keyed by pool id.
func (s *Store) LoadAllPools() (map[string]model.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pools := map[string]model.Pool{}
	if err := readJSON(s.path(poolsFile), &pools); err != nil {
		return nil, err
	}
	return pools, nil
}

// SaveActivePools persists the set of pool ids currently managed by
// the engine, re-imported at startup after validation.
func (s *Store) SaveActivePools(poolIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.path(activePoolsFile), poolIDs)
}

// LoadActivePools returns the persisted set of active pool ids.
func (s *Store) LoadActivePools() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	if err := readJSON(s.path(activePoolsFile), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
