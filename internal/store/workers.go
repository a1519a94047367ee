package store

import (
	"github.com/fixedratiolabs/frt-stress/internal/model"
	"github.com/fixedratiolabs/frt-stress/internal/secure"
)

const (
	workersFile       = "workers.json"
	walletSecretsFile = "wallet_secrets.json"
)

// sealSecret seals w's wallet secret into the wallet_secrets.json
// side-table and returns a copy of w with WalletSecret zeroed, so the
// plaintext key never reaches workers.json. Caller must hold s.mu.
func (s *Store) sealSecret(w model.Worker) (model.Worker, error) {
	sealed, err := secure.Seal(s.secretPassphrase, w.WalletSecret[:])
	if err != nil {
		return model.Worker{}, err
	}

	secrets := map[string][]byte{}
	if err := readJSON(s.path(walletSecretsFile), &secrets); err != nil {
		return model.Worker{}, err
	}
	secrets[w.WorkerID] = sealed
	if err := writeJSON(s.path(walletSecretsFile), secrets); err != nil {
		return model.Worker{}, err
	}

	w.WalletSecret = [64]byte{}
	return w, nil
}

// unsealSecret restores w.WalletSecret from the wallet_secrets.json
// side-table. Caller must hold s.mu.
func (s *Store) unsealSecret(w model.Worker) (model.Worker, error) {
	secrets := map[string][]byte{}
	if err := readJSON(s.path(walletSecretsFile), &secrets); err != nil {
		return model.Worker{}, err
	}
	sealed, ok := secrets[w.WorkerID]
	if !ok {
		return w, nil
	}
	plain, err := secure.Open(s.secretPassphrase, sealed)
	if err != nil {
		return model.Worker{}, err
	}
	copy(w.WalletSecret[:], plain)
	return w, nil
}

// UpsertWorker inserts or replaces w in workers.json. w.WalletSecret is
// sealed into a separate side-table and never written in plaintext.
func (s *Store) UpsertWorker(w model.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := s.sealSecret(w)
	if err != nil {
		return err
	}

	workers := map[string]model.Worker{}
	if err := readJSON(s.path(workersFile), &workers); err != nil {
		return err
	}
	workers[sealed.WorkerID] = sealed
	return writeJSON(s.path(workersFile), workers)
}

// LoadWorker returns the worker with id, and whether it was found, with
// its wallet secret restored from the sealed side-table.
func (s *Store) LoadWorker(id string) (model.Worker, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	workers := map[string]model.Worker{}
	if err := readJSON(s.path(workersFile), &workers); err != nil {
		return model.Worker{}, false, err
	}
	w, ok := workers[id]
	if !ok {
		return model.Worker{}, false, nil
	}
	w, err := s.unsealSecret(w)
	if err != nil {
		return model.Worker{}, false, err
	}
	return w, true, nil
}

// LoadAllWorkers returns every persisted worker, keyed by id, with
// wallet secrets restored. A missing file yields an empty, non-nil map.
func (s *Store) LoadAllWorkers() (map[string]model.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	workers := map[string]model.Worker{}
	if err := readJSON(s.path(workersFile), &workers); err != nil {
		return nil, err
	}
	for id, w := range workers {
		restored, err := s.unsealSecret(w)
		if err != nil {
			return nil, err
		}
		workers[id] = restored
	}
	return workers, nil
}

// DeleteWorker removes id from workers.json and its sealed secret, if present.
func (s *Store) DeleteWorker(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	workers := map[string]model.Worker{}
	if err := readJSON(s.path(workersFile), &workers); err != nil {
		return err
	}
	delete(workers, id)
	if err := writeJSON(s.path(workersFile), workers); err != nil {
		return err
	}

	secrets := map[string][]byte{}
	if err := readJSON(s.path(walletSecretsFile), &secrets); err != nil {
		return err
	}
	delete(secrets, id)
	return writeJSON(s.path(walletSecretsFile), secrets)
}
