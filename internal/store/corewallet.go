package store

import "github.com/fixedratiolabs/frt-stress/internal/model"

const coreWalletFile = "core_wallet.json"

// SaveCoreWallet persists w, whose SecretSealed must already be
// encrypted by internal/secure; the store never sees a plaintext key.
func (s *Store) SaveCoreWallet(w model.CoreWallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.path(coreWalletFile), w)
}

// LoadCoreWallet returns the persisted core wallet, if one exists.
func (s *Store) LoadCoreWallet() (model.CoreWallet, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var w model.CoreWallet
	if err := readJSON(s.path(coreWalletFile), &w); err != nil {
		return model.CoreWallet{}, false, err
	}
	found := len(w.SecretSealed) > 0
	return w, found, nil
}
