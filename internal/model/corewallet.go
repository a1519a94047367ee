package model

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// CoreWallet is the single process-wide wallet used to airdrop SOL to
// worker wallets and mint tokens. Empty does not move any worker SOL
// back to it.
// Persisted under core_wallet.json with SecretSealed encrypted at rest
// by internal/secure; this record never carries the plaintext key.
type CoreWallet struct {
	PublicKey    solana.PublicKey `json:"public_key"`
	SecretSealed []byte           `json:"secret_sealed"`
	CreatedAt    time.Time        `json:"created_at"`
}
