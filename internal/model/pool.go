// Package model defines the persisted entities shared by every component:
// pools, workers, statistics, sessions, the core wallet and health snapshots.
package model

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Pool is immutable after creation. Field names are fixed so the JSON
// files stay compatible across implementations.
type Pool struct {
	PoolID            solana.PublicKey `json:"pool_id"`
	TokenAMint        solana.PublicKey `json:"token_a_mint"`
	TokenBMint        solana.PublicKey `json:"token_b_mint"`
	TokenADecimals    uint8            `json:"token_a_decimals"`
	TokenBDecimals    uint8            `json:"token_b_decimals"`
	RatioANumerator   uint64           `json:"ratio_a_numerator"`
	RatioBDenominator uint64           `json:"ratio_b_denominator"`
	LPMintA           solana.PublicKey `json:"lp_mint_a"`
	LPMintB           solana.PublicKey `json:"lp_mint_b"`
	VaultA            solana.PublicKey `json:"vault_a"`
	VaultB            solana.PublicKey `json:"vault_b"`
	RatioDisplay      string           `json:"ratio_display"`
	CreatedAt         time.Time        `json:"created_at"`
}

// CanonicalOrder reports whether tokenA's key bytes are lexicographically
// at or before tokenB's, the ordering invariant required by the contract.
func CanonicalOrder(tokenA, tokenB solana.PublicKey) bool {
	return bytesLessOrEqual(tokenA[:], tokenB[:])
}

func bytesLessOrEqual(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return true
}

// AnchoredToOne reports whether exactly one side of the ratio equals
// 10^decimals for its own token, the contract's "one equals 1" rule.
func (p Pool) AnchoredToOne() bool {
	aAnchored := p.RatioANumerator == pow10(p.TokenADecimals)
	bAnchored := p.RatioBDenominator == pow10(p.TokenBDecimals)
	return aAnchored != bAnchored // exactly one, not both
}

func pow10(n uint8) uint64 {
	v := uint64(1)
	for i := uint8(0); i < n; i++ {
		v *= 10
	}
	return v
}
