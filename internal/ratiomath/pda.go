package ratiomath

import (
	"encoding/binary"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
)

// PoolStateSeeds returns the seeds the contract uses to derive a pool's
// state PDA: ("pool_state", tokenAMint, tokenBMint, ratioA LE64, ratioB LE64).
func PoolStateSeeds(tokenA, tokenB solana.PublicKey, ratioA, ratioB uint64) [][]byte {
	var a, b [8]byte
	binary.LittleEndian.PutUint64(a[:], ratioA)
	binary.LittleEndian.PutUint64(b[:], ratioB)
	return [][]byte{
		[]byte("pool_state"),
		tokenA[:],
		tokenB[:],
		a[:],
		b[:],
	}
}

// SystemStateSeeds returns the seeds for the program-wide treasury
// state PDA.
func SystemStateSeeds() [][]byte {
	return [][]byte{[]byte("system_state")}
}

// MainTreasurySeeds returns the seeds for the main treasury PDA.
func MainTreasurySeeds() [][]byte {
	return [][]byte{[]byte("main_treasury")}
}

// VaultSeeds returns the seeds for a pool's token vault, one per side.
func VaultSeeds(poolID solana.PublicKey, side byte) [][]byte {
	return [][]byte{[]byte("vault"), poolID[:], {side}}
}

// LPMintSeeds returns the seeds for a pool's LP mint, one per side.
func LPMintSeeds(poolID solana.PublicKey, side byte) [][]byte {
	return [][]byte{[]byte("lp_mint"), poolID[:], {side}}
}

// DeriveAddress finds the program-derived address for seeds under
// programID, the same bump-seed search the on-chain program performs.
func DeriveAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(seeds, programID)
}

// IsOffCurve reports whether the 32 bytes do NOT decode to a point on
// the ed25519 curve, the property every valid PDA must have. Pool
// creation checks the derived pool-state address with it before
// submitting PoolCreate: solana-go's bump search already guarantees
// the property, but the contract rejects on-curve pool-state addresses
// outright, so the check fails fast instead of burning a transaction.
func IsOffCurve(addr [32]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(addr[:])
	return err != nil
}
