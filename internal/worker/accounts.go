package worker

import (
	"github.com/gagliardetto/solana-go"

	"github.com/fixedratiolabs/frt-stress/internal/model"
	"github.com/fixedratiolabs/frt-stress/internal/ratiomath"
)

// sideAccounts is the set of addresses a Deposit/Withdraw/Swap
// instruction needs for one side of a pool.
type sideAccounts struct {
	Mint   solana.PublicKey
	Vault  solana.PublicKey
	LPMint solana.PublicKey
}

func seedByte(side model.TokenSide) byte {
	if side == model.SideA {
		return 'A'
	}
	return 'B'
}

// resolveSide derives the vault PDA for side of pool and takes that
// side's mint and LP mint from the pool record.
func resolveSide(pool model.Pool, side model.TokenSide, programID solana.PublicKey) (sideAccounts, error) {
	mint := pool.TokenAMint
	lpMint := pool.LPMintA
	if side == model.SideB {
		mint = pool.TokenBMint
		lpMint = pool.LPMintB
	}

	vault, _, err := ratiomath.DeriveAddress(ratiomath.VaultSeeds(pool.PoolID, seedByte(side)), programID)
	if err != nil {
		return sideAccounts{}, err
	}

	return sideAccounts{Mint: mint, Vault: vault, LPMint: lpMint}, nil
}

// oppositeSide returns the other side of a pool.
func oppositeSide(side model.TokenSide) model.TokenSide {
	if side == model.SideA {
		return model.SideB
	}
	return model.SideA
}
