package txbuilder

import (
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/gagliardetto/solana-go"
)

// CreateMint builds the instruction that initializes mint as a new SPL
// token mint with decimals, controlled by mintAuthority.
func CreateMint(mint, mintAuthority solana.PublicKey, decimals uint8) solana.Instruction {
	return token.NewInitializeMintInstruction(decimals, mintAuthority, solana.PublicKey{}, mint, solana.SysVarRentPubkey).Build()
}

// CreateAccountForMint builds the system-program instruction that
// allocates rent-exempt space for a new SPL mint account, to be paired
// with CreateMint in the same transaction.
func CreateAccountForMint(payer, mint solana.PublicKey, rentExemptLamports uint64) solana.Instruction {
	const mintAccountSize = 82 // SPL Token Mint account layout size
	return system.NewCreateAccountInstruction(rentExemptLamports, mintAccountSize, token.ProgramID, payer, mint).Build()
}

// FindAssociatedTokenAccount derives the canonical associated token
// account address for (wallet, mint).
func FindAssociatedTokenAccount(wallet, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindAssociatedTokenAddress(wallet, mint)
}

// CreateAssociatedTokenAccount builds the instruction that creates the
// associated token account for (wallet, mint), paid for by payer.
func CreateAssociatedTokenAccount(payer, wallet, mint solana.PublicKey) solana.Instruction {
	return associatedtokenaccount.NewCreateInstruction(payer, wallet, mint).Build()
}

// MintTo builds the instruction that mints amount of mint into
// destination, signed by authority (the CoreWallet for stress funding).
func MintTo(mint, destination, authority solana.PublicKey, amount uint64) solana.Instruction {
	return token.NewMintToInstruction(amount, mint, destination, authority, nil).Build()
}

// Transfer builds the instruction that moves amount of a token from
// source to destination, signed by owner. Used for cross-worker
// TokenEconomy routing.
func Transfer(source, destination, owner solana.PublicKey, amount uint64) solana.Instruction {
	return token.NewTransferInstruction(amount, source, destination, owner, nil).Build()
}

// Burn builds the SPL burn instruction removing amount of mint from
// source, signed by the account's owner. The Empty command uses it to
// destroy whatever a worker holds, LP receipts included.
func Burn(source, mint, owner solana.PublicKey, amount uint64) solana.Instruction {
	return token.NewBurnInstruction(amount, source, mint, owner, nil).Build()
}
