// Package txbuilder constructs signed FRT contract transactions:
// TreasuryInit, PoolCreate, Deposit, Withdraw, Swap, and the SPL
// helpers used for funding and the Empty command. Every exported
// builder returns a solana.Instruction; Build assembles the full
// signed, compute-budgeted transaction.
package txbuilder

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// TreasuryInitAccounts is the 6-account layout for the one-time
// TreasuryInit instruction.
type TreasuryInitAccounts struct {
	Authority          solana.PublicKey
	SystemProgram      solana.PublicKey
	RentSysvar         solana.PublicKey
	SystemStatePDA     solana.PublicKey
	MainTreasuryPDA    solana.PublicKey
	ProgramDataAccount solana.PublicKey
}

// TreasuryInit builds the idempotent treasury-initialization instruction.
func TreasuryInit(programID solana.PublicKey, a TreasuryInitAccounts) solana.Instruction {
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Authority, true, true),
		solana.NewAccountMeta(a.SystemProgram, false, false),
		solana.NewAccountMeta(a.RentSysvar, false, false),
		solana.NewAccountMeta(a.SystemStatePDA, true, false),
		solana.NewAccountMeta(a.MainTreasuryPDA, true, false),
		solana.NewAccountMeta(a.ProgramDataAccount, false, false),
	}
	return solana.NewInstruction(programID, metas, []byte{DiscriminatorTreasuryInit})
}

// PoolCreateAccounts is the account layout for PoolCreate. Token order
// must already be canonical (A's key bytes lexicographically <= B's)
// before calling this.
type PoolCreateAccounts struct {
	Authority      solana.PublicKey
	SystemProgram  solana.PublicKey
	TokenProgram   solana.PublicKey
	RentSysvar     solana.PublicKey
	SystemStatePDA solana.PublicKey
	PoolStatePDA   solana.PublicKey
	TokenAMint     solana.PublicKey
	TokenBMint     solana.PublicKey
	LPMintA        solana.PublicKey
	LPMintB        solana.PublicKey
	VaultA         solana.PublicKey
	VaultB         solana.PublicKey
	MainTreasury   solana.PublicKey
}

// PoolCreate builds the 17-byte PoolCreate instruction: discriminator,
// two LE u64 ratios. The direction flag has no byte of its own; the
// ratio bytes must stay bit-for-bit identical to the pool-state PDA
// seed, so it rides in the discriminator byte's high bit instead
// (data[0] & 0x7F is always DiscriminatorPoolCreate).
func PoolCreate(programID solana.PublicKey, a PoolCreateAccounts, ratioA, ratioB uint64, directionFlag byte) solana.Instruction {
	data := make([]byte, 17)
	data[0] = DiscriminatorPoolCreate
	if directionFlag != 0 {
		data[0] |= 0x80
	}
	binary.LittleEndian.PutUint64(data[1:9], ratioA)
	binary.LittleEndian.PutUint64(data[9:17], ratioB)

	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Authority, true, true),
		solana.NewAccountMeta(a.SystemProgram, false, false),
		solana.NewAccountMeta(a.TokenProgram, false, false),
		solana.NewAccountMeta(a.RentSysvar, false, false),
		solana.NewAccountMeta(a.SystemStatePDA, false, false),
		solana.NewAccountMeta(a.PoolStatePDA, true, false),
		solana.NewAccountMeta(a.TokenAMint, false, false),
		solana.NewAccountMeta(a.TokenBMint, false, false),
		solana.NewAccountMeta(a.LPMintA, true, false),
		solana.NewAccountMeta(a.LPMintB, true, false),
		solana.NewAccountMeta(a.VaultA, true, false),
		solana.NewAccountMeta(a.VaultB, true, false),
		solana.NewAccountMeta(a.MainTreasury, true, false),
	}
	return solana.NewInstruction(programID, metas, data)
}

// DepositWithdrawAccounts is the 12-account layout shared by Deposit
// and Withdraw, differing only in which mint/vault/LP-mint the caller
// selects for tokenSide.
type DepositWithdrawAccounts struct {
	Payer            solana.PublicKey
	SystemProgram    solana.PublicKey
	TokenProgram     solana.PublicKey
	SystemStatePDA   solana.PublicKey
	PoolStatePDA     solana.PublicKey
	SideMint         solana.PublicKey
	Vault            solana.PublicKey
	UserTokenAccount solana.PublicKey
	LPMint           solana.PublicKey
	UserLPAccount    solana.PublicKey
	MainTreasury     solana.PublicKey
	PoolTreasury     solana.PublicKey
}

func (a DepositWithdrawAccounts) metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Payer, true, true),
		solana.NewAccountMeta(a.SystemProgram, false, false),
		solana.NewAccountMeta(a.TokenProgram, false, false),
		solana.NewAccountMeta(a.SystemStatePDA, false, false),
		solana.NewAccountMeta(a.PoolStatePDA, false, false),
		solana.NewAccountMeta(a.SideMint, false, false),
		solana.NewAccountMeta(a.Vault, true, false),
		solana.NewAccountMeta(a.UserTokenAccount, true, false),
		solana.NewAccountMeta(a.LPMint, true, false),
		solana.NewAccountMeta(a.UserLPAccount, true, false),
		solana.NewAccountMeta(a.MainTreasury, true, false),
		solana.NewAccountMeta(a.PoolTreasury, true, false),
	}
}

// Deposit builds the Deposit instruction; data is the u64 amount in
// basis points.
func Deposit(programID solana.PublicKey, a DepositWithdrawAccounts, amount uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = DiscriminatorDeposit
	binary.LittleEndian.PutUint64(data[1:], amount)
	return solana.NewInstruction(programID, a.metas(), data)
}

// Withdraw builds the Withdraw instruction; data is the u64 amount of
// LP tokens to burn.
func Withdraw(programID solana.PublicKey, a DepositWithdrawAccounts, lpAmount uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = DiscriminatorWithdraw
	binary.LittleEndian.PutUint64(data[1:], lpAmount)
	return solana.NewInstruction(programID, a.metas(), data)
}

// SwapAccounts is the 11-account layout for Swap.
type SwapAccounts struct {
	Payer             solana.PublicKey
	SystemProgram     solana.PublicKey
	TokenProgram      solana.PublicKey
	SystemStatePDA    solana.PublicKey
	PoolStatePDA      solana.PublicKey
	InputMint         solana.PublicKey
	OutputMint        solana.PublicKey
	InputVault        solana.PublicKey
	OutputVault       solana.PublicKey
	UserInputAccount  solana.PublicKey
	UserOutputAccount solana.PublicKey
}

// Swap builds the Swap instruction. expectedOutput must equal exactly
// what RatioMath computed for this input; the contract rejects any
// deviation with AMOUNT_MISMATCH (0x417).
func Swap(programID solana.PublicKey, a SwapAccounts, input, expectedOutput uint64) solana.Instruction {
	data := make([]byte, 17)
	data[0] = DiscriminatorSwap
	binary.LittleEndian.PutUint64(data[1:9], input)
	binary.LittleEndian.PutUint64(data[9:17], expectedOutput)

	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Payer, true, true),
		solana.NewAccountMeta(a.SystemProgram, false, false),
		solana.NewAccountMeta(a.TokenProgram, false, false),
		solana.NewAccountMeta(a.SystemStatePDA, false, false),
		solana.NewAccountMeta(a.PoolStatePDA, true, false),
		solana.NewAccountMeta(a.InputMint, false, false),
		solana.NewAccountMeta(a.OutputMint, false, false),
		solana.NewAccountMeta(a.InputVault, true, false),
		solana.NewAccountMeta(a.OutputVault, true, false),
		solana.NewAccountMeta(a.UserInputAccount, true, false),
		solana.NewAccountMeta(a.UserOutputAccount, true, false),
	}
	return solana.NewInstruction(programID, metas, data)
}

// GetVersion builds the discriminator-14 version probe instruction
// Engine.Start issues once against the deployed program. It carries no
// accounts at all.
func GetVersion(programID solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{}, []byte{DiscriminatorGetVersion})
}
