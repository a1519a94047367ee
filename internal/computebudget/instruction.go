package computebudget

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// ProgramID is the well-known ComputeBudget111... native program.
var ProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

const setComputeUnitLimitDiscriminator = byte(2)

// LimitInstruction builds the SetComputeUnitLimit instruction every
// transaction prepends, sized per the instr/units looked up by the caller.
func LimitInstruction(units uint32) solana.Instruction {
	data := make([]byte, 5)
	data[0] = setComputeUnitLimitDiscriminator
	binary.LittleEndian.PutUint32(data[1:], units)

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{}, data)
}
