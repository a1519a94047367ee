package engine

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/fixedratiolabs/frt-stress/internal/computebudget"
	"github.com/fixedratiolabs/frt-stress/internal/ratiomath"
	"github.com/fixedratiolabs/frt-stress/internal/txbuilder"
)

// ensureTreasury performs the one-time TreasuryInit if the system-state
// account has never been initialized. Idempotent: a system state with
// non-zero data means a previous run (or another harness) already did
// it, and the instruction is skipped entirely.
func (e *Engine) ensureTreasury(ctx context.Context) error {
	systemStatePDA, _, err := ratiomath.DeriveAddress(ratiomath.SystemStateSeeds(), e.programID)
	if err != nil {
		return err
	}

	info, err := e.gateway.GetAccountInfo(ctx, systemStatePDA)
	if err == nil && info != nil && info.Data != nil && len(info.Data.GetBinary()) > 0 {
		return nil
	}

	mainTreasury, _, err := ratiomath.DeriveAddress(ratiomath.MainTreasurySeeds(), e.programID)
	if err != nil {
		return err
	}
	// The upgradeable loader keeps the program's executable bytes in a
	// companion account derived from the program id itself.
	programData, _, err := ratiomath.DeriveAddress([][]byte{e.programID[:]}, solana.BPFLoaderUpgradeableProgramID)
	if err != nil {
		return err
	}

	ix := txbuilder.TreasuryInit(e.programID, txbuilder.TreasuryInitAccounts{
		Authority:          e.core.PublicKey(),
		SystemProgram:      solana.SystemProgramID,
		RentSysvar:         solana.SysVarRentPubkey,
		SystemStatePDA:     systemStatePDA,
		MainTreasuryPDA:    mainTreasury,
		ProgramDataAccount: programData,
	})
	return e.core.submit(ctx, []solana.Instruction{ix}, computebudget.Units(computebudget.TreasuryInit))
}
