package worker

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/fixedratiolabs/frt-stress/internal/computebudget"
	"github.com/fixedratiolabs/frt-stress/internal/errclass"
	"github.com/fixedratiolabs/frt-stress/internal/model"
	"github.com/fixedratiolabs/frt-stress/internal/ratiomath"
	"github.com/fixedratiolabs/frt-stress/internal/txbuilder"
)

// Empty implements the Empty command: record the worker's current
// balance, burn it immediately regardless of what follows, then
// attempt one pool operation for that same amount. The burn always
// completes before the pool op is attempted; a failed pool op does not
// undo the burn. Withdraw workers take emptyWithdraw instead: the LP
// balance is not burned up front but redeemed by a Withdraw, and only
// the underlying received is burned; if that Withdraw fails, the error
// is returned and the LP balance is left in place. Refused only while
// the worker is already in Error.
func (r *Runtime) Empty(ctx context.Context) error {
	if r.worker.Status == model.StatusError {
		return &errclass.EngineError{Number: errclass.EngineErrorInvalidState, Message: "worker is in Error state, cannot Empty"}
	}

	if r.worker.Kind == model.KindWithdraw {
		return r.emptyWithdraw(ctx)
	}

	side, account, err := r.emptyTargetAccount()
	if err != nil {
		return err
	}

	balance, err := r.deps.Gateway.GetTokenBalance(ctx, account)
	if err != nil {
		return &errclass.TransportError{Op: "empty GetTokenBalance", Err: err}
	}
	if balance == 0 {
		return nil
	}

	if err := r.burn(ctx, account, side.Mint, balance); err != nil {
		return err
	}
	r.stats.EmptyOperations++

	out, err := r.attemptPoolOpForAmount(ctx, account, balance)
	if err != nil {
		// The burn already completed; a failed follow-up op is recorded
		// but does not reverse it.
		r.stats.RecordFailure(r.worker.Kind, "empty_pool_op", err.Error())
		return nil
	}
	if out.amount > 0 {
		if err := r.burn(ctx, out.account, out.mint, out.amount); err != nil {
			r.stats.RecordFailure(r.worker.Kind, "empty_burn_output", err.Error())
		}
	}
	return nil
}

// emptyOutput names what a pool op handed back during Empty and where
// it landed, so the follow-up burn targets the right account and mint.
type emptyOutput struct {
	amount  uint64
	account solana.PublicKey
	mint    solana.PublicKey
}

// emptyTargetAccount picks the side and token account Empty acts on
// for Deposit and Swap workers: the worker's own side for Deposit, the
// input side for Swap. Withdraw is handled separately by
// emptyWithdraw, since its Empty target is the LP mint, not the
// underlying one.
func (r *Runtime) emptyTargetAccount() (sideAccounts, solana.PublicKey, error) {
	side := r.worker.TokenSide
	if r.worker.Kind.IsSwap() {
		side = model.SideA
		if r.worker.Kind == model.KindSwapBA {
			side = model.SideB
		}
	}
	sa, err := resolveSide(r.pool, side, r.deps.ProgramID)
	if err != nil {
		return sideAccounts{}, solana.PublicKey{}, err
	}
	account, _, err := txbuilder.FindAssociatedTokenAccount(r.worker.WalletPublicKey, sa.Mint)
	return sa, account, err
}

// burn destroys amount of mint held in account via the SPL burn
// instruction, removing the resource outright rather than parking it
// somewhere recoverable.
func (r *Runtime) burn(ctx context.Context, account, mint solana.PublicKey, amount uint64) error {
	ix := txbuilder.Burn(account, mint, r.worker.WalletPublicKey, amount)
	return r.submit(ctx, []solana.Instruction{ix}, computebudget.Units(computebudget.Deposit))
}

// attemptPoolOpForAmount performs one Deposit/Swap for amount exactly
// as the worker's kind dictates, mirroring the corresponding cycle but
// without the balance-fraction randomization, since Empty names an
// exact figure. Returns what was received back (LP tokens or swap
// output) and where, for the caller to burn in turn.
func (r *Runtime) attemptPoolOpForAmount(ctx context.Context, account solana.PublicKey, amount uint64) (emptyOutput, error) {
	switch r.worker.Kind {
	case model.KindDeposit:
		side, err := resolveSide(r.pool, r.worker.TokenSide, r.deps.ProgramID)
		if err != nil {
			return emptyOutput{}, err
		}
		userLPAccount, _, err := txbuilder.FindAssociatedTokenAccount(r.worker.WalletPublicKey, side.LPMint)
		if err != nil {
			return emptyOutput{}, err
		}
		ix := txbuilder.Deposit(r.deps.ProgramID, r.depositWithdrawAccounts(side, account, userLPAccount), amount)
		if err := r.submit(ctx, []solana.Instruction{ix}, computebudget.Units(computebudget.Deposit)); err != nil {
			return emptyOutput{}, err
		}
		// 1:1 LP issuance
		return emptyOutput{amount: amount, account: userLPAccount, mint: side.LPMint}, nil
	case model.KindSwapAB, model.KindSwapBA:
		return r.emptySwap(ctx, amount)
	default:
		return emptyOutput{}, nil
	}
}

// emptyWithdraw empties a withdraw worker's LP holdings: the LP ATA
// (side.LPMint) is the account Empty targets, since LP is the resource
// a withdraw worker accumulates. The contract's Withdraw instruction
// is itself the LP burn here; it consumes the LP balance and pays out
// the underlying tokens in the same call. The underlying received is
// then SPL-burned in turn so nothing is retained.
func (r *Runtime) emptyWithdraw(ctx context.Context) error {
	side, err := resolveSide(r.pool, r.worker.TokenSide, r.deps.ProgramID)
	if err != nil {
		return err
	}
	userLPAccount, _, err := txbuilder.FindAssociatedTokenAccount(r.worker.WalletPublicKey, side.LPMint)
	if err != nil {
		return err
	}

	lpBalance, err := r.deps.Gateway.GetTokenBalance(ctx, userLPAccount)
	if err != nil {
		return &errclass.TransportError{Op: "empty GetTokenBalance", Err: err}
	}
	if lpBalance == 0 {
		return nil
	}

	userTokenAccount, _, err := txbuilder.FindAssociatedTokenAccount(r.worker.WalletPublicKey, side.Mint)
	if err != nil {
		return err
	}

	ix := txbuilder.Withdraw(r.deps.ProgramID, r.depositWithdrawAccounts(side, userTokenAccount, userLPAccount), lpBalance)
	if err := r.submit(ctx, []solana.Instruction{ix}, computebudget.Units(computebudget.Withdraw)); err != nil {
		return err
	}
	r.stats.EmptyOperations++

	received := lpBalance // 1:1 redemption
	if err := r.burn(ctx, userTokenAccount, side.Mint, received); err != nil {
		r.stats.RecordFailure(r.worker.Kind, "empty_burn_output", err.Error())
	}
	return nil
}

func (r *Runtime) emptySwap(ctx context.Context, amount uint64) (emptyOutput, error) {
	inputSide := model.SideA
	if r.worker.Kind == model.KindSwapBA {
		inputSide = model.SideB
	}
	outputSide := oppositeSide(inputSide)

	in, err := resolveSide(r.pool, inputSide, r.deps.ProgramID)
	if err != nil {
		return emptyOutput{}, err
	}
	out, err := resolveSide(r.pool, outputSide, r.deps.ProgramID)
	if err != nil {
		return emptyOutput{}, err
	}
	userInputAccount, _, err := txbuilder.FindAssociatedTokenAccount(r.worker.WalletPublicKey, in.Mint)
	if err != nil {
		return emptyOutput{}, err
	}
	userOutputAccount, _, err := txbuilder.FindAssociatedTokenAccount(r.worker.WalletPublicKey, out.Mint)
	if err != nil {
		return emptyOutput{}, err
	}

	var expectedOut uint64
	if inputSide == model.SideA {
		expectedOut, err = ratiomath.ExpectedOutputAtoB(amount, r.pool.RatioANumerator, r.pool.RatioBDenominator)
	} else {
		expectedOut, err = ratiomath.ExpectedOutputBtoA(amount, r.pool.RatioANumerator, r.pool.RatioBDenominator)
	}
	if err != nil {
		if err == ratiomath.ErrInsufficientInput {
			return emptyOutput{}, nil
		}
		return emptyOutput{}, err
	}

	systemStatePDA, _, err := ratiomath.DeriveAddress(ratiomath.SystemStateSeeds(), r.deps.ProgramID)
	if err != nil {
		return emptyOutput{}, err
	}

	ix := txbuilder.Swap(r.deps.ProgramID, txbuilder.SwapAccounts{
		Payer:             r.worker.WalletPublicKey,
		SystemProgram:     solana.SystemProgramID,
		TokenProgram:      solana.TokenProgramID,
		SystemStatePDA:    systemStatePDA,
		PoolStatePDA:      r.pool.PoolID,
		InputMint:         in.Mint,
		OutputMint:        out.Mint,
		InputVault:        in.Vault,
		OutputVault:       out.Vault,
		UserInputAccount:  userInputAccount,
		UserOutputAccount: userOutputAccount,
	}, amount, expectedOut)

	if err := r.submit(ctx, []solana.Instruction{ix}, computebudget.Units(computebudget.Swap)); err != nil {
		return emptyOutput{}, err
	}
	return emptyOutput{amount: expectedOut, account: userOutputAccount, mint: out.Mint}, nil
}
