package worker

import (
	"context"
	"math/rand"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/fixedratiolabs/frt-stress/internal/computebudget"
	"github.com/fixedratiolabs/frt-stress/internal/economy"
	"github.com/fixedratiolabs/frt-stress/internal/errclass"
	"github.com/fixedratiolabs/frt-stress/internal/model"
	"github.com/fixedratiolabs/frt-stress/internal/ratiomath"
	"github.com/fixedratiolabs/frt-stress/internal/txbuilder"
)

// Run drives the cooperative loop until ctx is cancelled or
// handleError moves the worker to Error; a Stopped status alone does
// not end the loop. It returns nil on a clean cancellation, and the
// triggering error if the worker entered Error.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.transition(model.StatusRunning); err != nil {
		return err
	}
	r.startedAt = r.now()
	r.stats.Reset()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		delayMS := r.cfg.MinDelayMS + r.rng.Intn(r.cfg.MaxDelayMS-r.cfg.MinDelayMS+1)
		if err := r.sleep(ctx, time.Duration(delayMS)*time.Millisecond); err != nil {
			return nil
		}

		if r.Status() == model.StatusPaused {
			continue
		}

		if err := r.preflightSOL(ctx); err != nil {
			if r.handleError(ctx, err) {
				return err
			}
			continue
		}

		if err := r.cycle(ctx); err != nil {
			if r.handleError(ctx, err) {
				return err
			}
		}
	}
}

// preflightSOL runs the gateway's airdrop staircase for the worker
// wallet whenever its balance drops below MinSOLBalance. The amount
// received is whatever the staircase grants; SOLAirdropAmount is not
// read here, and the wallet is not topped up to any target balance.
func (r *Runtime) preflightSOL(ctx context.Context) error {
	balance, err := r.deps.Gateway.GetBalance(ctx, r.worker.WalletPublicKey, rpc.CommitmentConfirmed)
	if err != nil {
		return &errclass.TransportError{Op: "preflight GetBalance", Err: err}
	}
	if balance >= r.cfg.MinSOLBalance {
		return nil
	}
	return r.deps.Gateway.AirdropStaircase(ctx, r.worker.WalletPublicKey)
}

// cycle performs exactly one kind-specific operation.
func (r *Runtime) cycle(ctx context.Context) error {
	switch r.worker.Kind {
	case model.KindDeposit:
		return r.depositCycle(ctx)
	case model.KindWithdraw:
		return r.withdrawCycle(ctx)
	case model.KindSwapAB, model.KindSwapBA:
		return r.swapCycle(ctx)
	default:
		return &errclass.EngineError{Number: errclass.EngineErrorInvalidState, Message: "unknown worker kind"}
	}
}

func (r *Runtime) depositCycle(ctx context.Context) error {
	side, err := resolveSide(r.pool, r.worker.TokenSide, r.deps.ProgramID)
	if err != nil {
		return err
	}

	userTokenAccount, _, err := txbuilder.FindAssociatedTokenAccount(r.worker.WalletPublicKey, side.Mint)
	if err != nil {
		return err
	}

	balance, err := r.deps.Gateway.GetTokenBalance(ctx, userTokenAccount)
	if err != nil {
		return &errclass.TransportError{Op: "deposit GetTokenBalance", Err: err}
	}

	if r.worker.AutoRefill && r.worker.InitialAmount > 0 && balance < r.worker.InitialAmount*5/100 {
		// Refill the full InitialAmount, not just the deficit.
		refillAmount := r.worker.InitialAmount
		if err := r.deps.CoreWallet.MintTo(ctx, side.Mint, userTokenAccount, refillAmount); err != nil {
			return err
		}
		balance += refillAmount
	}

	amount := randAmountUpTo(r.rng, balance, r.cfg.MaxDepositPercent)
	if amount == 0 {
		return nil // nothing to do this cycle
	}

	userLPAccount, _, err := txbuilder.FindAssociatedTokenAccount(r.worker.WalletPublicKey, side.LPMint)
	if err != nil {
		return err
	}

	ix := txbuilder.Deposit(r.deps.ProgramID, r.depositWithdrawAccounts(side, userTokenAccount, userLPAccount), amount)
	if err := r.submit(ctx, []solana.Instruction{ix}, computebudget.Units(computebudget.Deposit)); err != nil {
		return err
	}

	lpReceived := amount // 1:1 LP issuance is the contract's documented behavior for a fresh pool
	r.stats.RecordSuccess(model.KindDeposit, amount, 0, 0)
	r.recordOpMetric("success")
	r.route(ctx, economy.RouteDeposit(r.activeRegistry(), r.pool.PoolID.String(), r.worker.TokenSide, r.worker.ShareTokens, lpReceived), side.LPMint, userLPAccount)
	r.maybePersist()
	return nil
}

func (r *Runtime) withdrawCycle(ctx context.Context) error {
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
		return &errclass.TransportError{Op: "withdraw GetTokenBalance", Err: err}
	}
	if lpBalance == 0 {
		return nil // active wait: no LP yet, sleep one cycle, no transaction
	}

	amount := randAmountUpTo(r.rng, lpBalance, r.cfg.MaxWithdrawPercent)
	if amount == 0 {
		return nil
	}

	userTokenAccount, _, err := txbuilder.FindAssociatedTokenAccount(r.worker.WalletPublicKey, side.Mint)
	if err != nil {
		return err
	}

	ix := txbuilder.Withdraw(r.deps.ProgramID, r.depositWithdrawAccounts(side, userTokenAccount, userLPAccount), amount)
	if err := r.submit(ctx, []solana.Instruction{ix}, computebudget.Units(computebudget.Withdraw)); err != nil {
		return err
	}

	tokensReceived := amount // 1:1 redemption is the contract's documented behavior for a fresh pool
	r.stats.RecordSuccess(model.KindWithdraw, amount, 0, 0)
	r.recordOpMetric("success")
	r.route(ctx, economy.RouteWithdraw(r.activeRegistry(), r.pool.PoolID.String(), r.worker.TokenSide, tokensReceived), side.Mint, userTokenAccount)
	r.maybePersist()
	return nil
}

func (r *Runtime) swapCycle(ctx context.Context) error {
	inputSide := model.SideA
	if r.worker.Kind == model.KindSwapBA {
		inputSide = model.SideB
	}
	outputSide := oppositeSide(inputSide)

	in, err := resolveSide(r.pool, inputSide, r.deps.ProgramID)
	if err != nil {
		return err
	}
	out, err := resolveSide(r.pool, outputSide, r.deps.ProgramID)
	if err != nil {
		return err
	}

	userInputAccount, _, err := txbuilder.FindAssociatedTokenAccount(r.worker.WalletPublicKey, in.Mint)
	if err != nil {
		return err
	}
	userOutputAccount, _, err := txbuilder.FindAssociatedTokenAccount(r.worker.WalletPublicKey, out.Mint)
	if err != nil {
		return err
	}

	balance, err := r.deps.Gateway.GetTokenBalance(ctx, userInputAccount)
	if err != nil {
		return &errclass.TransportError{Op: "swap GetTokenBalance", Err: err}
	}

	amount := randAmountUpTo(r.rng, balance, r.cfg.MaxSwapPercent)
	if amount == 0 {
		return nil
	}

	var expectedOut uint64
	if inputSide == model.SideA {
		expectedOut, err = ratiomath.ExpectedOutputAtoB(amount, r.pool.RatioANumerator, r.pool.RatioBDenominator)
	} else {
		expectedOut, err = ratiomath.ExpectedOutputBtoA(amount, r.pool.RatioANumerator, r.pool.RatioBDenominator)
	}
	if err != nil {
		if err == ratiomath.ErrInsufficientInput {
			return nil // sub-dust: skip cycle, not an error
		}
		return err
	}

	systemStatePDA, _, err := ratiomath.DeriveAddress(ratiomath.SystemStateSeeds(), r.deps.ProgramID)
	if err != nil {
		return err
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
		return err
	}

	r.stats.RecordSuccess(r.worker.Kind, amount, 0, 0)
	r.recordOpMetric("success")
	r.stats.TotalOutputToken += expectedOut
	r.route(ctx, economy.RouteSwap(r.activeRegistry(), r.pool.PoolID.String(), r.worker.Kind, expectedOut), out.Mint, userOutputAccount)
	r.maybePersist()
	return nil
}

func (r *Runtime) depositWithdrawAccounts(side sideAccounts, userTokenAccount, userLPAccount solana.PublicKey) txbuilder.DepositWithdrawAccounts {
	systemStatePDA, _, _ := ratiomath.DeriveAddress(ratiomath.SystemStateSeeds(), r.deps.ProgramID)
	mainTreasury, _, _ := ratiomath.DeriveAddress(ratiomath.MainTreasurySeeds(), r.deps.ProgramID)

	return txbuilder.DepositWithdrawAccounts{
		Payer:            r.worker.WalletPublicKey,
		SystemProgram:    solana.SystemProgramID,
		TokenProgram:     solana.TokenProgramID,
		SystemStatePDA:   systemStatePDA,
		PoolStatePDA:     r.pool.PoolID,
		SideMint:         side.Mint,
		Vault:            side.Vault,
		UserTokenAccount: userTokenAccount,
		LPMint:           side.LPMint,
		UserLPAccount:    userLPAccount,
		MainTreasury:     mainTreasury,
		PoolTreasury:     side.Vault,
	}
}

// submit builds, signs, sends and confirms a single-instruction
// transaction under units compute budget.
func (r *Runtime) submit(ctx context.Context, instrs []solana.Instruction, units uint32) error {
	return errclass.Retry(ctx, r.deps.RetryPolicy, r.rng, func() error {
		blockhash, err := r.deps.Gateway.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
		if err != nil {
			return &errclass.TransportError{Op: "GetLatestBlockhash", Err: err}
		}
		tx, err := txbuilder.Build(instrs, units, blockhash, r.worker.WalletPublicKey, txbuilder.SingleSigner(r.worker.Wallet()))
		if err != nil {
			return err
		}
		sig, err := r.deps.Gateway.Send(ctx, tx)
		if err != nil {
			return err
		}
		return r.deps.Gateway.ConfirmSignature(ctx, sig, 30*time.Second)
	})
}

// route executes a TokenEconomy routing decision via on-chain SPL
// transfers. Failed transfers are logged and counted but never roll
// back the preceding pool op.
func (r *Runtime) route(ctx context.Context, result economy.Result, mint, sourceAccount solana.PublicKey) {
	for _, transfer := range result.Transfers {
		dest, ok := r.activeRegistry()[transfer.WorkerID]
		if !ok {
			continue
		}
		destAccount, _, err := txbuilder.FindAssociatedTokenAccount(dest.WalletPublicKey, mint)
		if err != nil {
			r.stats.RecordFailure(r.worker.Kind, "routing", err.Error())
			continue
		}
		ix := txbuilder.Transfer(sourceAccount, destAccount, r.worker.WalletPublicKey, transfer.Amount)
		if err := r.submit(ctx, []solana.Instruction{ix}, computebudget.Units(computebudget.Deposit)); err != nil {
			r.stats.RecordFailure(r.worker.Kind, "routing", err.Error())
			continue
		}
		r.stats.AmountsShared += transfer.Amount
	}
}

func randAmountUpTo(rng *rand.Rand, balance uint64, maxPercent int) uint64 {
	ceiling := balance * uint64(maxPercent) / 100
	if ceiling == 0 {
		return 0
	}
	return uint64(rng.Int63n(int64(ceiling))) + 1
}

// handleError classifies err and acts on it per errclass's strategy
// table. It returns true when the worker has been escalated to the
// Error state, ending Run.
func (r *Runtime) handleError(ctx context.Context, err error) bool {
	classified := errclass.Classify(err)
	r.breaker.RecordError(r.now(), classified.Kind)
	r.stats.RecordFailure(r.worker.Kind, string(classified.Code), err.Error())
	r.recordOpMetric("failure")
	if r.deps.Store != nil {
		_ = r.deps.Store.AppendError(r.worker.WorkerID, model.OperationError{
			Timestamp: r.now(),
			Kind:      string(classified.Code),
			Message:   err.Error(),
		})
	}
	if r.breaker.Tripped(r.now()) {
		return r.escalate(err)
	}

	switch classified.Kind {
	case errclass.KindTransport:
		return false // errclass.Retry already exhausted backoff before surfacing this
	case errclass.KindContractRecoverable:
		switch errclass.Resolve(classified.Code, r.insufficientFundsCause()) {
		case errclass.ActionAirdropThenRetry:
			_ = r.deps.Gateway.AirdropStaircase(ctx, r.worker.WalletPublicKey)
			return false
		case errclass.ActionMintRefundThenRetry:
			if err := r.mintRefund(ctx); err != nil {
				r.stats.RecordFailure(r.worker.Kind, "mint_refund", err.Error())
			}
			return false
		case errclass.ActionRecomputeSlippageOnce, errclass.ActionSkipCycle:
			return false
		case errclass.ActionPollPauseThenRetry:
			_ = r.sleep(ctx, errclass.PausePollInterval)
			return false
		default:
			return r.escalate(err)
		}
	default:
		return r.escalate(err)
	}
}

// mintRefund tops the worker's own token side back up via CoreWallet,
// the same refill path depositCycle's pre-cycle threshold check uses
// proactively; this is its reactive counterpart, invoked when a cycle
// has already failed with InsufficientFunds on a token-auto-refill
// worker.
func (r *Runtime) mintRefund(ctx context.Context) error {
	side, err := resolveSide(r.pool, r.worker.TokenSide, r.deps.ProgramID)
	if err != nil {
		return err
	}
	userTokenAccount, _, err := txbuilder.FindAssociatedTokenAccount(r.worker.WalletPublicKey, side.Mint)
	if err != nil {
		return err
	}
	amount := r.worker.InitialAmount
	if amount == 0 {
		amount = r.cfg.AutoRefillThreshold
	}
	return r.deps.CoreWallet.MintTo(ctx, side.Mint, userTokenAccount, amount)
}

// insufficientFundsCause distinguishes the low-SOL and low-token cases
// Resolve needs for InsufficientFunds; SOL is handled by preflightSOL
// before any instruction is built, so an InsufficientFunds error this
// deep in the cycle is a token-side shortfall.
func (r *Runtime) insufficientFundsCause() errclass.InsufficientFundsCause {
	if r.worker.AutoRefill {
		return errclass.LowTokenAutoRefill
	}
	return errclass.LowTokenNoAutoRefill
}

// escalate transitions the worker to Error, ending Run.
func (r *Runtime) escalate(err error) bool {
	_ = r.transition(model.StatusError)
	return true
}

// maybePersist flushes in-memory statistics to the Store every
// PersistEveryNOps successful operations.
func (r *Runtime) maybePersist() {
	r.opsSinceSave++
	if r.opsSinceSave < r.cfg.PersistEveryNOps {
		return
	}
	r.opsSinceSave = 0
	if r.deps.Store != nil {
		_ = r.deps.Store.SaveStats(*r.stats)
	}
	if r.deps.Recorder != nil {
		_ = r.deps.Recorder.RecordWorkerStat(r.worker.PoolID.String(), r.Status(), *r.stats)
	}
}
