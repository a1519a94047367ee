package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/fixedratiolabs/frt-stress/internal/computebudget"
	"github.com/fixedratiolabs/frt-stress/internal/errclass"
	"github.com/fixedratiolabs/frt-stress/internal/model"
	"github.com/fixedratiolabs/frt-stress/internal/ratiomath"
	"github.com/fixedratiolabs/frt-stress/internal/txbuilder"
)

// mintRentExemptLamports is the rent-exempt minimum for an 82-byte SPL
// mint account, a cluster-wide constant that does not depend on
// program state.
const mintRentExemptLamports = 1_461_600

// defaultPoolDecimals and defaultPoolRatio pick the ratio a
// bootstrap-created pool starts with: tokenA anchored to one, tokenB
// worth 2 of it. Operators can create pools at other ratios via
// CreatePool/CreatePoolRandom.
const (
	defaultPoolDecimals = uint8(6)
	defaultPoolRatio    = uint64(2)
)

// validatePools drops any persisted active pool id whose account no
// longer exists on-chain (the harness pointed at a fresh cluster, or
// the pool was never actually created), and returns the ones that
// still resolve.
func (e *Engine) validatePools(ctx context.Context) (map[string]model.Pool, error) {
	pools, err := e.store.LoadAllPools()
	if err != nil {
		return nil, err
	}
	activeIDs, err := e.store.LoadActivePools()
	if err != nil {
		return nil, err
	}

	live := make(map[string]model.Pool, len(activeIDs))
	for _, id := range activeIDs {
		p, ok := pools[id]
		if !ok {
			continue
		}
		info, err := e.gateway.GetAccountInfo(ctx, p.PoolID)
		if err != nil || info == nil {
			continue // stale: cluster was reset since this pool was created
		}
		live[id] = p
	}
	return live, nil
}

// ensureTargetPools creates fresh pools until live holds at least
// e.cfg.TargetActivePools entries, persisting each as it's created.
func (e *Engine) ensureTargetPools(ctx context.Context, live map[string]model.Pool, target int) (map[string]model.Pool, error) {
	for len(live) < target {
		pool, err := e.createPool(ctx, DefaultPoolParams())
		if err != nil {
			return live, err
		}
		live[pool.PoolID.String()] = pool
	}
	ids := make([]string, 0, len(live))
	for id := range live {
		ids = append(ids, id)
	}
	if err := e.store.SaveActivePools(ids); err != nil {
		return live, err
	}
	return live, nil
}

// PoolParams is the operator-facing shape of create_pool: decimals per
// side, the display whole-number ratio, and which side the ratio
// anchors to one.
type PoolParams struct {
	TokenADecimals   uint8
	TokenBDecimals   uint8
	RatioWholeNumber uint64
	Direction        ratiomath.Direction
}

// DefaultPoolParams anchors tokenA to one with tokenB worth
// defaultPoolRatio of it, defaultPoolDecimals on both sides.
func DefaultPoolParams() PoolParams {
	return PoolParams{
		TokenADecimals:   defaultPoolDecimals,
		TokenBDecimals:   defaultPoolDecimals,
		RatioWholeNumber: defaultPoolRatio,
		Direction:        ratiomath.AnchorA,
	}
}

// randomPoolParams draws decimals in [0,9] per side and a ratio in
// [2,1000], the spread create_pool_random stresses normalization with.
// A ratio of 1 would anchor both sides at once and fail validation, so
// the draw starts at 2.
func randomPoolParams() PoolParams {
	return PoolParams{
		TokenADecimals:   uint8(rand.Intn(10)),
		TokenBDecimals:   uint8(rand.Intn(10)),
		RatioWholeNumber: uint64(rand.Intn(999)) + 2,
		Direction:        ratiomath.Direction(rand.Intn(2)),
	}
}

// CreatePool mints two fresh SPL token mints and creates an FRT pool
// over them per params, registering it as active. The engine must be
// Started (pool creation needs the core wallet as payer).
func (e *Engine) CreatePool(ctx context.Context, params PoolParams) (model.Pool, error) {
	if err := e.requireStarted(); err != nil {
		return model.Pool{}, err
	}
	pool, err := e.createPool(ctx, params)
	if err != nil {
		return model.Pool{}, err
	}

	e.mu.Lock()
	e.pools[pool.PoolID.String()] = pool
	ids := make([]string, 0, len(e.pools))
	for id := range e.pools {
		ids = append(ids, id)
	}
	poolCount := len(e.pools)
	e.mu.Unlock()

	if err := e.store.SaveActivePools(ids); err != nil {
		return pool, err
	}
	if e.metrics != nil {
		e.metrics.ActivePools.Set(float64(poolCount))
	}
	return pool, nil
}

// CreatePoolRandom creates a pool with randomized decimals and ratio.
func (e *Engine) CreatePoolRandom(ctx context.Context) (model.Pool, error) {
	return e.CreatePool(ctx, randomPoolParams())
}

// ListPools returns the active pools sorted by id.
func (e *Engine) ListPools() []model.Pool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Pool, 0, len(e.pools))
	for _, p := range e.pools {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PoolID.String() < out[j].PoolID.String() })
	return out
}

// GetPool looks poolID up among the active pools.
func (e *Engine) GetPool(poolID string) (model.Pool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.pools[poolID]
	if !ok {
		return model.Pool{}, &errclass.EngineError{Number: errclass.EngineErrorPoolNotFound, Message: "unknown pool: " + poolID}
	}
	return p, nil
}

// requireStarted guards the operations that need the core wallet and an
// imported pool registry, both of which only exist after Start.
func (e *Engine) requireStarted() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.core == nil {
		return &errclass.EngineError{Number: errclass.EngineErrorInvalidState, Message: "engine not started"}
	}
	return nil
}

// createPool mints two fresh SPL mints, derives every PDA the pool
// needs, and submits the PoolCreate transaction per params.
func (e *Engine) createPool(ctx context.Context, params PoolParams) (model.Pool, error) {
	mintX, err := solana.NewRandomPrivateKey()
	if err != nil {
		return model.Pool{}, err
	}
	mintY, err := solana.NewRandomPrivateKey()
	if err != nil {
		return model.Pool{}, err
	}

	ratioX, ratioY := ratiomath.BasisPoints(params.RatioWholeNumber, params.TokenADecimals, params.TokenBDecimals, params.Direction)
	norm, err := ratiomath.Normalize(mintX.PublicKey(), mintY.PublicKey(), params.TokenADecimals, params.TokenBDecimals, ratioX, ratioY)
	if err != nil {
		return model.Pool{}, err
	}

	poolPDA, _, err := ratiomath.DeriveAddress(ratiomath.PoolStateSeeds(norm.TokenA, norm.TokenB, norm.RatioA, norm.RatioB), e.programID)
	if err != nil {
		return model.Pool{}, err
	}
	// The contract rejects on-curve pool-state addresses outright, so
	// catch a bad derivation here instead of burning a transaction on it.
	if !ratiomath.IsOffCurve(poolPDA) {
		return model.Pool{}, fmt.Errorf("derived pool state %s is on-curve", poolPDA)
	}
	vaultA, _, err := ratiomath.DeriveAddress(ratiomath.VaultSeeds(poolPDA, 'A'), e.programID)
	if err != nil {
		return model.Pool{}, err
	}
	vaultB, _, err := ratiomath.DeriveAddress(ratiomath.VaultSeeds(poolPDA, 'B'), e.programID)
	if err != nil {
		return model.Pool{}, err
	}
	lpMintA, _, err := ratiomath.DeriveAddress(ratiomath.LPMintSeeds(poolPDA, 'A'), e.programID)
	if err != nil {
		return model.Pool{}, err
	}
	lpMintB, _, err := ratiomath.DeriveAddress(ratiomath.LPMintSeeds(poolPDA, 'B'), e.programID)
	if err != nil {
		return model.Pool{}, err
	}
	mainTreasury, _, err := ratiomath.DeriveAddress(ratiomath.MainTreasurySeeds(), e.programID)
	if err != nil {
		return model.Pool{}, err
	}
	systemStatePDA, _, err := ratiomath.DeriveAddress(ratiomath.SystemStateSeeds(), e.programID)
	if err != nil {
		return model.Pool{}, err
	}

	payer := e.core.PublicKey()
	instrs := []solana.Instruction{
		txbuilder.CreateAccountForMint(payer, mintX.PublicKey(), mintRentExemptLamports),
		txbuilder.CreateMint(mintX.PublicKey(), payer, params.TokenADecimals),
		txbuilder.CreateAccountForMint(payer, mintY.PublicKey(), mintRentExemptLamports),
		txbuilder.CreateMint(mintY.PublicKey(), payer, params.TokenBDecimals),
		txbuilder.PoolCreate(e.programID, txbuilder.PoolCreateAccounts{
			Authority:      payer,
			SystemProgram:  solana.SystemProgramID,
			TokenProgram:   solana.TokenProgramID,
			RentSysvar:     solana.SysVarRentPubkey,
			SystemStatePDA: systemStatePDA,
			PoolStatePDA:   poolPDA,
			TokenAMint:     norm.TokenA,
			TokenBMint:     norm.TokenB,
			LPMintA:        lpMintA,
			LPMintB:        lpMintB,
			VaultA:         vaultA,
			VaultB:         vaultB,
			MainTreasury:   mainTreasury,
		}, norm.RatioA, norm.RatioB, directionFlag(mintX.PublicKey(), norm.TokenA)),
	}

	blockhash, err := e.gateway.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return model.Pool{}, &errclass.TransportError{Op: "createPool GetLatestBlockhash", Err: err}
	}
	tx, err := txbuilder.Build(instrs, computebudget.Units(computebudget.PoolCreate), blockhash, payer,
		txbuilder.MultiSigner(e.core.signerKey(), mintX, mintY))
	if err != nil {
		return model.Pool{}, err
	}
	sig, err := e.gateway.Send(ctx, tx)
	if err != nil {
		return model.Pool{}, err
	}
	if err := e.gateway.ConfirmSignature(ctx, sig, confirmTimeout); err != nil {
		return model.Pool{}, err
	}

	pool := model.Pool{
		PoolID:            poolPDA,
		TokenAMint:        norm.TokenA,
		TokenBMint:        norm.TokenB,
		TokenADecimals:    norm.DecimalsA,
		TokenBDecimals:    norm.DecimalsB,
		RatioANumerator:   norm.RatioA,
		RatioBDenominator: norm.RatioB,
		LPMintA:           lpMintA,
		LPMintB:           lpMintB,
		VaultA:            vaultA,
		VaultB:            vaultB,
		RatioDisplay:      displayRatio(params),
		CreatedAt:         time.Now(),
	}
	if err := e.store.SavePool(pool); err != nil {
		return model.Pool{}, err
	}
	return pool, nil
}

// displayRatio renders the human-readable ratio, anchored side first.
func displayRatio(params PoolParams) string {
	if params.Direction == ratiomath.AnchorA {
		return fmt.Sprintf("1:%d", params.RatioWholeNumber)
	}
	return fmt.Sprintf("%d:1", params.RatioWholeNumber)
}

// directionFlag is 0 when mintX kept the canonical A slot after
// normalization and 1 when it was swapped to B; PoolCreate carries it
// in the high bit of its discriminator byte.
func directionFlag(mintX, canonicalTokenA solana.PublicKey) byte {
	if mintX.Equals(canonicalTokenA) {
		return 0
	}
	return 1
}
