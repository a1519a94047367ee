package engine

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixedratiolabs/frt-stress/internal/errclass"
	"github.com/fixedratiolabs/frt-stress/internal/logging"
	"github.com/fixedratiolabs/frt-stress/internal/model"
	"github.com/fixedratiolabs/frt-stress/internal/store"
	"github.com/fixedratiolabs/frt-stress/internal/worker"
)

type fakeGateway struct {
	accountInfo *rpc.Account
}

func (f *fakeGateway) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	return 10_000_000_000, nil
}
func (f *fakeGateway) GetTokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	return 0, nil
}
func (f *fakeGateway) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (solana.Hash, error) {
	return solana.Hash{1}, nil
}
func (f *fakeGateway) Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return solana.Signature{1}, nil
}
func (f *fakeGateway) ConfirmSignature(ctx context.Context, sig solana.Signature, timeout time.Duration) error {
	return nil
}
func (f *fakeGateway) AirdropStaircase(ctx context.Context, pubkey solana.PublicKey) error {
	return nil
}
func (f *fakeGateway) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.Account, error) {
	return f.accountInfo, nil
}
func (f *fakeGateway) RequestAirdrop(ctx context.Context, pubkey solana.PublicKey, lamports uint64) (solana.Signature, error) {
	return solana.Signature{2}, nil
}
func (f *fakeGateway) Simulate(ctx context.Context, tx *solana.Transaction, sigVerify, replaceRecentBlockhash bool) (*rpc.SimulateTransactionResponse, error) {
	return &rpc.SimulateTransactionResponse{Value: &rpc.SimulateTransactionResult{Logs: []string{"version 1.0.0"}}}, nil
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	st, err := store.New(dir, "test-passphrase")
	require.NoError(t, err)

	programID := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	e := New(programID, &fakeGateway{}, st, nil, logging.Discard(), nil, Config{
		TargetActivePools: 1,
		SecretPassphrase:  "test-passphrase",
	})
	return e
}

func seedPool(e *Engine) model.Pool {
	tokenA := solana.PublicKey{0x01}
	tokenB := solana.PublicKey{0x02}
	pk, _, _ := solana.FindProgramAddress([][]byte{[]byte("pool_state"), tokenA[:], tokenB[:]}, e.programID)
	p := model.Pool{
		PoolID:            pk,
		TokenAMint:        tokenA,
		TokenBMint:        tokenB,
		TokenADecimals:    6,
		TokenBDecimals:    6,
		RatioANumerator:   1_000_000,
		RatioBDenominator: 2_000_000,
	}
	e.pools[p.PoolID.String()] = p
	return p
}

func TestCreateWorker_RejectsUnknownPool(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.CreateWorker(CreateWorkerRequest{WorkerID: "w1", PoolID: "bogus", Kind: model.KindDeposit, TokenSide: model.SideA})
	require.Error(t, err)
	var ee *errclass.EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, errclass.EngineErrorPoolNotFound, ee.Number)
}

func TestCreateWorker_EnforcesSwapSingleton(t *testing.T) {
	e := newTestEngine(t)
	pool := seedPool(e)

	_, err := e.CreateWorker(CreateWorkerRequest{WorkerID: "swap-1", PoolID: pool.PoolID.String(), Kind: model.KindSwapAB})
	require.NoError(t, err)

	_, err = e.CreateWorker(CreateWorkerRequest{WorkerID: "swap-2", PoolID: pool.PoolID.String(), Kind: model.KindSwapAB})
	require.Error(t, err)
	var ee *errclass.EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, errclass.EngineErrorDuplicateSwap, ee.Number)

	// the opposite direction is still allowed
	_, err = e.CreateWorker(CreateWorkerRequest{WorkerID: "swap-3", PoolID: pool.PoolID.String(), Kind: model.KindSwapBA})
	require.NoError(t, err)
}

func TestCreateWorker_PersistsAndDoesNotStart(t *testing.T) {
	e := newTestEngine(t)
	pool := seedPool(e)

	w, err := e.CreateWorker(CreateWorkerRequest{WorkerID: "w1", PoolID: pool.PoolID.String(), Kind: model.KindDeposit, TokenSide: model.SideA})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCreated, w.Status)

	status, ok := e.GetWorkerStatus("w1")
	require.True(t, ok)
	assert.Equal(t, model.StatusCreated, status)

	loaded, found, err := e.store.LoadWorker("w1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.KindDeposit, loaded.Kind)
}

func TestEngineTransition_EnforcesStateMachine(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.transition(StateStarting))
	require.NoError(t, e.transition(StateStarted))
	require.NoError(t, e.transition(StatePausing))
	require.NoError(t, e.transition(StatePaused))

	err := e.transition(StateStarting)
	require.Error(t, err)
	var ee *errclass.EngineError
	require.ErrorAs(t, err, &ee)
}

func TestStopWorker_UnknownWorkerIsEngineError(t *testing.T) {
	e := newTestEngine(t)
	err := e.StopWorker("nope")
	require.Error(t, err)
	var ee *errclass.EngineError
	require.ErrorAs(t, err, &ee)
}

func TestStopWorker_CreatedWorkerWithoutRuntimeIsANoOp(t *testing.T) {
	e := newTestEngine(t)
	pool := seedPool(e)
	w, err := e.CreateWorker(CreateWorkerRequest{WorkerID: "w1", PoolID: pool.PoolID.String(), Kind: model.KindDeposit, TokenSide: model.SideA})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCreated, w.Status)

	require.NoError(t, e.StopWorker("w1"))
}

func TestOnWorkerExit_PersistsSessionWithZeroedStats(t *testing.T) {
	e := newTestEngine(t)
	pool := seedPool(e)
	w, err := e.CreateWorker(CreateWorkerRequest{WorkerID: "w1", PoolID: pool.PoolID.String(), Kind: model.KindDeposit, TokenSide: model.SideA})
	require.NoError(t, err)

	rt := worker.New(w, pool, e.workerCfg, worker.Deps{
		Gateway:     &fakeGateway{},
		Store:       e.store,
		ProgramID:   e.programID,
		Registry:    e.snapshotWorkers,
		RetryPolicy: e.retryPolicy,
		Recorder:    e.recorder,
	})

	// An already-canceled context drives Run's loop through exactly one
	// iteration (transition + stats reset), exiting before any sleep or
	// cycle attempt, so the exit path can be exercised synchronously.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runErr := rt.Run(ctx)
	require.NoError(t, runErr)

	e.onWorkerExit("w1", rt, runErr)

	sessions, err := e.store.LoadSessions("w1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	sess := sessions[0]
	assert.False(t, sess.StartedAt.IsZero())
	assert.False(t, sess.StoppedAt.IsZero())
	assert.Equal(t, uint64(0), sess.FinalStats.VolumeProcessed)
	assert.Empty(t, sess.FinalStats.SuccessByKind)
}

func TestHealth_CountsRunningAndFailedWorkers(t *testing.T) {
	e := newTestEngine(t)
	e.workers["a"] = model.Worker{WorkerID: "a", Status: model.StatusRunning}
	e.workers["b"] = model.Worker{WorkerID: "b", Status: model.StatusError}
	e.workers["c"] = model.Worker{WorkerID: "c", Status: model.StatusStopped}

	h := e.Health()
	assert.Equal(t, 3, h.TotalWorkers)
	assert.Equal(t, 1, h.Running)
	assert.Equal(t, 1, h.Failed)
}
