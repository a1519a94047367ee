package engine

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixedratiolabs/frt-stress/internal/errclass"
	"github.com/fixedratiolabs/frt-stress/internal/model"
	"github.com/fixedratiolabs/frt-stress/internal/ratiomath"
)

func startTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := newTestEngine(t)
	require.NoError(t, e.Start(context.Background()))
	return e
}

func TestStart_BootstrapsPoolsAndRecordsVersion(t *testing.T) {
	e := startTestEngine(t)

	assert.Equal(t, StateStarted, e.State())
	assert.Len(t, e.ListPools(), 1)
	assert.Equal(t, "version 1.0.0", e.Version())

	probe, found, err := e.store.LoadVersionProbe()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"version 1.0.0"}, probe.Logs)
	assert.Empty(t, probe.Error)
}

func TestStart_CreatedPoolsSatisfyContractInvariants(t *testing.T) {
	e := startTestEngine(t)

	for _, p := range e.ListPools() {
		assert.True(t, model.CanonicalOrder(p.TokenAMint, p.TokenBMint))
		assert.True(t, p.AnchoredToOne())
	}
}

func TestCreatePool_RequiresStartedEngine(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.CreatePool(context.Background(), DefaultPoolParams())
	require.Error(t, err)
	var ee *errclass.EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, errclass.EngineErrorInvalidState, ee.Number)
}

func TestCreatePool_NormalizesUserIntendedRatio(t *testing.T) {
	e := startTestEngine(t)

	pool, err := e.CreatePool(context.Background(), PoolParams{
		TokenADecimals:   9,
		TokenBDecimals:   6,
		RatioWholeNumber: 160,
		Direction:        ratiomath.AnchorA,
	})
	require.NoError(t, err)

	assert.True(t, model.CanonicalOrder(pool.TokenAMint, pool.TokenBMint))
	assert.True(t, pool.AnchoredToOne())
	assert.Equal(t, "1:160", pool.RatioDisplay)

	// active set now carries the bootstrap pool plus this one
	assert.Len(t, e.ListPools(), 2)
	active, err := e.store.LoadActivePools()
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestCreatePoolRandom_AlwaysValidates(t *testing.T) {
	e := startTestEngine(t)

	for i := 0; i < 10; i++ {
		pool, err := e.CreatePoolRandom(context.Background())
		require.NoError(t, err)
		assert.True(t, pool.AnchoredToOne())
	}
}

func TestGetPool_UnknownIsPoolNotFound(t *testing.T) {
	e := startTestEngine(t)
	_, err := e.GetPool("bogus")
	require.Error(t, err)
	var ee *errclass.EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, errclass.EngineErrorPoolNotFound, ee.Number)
}

func TestCoreWalletStatus_ReportsBalance(t *testing.T) {
	e := startTestEngine(t)

	status, err := e.CoreWalletStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, e.core.PublicKey(), status.PublicKey)
	assert.Equal(t, uint64(10_000_000_000), status.Lamports)
}

func TestMintAndSendTokens_SelectsPoolSideMint(t *testing.T) {
	e := startTestEngine(t)
	pool := e.ListPools()[0]

	recipient := solana.MustPublicKeyFromBase58("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS")
	err := e.MintAndSendTokens(context.Background(), pool.PoolID.String(), model.SideA, recipient, 1_000_000)
	require.NoError(t, err)

	err = e.MintAndSendTokens(context.Background(), pool.PoolID.String(), "X", recipient, 1_000_000)
	require.Error(t, err)

	err = e.MintAndSendTokens(context.Background(), "bogus", model.SideB, recipient, 1_000_000)
	require.Error(t, err)
	var ee *errclass.EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, errclass.EngineErrorPoolNotFound, ee.Number)
}

func TestStartThenStop_TearsDownBackgroundServices(t *testing.T) {
	e := startTestEngine(t)
	require.NotNil(t, e.bg)

	require.NoError(t, e.Stop(context.Background()))
	assert.Equal(t, StateStopped, e.State())
	assert.Nil(t, e.bg)
}

func TestAirdropSOL_FundsCoreWallet(t *testing.T) {
	e := startTestEngine(t)
	require.NoError(t, e.AirdropSOL(context.Background(), 2*solana.LAMPORTS_PER_SOL))
}
