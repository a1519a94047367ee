package rpcgateway

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AppliesDefaults(t *testing.T) {
	g, err := New(context.Background(), Config{RPCURL: "http://localhost:8899"})
	require.NoError(t, err)

	assert.Len(t, g.pool, 16)
	assert.Equal(t, rpc.CommitmentConfirmed, g.cfg.Commitment)
	assert.Equal(t, 30*time.Second, g.cfg.ConfirmTimeout)
}

func TestNew_RespectsExplicitPoolSize(t *testing.T) {
	g, err := New(context.Background(), Config{RPCURL: "http://localhost:8899", PoolSize: 4})
	require.NoError(t, err)
	assert.Len(t, g.pool, 4)
}

func TestClient_RoundRobinsAndReturnsTickets(t *testing.T) {
	g, err := New(context.Background(), Config{RPCURL: "http://localhost:8899", PoolSize: 2})
	require.NoError(t, err)

	ctx := context.Background()
	c1, release1, err := g.client(ctx)
	require.NoError(t, err)
	c2, release2, err := g.client(ctx)
	require.NoError(t, err)
	assert.NotSame(t, c1, c2)

	release1()
	release2()

	// Both tickets must be back in the pool, so two more checkouts
	// succeed without blocking.
	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_, release3, err := g.client(ctx2)
	require.NoError(t, err)
	release3()
	_, release4, err := g.client(ctx2)
	require.NoError(t, err)
	release4()
}

func TestClient_BlocksWhenPoolExhausted(t *testing.T) {
	g, err := New(context.Background(), Config{RPCURL: "http://localhost:8899", PoolSize: 1})
	require.NoError(t, err)

	ctx := context.Background()
	_, release, err := g.client(ctx)
	require.NoError(t, err)

	ctx2, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, _, err = g.client(ctx2)
	assert.Error(t, err)

	release()
}
