package errclass

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_ContractRecoverable(t *testing.T) {
	err := NewContractError(PoolPaused, "pool is paused")
	c := Classify(err)
	assert.Equal(t, KindContractRecoverable, c.Kind)
	assert.Equal(t, PoolPaused, c.Code)
}

func TestClassify_AmountMismatchMapsToSlippage(t *testing.T) {
	err := NewContractError(AmountMismatch, "0x417")
	c := Classify(err)
	assert.Equal(t, KindContractRecoverable, c.Kind)
	assert.Equal(t, SlippageExceeded, c.Code)
}

func TestClassify_ContractFatal(t *testing.T) {
	err := NewContractError(InvalidRatio, "ratio not anchored")
	c := Classify(err)
	assert.Equal(t, KindContractFatal, c.Kind)
}

func TestClassify_UnrecognizedCodeEscalates(t *testing.T) {
	err := NewContractError(Code("0xDEAD"), "unknown")
	c := Classify(err)
	assert.Equal(t, KindContractFatal, c.Kind)
	assert.Equal(t, CodeUnrecognized, c.Code)
}

func TestClassify_Transport(t *testing.T) {
	err := &TransportError{Op: "send", Err: errors.New("timeout waiting for response")}
	c := Classify(err)
	assert.Equal(t, KindTransport, c.Kind)
}

func TestClassify_TransportLikeByMessage(t *testing.T) {
	err := fmt.Errorf("dial tcp: connection refused")
	c := Classify(err)
	assert.Equal(t, KindTransport, c.Kind)
}

func TestClassify_ContextDeadlineExceeded(t *testing.T) {
	c := Classify(context.DeadlineExceeded)
	assert.Equal(t, KindTransport, c.Kind)
}

func TestClassify_Engine(t *testing.T) {
	c := Classify(&EngineError{Number: EngineErrorInvalidState, Message: "engine busy"})
	assert.Equal(t, KindEngine, c.Kind)
}

func TestClassify_Storage(t *testing.T) {
	c := Classify(&StorageError{Err: errors.New("rename failed")})
	assert.Equal(t, KindStorage, c.Kind)
}

func TestResolve_StrategyTable(t *testing.T) {
	assert.Equal(t, ActionAirdropThenRetry, Resolve(InsufficientFunds, LowSOL))
	assert.Equal(t, ActionMintRefundThenRetry, Resolve(InsufficientFunds, LowTokenAutoRefill))
	assert.Equal(t, ActionSkipCycle, Resolve(InsufficientFunds, LowTokenNoAutoRefill))
	assert.Equal(t, ActionPollPauseThenRetry, Resolve(PoolPaused, LowSOL))
	assert.Equal(t, ActionPollPauseThenRetry, Resolve(SystemPaused, LowSOL))
	assert.Equal(t, ActionSkipCycle, Resolve(InsufficientLiquidity, LowSOL))
	assert.Equal(t, ActionRecomputeSlippageOnce, Resolve(SlippageExceeded, LowSOL))
	assert.Equal(t, ActionEscalate, ResolveAfterSlippageRetry())
}

func TestRetry_SucceedsWithinAttempts(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}, rng, func() error {
		calls++
		if calls < 2 {
			return &TransportError{Op: "send", Err: errors.New("timeout")}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetry_NonTransportErrorStopsImmediately(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	calls := 0
	err := Retry(context.Background(), DefaultRetryPolicy(), rng, func() error {
		calls++
		return NewContractError(InvalidRatio, "fatal")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}, rng, func() error {
		calls++
		return &TransportError{Op: "send", Err: errors.New("timeout")}
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rng := rand.New(rand.NewSource(1))
	err := Retry(ctx, RetryPolicy{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond}, rng, func() error {
		return &TransportError{Op: "send", Err: errors.New("timeout")}
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBreaker_TripsOnThreshold(t *testing.T) {
	b := NewBreaker(time.Minute, 3)
	now := time.Now()
	b.RecordError(now, KindTransport)
	b.RecordError(now, KindTransport)
	assert.False(t, b.Tripped(now))
	b.RecordError(now, KindTransport)
	assert.True(t, b.Tripped(now))
}

func TestBreaker_TripsImmediatelyOnFatal(t *testing.T) {
	b := NewBreaker(time.Minute, 100)
	now := time.Now()
	b.RecordError(now, KindContractFatal)
	assert.True(t, b.Tripped(now))
	assert.True(t, b.CriticalErrorOccurred())
}

func TestBreaker_PrunesOldErrors(t *testing.T) {
	b := NewBreaker(10*time.Millisecond, 2)
	now := time.Now()
	b.RecordError(now, KindTransport)
	later := now.Add(50 * time.Millisecond)
	assert.Equal(t, 0, b.ErrorRate(later))
}

func TestBreaker_Reset(t *testing.T) {
	b := NewBreaker(time.Minute, 1)
	now := time.Now()
	b.RecordError(now, KindContractFatal)
	require.True(t, b.Tripped(now))
	b.Reset()
	assert.False(t, b.Tripped(now))
	assert.False(t, b.CriticalErrorOccurred())
}
