package economy

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"

	"github.com/fixedratiolabs/frt-stress/internal/model"
)

func pool() solana.PublicKey {
	return solana.PublicKey{0x01, 0x02}
}

func withdrawWorker(id string, status model.WorkerStatus, side model.TokenSide) model.Worker {
	return model.Worker{WorkerID: id, Kind: model.KindWithdraw, PoolID: pool(), TokenSide: side, Status: status}
}

func depositWorker(id string, status model.WorkerStatus, side model.TokenSide) model.Worker {
	return model.Worker{WorkerID: id, Kind: model.KindDeposit, PoolID: pool(), TokenSide: side, Status: status}
}

func TestRouteDeposit_NoShareRetainsAll(t *testing.T) {
	registry := map[string]model.Worker{
		"w1": withdrawWorker("w1", model.StatusRunning, model.SideA),
	}
	res := RouteDeposit(registry, pool().String(), model.SideA, false, 100)
	assert.Empty(t, res.Transfers)
	assert.Equal(t, uint64(100), res.Remainder)
}

func TestRouteDeposit_SharesAcrossActiveWithdrawals(t *testing.T) {
	registry := map[string]model.Worker{
		"w1": withdrawWorker("w1", model.StatusRunning, model.SideA),
		"w2": withdrawWorker("w2", model.StatusRunning, model.SideA),
		"w3": withdrawWorker("w3", model.StatusPaused, model.SideA),  // inactive, excluded
		"w4": withdrawWorker("w4", model.StatusRunning, model.SideB), // wrong side, excluded
	}
	res := RouteDeposit(registry, pool().String(), model.SideA, true, 100)
	assert.ElementsMatch(t, []Transfer{{WorkerID: "w1", Amount: 50}, {WorkerID: "w2", Amount: 50}}, res.Transfers)
	assert.Equal(t, uint64(0), res.Remainder)
}

func TestRouteDeposit_RemainderRetainedOnUnevenSplit(t *testing.T) {
	registry := map[string]model.Worker{
		"w1": withdrawWorker("w1", model.StatusRunning, model.SideA),
		"w2": withdrawWorker("w2", model.StatusRunning, model.SideA),
		"w3": withdrawWorker("w3", model.StatusRunning, model.SideA),
	}
	res := RouteDeposit(registry, pool().String(), model.SideA, true, 10)
	assert.Len(t, res.Transfers, 3)
	for _, tr := range res.Transfers {
		assert.Equal(t, uint64(3), tr.Amount)
	}
	assert.Equal(t, uint64(1), res.Remainder)
}

func TestRouteDeposit_NoRecipientsRetainsAll(t *testing.T) {
	res := RouteDeposit(map[string]model.Worker{}, pool().String(), model.SideA, true, 100)
	assert.Empty(t, res.Transfers)
	assert.Equal(t, uint64(100), res.Remainder)
}

func TestRouteWithdraw_AlwaysSharesRegardlessOfShareTokensFlag(t *testing.T) {
	registry := map[string]model.Worker{
		"w1": depositWorker("w1", model.StatusRunning, model.SideB),
		"w2": depositWorker("w2", model.StatusRunning, model.SideB),
	}
	res := RouteWithdraw(registry, pool().String(), model.SideB, 100)
	assert.ElementsMatch(t, []Transfer{{WorkerID: "w1", Amount: 50}, {WorkerID: "w2", Amount: 50}}, res.Transfers)
}

func TestRouteSwap_SendsEntireAmountToOppositeWorker(t *testing.T) {
	registry := map[string]model.Worker{
		"s1": {WorkerID: "s1", Kind: model.KindSwapBA, PoolID: pool(), Status: model.StatusRunning},
	}
	res := RouteSwap(registry, pool().String(), model.KindSwapAB, 777)
	assert.Equal(t, []Transfer{{WorkerID: "s1", Amount: 777}}, res.Transfers)
	assert.Equal(t, uint64(0), res.Remainder)
}

func TestRouteSwap_RetainsWhenNoOppositeWorker(t *testing.T) {
	res := RouteSwap(map[string]model.Worker{}, pool().String(), model.KindSwapAB, 777)
	assert.Empty(t, res.Transfers)
	assert.Equal(t, uint64(777), res.Remainder)
}

func TestRouteSwap_IgnoresInactiveOppositeWorker(t *testing.T) {
	registry := map[string]model.Worker{
		"s1": {WorkerID: "s1", Kind: model.KindSwapBA, PoolID: pool(), Status: model.StatusPaused},
	}
	res := RouteSwap(registry, pool().String(), model.KindSwapAB, 777)
	assert.Empty(t, res.Transfers)
	assert.Equal(t, uint64(777), res.Remainder)
}
