// Package economy implements the stateless cross-worker token routing
// policy applied after every successful pool operation. Route functions
// are pure: they decide who gets how much; the caller performs the
// actual on-chain SPL transfers via TxBuilder and is responsible for
// logging/counting failures without rolling back the preceding op.
package economy

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/fixedratiolabs/frt-stress/internal/model"
)

// Transfer is one outbound routing leg: send Amount to WorkerID.
type Transfer struct {
	WorkerID string
	Amount   uint64
}

// Result is the outcome of a routing decision: the transfers to make
// and whatever remains with the originating worker.
type Result struct {
	Transfers []Transfer
	Remainder uint64
}

// activeMatching returns the worker ids, sorted for determinism, whose
// status is Running and whose kind/poolId/side match the filter.
func activeMatching(registry map[string]model.Worker, poolID string, side model.TokenSide, kind model.WorkerKind) []string {
	ids := maps.Keys(registry)
	sort.Strings(ids)

	var out []string
	for _, id := range ids {
		w := registry[id]
		if w.Status != model.StatusRunning {
			continue
		}
		if w.Kind != kind {
			continue
		}
		if w.PoolID.String() != poolID {
			continue
		}
		if w.TokenSide != side {
			continue
		}
		out = append(out, id)
	}
	return out
}

// RouteDeposit distributes L LP tokens a deposit worker just received.
// If shareTokens is false, the full amount is retained. Otherwise
// floor(L/k) goes to each active withdrawal worker matching
// (poolId, side); the remainder (including the k==0 case) is retained.
func RouteDeposit(registry map[string]model.Worker, poolID string, side model.TokenSide, shareTokens bool, l uint64) Result {
	if !shareTokens {
		return Result{Remainder: l}
	}
	recipients := activeMatching(registry, poolID, side, model.KindWithdraw)
	return split(recipients, l)
}

// RouteWithdraw distributes T underlying tokens a withdraw worker just
// received. Unlike deposits, withdrawals always redistribute
// regardless of shareTokens: floor(T/k) to each active deposit worker
// matching (poolId, side).
func RouteWithdraw(registry map[string]model.Worker, poolID string, side model.TokenSide, t uint64) Result {
	recipients := activeMatching(registry, poolID, side, model.KindDeposit)
	return split(recipients, t)
}

// RouteSwap sends the entire Q output a swap worker just received to
// the single opposite-direction swap worker for poolId, if one is
// active; otherwise it is retained.
func RouteSwap(registry map[string]model.Worker, poolID string, kind model.WorkerKind, q uint64) Result {
	opposite := model.KindSwapBA
	if kind == model.KindSwapBA {
		opposite = model.KindSwapAB
	}

	ids := maps.Keys(registry)
	sort.Strings(ids)
	for _, id := range ids {
		w := registry[id]
		if w.Status != model.StatusRunning {
			continue
		}
		if w.Kind != opposite {
			continue
		}
		if w.PoolID.String() != poolID {
			continue
		}
		return Result{Transfers: []Transfer{{WorkerID: id, Amount: q}}}
	}
	return Result{Remainder: q}
}

func split(recipients []string, total uint64) Result {
	k := uint64(len(recipients))
	if k == 0 {
		return Result{Remainder: total}
	}
	share := total / k
	res := Result{Remainder: total - share*k}
	if share == 0 {
		return res
	}
	res.Transfers = make([]Transfer, 0, len(recipients))
	for _, id := range recipients {
		res.Transfers = append(res.Transfers, Transfer{WorkerID: id, Amount: share})
	}
	return res
}
