// Package engine ties RpcGateway, Store, CoreWallet and WorkerRuntime
// together into the single stateful object the CLI drives: pool
// provisioning, worker lifecycle, singleton enforcement and Health.
package engine

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/fixedratiolabs/frt-stress/internal/worker"
)

// ChainGateway is the superset of worker.ChainGateway that Engine needs
// for treasury bootstrap, pool creation and version probing: account
// reads and simulate/airdrop on top of the narrower worker surface.
type ChainGateway interface {
	worker.ChainGateway

	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.Account, error)
	RequestAirdrop(ctx context.Context, pubkey solana.PublicKey, lamports uint64) (solana.Signature, error)
	Simulate(ctx context.Context, tx *solana.Transaction, sigVerify, replaceRecentBlockhash bool) (*rpc.SimulateTransactionResponse, error)
}

// confirmTimeout bounds pool-creation and treasury-bootstrap confirms,
// which run outside any single worker's retry policy.
const confirmTimeout = 30 * time.Second
