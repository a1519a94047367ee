// Package rpcgateway wraps the cluster RPC/WS endpoints behind a typed
// API, implementing the simulate-then-send policy and the localnet
// airdrop staircase. TxBuilder and WorkerRuntime talk to the chain only
// through this package.
package rpcgateway

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"golang.org/x/time/rate"

	"github.com/fixedratiolabs/frt-stress/internal/errclass"
)

// Config controls connection pooling, commitment defaults and the
// preflight fallback policy.
type Config struct {
	RPCURL             string
	WSURL              string
	Commitment         rpc.CommitmentType
	PoolSize           int
	RateLimitPerSecond float64
	AllowSkipPreflight bool
	ConfirmTimeout     time.Duration
}

// Gateway is the typed RPC/WS wrapper every component submits
// transactions and reads account state through.
type Gateway struct {
	cfg     Config
	pool    []*rpc.Client
	next    chan int // round-robin ticket dispenser
	ws      *ws.Client
	limiter *rate.Limiter
}

// New dials a pool of cfg.PoolSize RPC clients (sharing the same URL;
// gagliardetto's http client already keeps connections alive, the pool
// exists to bound concurrent in-flight requests) and one WS client.
func New(ctx context.Context, cfg Config) (*Gateway, error) {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 16
	}
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentConfirmed
	}
	if cfg.ConfirmTimeout == 0 {
		cfg.ConfirmTimeout = 30 * time.Second
	}

	pool := make([]*rpc.Client, cfg.PoolSize)
	for i := range pool {
		pool[i] = rpc.New(cfg.RPCURL)
	}

	var wsClient *ws.Client
	if cfg.WSURL != "" {
		var err error
		wsClient, err = ws.Connect(ctx, cfg.WSURL)
		if err != nil {
			return nil, &errclass.TransportError{Op: "ws connect", Err: err}
		}
	}

	limit := rate.Inf
	if cfg.RateLimitPerSecond > 0 {
		limit = rate.Limit(cfg.RateLimitPerSecond)
	}

	tickets := make(chan int, cfg.PoolSize)
	for i := 0; i < cfg.PoolSize; i++ {
		tickets <- i
	}

	return &Gateway{
		cfg:     cfg,
		pool:    pool,
		next:    tickets,
		ws:      wsClient,
		limiter: rate.NewLimiter(limit, cfg.PoolSize),
	}, nil
}

// client checks out one pooled RPC client, round-robin, returning it
// to the pool when the returned release func is called.
func (g *Gateway) client(ctx context.Context) (*rpc.Client, func(), error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, func() {}, &errclass.TransportError{Op: "rate limit wait", Err: err}
	}
	select {
	case i := <-g.next:
		return g.pool[i], func() { g.next <- i }, nil
	case <-ctx.Done():
		return nil, func() {}, ctx.Err()
	}
}

// GetBalance returns the lamport balance of pubkey.
func (g *Gateway) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	c, release, err := g.client(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	out, err := c.GetBalance(ctx, pubkey, commitment)
	if err != nil {
		return 0, &errclass.TransportError{Op: "GetBalance", Err: err}
	}
	return out.Value, nil
}

// GetTokenBalance returns the raw token amount held by accountPubkey.
func (g *Gateway) GetTokenBalance(ctx context.Context, accountPubkey solana.PublicKey) (uint64, error) {
	c, release, err := g.client(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	out, err := c.GetTokenAccountBalance(ctx, accountPubkey, g.cfg.Commitment)
	if err != nil {
		return 0, &errclass.TransportError{Op: "GetTokenAccountBalance", Err: err}
	}
	var amount uint64
	if _, err := fmt.Sscan(out.Value.Amount, &amount); err != nil {
		return 0, &errclass.TransportError{Op: "parse token amount", Err: err}
	}
	return amount, nil
}

// GetAccountInfo fetches the raw account info for pubkey.
func (g *Gateway) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.Account, error) {
	c, release, err := g.client(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out, err := c.GetAccountInfo(ctx, pubkey)
	if err != nil {
		return nil, &errclass.TransportError{Op: "GetAccountInfo", Err: err}
	}
	if out == nil || out.Value == nil {
		return nil, nil
	}
	return out.Value, nil
}

// GetLatestBlockhash fetches a fresh blockhash for transaction building.
func (g *Gateway) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (solana.Hash, error) {
	c, release, err := g.client(ctx)
	if err != nil {
		return solana.Hash{}, err
	}
	defer release()

	out, err := c.GetLatestBlockhash(ctx, commitment)
	if err != nil {
		return solana.Hash{}, &errclass.TransportError{Op: "GetLatestBlockhash", Err: err}
	}
	return out.Value.Blockhash, nil
}
