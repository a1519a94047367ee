package rpcgateway

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/fixedratiolabs/frt-stress/internal/errclass"
)

const (
	largeAirdropSOL    = 10
	smallAirdropSOL    = 1
	largeAirdropTries  = 3
	airdropPollTimeout = 15 * time.Second
)

// RequestAirdrop requests lamports for pubkey directly, without the
// staircase fallback; used when the caller already knows the exact
// amount needed (e.g. an operator-requested airdrop of a given size).
func (g *Gateway) RequestAirdrop(ctx context.Context, pubkey solana.PublicKey, lamports uint64) (solana.Signature, error) {
	c, release, err := g.client(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	defer release()

	sig, err := c.RequestAirdrop(ctx, pubkey, lamports, g.cfg.Commitment)
	if err != nil {
		return solana.Signature{}, &errclass.TransportError{Op: "RequestAirdrop", Err: err}
	}
	return sig, nil
}

// AirdropStaircase is the localnet-only funding strategy: try
// largeAirdropSOL up to largeAirdropTries times, and if the account's
// balance has not increased, fall back to smallAirdropSOL.
func (g *Gateway) AirdropStaircase(ctx context.Context, pubkey solana.PublicKey) error {
	before, err := g.GetBalance(ctx, pubkey, g.cfg.Commitment)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < largeAirdropTries; attempt++ {
		if err := g.airdropAndWait(ctx, pubkey, largeAirdropSOL*solana.LAMPORTS_PER_SOL); err == nil {
			if after, err := g.GetBalance(ctx, pubkey, g.cfg.Commitment); err == nil && after > before {
				return nil
			}
		}
	}

	return g.airdropAndWait(ctx, pubkey, smallAirdropSOL*solana.LAMPORTS_PER_SOL)
}

func (g *Gateway) airdropAndWait(ctx context.Context, pubkey solana.PublicKey, lamports uint64) error {
	sig, err := g.RequestAirdrop(ctx, pubkey, lamports)
	if err != nil {
		return err
	}
	return g.ConfirmSignature(ctx, sig, airdropPollTimeout)
}
