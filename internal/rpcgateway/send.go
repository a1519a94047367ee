package rpcgateway

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/fixedratiolabs/frt-stress/internal/errclass"
)

// Simulate runs a dry-run execution of tx with the given options,
// returning the simulation logs.
func (g *Gateway) Simulate(ctx context.Context, tx *solana.Transaction, sigVerify, replaceRecentBlockhash bool) (*rpc.SimulateTransactionResponse, error) {
	c, release, err := g.client(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	opts := &rpc.SimulateTransactionOpts{
		SigVerify:              sigVerify,
		ReplaceRecentBlockhash: replaceRecentBlockhash,
		Commitment:             g.cfg.Commitment,
	}
	out, err := c.SimulateTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return nil, &errclass.TransportError{Op: "Simulate", Err: err}
	}
	return out, nil
}

// Send implements the mandated send policy: simulate first
// (sigVerify=false, replaceRecentBlockhash=true), then send with
// skipPreflight=false, commitment=Processed by default. On preflight
// failure it runs a preflight-mimic simulate for diagnostics and, only
// if AllowSkipPreflight is configured, falls back to a
// skipPreflight=true send.
func (g *Gateway) Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if _, err := g.Simulate(ctx, tx, false, true); err != nil {
		return solana.Signature{}, err
	}

	sig, err := g.send(ctx, tx, false)
	if err == nil {
		return sig, nil
	}

	// Preflight-mimic simulate; its result is discarded, and the error
	// returned to the caller is the send error alone.
	_, _ = g.Simulate(ctx, tx, true, false)

	if !g.cfg.AllowSkipPreflight {
		return solana.Signature{}, err
	}
	return g.send(ctx, tx, true)
}

func (g *Gateway) send(ctx context.Context, tx *solana.Transaction, skipPreflight bool) (solana.Signature, error) {
	c, release, err := g.client(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	defer release()

	sig, err := c.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight: skipPreflight,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return solana.Signature{}, &errclass.TransportError{Op: "SendTransactionWithOpts", Err: err}
	}
	return sig, nil
}

// ConfirmSignature waits for sig to reach g.cfg.Commitment within
// timeout: via a SignatureSubscribe notification when a WS endpoint is
// configured, falling back to GetSignatureStatuses polling when it is
// not or when the subscription fails mid-wait.
func (g *Gateway) ConfirmSignature(ctx context.Context, sig solana.Signature, timeout time.Duration) error {
	if timeout == 0 {
		timeout = g.cfg.ConfirmTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if g.ws != nil {
		done, err := g.confirmViaSubscription(ctx, sig)
		if done {
			return err
		}
	}
	return g.confirmViaPolling(ctx, sig)
}

// confirmViaSubscription waits on a signature subscription. done=false
// means the subscription itself failed (subscribe or stream error) and
// the caller should fall back to polling; done=true carries the
// definitive outcome.
func (g *Gateway) confirmViaSubscription(ctx context.Context, sig solana.Signature) (done bool, err error) {
	sub, err := g.ws.SignatureSubscribe(sig, g.cfg.Commitment)
	if err != nil {
		return false, err
	}
	defer sub.Unsubscribe()

	res, err := sub.Recv()
	if err != nil {
		return false, err
	}
	if res != nil && res.Value.Err != nil {
		return true, &errclass.ContractError{Code: errclass.CodeUnrecognized, Message: formatStatusErr(res.Value.Err)}
	}
	return true, nil
}

// confirmViaPolling polls GetSignatureStatuses until sig reaches
// g.cfg.Commitment or ctx expires.
func (g *Gateway) confirmViaPolling(ctx context.Context, sig solana.Signature) error {
	for {
		c, release, err := g.client(ctx)
		if err != nil {
			return err
		}
		out, err := c.GetSignatureStatuses(ctx, true, sig)
		release()
		if err != nil {
			return &errclass.TransportError{Op: "GetSignatureStatuses", Err: err}
		}
		if len(out.Value) == 1 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return &errclass.ContractError{Code: errclass.CodeUnrecognized, Message: formatStatusErr(status.Err)}
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusType(g.cfg.Commitment) ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return &errclass.TransportError{Op: "ConfirmSignature", Err: ctx.Err()}
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func formatStatusErr(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "transaction failed on-chain"
}
