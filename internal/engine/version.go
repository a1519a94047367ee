package engine

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/fixedratiolabs/frt-stress/internal/txbuilder"
)

// probeVersion issues the discriminator-14 GetVersion instruction as a
// read-only simulate (it never touches state, so it never needs to be
// sent or confirmed) and reports the program's response in its
// simulation logs. A failure here is never fatal to Start (the harness
// can stress an older or newer program build than the one it was
// written against) but it is always logged and the raw log lines are
// persisted for the operator to inspect.
func probeVersion(ctx context.Context, gw ChainGateway, programID solana.PublicKey, signer solana.PrivateKey) (logs []string, err error) {
	ix := txbuilder.GetVersion(programID)

	blockhash, err := gw.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, err
	}
	tx, err := txbuilder.Build([]solana.Instruction{ix}, 20_000, blockhash, signer.PublicKey(), txbuilder.SingleSigner(signer))
	if err != nil {
		return nil, err
	}

	resp, err := gw.Simulate(ctx, tx, false, false)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Value == nil {
		return nil, nil
	}
	return resp.Value.Logs, nil
}
