package engine

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/fixedratiolabs/frt-stress/internal/errclass"
	"github.com/fixedratiolabs/frt-stress/internal/model"
)

// CoreWalletStatus is the snapshot core_wallet_status returns.
type CoreWalletStatus struct {
	PublicKey solana.PublicKey `json:"public_key"`
	Lamports  uint64           `json:"lamports"`
}

// CoreWalletStatus reports the core wallet's address and SOL balance.
func (e *Engine) CoreWalletStatus(ctx context.Context) (CoreWalletStatus, error) {
	if err := e.requireStarted(); err != nil {
		return CoreWalletStatus{}, err
	}
	lamports, err := e.gateway.GetBalance(ctx, e.core.PublicKey(), rpc.CommitmentConfirmed)
	if err != nil {
		return CoreWalletStatus{}, err
	}
	return CoreWalletStatus{PublicKey: e.core.PublicKey(), Lamports: lamports}, nil
}

// AirdropSOL requests lamports of SOL for the core wallet from the
// cluster faucet and waits for the grant to confirm.
func (e *Engine) AirdropSOL(ctx context.Context, lamports uint64) error {
	if err := e.requireStarted(); err != nil {
		return err
	}
	return e.core.Fund(ctx, e.core.PublicKey(), lamports)
}

// MintAndSendTokens mints amount of one of poolID's tokens into
// recipient's associated token account, authorized by the core wallet.
// side selects the pool leg whose mint is used.
func (e *Engine) MintAndSendTokens(ctx context.Context, poolID string, side model.TokenSide, recipient solana.PublicKey, amount uint64) error {
	if err := e.requireStarted(); err != nil {
		return err
	}
	pool, err := e.GetPool(poolID)
	if err != nil {
		return err
	}

	var mint solana.PublicKey
	switch side {
	case model.SideA:
		mint = pool.TokenAMint
	case model.SideB:
		mint = pool.TokenBMint
	default:
		return &errclass.EngineError{Number: errclass.EngineErrorInvalidState, Message: "token side must be A or B"}
	}

	destination, _, err := solana.FindAssociatedTokenAddress(recipient, mint)
	if err != nil {
		return err
	}
	return e.core.MintTo(ctx, mint, destination, amount)
}
