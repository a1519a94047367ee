package engine

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/fixedratiolabs/frt-stress/internal/computebudget"
	"github.com/fixedratiolabs/frt-stress/internal/errclass"
	"github.com/fixedratiolabs/frt-stress/internal/model"
	"github.com/fixedratiolabs/frt-stress/internal/secure"
	"github.com/fixedratiolabs/frt-stress/internal/store"
	"github.com/fixedratiolabs/frt-stress/internal/txbuilder"
)

// CoreWallet is the single process-wide wallet that funds worker SOL
// airdrops, mints stress tokens, and pays for pool creation. Its secret
// key is held in memory only for the lifetime of the process and is
// never logged; at rest it lives in core_wallet.json sealed by
// internal/secure.
type CoreWallet struct {
	secret  solana.PrivateKey
	meta    model.CoreWallet
	st      *store.Store
	gateway ChainGateway
}

// LoadOrCreateCoreWallet unseals the persisted core wallet, or
// generates and seals a fresh one if none exists yet.
func LoadOrCreateCoreWallet(ctx context.Context, st *store.Store, gw ChainGateway, passphrase string) (*CoreWallet, error) {
	meta, found, err := st.LoadCoreWallet()
	if err != nil {
		return nil, err
	}
	if found {
		plain, err := unsealSecret(passphrase, meta)
		if err != nil {
			return nil, err
		}
		return &CoreWallet{secret: plain, meta: meta, st: st, gateway: gw}, nil
	}

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	sealed, err := sealSecret(passphrase, key)
	if err != nil {
		return nil, err
	}
	meta = model.CoreWallet{PublicKey: key.PublicKey(), SecretSealed: sealed, CreatedAt: time.Now()}
	if err := st.SaveCoreWallet(meta); err != nil {
		return nil, err
	}
	return &CoreWallet{secret: key, meta: meta, st: st, gateway: gw}, nil
}

// PublicKey returns the core wallet's public key.
func (c *CoreWallet) PublicKey() solana.PublicKey { return c.meta.PublicKey }

// signerKey exposes the decrypted signing key to other engine package
// files (pool creation needs it as one of several co-signers); it
// never leaves the package.
func (c *CoreWallet) signerKey() solana.PrivateKey { return c.secret }

// MintTo implements worker.CoreFunder: mints amount of mint into
// destination, authorized by the core wallet.
func (c *CoreWallet) MintTo(ctx context.Context, mint, destination solana.PublicKey, amount uint64) error {
	ix := txbuilder.MintTo(mint, destination, c.meta.PublicKey, amount)
	return c.submit(ctx, []solana.Instruction{ix}, computebudget.Units(computebudget.Deposit))
}

// Fund requests lamports of SOL airdrop for pubkey directly from the
// cluster faucet; used for localnet bring-up, not routed through the
// core wallet's own balance.
func (c *CoreWallet) Fund(ctx context.Context, pubkey solana.PublicKey, lamports uint64) error {
	sig, err := c.gateway.RequestAirdrop(ctx, pubkey, lamports)
	if err != nil {
		return err
	}
	return c.gateway.ConfirmSignature(ctx, sig, confirmTimeout)
}

func (c *CoreWallet) submit(ctx context.Context, instrs []solana.Instruction, units uint32) error {
	blockhash, err := c.gateway.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return &errclass.TransportError{Op: "GetLatestBlockhash", Err: err}
	}
	tx, err := txbuilder.Build(instrs, units, blockhash, c.meta.PublicKey, txbuilder.SingleSigner(c.secret))
	if err != nil {
		return err
	}
	sig, err := c.gateway.Send(ctx, tx)
	if err != nil {
		return err
	}
	return c.gateway.ConfirmSignature(ctx, sig, confirmTimeout)
}

func sealSecret(passphrase string, key solana.PrivateKey) ([]byte, error) {
	return secure.Seal(passphrase, key[:])
}

func unsealSecret(passphrase string, meta model.CoreWallet) (solana.PrivateKey, error) {
	plain, err := secure.Open(passphrase, meta.SecretSealed)
	if err != nil {
		return nil, err
	}
	return solana.PrivateKey(plain), nil
}
