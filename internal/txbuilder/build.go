package txbuilder

import (
	"github.com/gagliardetto/solana-go"

	"github.com/fixedratiolabs/frt-stress/internal/computebudget"
)

// Build assembles a signed transaction: the compute-budget
// limit instruction for units is prepended to instrs, a freshly
// fetched blockhash is set, payer pays fees, and signerFunc supplies
// the private keys for every required signer. The result is always a
// signed, structured *solana.Transaction; never serialized to an
// opaque byte buffer before being handed to RpcGateway.
func Build(
	instrs []solana.Instruction,
	units uint32,
	blockhash solana.Hash,
	payer solana.PublicKey,
	signerFunc func(key solana.PublicKey) *solana.PrivateKey,
) (*solana.Transaction, error) {
	all := make([]solana.Instruction, 0, len(instrs)+1)
	all = append(all, computebudget.LimitInstruction(units))
	all = append(all, instrs...)

	tx, err := solana.NewTransaction(all, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, err
	}
	if _, err := tx.Sign(signerFunc); err != nil {
		return nil, err
	}
	return tx, nil
}

// SingleSigner returns a signerFunc for the common case of one signing
// keypair (the payer itself).
func SingleSigner(key solana.PrivateKey) func(solana.PublicKey) *solana.PrivateKey {
	pub := key.PublicKey()
	return func(candidate solana.PublicKey) *solana.PrivateKey {
		if candidate.Equals(pub) {
			return &key
		}
		return nil
	}
}

// MultiSigner returns a signerFunc covering every key in keys, the
// case pool creation needs: the payer plus the two fresh mint keypairs
// being initialized in the same transaction.
func MultiSigner(keys ...solana.PrivateKey) func(solana.PublicKey) *solana.PrivateKey {
	byPub := make(map[solana.PublicKey]solana.PrivateKey, len(keys))
	for _, k := range keys {
		byPub[k.PublicKey()] = k
	}
	return func(candidate solana.PublicKey) *solana.PrivateKey {
		if k, ok := byPub[candidate]; ok {
			return &k
		}
		return nil
	}
}
