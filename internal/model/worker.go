package model

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// WorkerKind is the operation a worker repeatedly performs.
type WorkerKind string

const (
	KindDeposit  WorkerKind = "deposit"
	KindWithdraw WorkerKind = "withdraw"
	KindSwapAB   WorkerKind = "swap_ab"
	KindSwapBA   WorkerKind = "swap_ba"
)

// IsSwap reports whether the kind is one of the two swap singletons.
func (k WorkerKind) IsSwap() bool {
	return k == KindSwapAB || k == KindSwapBA
}

// TokenSide identifies which leg of a pool a deposit/withdraw worker acts on.
type TokenSide string

const (
	SideA TokenSide = "A"
	SideB TokenSide = "B"
)

// WorkerStatus is the worker's lifecycle state.
type WorkerStatus string

const (
	StatusCreated WorkerStatus = "created"
	StatusRunning WorkerStatus = "running"
	StatusPaused  WorkerStatus = "paused"
	StatusStopped WorkerStatus = "stopped"
	StatusError   WorkerStatus = "error"
)

// Worker is the mutable lifecycle object a WorkerRuntime loop drives.
type Worker struct {
	WorkerID        string           `json:"worker_id"`
	Kind            WorkerKind       `json:"kind"`
	PoolID          solana.PublicKey `json:"pool_id"`
	TokenSide       TokenSide        `json:"token_side,omitempty"`
	InitialAmount   uint64           `json:"initial_amount"`
	AutoRefill      bool             `json:"auto_refill"`
	ShareTokens     bool             `json:"share_tokens"`
	WalletSecret    [64]byte         `json:"wallet_secret"` // solana.PrivateKey bytes, encrypted at rest by the store
	WalletPublicKey solana.PublicKey `json:"wallet_public_key"`
	Status          WorkerStatus     `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	LastOperationAt time.Time        `json:"last_operation_at"`
}

// Validate enforces the cross-field invariants a worker record must hold.
func (w Worker) Validate() error {
	if w.AutoRefill && w.InitialAmount == 0 {
		return errAutoRefillNeedsInitialAmount
	}
	if w.Kind == KindDeposit || w.Kind == KindWithdraw {
		if w.TokenSide != SideA && w.TokenSide != SideB {
			return errTokenSideRequired
		}
	}
	return nil
}

// Wallet reconstructs the worker's keypair from its stored secret bytes.
func (w Worker) Wallet() solana.PrivateKey {
	return solana.PrivateKey(w.WalletSecret[:])
}
