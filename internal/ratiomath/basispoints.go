// Package ratiomath implements the contract's fixed-point ratio rules:
// basis-point conversion, canonical-order normalization, the
// anchored-to-one validation, expected-output computation and PDA
// derivation. Every function here is pure; no RPC, no I/O.
package ratiomath

import (
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

// Direction picks which side of a display ratio is anchored to one.
type Direction int

const (
	// AnchorA anchors tokenA to 10^decimalsA; tokenB's ratio is
	// N * 10^decimalsB.
	AnchorA Direction = iota
	// AnchorB anchors tokenB to 10^decimalsB; tokenA's ratio is
	// N * 10^decimalsA.
	AnchorB
)

// Pow10 returns 10^n as a uint64. Decimals on SPL mints never exceed 19,
// well within uint64 range for the exponents this package handles.
func Pow10(n uint8) uint64 {
	v := uint64(1)
	for i := uint8(0); i < n; i++ {
		v *= 10
	}
	return v
}

// BasisPoints converts a display whole-number N into the pair of
// basis-point ratio values the contract stores, anchoring one side to
// 10^decimals of its own token per dir.
func BasisPoints(n uint64, decimalsA, decimalsB uint8, dir Direction) (ratioA, ratioB uint64) {
	switch dir {
	case AnchorA:
		return Pow10(decimalsA), n * Pow10(decimalsB)
	default:
		return n * Pow10(decimalsA), Pow10(decimalsB)
	}
}

// AnchoredToOne reports whether exactly one side of the ratio equals
// 10^decimals for its own token.
func AnchoredToOne(ratioA, ratioB uint64, decimalsA, decimalsB uint8) bool {
	aAnchored := ratioA == Pow10(decimalsA)
	bAnchored := ratioB == Pow10(decimalsB)
	return aAnchored != bAnchored
}

// Normalized is the result of swapping a user-intended ratio into
// canonical token order.
type Normalized struct {
	TokenA    solana.PublicKey
	TokenB    solana.PublicKey
	DecimalsA uint8
	DecimalsB uint8
	RatioA    uint64
	RatioB    uint64
}

// Normalize swaps (mintX, mintY, ratioX, ratioY) into canonical token
// order (A = lexicographically smaller key), preserving the exchange
// rate of the conceptual "valuable" side, then validates the
// anchored-to-one rule. Returns ErrInvalidRatio if it does not hold
// after normalization.
func Normalize(mintX, mintY solana.PublicKey, decimalsX, decimalsY uint8, ratioX, ratioY uint64) (Normalized, error) {
	var n Normalized
	if lessOrEqual(mintX[:], mintY[:]) {
		n = Normalized{TokenA: mintX, TokenB: mintY, DecimalsA: decimalsX, DecimalsB: decimalsY, RatioA: ratioX, RatioB: ratioY}
	} else {
		n = Normalized{TokenA: mintY, TokenB: mintX, DecimalsA: decimalsY, DecimalsB: decimalsX, RatioA: ratioY, RatioB: ratioX}
	}
	if !AnchoredToOne(n.RatioA, n.RatioB, n.DecimalsA, n.DecimalsB) {
		return Normalized{}, ErrInvalidRatio
	}
	return n, nil
}

func lessOrEqual(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return true
}

// ExpectedOutputAtoB computes out = floor(in * ratioB / ratioA) using a
// 128-bit-safe intermediate product.
func ExpectedOutputAtoB(in, ratioA, ratioB uint64) (uint64, error) {
	return expectedOutput(in, ratioB, ratioA)
}

// ExpectedOutputBtoA computes out = floor(in * ratioA / ratioB) using a
// 128-bit-safe intermediate product.
func ExpectedOutputBtoA(in, ratioA, ratioB uint64) (uint64, error) {
	return expectedOutput(in, ratioA, ratioB)
}

func expectedOutput(in, numerator, denominator uint64) (uint64, error) {
	if denominator == 0 {
		return 0, ErrArithmeticOverflow
	}
	product := new(uint256.Int).Mul(uint256.NewInt(in), uint256.NewInt(numerator))
	quotient := new(uint256.Int).Div(product, uint256.NewInt(denominator))
	if !quotient.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	out := quotient.Uint64()
	if out == 0 {
		return 0, ErrInsufficientInput
	}
	return out, nil
}
