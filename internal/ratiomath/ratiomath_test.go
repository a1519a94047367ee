package ratiomath

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasisPoints_AnchorA(t *testing.T) {
	ratioA, ratioB := BasisPoints(5, 6, 9, AnchorA)
	assert.Equal(t, Pow10(6), ratioA)
	assert.Equal(t, uint64(5)*Pow10(9), ratioB)
	assert.True(t, AnchoredToOne(ratioA, ratioB, 6, 9))
}

func TestBasisPoints_AnchorB(t *testing.T) {
	ratioA, ratioB := BasisPoints(7, 6, 9, AnchorB)
	assert.Equal(t, uint64(7)*Pow10(6), ratioA)
	assert.Equal(t, Pow10(9), ratioB)
	assert.True(t, AnchoredToOne(ratioA, ratioB, 6, 9))
}

func TestAnchoredToOne_RejectsBothAnchored(t *testing.T) {
	assert.False(t, AnchoredToOne(Pow10(6), Pow10(9), 6, 9))
}

func TestAnchoredToOne_RejectsNeitherAnchored(t *testing.T) {
	assert.False(t, AnchoredToOne(123, 456, 6, 9))
}

func TestNormalize_SwapsIntoCanonicalOrder(t *testing.T) {
	low := solana.PublicKey{0x01}
	high := solana.PublicKey{0xff}

	ratioA, ratioB := BasisPoints(3, 6, 6, AnchorA)

	// caller passes (high, low) with ratios already keyed to (high, low);
	// Normalize must swap both the mints and the ratios together.
	n, err := Normalize(high, low, 6, 6, ratioB, ratioA)
	require.NoError(t, err)
	assert.Equal(t, low, n.TokenA)
	assert.Equal(t, high, n.TokenB)
	assert.Equal(t, ratioA, n.RatioA)
	assert.Equal(t, ratioB, n.RatioB)
}

func TestNormalize_InvalidRatio(t *testing.T) {
	low := solana.PublicKey{0x01}
	high := solana.PublicKey{0xff}

	_, err := Normalize(low, high, 6, 6, 123, 456)
	assert.ErrorIs(t, err, ErrInvalidRatio)
}

func TestExpectedOutput_RoundTripTruncates(t *testing.T) {
	ratioA, ratioB := BasisPoints(2, 6, 6, AnchorA) // 1 A = 2 B

	out, err := ExpectedOutputAtoB(1_000_000, ratioA, ratioB)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000), out)

	back, err := ExpectedOutputBtoA(out, ratioA, ratioB)
	require.NoError(t, err)
	assert.LessOrEqual(t, back, uint64(1_000_000))
	assert.Equal(t, uint64(1_000_000), back) // exact multiple of ratioB here
}

func TestExpectedOutput_TruncatingRoundTripIsStrictlyLess(t *testing.T) {
	ratioA, ratioB := uint64(3), uint64(7)

	out, err := ExpectedOutputAtoB(10, ratioA, ratioB) // floor(10*7/3) = 23
	require.NoError(t, err)
	assert.Equal(t, uint64(23), out)

	back, err := ExpectedOutputBtoA(out, ratioA, ratioB) // floor(23*3/7) = 9
	require.NoError(t, err)
	assert.Less(t, back, uint64(10))
}

func TestExpectedOutput_HalfTokenAtRatio160(t *testing.T) {
	// 1 A (9 decimals) = 160 B (6 decimals), anchored to A.
	ratioA, ratioB := BasisPoints(160, 9, 6, AnchorA)

	out, err := ExpectedOutputAtoB(500_000_000, ratioA, ratioB) // 0.5 A
	require.NoError(t, err)
	assert.Equal(t, uint64(80_000_000), out) // 80 B

	back, err := ExpectedOutputBtoA(80_000_000, ratioA, ratioB)
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000_000), back)
}

func TestExpectedOutput_SubDustAtMismatchedDecimals(t *testing.T) {
	// 9-decimal input against a 0-decimal output: anything under one
	// whole input token truncates to zero output.
	_, err := ExpectedOutputAtoB(999_999, Pow10(9), 1)
	assert.ErrorIs(t, err, ErrInsufficientInput)
}

func TestExpectedOutput_InsufficientInput(t *testing.T) {
	_, err := ExpectedOutputAtoB(1, 1_000_000_000_000, 1)
	assert.ErrorIs(t, err, ErrInsufficientInput)
}

func TestExpectedOutput_Overflow(t *testing.T) {
	const maxU64 = ^uint64(0)
	_, err := ExpectedOutputAtoB(maxU64, 1, maxU64)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestDeriveAddress_IsDeterministicAndOffCurve(t *testing.T) {
	programID := solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	tokenA := solana.PublicKey{0x01}
	tokenB := solana.PublicKey{0x02}

	seeds := PoolStateSeeds(tokenA, tokenB, Pow10(6), 2*Pow10(6))

	addr1, bump1, err := DeriveAddress(seeds, programID)
	require.NoError(t, err)
	addr2, bump2, err := DeriveAddress(seeds, programID)
	require.NoError(t, err)

	assert.Equal(t, addr1, addr2)
	assert.Equal(t, bump1, bump2)
	assert.True(t, IsOffCurve(addr1))
}

func TestDeriveAddress_SystemAndTreasurySeedsDiffer(t *testing.T) {
	programID := solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

	systemState, _, err := DeriveAddress(SystemStateSeeds(), programID)
	require.NoError(t, err)
	mainTreasury, _, err := DeriveAddress(MainTreasurySeeds(), programID)
	require.NoError(t, err)

	assert.NotEqual(t, systemState, mainTreasury)
}
