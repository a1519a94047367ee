package computebudget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnits_FixedTable(t *testing.T) {
	cases := map[Instruction]uint32{
		PoolCreate:   150_000,
		Deposit:      310_000,
		Withdraw:     290_000,
		Swap:         250_000,
		TreasuryInit: 200_000,
		Pause:        150_000,
		Unpause:      150_000,
	}
	for instr, want := range cases {
		assert.Equal(t, want, Units(instr))
	}
}

func TestUnits_PanicsOnParameterizedInstruction(t *testing.T) {
	assert.Panics(t, func() { Units(Donate) })
	assert.Panics(t, func() { Units(Consolidate) })
}

func TestDonateUnits(t *testing.T) {
	assert.Equal(t, uint32(25_000), DonateUnits(1))
	assert.Equal(t, uint32(25_000), DonateUnits(1000))
	assert.Equal(t, uint32(120_000), DonateUnits(1001))
}

func TestConsolidateUnits(t *testing.T) {
	assert.Equal(t, uint32(4000), ConsolidateUnits(0))
	assert.Equal(t, uint32(9000), ConsolidateUnits(1))
	assert.Equal(t, uint32(150_000), ConsolidateUnits(100))
	assert.Equal(t, uint32(4000), ConsolidateUnits(-5))
}

func TestLimitInstruction_Encoding(t *testing.T) {
	ix := LimitInstruction(Units(Swap))
	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 5)
	assert.Equal(t, byte(2), data[0])
	assert.Equal(t, ProgramID, ix.ProgramID())
}
