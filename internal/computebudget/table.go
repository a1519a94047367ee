// Package computebudget holds the per-instruction compute-unit table
// and builds the compute-budget instruction every transaction prepends.
// There is no dynamic retry on out-of-compute: a transaction that runs
// out fails as OperationFailed and is handled like any other send error.
package computebudget

// Instruction identifies one of the contract's instruction kinds for
// compute-budget lookup purposes.
type Instruction int

const (
	PoolCreate Instruction = iota
	Deposit
	Withdraw
	Swap
	TreasuryInit
	Pause
	Unpause
	Donate
	Consolidate
)

// donateSmallThreshold is the lamport-equivalent cutoff (in whole SOL,
// basis points handled by the caller) above which a donation needs the
// larger compute allowance.
const donateSmallThreshold = 1000

var fixedUnits = map[Instruction]uint32{
	PoolCreate:   150_000,
	Deposit:      310_000,
	Withdraw:     290_000,
	Swap:         250_000,
	TreasuryInit: 200_000,
	Pause:        150_000,
	Unpause:      150_000,
}

// Units returns the compute-unit limit for instr. Donate and
// Consolidate require extra parameters and must use DonateUnits /
// ConsolidateUnits instead.
func Units(instr Instruction) uint32 {
	if u, ok := fixedUnits[instr]; ok {
		return u
	}
	panic("computebudget: Units called with a parameterized instruction")
}

// DonateUnits returns the compute-unit limit for a donation of
// amountSOL whole SOL: 25k at or below 1000 SOL, 120k above.
func DonateUnits(amountSOL uint64) uint32 {
	if amountSOL <= donateSmallThreshold {
		return 25_000
	}
	return 120_000
}

// ConsolidateUnits returns the compute-unit limit for consolidating
// across numPools pools: min(4000 + 5000*pools, 150000).
func ConsolidateUnits(numPools int) uint32 {
	if numPools < 0 {
		numPools = 0
	}
	units := uint32(4000 + 5000*numPools)
	const cap = 150_000
	if units > cap {
		return cap
	}
	return units
}
