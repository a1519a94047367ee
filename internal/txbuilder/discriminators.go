package txbuilder

// Instruction discriminators for the FRT program. TreasuryInit,
// PoolCreate and Deposit are named explicitly by the contract's
// external API doc; Withdraw and Swap use the next two discriminators
// in the same numbering scheme (see DESIGN.md's Open Question notes).
const (
	DiscriminatorTreasuryInit byte = 0
	DiscriminatorPoolCreate   byte = 1
	DiscriminatorDeposit      byte = 6
	DiscriminatorWithdraw     byte = 7
	DiscriminatorSwap         byte = 8
	DiscriminatorPause        byte = 9
	DiscriminatorUnpause      byte = 10
	DiscriminatorDonate       byte = 11
	DiscriminatorConsolidate  byte = 12
	DiscriminatorGetVersion   byte = 14
)

// AmountMismatchErrorCode is the contract's hex swap-output mismatch code.
const AmountMismatchErrorCode = 0x417
