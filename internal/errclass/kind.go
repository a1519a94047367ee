// Package errclass classifies contract and transport errors into the
// taxonomy WorkerRuntime acts on, and carries the retry/backoff and
// circuit-breaker machinery used while acting on them.
package errclass

// Kind is the top-level bucket an error falls into.
type Kind int

const (
	// KindUnknown is what Classify returns for a nil error; a non-nil
	// error it cannot otherwise recognize is bucketed as
	// KindContractFatal with CodeUnrecognized.
	KindUnknown Kind = iota
	KindTransport
	KindContractRecoverable
	KindContractFatal
	KindEngine
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindContractRecoverable:
		return "contract_recoverable"
	case KindContractFatal:
		return "contract_fatal"
	case KindEngine:
		return "engine"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Code is a specific recognized contract or engine error.
type Code string

const (
	// Contract-recoverable.
	InsufficientFunds    Code = "InsufficientFunds"
	PoolPaused           Code = "PoolPaused"
	SystemPaused         Code = "SystemPaused"
	InsufficientLiquidity Code = "InsufficientLiquidity"
	SlippageExceeded     Code = "SlippageExceeded"
	InvalidTokenAccount  Code = "InvalidTokenAccount"

	// Contract-fatal.
	InvalidRatio     Code = "InvalidRatio"
	Unauthorized     Code = "Unauthorized"
	ArithmeticOverflow Code = "ArithmeticOverflow"
	InvalidTokenPair Code = "InvalidTokenPair"

	// AmountMismatch is the contract's 0x417 swap-output check failure.
	AmountMismatch Code = "AMOUNT_MISMATCH"

	// Engine-level.
	EngineDuplicateSwap Code = "EngineDuplicateSwap"
	EnginePoolNotFound  Code = "EnginePoolNotFound"
	EngineInvalidState  Code = "EngineInvalidState"

	CodeUnrecognized Code = "Unrecognized"
)

var recoverableCodes = map[Code]bool{
	InsufficientFunds:     true,
	PoolPaused:            true,
	SystemPaused:          true,
	InsufficientLiquidity: true,
	SlippageExceeded:      true,
	InvalidTokenAccount:   true,
}

var fatalCodes = map[Code]bool{
	InvalidRatio:       true,
	Unauthorized:       true,
	ArithmeticOverflow: true,
	InvalidTokenPair:   true,
}

// Engine-level error numbers surfaced to API callers: -1001 duplicate
// swap direction, -1002 pool not found, -1003 invalid worker state.
const (
	EngineErrorDuplicateSwap = -1001
	EngineErrorPoolNotFound  = -1002
	EngineErrorInvalidState  = -1003
)

// Classified is the outcome of Classify: a bucket plus, for
// contract errors, the specific recognized code.
type Classified struct {
	Kind Kind
	Code Code
	Err  error
}
