package errclass

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ContractError wraps a recognized or unrecognized on-chain program
// error surfaced by RpcGateway/TxBuilder.
type ContractError struct {
	Code    Code
	Message string
}

func (e *ContractError) Error() string {
	return "contract error " + string(e.Code) + ": " + e.Message
}

// TransportError wraps an rpc-timeout, no-route, or serialization
// failure encountered while talking to the cluster.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return "transport error during " + e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// EngineError wraps one of the engine-level failure numbers.
type EngineError struct {
	Number  int
	Message string
}

func (e *EngineError) Error() string { return e.Message }

// StorageError wraps a Store failure (a write/rename/fsync that did
// not complete).
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "storage error: " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// NewContractError builds a ContractError, bucketing unrecognized codes
// under CodeUnrecognized so Classify still routes them as fatal.
func NewContractError(code Code, message string) *ContractError {
	if !recoverableCodes[code] && !fatalCodes[code] && code != AmountMismatch {
		code = CodeUnrecognized
	}
	return &ContractError{Code: code, Message: message}
}

// Classify buckets err into the taxonomy WorkerRuntime and the
// strategy table act on.
func Classify(err error) Classified {
	if err == nil {
		return Classified{Kind: KindUnknown, Err: err}
	}

	var ce *ContractError
	if errors.As(err, &ce) {
		switch {
		case ce.Code == AmountMismatch:
			return Classified{Kind: KindContractRecoverable, Code: SlippageExceeded, Err: err}
		case recoverableCodes[ce.Code]:
			return Classified{Kind: KindContractRecoverable, Code: ce.Code, Err: err}
		default:
			// Fatal codes and any unrecognized code both escalate.
			return Classified{Kind: KindContractFatal, Code: ce.Code, Err: err}
		}
	}

	var te *TransportError
	if errors.As(err, &te) {
		return Classified{Kind: KindTransport, Err: err}
	}

	var ee *EngineError
	if errors.As(err, &ee) {
		return Classified{Kind: KindEngine, Err: err}
	}

	var se *StorageError
	if errors.As(err, &se) {
		return Classified{Kind: KindStorage, Err: err}
	}

	if isTransportLike(err) {
		return Classified{Kind: KindTransport, Err: err}
	}

	return Classified{Kind: KindContractFatal, Code: CodeUnrecognized, Err: err}
}

func isTransportLike(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "no route") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "eof")
}
