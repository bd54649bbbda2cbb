package wal

import "fmt"

// FatalKind classifies log invariant violations. None of them are
// recoverable: each one means either a caller broke the logging
// protocol or the log write path itself cannot be trusted, and in both
// cases continuing would risk persisting inconsistent state.
type FatalKind int

const (
	// CapacityExceeded: a transaction registered more blocks than the
	// log has data slots. There is no safe way to log it.
	CapacityExceeded FatalKind = iota + 1
	// ProtocolViolation: a block was registered with no operation
	// admitted, or an operation ended while a commit was running.
	ProtocolViolation
	// TransferIntegrityMismatch: the log data read back from disk
	// during commit does not match what was just written.
	TransferIntegrityMismatch
)

func (k FatalKind) String() string {
	switch k {
	case CapacityExceeded:
		return "capacity exceeded"
	case ProtocolViolation:
		return "protocol violation"
	case TransferIntegrityMismatch:
		return "transfer integrity mismatch"
	}
	return "unknown"
}

// FatalError is the panic value for a fatal log condition. It is never
// returned as an ordinary error and must not be recovered and retried.
type FatalError struct {
	Kind FatalKind
	msg  string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("log %v: %s", e.Kind, e.msg)
}

func halt(kind FatalKind, format string, a ...interface{}) {
	panic(&FatalError{Kind: kind, msg: fmt.Sprintf(format, a...)})
}
