package vm

import (
	"errors"
	"strconv"
)

// Sentinel errors classify every RuntimeException-class failure the
// interpreter can raise. All of them terminate the current frame: the
// interpreter consumes the frame's remaining drops, clears its future
// refund, and marks it halted.
var (
	ErrInvalidOpcode             = errors.New("vm: invalid opcode")
	ErrStackUnderflow            = errors.New("vm: stack underflow")
	ErrStackOverflow             = errors.New("vm: stack overflow")
	ErrNotEnoughDrop             = errors.New("vm: not enough drop")
	ErrMemoryOverflow            = errors.New("vm: memory overflow")
	ErrBadJumpDestination        = errors.New("vm: bad jump destination")
	ErrStaticCallModification    = errors.New("vm: static call state modification")
	ErrReturnDataCopyOutOfBounds = errors.New("vm: return data copy out of bounds")
	ErrCallDepthExceeded         = errors.New("vm: call depth exceeded")
)

// errStopToken is an internal sentinel used by opcode handlers to signal
// normal frame termination (STOP/RETURN/REVERT/SUICIDE) without being a
// RuntimeException-class failure. It never escapes the interpreter loop.
var errStopToken = errors.New("vm: stop token")

// HostFatal represents a host-level invariant violation — not a normal
// frame failure, and not something bytecode can trigger by any sequence
// of otherwise-valid opcodes. The driver does not catch it: a host-level
// stack overflow, for instance, is a fatal, unrecoverable host error that
// calls for operator guidance, not a frame-level failure. It is an error
// value, not a panic: Execute returns it as a Go error, and a caller that
// converts it into a controlled process exit does so at a process
// boundary (cmd/dropvm), never inside the interpreter loop itself.
type HostFatal struct {
	Reason string
}

func (e *HostFatal) Error() string { return "vm: host fatal: " + e.Reason }

// RuntimeError wraps one of the sentinel errors above with the opcode and
// program counter at which it occurred, for diagnostics.
type RuntimeError struct {
	Err error
	Op  OpCode
	PC  uint64
}

func (e *RuntimeError) Error() string {
	return e.Err.Error() + " at pc=" + strconv.FormatUint(e.PC, 10) + " op=" + e.Op.String()
}

func (e *RuntimeError) Unwrap() error { return e.Err }
