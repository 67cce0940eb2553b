package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/thodyssey/dropvm/word"
)

// maxCallDepth bounds CALL/CREATE nesting.
const maxCallDepth = 1024

// Frame is the execution context for one contract invocation.
type Frame struct {
	Code []byte
	PC   uint64

	Owner  common.Address
	Caller common.Address
	Origin common.Address

	CallValue word.Word
	Input     []byte

	CallDepth int

	DropLimit uint64
	Refund    uint64

	Stack  *Stack
	Memory *Memory

	ReturnData []byte

	Halted  bool
	Reverted bool
	Static  bool

	TouchedAccounts map[common.Address]struct{}
	Logs            []LogInfo

	LastOp             OpCode
	PreviouslyExecuted OpCode
	StepCount           uint64

	// RuntimeFailure records the error that terminated this frame
	// abnormally; nil on a clean STOP/RETURN/REVERT.
	RuntimeFailure error

	// SkipExecution lets a conformance-test fixture supply a pre-computed
	// result without driving the interpreter loop at all, mirroring
	// VM.java's Program.byTestingSuite() early return (SPEC_FULL.md §11.4).
	SkipExecution bool

	jumpDests destinations
	costs     *DropCostSchedule
}

// FrameConfig bundles the construction-time parameters for a new Frame.
type FrameConfig struct {
	Code      []byte
	Owner     common.Address
	Caller    common.Address
	Origin    common.Address
	CallValue word.Word
	Input     []byte
	CallDepth int
	DropLimit uint64
	Static    bool
	Costs     *DropCostSchedule
}

// NewFrame constructs a Frame ready to execute, performing the one-time
// jump-destination analysis memoized by code hash (see jumpdest.go).
func NewFrame(cfg FrameConfig) *Frame {
	costs := cfg.Costs
	if costs == nil {
		costs = &DefaultDropCosts
	}
	return &Frame{
		Code:            cfg.Code,
		Owner:           cfg.Owner,
		Caller:          cfg.Caller,
		Origin:          cfg.Origin,
		CallValue:       cfg.CallValue,
		Input:           cfg.Input,
		CallDepth:       cfg.CallDepth,
		DropLimit:       cfg.DropLimit,
		Static:          cfg.Static,
		Stack:           newStack(),
		Memory:          newMemory(),
		TouchedAccounts: make(map[common.Address]struct{}),
		jumpDests:       jumpDestsFor(cfg.Code),
		costs:           costs,
	}
}

// CurrentOp returns the opcode at PC, or STOP if PC is past the end of
// code.
func (f *Frame) CurrentOp() OpCode {
	if f.PC >= uint64(len(f.Code)) {
		return STOP
	}
	return OpCode(f.Code[f.PC])
}

// codeByteAt returns code[pc] or 0 if pc is past the end, used for
// zero-padded PUSH immediates.
func (f *Frame) codeByteAt(pc uint64) byte {
	if pc >= uint64(len(f.Code)) {
		return 0
	}
	return f.Code[pc]
}

// ValidJumpDest reports whether pos is a valid JUMP/JUMPI target.
func (f *Frame) ValidJumpDest(pos uint64) bool { return f.jumpDests.has(pos) }

// TouchAccount records addr as observed/affected, surfaced to the host
// post-execution.
func (f *Frame) TouchAccount(addr common.Address) { f.TouchedAccounts[addr] = struct{}{} }

// AddLog appends a LOGn record.
func (f *Frame) AddLog(l LogInfo) { f.Logs = append(f.Logs, l) }

// FutureRefund credits delta to the frame's refund counter, to be merged
// into the caller's committed refund only on successful frame exit.
func (f *Frame) FutureRefund(delta uint64) { f.Refund += delta }

// SubFutureRefund reverses a previously credited refund, saturating at
// zero rather than underflowing; used when a slot cleared earlier in the
// same call is written back to a non-zero value.
func (f *Frame) SubFutureRefund(delta uint64) {
	if delta > f.Refund {
		f.Refund = 0
		return
	}
	f.Refund -= delta
}

// ResetRefund clears the refund counter, used on runtime failure.
func (f *Frame) ResetRefund() { f.Refund = 0 }

// SpendAllDrops consumes all remaining drops, used on runtime failure.
func (f *Frame) SpendAllDrops() { f.DropLimit = 0 }

// Stop marks the frame halted with no revert.
func (f *Frame) Stop() { f.Halted = true }

// SetReturnData sets the halt-return buffer.
func (f *Frame) SetReturnData(data []byte) { f.ReturnData = data }

// Result summarizes a completed frame for the frame's caller.
type Result struct {
	Halted          bool
	Reverted        bool
	ReturnData      []byte
	DropsUsed       uint64
	Refund          uint64
	Logs            []LogInfo
	TouchedAccounts map[common.Address]struct{}
	RuntimeFailure  error
	StepCount       uint64
}

// Result converts the terminal state of f into the surface the driver
// and the CALL family hand back to the caller.
func (f *Frame) Result(initialDropLimit uint64) Result {
	return Result{
		Halted:          f.Halted,
		Reverted:        f.Reverted,
		ReturnData:      f.ReturnData,
		DropsUsed:       initialDropLimit - f.DropLimit,
		Refund:          f.Refund,
		Logs:            f.Logs,
		TouchedAccounts: f.TouchedAccounts,
		RuntimeFailure:  f.RuntimeFailure,
		StepCount:       f.StepCount,
	}
}
