package vm

import (
	"math/big"
)

// execFunc implements one opcode's effect on f, given access back to in for
// sub-calls (CALL family) and host interfaces. A terminal opcode
// (STOP/RETURN/REVERT/SUICIDE) returns errStopToken, with the halt-return
// data for RETURN/REVERT; a failure returns its error; every other opcode
// returns nil, nil.
type execFunc func(f *Frame, in *Interpreter) ([]byte, error)

// gasFunc computes the dynamic (non-tier) portion of an opcode's drop cost,
// given the stack as it stood before the opcode popped any operands. in
// gives access to host interfaces that some dynamic costs depend on
// (SSTORE's current-value lookup).
type gasFunc func(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error)

// operation is one entry of the JumpTable.
type operation struct {
	execute     execFunc
	dynamicGas  gasFunc
	minStack    int
	maxStack    int
	tier        Tier
	memorySize  func(stack *Stack) (uint64, bool) // offset+size needed, ok
	halts       bool
	writes      bool // forbidden under STATICCALL
	valid       bool
}

// JumpTable maps every possible opcode byte to its operation. Unassigned entries have valid == false and decode as
// ErrInvalidOpcode.
type JumpTable [256]operation

var defaultJumpTable = newFrontierJumpTable()

// memSizeBinary computes the offset+size window an opcode touches, as
// big.Int so that near-2^256 operands cannot wrap; a window beyond
// maxMemSize reports !ok, which step turns into ErrMemoryOverflow before
// any uint64 pricing arithmetic runs.
func memSizeBinary(offsetIdx, sizeIdx int) func(*Stack) (uint64, bool) {
	return func(s *Stack) (uint64, bool) {
		return bigToMemSize(s.Peek(offsetIdx).BigInt(), s.Peek(sizeIdx).BigInt())
	}
}

func bigToMemSize(offset, size *big.Int) (uint64, bool) {
	n := need(offset, size)
	if n.Sign() == 0 {
		return 0, true
	}
	if n.BitLen() > 64 || n.Uint64() > maxMemSize {
		return 0, false
	}
	return n.Uint64(), true
}

// Interpreter drives Frames against a JumpTable and a set of host
// interfaces.
type Interpreter struct {
	jt      JumpTable
	costs   *DropCostSchedule
	state   StateDB
	block   BlockContext
	precomp PrecompileRegistry
	tracer  Tracer
}

// InterpreterConfig bundles the host dependencies an Interpreter needs.
// The DisableXxx fields gate a post-frontier opcode out of the JumpTable
// entirely (it decodes as ErrInvalidOpcode), for a chain configuration
// that predates the fork introducing it. The zero value leaves every
// opcode enabled, matching the frontier-and-later superset the rest of
// the core assumes.
type InterpreterConfig struct {
	Costs       *DropCostSchedule
	State       StateDB
	Block       BlockContext
	Precompiles PrecompileRegistry
	Tracer      Tracer

	DisableDelegateCall bool
	DisableRevert       bool
	DisableReturnData   bool
	DisableStaticCall   bool
}

// NewInterpreter constructs an Interpreter over the frontier JumpTable,
// narrowed by cfg's DisableXxx flags if any are set.
func NewInterpreter(cfg InterpreterConfig) *Interpreter {
	costs := cfg.Costs
	if costs == nil {
		costs = &DefaultDropCosts
	}
	return &Interpreter{
		jt:      jumpTableFor(cfg),
		costs:   costs,
		state:   cfg.State,
		block:   cfg.Block,
		precomp: cfg.Precompiles,
		tracer:  cfg.Tracer,
	}
}

// jumpTableFor returns defaultJumpTable unmodified unless cfg disables at
// least one opcode, in which case it returns a narrowed copy with those
// entries decoding as invalid.
func jumpTableFor(cfg InterpreterConfig) JumpTable {
	if !cfg.DisableDelegateCall && !cfg.DisableRevert && !cfg.DisableReturnData && !cfg.DisableStaticCall {
		return defaultJumpTable
	}
	jt := defaultJumpTable
	if cfg.DisableDelegateCall {
		jt[DELEGATECALL] = operation{}
	}
	if cfg.DisableRevert {
		jt[REVERT] = operation{}
	}
	if cfg.DisableReturnData {
		jt[RETURNDATASIZE] = operation{}
		jt[RETURNDATACOPY] = operation{}
	}
	if cfg.DisableStaticCall {
		jt[STATICCALL] = operation{}
	}
	return jt
}

// Run drives f to completion, implementing the decode -> validate -> price
// -> charge -> execute step loop, grounded on VM.java's step(). It returns
// the halt-return data and a non-nil error only for a
// RuntimeException-class failure; normal STOP/RETURN/REVERT
// produce a nil error with f.Halted/f.Reverted set appropriately.
func (in *Interpreter) Run(f *Frame) ([]byte, error) {
	if f.SkipExecution {
		return f.ReturnData, nil
	}
	for !f.Halted {
		ret, err := in.step(f)
		if err != nil {
			if err == errStopToken {
				return ret, nil
			}
			return nil, err
		}
	}
	return f.ReturnData, nil
}

// step executes exactly one opcode, mirroring VM.java's step(): decode,
// validate stack depth and jump destinations, price and charge drop, then
// execute.
func (in *Interpreter) step(f *Frame) ([]byte, error) {
	op := f.CurrentOp()
	opInfo := in.jt[op]

	if !opInfo.valid {
		return nil, &RuntimeError{Err: ErrInvalidOpcode, Op: op, PC: f.PC}
	}
	if f.Static && opInfo.writes {
		return nil, &RuntimeError{Err: ErrStaticCallModification, Op: op, PC: f.PC}
	}
	if f.Stack.Len() < opInfo.minStack {
		return nil, &RuntimeError{Err: ErrStackUnderflow, Op: op, PC: f.PC}
	}
	if f.Stack.Len() > opInfo.maxStack {
		return nil, &RuntimeError{Err: ErrStackOverflow, Op: op, PC: f.PC}
	}

	cost := in.costs.TierCost[opInfo.tier]

	var memWords uint64
	if opInfo.memorySize != nil {
		need, ok := opInfo.memorySize(f.Stack)
		if !ok {
			return nil, &RuntimeError{Err: ErrMemoryOverflow, Op: op, PC: f.PC}
		}
		memWords = need
	}

	if opInfo.memorySize != nil {
		expCost, err := in.costs.memExp(uint64(f.Memory.Len()), new(big.Int).SetUint64(memWords), 0)
		if err != nil {
			return nil, &RuntimeError{Err: err, Op: op, PC: f.PC}
		}
		if !chargeInto(&cost, expCost) {
			return nil, &RuntimeError{Err: ErrNotEnoughDrop, Op: op, PC: f.PC}
		}
	}

	if opInfo.dynamicGas != nil {
		dyn, err := opInfo.dynamicGas(in.costs, f, in)
		if err != nil {
			return nil, &RuntimeError{Err: err, Op: op, PC: f.PC}
		}
		if !chargeInto(&cost, dyn) {
			return nil, &RuntimeError{Err: ErrNotEnoughDrop, Op: op, PC: f.PC}
		}
	}

	if f.DropLimit < cost {
		return nil, &RuntimeError{Err: ErrNotEnoughDrop, Op: op, PC: f.PC}
	}
	f.DropLimit -= cost

	if opInfo.memorySize != nil && memWords > uint64(f.Memory.Len()) {
		f.Memory.resize(roundUpTo32(memWords))
	}

	if in.tracer != nil {
		in.tracer.CaptureStep(f.PC, op, f.DropLimit, f.Stack, f.Memory.Len(), op.String())
	}

	f.PreviouslyExecuted = f.LastOp
	f.LastOp = op
	f.StepCount++

	ret, err := opInfo.execute(f, in)
	if err != nil && err != errStopToken {
		return nil, err
	}
	// Advance after execute, so a PUSHn that moved PC onto its last
	// immediate byte ends up just past the immediate.
	if !opInfo.halts {
		f.PC++
	}
	return ret, err
}

// chargeInto adds delta to *cost, reporting false on uint64 overflow so the
// caller can fail with ErrNotEnoughDrop instead of wrapping around.
func chargeInto(cost *uint64, delta uint64) bool {
	sum := *cost + delta
	if sum < *cost {
		return false
	}
	*cost = sum
	return true
}
