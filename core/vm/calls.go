package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/thodyssey/dropvm/word"
)

// callGasCap implements the "63/64" gas-forwarding reserve: a CALL-family
// opcode may request up to all remaining drops, but the frame initiating
// the call keeps back available/64 drops (rounded down) of what it had
// before the call; with fewer than 64 drops available nothing is kept
// back. CREATE is exempt and forwards everything, matching VM.java.
func callGasCap(available, requested uint64) uint64 {
	cap := available - available/64
	if requested < cap {
		return requested
	}
	return cap
}

// subCallResult is what runSubFrame hands back to the calling opcode.
type subCallResult struct {
	success    bool
	returnData []byte
	dropsUsed  uint64
}

// runSubFrame drives sub to completion and, on failure or REVERT, rolls
// the StateDB back to snap — which the caller must have taken *before*
// making any state change attributable to this call (notably the value
// transfer), so that a REVERT undoes the transfer along with everything
// the sub-frame itself did. On success, sub's effects are merged into parent.
func runSubFrame(in *Interpreter, parent, sub *Frame, snap int) subCallResult {
	dropsBefore := sub.DropLimit

	retData, err := in.Run(sub)
	dropsUsed := dropsBefore - sub.DropLimit

	failed := err != nil || sub.Reverted || sub.RuntimeFailure != nil
	if failed {
		in.state.RevertToSnapshot(snap)
		if err != nil {
			sub.RuntimeFailure = err
			sub.SpendAllDrops()
			dropsUsed = dropsBefore
		}
		return subCallResult{success: false, returnData: retData, dropsUsed: dropsUsed}
	}

	for addr := range sub.TouchedAccounts {
		parent.TouchAccount(addr)
	}
	parent.Logs = append(parent.Logs, sub.Logs...)
	parent.FutureRefund(sub.Refund)
	return subCallResult{success: true, returnData: retData, dropsUsed: dropsUsed}
}

// ---- CALL family ----

func opCall(f *Frame, in *Interpreter) ([]byte, error) {
	return doCall(f, in, CALL)
}

func opCallcode(f *Frame, in *Interpreter) ([]byte, error) {
	return doCall(f, in, CALLCODE)
}

func opDelegatecall(f *Frame, in *Interpreter) ([]byte, error) {
	return doCall(f, in, DELEGATECALL)
}

func opStaticcall(f *Frame, in *Interpreter) ([]byte, error) {
	return doCall(f, in, STATICCALL)
}

// doCall implements CALL, CALLCODE, DELEGATECALL and STATICCALL, which
// differ only in how the target's code, owner, caller and value are chosen
// and in whether the sub-frame is forced static.
func doCall(f *Frame, in *Interpreter, kind OpCode) ([]byte, error) {
	requested := f.Stack.Pop()
	targetWord := f.Stack.Pop()
	target := targetWord.Address()

	var value word.Word
	if kind == CALL || kind == CALLCODE {
		value = f.Stack.Pop()
	}

	inOffset := f.Stack.Pop()
	inSize := f.Stack.Pop()
	outOffset := f.Stack.Pop()
	outSize := f.Stack.Pop()

	if f.Static && kind == CALL && !value.IsZero() {
		return nil, &RuntimeError{Err: ErrStaticCallModification, Op: kind, PC: f.PC}
	}
	if f.CallDepth+1 > maxCallDepth {
		f.Stack.Push(word.Zero())
		return nil, nil
	}

	args := f.Memory.Get(inOffset.Uint64(), inSize.Uint64())
	forwarded := callGasCap(f.DropLimit, requested.Uint64())

	if precompile, ok := lookupPrecompile(in, target); ok {
		out, used, ok := precompile.Execute(args, forwarded)
		f.DropLimit -= used
		f.ReturnData = out
		if ok {
			f.Memory.Set(outOffset.Uint64(), fitTo(out, outSize.Uint64()))
			f.Stack.Push(word.One())
		} else {
			f.Stack.Push(word.Zero())
		}
		return nil, nil
	}

	// Only CALL/CALLCODE carry a value operand; DELEGATECALL inherits the
	// enclosing frame's CallValue purely for the benefit of the CALLVALUE
	// opcode, and that inherited value never itself triggers a transfer or
	// a stipend (VM.java computes callHasValue() off the opcode, not off
	// the DELEGATECALL frame's own value).
	transfersValue := (kind == CALL || kind == CALLCODE) && !value.IsZero()

	owner, caller, origin, static := target, f.Owner, f.Origin, f.Static
	switch kind {
	case CALLCODE:
		owner = f.Owner
	case DELEGATECALL:
		owner = f.Owner
		caller = f.Caller
		value = f.CallValue
	case STATICCALL:
		static = true
	}

	if transfersValue {
		if in.state.GetBalance(f.Owner).Lt(value) {
			f.Stack.Push(word.Zero())
			return nil, nil
		}
	}

	snap := in.state.Snapshot()

	if transfersValue && kind == CALL {
		in.state.SubBalance(f.Owner, value)
		in.state.AddBalance(target, value)
	}
	// CALLCODE executes in the caller's own context, so the transfer is to
	// itself; the no-op balance mutation is skipped but the sufficient-
	// balance precondition above still applies, matching real CALLCODE.

	// A value-transferring CALL/CALLCODE carries a free stipend on top of
	// the forwarded drops, so a simple receiving contract can always
	// afford to at least run to completion.
	given := forwarded
	if transfersValue {
		given += f.costs.StipendCall
	}

	code := in.state.GetCode(target)
	sub := NewFrame(FrameConfig{
		Code:      code,
		Owner:     owner,
		Caller:    caller,
		Origin:    origin,
		CallValue: value,
		Input:     args,
		CallDepth: f.CallDepth + 1,
		DropLimit: given,
		Static:    static,
		Costs:     f.costs,
	})

	f.DropLimit -= forwarded
	result := runSubFrame(in, f, sub, snap)

	// Only the portion of what the sub-frame left unspent that actually
	// came out of f's own budget is returned; an unused stipend was never
	// charged to f and so is not refunded to it either.
	usedBySub := given - sub.DropLimit
	consumedFromForwarded := usedBySub
	if consumedFromForwarded > forwarded {
		consumedFromForwarded = forwarded
	}
	f.DropLimit += forwarded - consumedFromForwarded

	f.ReturnData = result.returnData
	f.Memory.Set(outOffset.Uint64(), fitTo(result.returnData, outSize.Uint64()))
	if result.success {
		f.Stack.Push(word.One())
	} else {
		f.Stack.Push(word.Zero())
	}
	return nil, nil
}

// fitTo truncates or zero-pads data to exactly n bytes, used for copying a
// sub-call's return data into the caller's requested output window.
func fitTo(data []byte, n uint64) []byte {
	out := make([]byte, n)
	copy(out, data)
	return out
}

func lookupPrecompile(in *Interpreter, addr common.Address) (PrecompiledContract, bool) {
	if in.precomp == nil {
		return nil, false
	}
	return in.precomp.Lookup(addr)
}

// gasCall prices the CALL family's base cost. isCall is true only for CALL,
// whose base cost is NewAcctCall outright rather than CALL's, regardless of
// whether the target account already exists. chargeValue is true for CALL
// and CALLCODE, which carry a value operand on the stack.
func gasCall(costs *DropCostSchedule, f *Frame, in *Interpreter, isCall, chargeValue bool) (uint64, error) {
	cost := costs.CALL
	if isCall {
		cost = costs.NewAcctCall
	}
	if chargeValue && !f.Stack.Peek(2).IsZero() {
		cost += costs.VTCall
	}
	return cost, nil
}

func gasCallValue(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
	return gasCall(costs, f, in, true, true)
}

func gasCallCodeValue(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
	return gasCall(costs, f, in, false, true)
}

func gasCallNoValue(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
	return gasCall(costs, f, in, false, false)
}

// ---- CREATE ----

func opCreate(f *Frame, in *Interpreter) ([]byte, error) {
	value := f.Stack.Pop()
	offset := f.Stack.Pop()
	size := f.Stack.Pop()

	if f.Static {
		return nil, &RuntimeError{Err: ErrStaticCallModification, Op: CREATE, PC: f.PC}
	}
	if f.CallDepth+1 > maxCallDepth {
		f.Stack.Push(word.Zero())
		return nil, nil
	}
	if in.state.GetBalance(f.Owner).Lt(value) {
		f.Stack.Push(word.Zero())
		return nil, nil
	}

	initCode := f.Memory.Get(offset.Uint64(), size.Uint64())
	nonce := in.state.GetNonce(f.Owner)
	newAddr := crypto.CreateAddress(f.Owner, nonce)
	// The owner's nonce is consumed whether or not the new contract's
	// construction ultimately succeeds, so it sits outside the snapshot
	// taken below (matching go-ethereum's Create: address derivation must
	// never be reusable after a failed attempt).
	in.state.SetNonce(f.Owner, nonce+1)

	snap := in.state.Snapshot()
	in.state.SubBalance(f.Owner, value)
	in.state.AddBalance(newAddr, value)
	in.state.CreateAccount(newAddr, nil)

	sub := NewFrame(FrameConfig{
		Code:      initCode,
		Owner:     newAddr,
		Caller:    f.Owner,
		Origin:    f.Origin,
		CallValue: value,
		Input:     nil,
		CallDepth: f.CallDepth + 1,
		DropLimit: f.DropLimit,
		Static:    false,
		Costs:     f.costs,
	})

	result := runSubFrame(in, f, sub, snap)
	f.DropLimit -= result.dropsUsed
	f.ReturnData = result.returnData

	if !result.success {
		f.Stack.Push(word.Zero())
		return nil, nil
	}
	in.state.SetCode(newAddr, result.returnData)
	f.Stack.Push(word.FromAddress(newAddr))
	return nil, nil
}

func gasCreate(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
	return costs.CREATE, nil
}
