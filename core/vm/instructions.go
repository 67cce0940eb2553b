package vm

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/thodyssey/dropvm/word"
)

// ---- arithmetic ----

func opAdd(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	y.Add(&x)
	return nil, nil
}

func opMul(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	y.Mul(&x)
	return nil, nil
}

func opSub(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	x.Sub(y)
	*y = x
	return nil, nil
}

func opDiv(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	x.Div(y)
	*y = x
	return nil, nil
}

func opSdiv(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	x.SDiv(y)
	*y = x
	return nil, nil
}

func opMod(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	x.Mod(y)
	*y = x
	return nil, nil
}

func opSmod(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	x.SMod(y)
	*y = x
	return nil, nil
}

func opAddmod(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.Pop()
	m := f.Stack.PeekRef(0)
	x.AddMod(&y, m)
	*m = x
	return nil, nil
}

func opMulmod(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.Pop()
	m := f.Stack.PeekRef(0)
	x.MulMod(&y, m)
	*m = x
	return nil, nil
}

func opExp(f *Frame, in *Interpreter) ([]byte, error) {
	base := f.Stack.Pop()
	exp := f.Stack.PeekRef(0)
	base.Exp(exp)
	*exp = base
	return nil, nil
}

func gasExp(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
	exp := f.Stack.Peek(1)
	return costs.EXP + costs.ExpByte*uint64(exp.BytesOccupied()), nil
}

func opSignExtend(f *Frame, in *Interpreter) ([]byte, error) {
	k := f.Stack.Pop()
	v := f.Stack.PeekRef(0)
	v.SignExtend(&k)
	return nil, nil
}

// ---- comparison and bitwise ----

func boolWord(b bool) word.Word {
	if b {
		return word.One()
	}
	return word.Zero()
}

func opLt(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	result := boolWord(x.Lt(*y))
	*y = result
	return nil, nil
}

func opGt(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	result := boolWord(x.Gt(*y))
	*y = result
	return nil, nil
}

func opSlt(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	result := boolWord(x.Slt(*y))
	*y = result
	return nil, nil
}

func opSgt(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	result := boolWord(x.Sgt(*y))
	*y = result
	return nil, nil
}

func opEq(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	result := boolWord(x.Eq(*y))
	*y = result
	return nil, nil
}

func opIszero(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.PeekRef(0)
	result := boolWord(x.IsZero())
	*x = result
	return nil, nil
}

func opAnd(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	y.And(&x)
	return nil, nil
}

func opOr(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	y.Or(&x)
	return nil, nil
}

func opXor(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.Pop()
	y := f.Stack.PeekRef(0)
	y.Xor(&x)
	return nil, nil
}

func opNot(f *Frame, in *Interpreter) ([]byte, error) {
	x := f.Stack.PeekRef(0)
	x.Not()
	return nil, nil
}

func opByte(f *Frame, in *Interpreter) ([]byte, error) {
	i := f.Stack.Pop()
	v := f.Stack.PeekRef(0)
	result := v.Byte(&i)
	*v = result
	return nil, nil
}

// ---- SHA3 ----

func opSha3(f *Frame, in *Interpreter) ([]byte, error) {
	offset := f.Stack.Pop()
	size := f.Stack.Pop()
	data := f.Memory.GetPtr(offset.Uint64(), size.Uint64())
	hash := crypto.Keccak256(data)
	var w word.Word
	var buf [32]byte
	copy(buf[:], hash)
	w.SetBytes32(buf)
	f.Stack.Push(w)
	return nil, nil
}

func gasSha3(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
	size := f.Stack.Peek(1)
	return costs.SHA3Word * toWordSize(size.Uint64()), nil
}

// ---- environmental ----

func opAddress(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.FromAddress(f.Owner))
	return nil, nil
}

func opBalance(f *Frame, in *Interpreter) ([]byte, error) {
	addrWord := f.Stack.Pop()
	addr := addrWord.Address()
	f.TouchAccount(addr)
	f.Stack.Push(in.state.GetBalance(addr))
	return nil, nil
}

func gasBalance(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
	return costs.BALANCE, nil
}

func opOrigin(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.FromAddress(f.Origin))
	return nil, nil
}

func opCaller(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.FromAddress(f.Caller))
	return nil, nil
}

func opCallValue(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(f.CallValue.Clone())
	return nil, nil
}

func opCalldataLoad(f *Frame, in *Interpreter) ([]byte, error) {
	offset := f.Stack.PeekRef(0)
	off := offset.Uint64()
	var buf [32]byte
	if off < uint64(len(f.Input)) {
		copy(buf[:], f.Input[off:])
	}
	var w word.Word
	w.SetBytes32(buf)
	*offset = w
	return nil, nil
}

func opCalldataSize(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.FromUint64(uint64(len(f.Input))))
	return nil, nil
}

func opCalldataCopy(f *Frame, in *Interpreter) ([]byte, error) {
	memOffset := f.Stack.Pop()
	dataOffset := f.Stack.Pop()
	size := f.Stack.Pop()
	data := clampAndPad(f.Input, dataOffset.Uint64(), size.Uint64())
	f.Memory.Set(memOffset.Uint64(), data)
	return nil, nil
}

func gasCopy(sizeIdx int) gasFunc {
	return func(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
		size := f.Stack.Peek(sizeIdx)
		return costs.Copy * toWordSize(size.Uint64()), nil
	}
}

func opCodeSize(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.FromUint64(uint64(len(f.Code))))
	return nil, nil
}

func opCodeCopy(f *Frame, in *Interpreter) ([]byte, error) {
	memOffset := f.Stack.Pop()
	codeOffset := f.Stack.Pop()
	size := f.Stack.Pop()
	data := clampAndPad(f.Code, codeOffset.Uint64(), size.Uint64())
	f.Memory.Set(memOffset.Uint64(), data)
	return nil, nil
}

func opGasprice(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.Zero())
	return nil, nil
}

func opExtCodeSize(f *Frame, in *Interpreter) ([]byte, error) {
	addrWord := f.Stack.PeekRef(0)
	addr := addrWord.Address()
	f.TouchAccount(addr)
	*addrWord = word.FromUint64(uint64(in.state.GetCodeSize(addr)))
	return nil, nil
}

func gasExtCodeSize(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
	return costs.ExtCodeSize, nil
}

func opExtCodeCopy(f *Frame, in *Interpreter) ([]byte, error) {
	addrWord := f.Stack.Pop()
	memOffset := f.Stack.Pop()
	codeOffset := f.Stack.Pop()
	size := f.Stack.Pop()
	addr := addrWord.Address()
	f.TouchAccount(addr)
	code := in.state.GetCode(addr)
	data := clampAndPad(code, codeOffset.Uint64(), size.Uint64())
	f.Memory.Set(memOffset.Uint64(), data)
	return nil, nil
}

func gasExtCodeCopy(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
	size := f.Stack.Peek(3)
	return costs.ExtCodeCopy + costs.Copy*toWordSize(size.Uint64()), nil
}

func opReturnDataSize(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.FromUint64(uint64(len(f.ReturnData))))
	return nil, nil
}

func opReturnDataCopy(f *Frame, in *Interpreter) ([]byte, error) {
	memOffset := f.Stack.Pop()
	dataOffset := f.Stack.Pop()
	size := f.Stack.Pop()
	off := dataOffset.Uint64()
	sz := size.Uint64()
	end := off + sz
	if end < off || end > uint64(len(f.ReturnData)) {
		return nil, &RuntimeError{Err: ErrReturnDataCopyOutOfBounds, Op: RETURNDATACOPY, PC: f.PC}
	}
	f.Memory.Set(memOffset.Uint64(), f.ReturnData[off:end])
	return nil, nil
}

// clampAndPad returns size bytes starting at offset from src, zero-padding
// any portion that falls past the end of src.
func clampAndPad(src []byte, offset, size uint64) []byte {
	out := make([]byte, size)
	if offset >= uint64(len(src)) {
		return out
	}
	end := offset + size
	if end > uint64(len(src)) {
		end = uint64(len(src))
	}
	copy(out, src[offset:end])
	return out
}

// ---- block ----

func opBlockhash(f *Frame, in *Interpreter) ([]byte, error) {
	n := f.Stack.PeekRef(0)
	*n = in.block.BlockHash(n.Uint64())
	return nil, nil
}

func opCoinbase(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.FromAddress(in.block.Coinbase()))
	return nil, nil
}

func opTimestamp(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.FromUint64(in.block.Timestamp()))
	return nil, nil
}

func opNumber(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.FromUint64(in.block.Number()))
	return nil, nil
}

func opDifficulty(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(in.block.Difficulty())
	return nil, nil
}

func opGasLimit(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.FromUint64(in.block.GasLimit()))
	return nil, nil
}

// ---- stack / memory / storage / flow ----

func opPop(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Pop()
	return nil, nil
}

func opMload(f *Frame, in *Interpreter) ([]byte, error) {
	offset := f.Stack.PeekRef(0)
	*offset = f.Memory.Load32(offset.Uint64())
	return nil, nil
}

func opMstore(f *Frame, in *Interpreter) ([]byte, error) {
	offset := f.Stack.Pop()
	v := f.Stack.Pop()
	f.Memory.Set32(offset.Uint64(), v)
	return nil, nil
}

func opMstore8(f *Frame, in *Interpreter) ([]byte, error) {
	offset := f.Stack.Pop()
	v := f.Stack.Pop()
	f.Memory.Set8(offset.Uint64(), v)
	return nil, nil
}

func opSload(f *Frame, in *Interpreter) ([]byte, error) {
	key := f.Stack.PeekRef(0)
	*key = in.state.GetState(f.Owner, *key)
	return nil, nil
}

func gasSload(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
	return costs.SLOAD, nil
}

func opSstore(f *Frame, in *Interpreter) ([]byte, error) {
	key := f.Stack.Pop()
	value := f.Stack.Pop()
	in.state.SetState(f.Owner, key, value)
	return nil, nil
}

// gasSstore implements the frontier SSTORE cost rule: a slot moving away
// from zero is SetSSTORE, a slot moving to zero costs ClearSSTORE, every
// other transition (including no-op writes) costs ResetSSTORE. Grounded
// on VM.java's SSTORE case in step() and go-ethereum's pre-EIP1283
// opSstore.
//
// Refund crediting is tracked against original, the value the slot held
// at the start of the enclosing top-level call, not merely current, the
// value it held immediately before this op: a slot cycled
// nonzero->zero->nonzero->zero within one call must credit RefundSSTORE
// exactly once, not once per individual clear. Crediting off current
// alone would double-count that sequence, so un-clearing a slot (writing
// it back to non-zero after an earlier clear) reverses the earlier
// credit, mirroring go-ethereum's EIP-1283 dirty-refund bookkeeping.
func gasSstore(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
	key := f.Stack.Peek(0)
	value := f.Stack.Peek(1)
	current := in.state.GetState(f.Owner, key)
	original := in.state.GetCommittedState(f.Owner, key)

	if !original.IsZero() {
		switch {
		case !current.IsZero() && value.IsZero():
			f.FutureRefund(costs.RefundSSTORE)
		case current.IsZero() && !value.IsZero():
			f.SubFutureRefund(costs.RefundSSTORE)
		}
	}

	switch {
	case current.IsZero() && !value.IsZero():
		return costs.SetSSTORE, nil
	case !current.IsZero() && value.IsZero():
		return costs.ClearSSTORE, nil
	default:
		return costs.ResetSSTORE, nil
	}
}

func opJump(f *Frame, in *Interpreter) ([]byte, error) {
	dest := f.Stack.Pop()
	pos := dest.Uint64()
	if !f.ValidJumpDest(pos) {
		return nil, &RuntimeError{Err: ErrBadJumpDestination, Op: JUMP, PC: f.PC}
	}
	f.PC = pos
	return nil, nil
}

func opJumpi(f *Frame, in *Interpreter) ([]byte, error) {
	dest := f.Stack.Pop()
	cond := f.Stack.Pop()
	if cond.IsZero() {
		f.PC++
		return nil, nil
	}
	pos := dest.Uint64()
	if !f.ValidJumpDest(pos) {
		return nil, &RuntimeError{Err: ErrBadJumpDestination, Op: JUMPI, PC: f.PC}
	}
	f.PC = pos
	return nil, nil
}

func opPc(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.FromUint64(f.PC))
	return nil, nil
}

func opMsize(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.FromUint64(uint64(f.Memory.Len())))
	return nil, nil
}

func opGas(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stack.Push(word.FromUint64(f.DropLimit))
	return nil, nil
}

func opJumpdest(f *Frame, in *Interpreter) ([]byte, error) { return nil, nil }

// ---- PUSH / DUP / SWAP / LOG generators ----

func makePush(n int) execFunc {
	return func(f *Frame, in *Interpreter) ([]byte, error) {
		start := f.PC + 1
		var buf [32]byte
		for i := 0; i < n; i++ {
			buf[32-n+i] = f.codeByteAt(start + uint64(i))
		}
		var w word.Word
		w.SetBytes32(buf)
		f.Stack.Push(w)
		f.PC += uint64(n)
		return nil, nil
	}
}

func makeDup(n int) execFunc {
	return func(f *Frame, in *Interpreter) ([]byte, error) {
		f.Stack.Dup(n)
		return nil, nil
	}
}

func makeSwap(n int) execFunc {
	return func(f *Frame, in *Interpreter) ([]byte, error) {
		f.Stack.Swap(n)
		return nil, nil
	}
}

func makeLog(topics int) execFunc {
	return func(f *Frame, in *Interpreter) ([]byte, error) {
		if f.Static {
			return nil, &RuntimeError{Err: ErrStaticCallModification, Op: LOG0 + OpCode(topics), PC: f.PC}
		}
		offset := f.Stack.Pop()
		size := f.Stack.Pop()
		ts := make([]word.Word, topics)
		for i := 0; i < topics; i++ {
			ts[i] = f.Stack.Pop()
		}
		data := f.Memory.Get(offset.Uint64(), size.Uint64())
		f.AddLog(LogInfo{Address: f.Owner, Topics: ts, Data: data})
		return nil, nil
	}
}

func gasLog(topics int) gasFunc {
	return func(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
		size := f.Stack.Peek(1)
		return costs.LOG + costs.LogTopic*uint64(topics) + costs.LogData*size.Uint64(), nil
	}
}

// ---- terminal opcodes ----

func opStop(f *Frame, in *Interpreter) ([]byte, error) {
	f.Stop()
	return nil, errStopToken
}

func opReturn(f *Frame, in *Interpreter) ([]byte, error) {
	offset := f.Stack.Pop()
	size := f.Stack.Pop()
	data := f.Memory.Get(offset.Uint64(), size.Uint64())
	f.SetReturnData(data)
	f.Stop()
	return data, errStopToken
}

func opRevert(f *Frame, in *Interpreter) ([]byte, error) {
	offset := f.Stack.Pop()
	size := f.Stack.Pop()
	data := f.Memory.Get(offset.Uint64(), size.Uint64())
	f.SetReturnData(data)
	f.Reverted = true
	f.Halted = true
	return data, errStopToken
}

func opSuicide(f *Frame, in *Interpreter) ([]byte, error) {
	beneficiaryWord := f.Stack.Pop()
	beneficiary := beneficiaryWord.Address()
	in.state.Suicide(f.Owner, beneficiary)
	f.TouchAccount(beneficiary)
	f.Stop()
	return nil, errStopToken
}

func opInvalid(f *Frame, in *Interpreter) ([]byte, error) {
	return nil, &RuntimeError{Err: ErrInvalidOpcode, Op: INVALID, PC: f.PC}
}
