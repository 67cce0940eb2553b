package vm

import "math/big"

// memSizeCall computes the memory requirement of a CALL-family opcode as
// the larger of its input-data window and its output-data window.
func memSizeCall(inOffsetIdx, inSizeIdx, outOffsetIdx, outSizeIdx int) func(*Stack) (uint64, bool) {
	return func(s *Stack) (uint64, bool) {
		inNeed, ok := bigToMemSize(s.Peek(inOffsetIdx).BigInt(), s.Peek(inSizeIdx).BigInt())
		if !ok {
			return 0, false
		}
		outNeed, ok := bigToMemSize(s.Peek(outOffsetIdx).BigInt(), s.Peek(outSizeIdx).BigInt())
		if !ok {
			return 0, false
		}
		if outNeed > inNeed {
			return outNeed, true
		}
		return inNeed, true
	}
}

// newFrontierJumpTable builds the JumpTable for the frontier-era opcode set,
// grounded on VM.java's step() switch and
// go-ethereum's core/vm/jump_table.go layout (one operation struct per
// opcode, validated once by the interpreter's step loop).
func newFrontierJumpTable() JumpTable {
	var jt JumpTable

	set := func(op OpCode, o operation) {
		o.valid = true
		jt[op] = o
	}

	set(STOP, operation{execute: opStop, minStack: 0, maxStack: stackLimit, tier: TierZero, halts: true})

	set(ADD, operation{execute: opAdd, minStack: 2, maxStack: stackLimit, tier: TierVeryLow})
	set(MUL, operation{execute: opMul, minStack: 2, maxStack: stackLimit, tier: TierLow})
	set(SUB, operation{execute: opSub, minStack: 2, maxStack: stackLimit, tier: TierVeryLow})
	set(DIV, operation{execute: opDiv, minStack: 2, maxStack: stackLimit, tier: TierLow})
	set(SDIV, operation{execute: opSdiv, minStack: 2, maxStack: stackLimit, tier: TierLow})
	set(MOD, operation{execute: opMod, minStack: 2, maxStack: stackLimit, tier: TierLow})
	set(SMOD, operation{execute: opSmod, minStack: 2, maxStack: stackLimit, tier: TierLow})
	set(ADDMOD, operation{execute: opAddmod, minStack: 3, maxStack: stackLimit, tier: TierMid})
	set(MULMOD, operation{execute: opMulmod, minStack: 3, maxStack: stackLimit, tier: TierMid})
	set(EXP, operation{execute: opExp, dynamicGas: gasExp, minStack: 2, maxStack: stackLimit, tier: TierZero})
	set(SIGNEXTEND, operation{execute: opSignExtend, minStack: 2, maxStack: stackLimit, tier: TierLow})

	set(LT, operation{execute: opLt, minStack: 2, maxStack: stackLimit, tier: TierVeryLow})
	set(GT, operation{execute: opGt, minStack: 2, maxStack: stackLimit, tier: TierVeryLow})
	set(SLT, operation{execute: opSlt, minStack: 2, maxStack: stackLimit, tier: TierVeryLow})
	set(SGT, operation{execute: opSgt, minStack: 2, maxStack: stackLimit, tier: TierVeryLow})
	set(EQ, operation{execute: opEq, minStack: 2, maxStack: stackLimit, tier: TierVeryLow})
	set(ISZERO, operation{execute: opIszero, minStack: 1, maxStack: stackLimit, tier: TierVeryLow})
	set(AND, operation{execute: opAnd, minStack: 2, maxStack: stackLimit, tier: TierVeryLow})
	set(OR, operation{execute: opOr, minStack: 2, maxStack: stackLimit, tier: TierVeryLow})
	set(XOR, operation{execute: opXor, minStack: 2, maxStack: stackLimit, tier: TierVeryLow})
	set(NOT, operation{execute: opNot, minStack: 1, maxStack: stackLimit, tier: TierVeryLow})
	set(BYTE, operation{execute: opByte, minStack: 2, maxStack: stackLimit, tier: TierVeryLow})

	set(SHA3, operation{execute: opSha3, dynamicGas: gasSha3WithBase, minStack: 2, maxStack: stackLimit, tier: TierZero, memorySize: memSizeBinary(0, 1)})

	set(ADDRESS, operation{execute: opAddress, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(BALANCE, operation{execute: opBalance, dynamicGas: gasBalance, minStack: 1, maxStack: stackLimit, tier: TierZero})
	set(ORIGIN, operation{execute: opOrigin, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(CALLER, operation{execute: opCaller, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(CALLVALUE, operation{execute: opCallValue, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(CALLDATALOAD, operation{execute: opCalldataLoad, minStack: 1, maxStack: stackLimit, tier: TierVeryLow})
	set(CALLDATASIZE, operation{execute: opCalldataSize, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(CALLDATACOPY, operation{execute: opCalldataCopy, dynamicGas: gasCopy(2), minStack: 3, maxStack: stackLimit, tier: TierVeryLow, memorySize: memSizeBinary(0, 2)})
	set(CODESIZE, operation{execute: opCodeSize, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(CODECOPY, operation{execute: opCodeCopy, dynamicGas: gasCopy(2), minStack: 3, maxStack: stackLimit, tier: TierVeryLow, memorySize: memSizeBinary(0, 2)})
	set(GASPRICE, operation{execute: opGasprice, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(EXTCODESIZE, operation{execute: opExtCodeSize, dynamicGas: gasExtCodeSize, minStack: 1, maxStack: stackLimit, tier: TierZero})
	set(EXTCODECOPY, operation{execute: opExtCodeCopy, dynamicGas: gasExtCodeCopy, minStack: 4, maxStack: stackLimit, tier: TierZero, memorySize: memSizeBinary(1, 3)})
	set(RETURNDATASIZE, operation{execute: opReturnDataSize, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(RETURNDATACOPY, operation{execute: opReturnDataCopy, dynamicGas: gasCopy(2), minStack: 3, maxStack: stackLimit, tier: TierVeryLow, memorySize: memSizeBinary(0, 2)})

	set(BLOCKHASH, operation{execute: opBlockhash, minStack: 1, maxStack: stackLimit, tier: TierExt})
	set(COINBASE, operation{execute: opCoinbase, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(TIMESTAMP, operation{execute: opTimestamp, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(NUMBER, operation{execute: opNumber, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(DIFFICULTY, operation{execute: opDifficulty, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(GASLIMIT, operation{execute: opGasLimit, minStack: 0, maxStack: stackLimit, tier: TierBase})

	set(POP, operation{execute: opPop, minStack: 1, maxStack: stackLimit, tier: TierBase})
	set(MLOAD, operation{execute: opMload, minStack: 1, maxStack: stackLimit, tier: TierVeryLow, memorySize: memSizeLoad(0)})
	set(MSTORE, operation{execute: opMstore, minStack: 2, maxStack: stackLimit, tier: TierVeryLow, memorySize: memSizeLoad(0)})
	set(MSTORE8, operation{execute: opMstore8, minStack: 2, maxStack: stackLimit, tier: TierVeryLow, memorySize: memSizeByte(0)})
	set(SLOAD, operation{execute: opSload, dynamicGas: gasSload, minStack: 1, maxStack: stackLimit, tier: TierZero})
	set(SSTORE, operation{execute: opSstore, dynamicGas: gasSstore, minStack: 2, maxStack: stackLimit, tier: TierZero, writes: true})
	set(JUMP, operation{execute: opJump, minStack: 1, maxStack: stackLimit, tier: TierMid, halts: true})
	set(JUMPI, operation{execute: opJumpi, minStack: 2, maxStack: stackLimit, tier: TierHigh, halts: true})
	set(PC, operation{execute: opPc, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(MSIZE, operation{execute: opMsize, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(GAS, operation{execute: opGas, minStack: 0, maxStack: stackLimit, tier: TierBase})
	set(JUMPDEST, operation{execute: opJumpdest, minStack: 0, maxStack: stackLimit, tier: TierSpecial})

	for i := 0; i < 32; i++ {
		n := i + 1
		set(PUSH1+OpCode(i), operation{execute: makePush(n), minStack: 0, maxStack: stackLimit - 1, tier: TierVeryLow})
	}
	for i := 0; i < 16; i++ {
		n := i + 1
		set(DUP1+OpCode(i), operation{execute: makeDup(n), minStack: n, maxStack: stackLimit - 1, tier: TierVeryLow})
	}
	for i := 0; i < 16; i++ {
		n := i + 1
		set(SWAP1+OpCode(i), operation{execute: makeSwap(n), minStack: n + 1, maxStack: stackLimit, tier: TierVeryLow})
	}
	for i := 0; i < 5; i++ {
		set(LOG0+OpCode(i), operation{execute: makeLog(i), dynamicGas: gasLog(i), minStack: 2 + i, maxStack: stackLimit, tier: TierZero, memorySize: memSizeBinary(0, 1), writes: true})
	}

	set(CREATE, operation{execute: opCreate, dynamicGas: gasCreate, minStack: 3, maxStack: stackLimit, tier: TierZero, memorySize: memSizeBinary(1, 2), writes: true})
	set(CALL, operation{execute: opCall, dynamicGas: gasCallValue, minStack: 7, maxStack: stackLimit, tier: TierZero, memorySize: memSizeCall(3, 4, 5, 6)})
	set(CALLCODE, operation{execute: opCallcode, dynamicGas: gasCallCodeValue, minStack: 7, maxStack: stackLimit, tier: TierZero, memorySize: memSizeCall(3, 4, 5, 6)})
	set(RETURN, operation{execute: opReturn, minStack: 2, maxStack: stackLimit, tier: TierZero, memorySize: memSizeBinary(0, 1), halts: true})
	set(DELEGATECALL, operation{execute: opDelegatecall, dynamicGas: gasCallNoValue, minStack: 6, maxStack: stackLimit, tier: TierZero, memorySize: memSizeCall(2, 3, 4, 5)})
	set(STATICCALL, operation{execute: opStaticcall, dynamicGas: gasCallNoValue, minStack: 6, maxStack: stackLimit, tier: TierZero, memorySize: memSizeCall(2, 3, 4, 5)})
	set(REVERT, operation{execute: opRevert, minStack: 2, maxStack: stackLimit, tier: TierZero, memorySize: memSizeBinary(0, 1), halts: true})
	set(INVALID, operation{execute: opInvalid, minStack: 0, maxStack: stackLimit, tier: TierZero})
	set(SUICIDE, operation{execute: opSuicide, minStack: 1, maxStack: stackLimit, tier: TierZero, writes: true, halts: true})

	return jt
}

// memSizeLoad covers MLOAD/MSTORE, which always touch exactly one word
// starting at the offset operand.
func memSizeLoad(offsetIdx int) func(*Stack) (uint64, bool) {
	return func(s *Stack) (uint64, bool) {
		return bigToMemSize(s.Peek(offsetIdx).BigInt(), big.NewInt(32))
	}
}

// memSizeByte covers MSTORE8, which touches exactly one byte.
func memSizeByte(offsetIdx int) func(*Stack) (uint64, bool) {
	return func(s *Stack) (uint64, bool) {
		return bigToMemSize(s.Peek(offsetIdx).BigInt(), big.NewInt(1))
	}
}

// gasSha3WithBase folds SHA3's fixed base cost into its per-word dynamic
// cost, since SHA3 has no separate tier entry.
func gasSha3WithBase(costs *DropCostSchedule, f *Frame, in *Interpreter) (uint64, error) {
	dyn, err := gasSha3(costs, f, in)
	if err != nil {
		return 0, err
	}
	return costs.SHA3 + dyn, nil
}
