package vm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/thodyssey/dropvm/word"
)

var testTarget = common.HexToAddress("0x3333333333333333333333333333333333333333")

// CALL to a contract that just returns its own ADDRESS word; verifies the
// sub-frame runs with the target's code, that value is transferred, and
// that the caller's stack receives success=1 plus the copied return data.
func TestCallSuccessTransfersValueAndReturnsData(t *testing.T) {
	targetCode := []byte{
		byte(ADDRESS),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}

	in, db := newTestInterpreter()
	db.CreateAccount(testTarget, targetCode)
	db.AddBalance(testOwner, word.FromUint64(1000))

	// PUSH target, value, inOffset, inSize, outOffset, outSize in the
	// stack order CALL expects: gas, addr, value, inOff, inSize, outOff, outSize.
	code := []byte{
		byte(PUSH1), 0x20, // outSize
		byte(PUSH1), 0x00, // outOffset
		byte(PUSH1), 0x00, // inSize
		byte(PUSH1), 0x00, // inOffset
		byte(PUSH1), 0x0a, // value
	}
	code = append(code, pushAddress(testTarget)...)
	code = append(code, byte(PUSH1), 0xff, byte(CALL))
	// Store CALL's success flag after the copied return word; return both.
	code = append(code, byte(PUSH1), 0x20, byte(MSTORE))
	code = append(code, byte(PUSH1), 0x40, byte(PUSH1), 0x00, byte(RETURN))

	res := runCode(in, code, 1_000_000, false)
	if !res.Halted || res.Reverted || res.RuntimeFailure != nil {
		t.Fatalf("expected clean halt, got %+v", res)
	}
	if len(res.ReturnData) != 64 {
		t.Fatalf("expected 64 return bytes, got %d", len(res.ReturnData))
	}
	if got := common.BytesToAddress(res.ReturnData[12:32]); got != testTarget {
		t.Fatalf("expected the sub-call's ADDRESS word %s copied into memory, got %s", testTarget, got)
	}
	if res.ReturnData[63] != 1 {
		t.Fatalf("expected CALL success flag 1, got return data %x", res.ReturnData)
	}
	if db.GetBalance(testOwner).Uint64() != 990 {
		t.Fatalf("expected owner balance 990 after transferring 10, got %d", db.GetBalance(testOwner).Uint64())
	}
	if db.GetBalance(testTarget).Uint64() != 10 {
		t.Fatalf("expected target balance 10, got %d", db.GetBalance(testTarget).Uint64())
	}
}

// A REVERT inside the sub-frame must undo the value transfer that preceded
// it, not just the sub-frame's own storage writes.
func TestCallRevertUndoesValueTransfer(t *testing.T) {
	targetCode := []byte{
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(REVERT),
	}
	in, db := newTestInterpreter()
	db.CreateAccount(testTarget, targetCode)
	db.AddBalance(testOwner, word.FromUint64(1000))

	code := []byte{
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x0a,
	}
	code = append(code, pushAddress(testTarget)...)
	code = append(code, byte(PUSH1), 0xff, byte(CALL))
	code = append(code, byte(STOP))

	res := runCode(in, code, 1_000_000, false)
	if !res.Halted || res.Reverted {
		t.Fatalf("expected clean outer halt (CALL failure is soft), got %+v", res)
	}
	if db.GetBalance(testOwner).Uint64() != 1000 {
		t.Fatalf("expected value transfer rolled back, owner balance = %d", db.GetBalance(testOwner).Uint64())
	}
	if db.GetBalance(testTarget).Uint64() != 0 {
		t.Fatalf("expected target balance untouched, got %d", db.GetBalance(testTarget).Uint64())
	}
}

// CALL with insufficient balance must fail soft (push 0) without
// attempting any transfer or sub-execution.
func TestCallInsufficientBalancePushesZero(t *testing.T) {
	in, db := newTestInterpreter()
	db.CreateAccount(testTarget, []byte{byte(STOP)})
	// owner has zero balance by default

	code := []byte{
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x0a,
	}
	code = append(code, pushAddress(testTarget)...)
	code = append(code, byte(PUSH1), 0xff, byte(CALL))
	code = append(code, byte(PUSH1), 0x00, byte(MSTORE))
	code = append(code, byte(PUSH1), 0x20, byte(PUSH1), 0x00, byte(RETURN))

	res := runCode(in, code, 1_000_000, false)
	if !res.Halted || res.Reverted || res.RuntimeFailure != nil {
		t.Fatalf("expected clean halt, got %+v", res)
	}
	if res.ReturnData[31] != 0 {
		t.Fatalf("expected CALL success flag 0 on the stack, got return word %x", res.ReturnData)
	}
}

// DELEGATECALL must run the target's code in the caller frame's own
// storage/owner context, carrying the outer frame's value and caller
// verbatim.
func TestDelegatecallInheritsOwnerAndValue(t *testing.T) {
	targetCode := []byte{
		byte(PUSH1), 0x2a,
		byte(PUSH1), 0x00,
		byte(SSTORE),
		byte(STOP),
	}
	in, db := newTestInterpreter()
	db.CreateAccount(testTarget, targetCode)

	code := []byte{
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
	}
	code = append(code, pushAddress(testTarget)...)
	// gas = 0xffff: enough for the delegated SSTORE's SetSSTORE cost.
	code = append(code, byte(PUSH1+1), 0xff, 0xff, byte(DELEGATECALL))
	code = append(code, byte(STOP))

	res := runCode(in, code, 1_000_000, false)
	if !res.Halted || res.Reverted || res.RuntimeFailure != nil {
		t.Fatalf("expected clean halt, got %+v", res)
	}
	if db.GetState(testOwner, word.Zero()).Uint64() != 0x2a {
		t.Fatalf("expected DELEGATECALL's SSTORE to land in the caller's own storage, got %v",
			db.GetState(testOwner, word.Zero()))
	}
	if !db.GetState(testTarget, word.Zero()).IsZero() {
		t.Fatalf("DELEGATECALL must not touch the target's own storage")
	}
}

// STATICCALL into code that attempts SSTORE must fail soft, not escape as
// a fatal failure of the calling frame.
func TestStaticcallIntoWritingCodeFailsSoft(t *testing.T) {
	targetCode := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(SSTORE),
	}
	in, db := newTestInterpreter()
	db.CreateAccount(testTarget, targetCode)

	code := []byte{
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
	}
	code = append(code, pushAddress(testTarget)...)
	code = append(code, byte(PUSH1), 0xff, byte(STATICCALL))
	code = append(code, byte(PUSH1), 0x00, byte(MSTORE))
	code = append(code, byte(PUSH1), 0x20, byte(PUSH1), 0x00, byte(RETURN))

	res := runCode(in, code, 1_000_000, false)
	if !res.Halted || res.Reverted || res.RuntimeFailure != nil {
		t.Fatalf("expected the outer frame to halt cleanly, got %+v", res)
	}
	if res.ReturnData[31] != 0 {
		t.Fatalf("expected STATICCALL success flag 0, got %x", res.ReturnData)
	}
}

// CREATE deploys init code that returns a small runtime body; the new
// account ends up with that body as its code, and the deployer's nonce is
// consumed exactly once.
func TestCreateDeploysReturnedCode(t *testing.T) {
	runtimeByte := byte(STOP)
	initCode := []byte{
		byte(PUSH1), runtimeByte,
		byte(PUSH1), 0x00,
		byte(MSTORE8),
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}

	in, db := newTestInterpreter()
	db.AddBalance(testOwner, word.FromUint64(100))

	// Build init code into memory byte-by-byte via repeated MSTORE8, then CREATE.
	var build []byte
	for i, b := range initCode {
		build = append(build, byte(PUSH1), b, byte(PUSH1), byte(i), byte(MSTORE8))
	}
	build = append(build,
		byte(PUSH1), byte(len(initCode)), // size
		byte(PUSH1), 0x00, // offset
		byte(PUSH1), 0x00, // value
		byte(CREATE),
		byte(STOP),
	)

	nonceBefore := db.GetNonce(testOwner)
	res := runCode(in, build, 1_000_000, false)
	if !res.Halted || res.Reverted || res.RuntimeFailure != nil {
		t.Fatalf("expected clean halt, got %+v", res)
	}
	if db.GetNonce(testOwner) != nonceBefore+1 {
		t.Fatalf("expected deployer nonce incremented exactly once, got %d -> %d", nonceBefore, db.GetNonce(testOwner))
	}
}

// A DELEGATECALL made from a frame that itself carries non-zero call
// value must not inherit a stipend from that value: the stipend decision
// is keyed on the call kind and the popped value operand, never on the
// value DELEGATECALL copies into CallValue for the CALLVALUE opcode's
// benefit. Requesting zero gas for the delegated call and giving the
// delegated code a few cheap opcodes to run distinguishes the two cases
// directly: with no stipend the sub-frame has zero drops and fails
// immediately, with an (incorrect) stipend it has 2300 and succeeds.
func TestDelegatecallFromValueBearingFrameGrantsNoStipend(t *testing.T) {
	workerCode := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	workerAddr := common.HexToAddress("0x4444444444444444444444444444444444444444")

	middleCode := []byte{
		byte(PUSH1), 0x00, // outSize
		byte(PUSH1), 0x00, // outOffset
		byte(PUSH1), 0x00, // inSize
		byte(PUSH1), 0x00, // inOffset
	}
	middleCode = append(middleCode, pushAddress(workerAddr)...)
	middleCode = append(middleCode, byte(PUSH1), 0x00, byte(DELEGATECALL)) // gas = 0
	middleCode = append(middleCode, byte(PUSH1), 0x00, byte(MSTORE))
	middleCode = append(middleCode, byte(PUSH1), 0x20, byte(PUSH1), 0x00, byte(RETURN))

	in, db := newTestInterpreter()
	db.CreateAccount(workerAddr, workerCode)
	db.CreateAccount(testTarget, middleCode)
	db.AddBalance(testOwner, word.FromUint64(1000))

	outerCode := []byte{
		byte(PUSH1), 0x20, // outSize
		byte(PUSH1), 0x00, // outOffset
		byte(PUSH1), 0x00, // inSize
		byte(PUSH1), 0x00, // inOffset
		byte(PUSH1), 0x0a, // value
	}
	outerCode = append(outerCode, pushAddress(testTarget)...)
	outerCode = append(outerCode, byte(PUSH1), 0xff, byte(CALL))
	outerCode = append(outerCode, byte(PUSH1), 0x20, byte(PUSH1), 0x00, byte(RETURN))

	res := runCode(in, outerCode, 1_000_000, false)
	if !res.Halted || res.Reverted || res.RuntimeFailure != nil {
		t.Fatalf("expected clean halt, got %+v", res)
	}
	if res.ReturnData[31] != 0 {
		t.Fatalf("expected the zero-gas DELEGATECALL to fail for want of a stipend, got success flag %x", res.ReturnData)
	}
}

// CALL to a non-existent account prices its base cost as NewAcctCall
// outright, not CALL plus NewAcctCall. With both constants set to 40 in
// the default schedule, the two computations are distinguishable only by
// total drops spent: 61 if replaced correctly, 101 if added in error.
func TestCallToNonExistentAccountPricesNewAcctCallOnce(t *testing.T) {
	in, _ := newTestInterpreter()
	// testTarget is never created, so it does not exist.
	code := []byte{
		byte(PUSH1), 0x00, // outSize
		byte(PUSH1), 0x00, // outOffset
		byte(PUSH1), 0x00, // inSize
		byte(PUSH1), 0x00, // inOffset
		byte(PUSH1), 0x00, // value
	}
	code = append(code, pushAddress(testTarget)...)
	code = append(code, byte(PUSH1), 0xff, byte(CALL))
	code = append(code, byte(STOP))

	res := runCode(in, code, 1_000_000, false)
	if !res.Halted || res.Reverted || res.RuntimeFailure != nil {
		t.Fatalf("expected clean halt, got %+v", res)
	}
	want := uint64(7*DefaultDropCosts.TierCost[TierVeryLow] + DefaultDropCosts.NewAcctCall)
	if res.DropsUsed != want {
		t.Fatalf("expected dropsUsed=%d (7 pushes + NewAcctCall once), got %d", want, res.DropsUsed)
	}
}

// pushAddress emits PUSH20 <addr>, the canonical way to get a 20-byte
// address onto the stack for a CALL-family target operand.
func pushAddress(addr common.Address) []byte {
	out := []byte{byte(PUSH1 + 19)} // PUSH20
	return append(out, addr[:]...)
}
