package vm

import "testing"

func TestExecuteReturnsCleanResultForStop(t *testing.T) {
	in, _ := newTestInterpreter()
	res, err := Execute(in, ExecuteRequest{
		Code:      []byte{byte(STOP)},
		Owner:     testOwner,
		Caller:    testCaller,
		Origin:    testCaller,
		DropLimit: 1000,
	})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !res.Halted || res.Reverted || res.RuntimeFailure != nil {
		t.Fatalf("expected a clean halt, got %+v", res)
	}
	if res.DropsUsed != 0 {
		t.Fatalf("STOP costs nothing, expected dropsUsed 0, got %d", res.DropsUsed)
	}
}

// Execute folds a RuntimeException-class failure into Result rather than
// returning a Go error.
func TestExecuteFoldsRuntimeFailureIntoResult(t *testing.T) {
	in, _ := newTestInterpreter()
	res, err := Execute(in, ExecuteRequest{
		Code:      []byte{byte(ADD)}, // stack underflow
		Owner:     testOwner,
		Caller:    testCaller,
		Origin:    testCaller,
		DropLimit: 1000,
	})
	if err != nil {
		t.Fatalf("expected no Go error for a RuntimeException-class failure, got %v", err)
	}
	if res.RuntimeFailure == nil {
		t.Fatalf("expected a populated RuntimeFailure")
	}
	if res.DropsUsed != 1000 {
		t.Fatalf("expected all drops spent on failure, got dropsUsed=%d", res.DropsUsed)
	}
}

// A HostFatal must propagate out of Execute as a genuine Go error, never
// folded into Result. Nothing in the
// opcode set raises one under normal operation, so this test wires a
// fault-injecting opcode handler directly onto a copy of the jump table to
// exercise the propagation path itself.
func TestExecutePropagatesHostFatal(t *testing.T) {
	jt := defaultJumpTable
	const faultOp = OpCode(0x0c) // unassigned in the real table
	jt[faultOp] = operation{
		execute: func(f *Frame, in *Interpreter) ([]byte, error) {
			return nil, &HostFatal{Reason: "simulated host invariant violation"}
		},
		minStack: 0,
		maxStack: stackLimit,
		valid:    true,
	}

	db := newTestStateDB()
	in := &Interpreter{jt: jt, costs: &DefaultDropCosts, state: db, block: testBlock{}}

	res, err := Execute(in, ExecuteRequest{
		Code:      []byte{byte(faultOp)},
		Owner:     testOwner,
		Caller:    testCaller,
		Origin:    testCaller,
		DropLimit: 1000,
	})
	if err == nil {
		t.Fatalf("expected a Go error for a HostFatal, got none (res=%+v)", res)
	}
	if _, ok := err.(*HostFatal); !ok {
		t.Fatalf("expected *HostFatal, got %T: %v", err, err)
	}
}
