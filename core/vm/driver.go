package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/thodyssey/dropvm/word"
)

// ExecuteRequest describes a top-level invocation handed to Execute
//, grounded on VM.java's play() entry point: construct a
// root Frame, drive it to completion, and surface a Result rather than a
// Go error for anything bytecode itself can trigger.
type ExecuteRequest struct {
	Code      []byte
	Owner     common.Address
	Caller    common.Address
	Origin    common.Address
	CallValue word.Word
	Input     []byte
	DropLimit uint64
	Static    bool
}

// Execute drives one top-level call through in to completion and returns
// its Result. Unlike Interpreter.Run, Execute never returns a Go error for
// a RuntimeException-class failure: a
// RuntimeError is folded into Result.RuntimeFailure, the frame's remaining
// drops are fully consumed, and its future refund is discarded, mirroring
// VM.java's play() catching RuntimeException and finalizing the program as
// failed rather than letting the exception escape.
//
// A HostFatal is not recovered here — a host-level invariant violation is
// not a normal frame failure and propagates to the caller of Execute as a
// Go error. Recovering HostFatal into a controlled process exit is
// cmd/dropvm's responsibility, not the interpreter's.
func Execute(in *Interpreter, req ExecuteRequest) (Result, error) {
	f := NewFrame(FrameConfig{
		Code:      req.Code,
		Owner:     req.Owner,
		Caller:    req.Caller,
		Origin:    req.Origin,
		CallValue: req.CallValue,
		Input:     req.Input,
		CallDepth: 0,
		DropLimit: req.DropLimit,
		Static:    req.Static,
		Costs:     in.costs,
	})
	return run(in, f, req.DropLimit)
}

// run drives the top-level frame f and finalizes it into a Result. Only
// Execute calls it; sub-frames are driven by runSubFrame in calls.go,
// which calls Interpreter.Run directly and settles failures itself.
func run(in *Interpreter, f *Frame, initialDropLimit uint64) (Result, error) {
	ret, err := in.Run(f)
	if err != nil {
		if hf, ok := err.(*HostFatal); ok {
			return Result{}, hf
		}
		f.RuntimeFailure = err
		f.ResetRefund()
		f.SpendAllDrops()
		f.Halted = true
		return f.Result(initialDropLimit), nil
	}
	f.ReturnData = ret
	return f.Result(initialDropLimit), nil
}
