package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/thodyssey/dropvm/word"
)

// StateDB is the persistent world-state oracle the core consumes; the
// core only ever calls through this interface. A single StateDB is
// expected to provide snapshot isolation for the lifetime of
// a top-level frame; sub-frames commit into it directly and
// rely on Snapshot/RevertToSnapshot for atomic discard on revert.
type StateDB interface {
	GetBalance(addr common.Address) word.Word
	AddBalance(addr common.Address, amount word.Word)
	SubBalance(addr common.Address, amount word.Word)

	GetCode(addr common.Address) []byte
	GetCodeSize(addr common.Address) int
	GetCodeHash(addr common.Address) common.Hash
	SetCode(addr common.Address, code []byte)

	GetNonce(addr common.Address) uint64
	SetNonce(addr common.Address, nonce uint64)

	// GetState returns the zero Word if key is absent.
	GetState(addr common.Address, key word.Word) word.Word
	// GetCommittedState returns the value a slot held at the start of the
	// enclosing top-level frame, used for SSTORE refund accounting.
	GetCommittedState(addr common.Address, key word.Word) word.Word
	SetState(addr common.Address, key, value word.Word)

	CreateAccount(addr common.Address, code []byte)
	Exists(addr common.Address) bool

	Suicide(addr common.Address, beneficiary common.Address)
	HasSuicided(addr common.Address) bool

	Snapshot() int
	RevertToSnapshot(id int)
}

// BlockContext is the block/header oracle the core consumes.
type BlockContext interface {
	BlockHash(n uint64) word.Word
	Coinbase() common.Address
	Timestamp() uint64
	Number() uint64
	Difficulty() word.Word
	GasLimit() uint64
}

// PrecompiledContract is a host-provided function invoked by calling a
// reserved address, bypassing bytecode interpretation.
type PrecompiledContract interface {
	Execute(input []byte, budget uint64) (output []byte, dropsUsed uint64, success bool)
}

// PrecompileRegistry resolves an address to a precompile, if any.
type PrecompileRegistry interface {
	Lookup(addr common.Address) (PrecompiledContract, bool)
}

// Tracer is an optional per-step sink. A nil Tracer disables
// tracing entirely; the interpreter never allocates hint strings or stack
// snapshots when no Tracer is attached (SPEC_FULL.md §11.1).
type Tracer interface {
	CaptureStep(pc uint64, op OpCode, dropsLeft uint64, stack *Stack, memSize int, hint string)
}

// LogInfo is a single LOGn record. It intentionally does
// not reuse go-ethereum's core/types.Log, which is tied to block/receipt
// encoding that is out of scope here (SPEC_FULL.md §10).
type LogInfo struct {
	Address common.Address
	Topics  []word.Word
	Data    []byte
}
