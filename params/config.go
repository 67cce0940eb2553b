// Package params holds the chain-level configuration the interpreter core
// is parameterized over — which drop cost schedule to charge and which
// post-frontier opcodes are enabled — without the core itself ever
// depending on a specific chain's parameters.
package params

import "github.com/thodyssey/dropvm/core/vm"

// ChainConfig is adapted from `sunny2022da-bsc/params/system_contracts.go`,
// which held a flat BSC-specific address allowlist; that content does not
// survive here since this interpreter has no notion of privileged system
// contracts, but the file's role — small, chain-specific constants the
// interpreter core never hardcodes — does. A single DropCostSchedule
// value is resolved once per chain and handed to NewInterpreter; the
// schedule itself never varies mid-execution.
type ChainConfig struct {
	ChainID   uint64
	DropCosts vm.DropCostSchedule

	// EnableDelegateCall, EnableRevert, EnableReturnData and
	// EnableStaticCall gate the post-frontier opcodes DELEGATECALL,
	// REVERT, RETURNDATASIZE/RETURNDATACOPY and STATICCALL respectively.
	// A chain config pinned to frontier proper would clear all four; the
	// default leaves every opcode this interpreter implements enabled.
	EnableDelegateCall bool
	EnableRevert       bool
	EnableReturnData   bool
	EnableStaticCall   bool
}

// DefaultChainConfig returns the frontier-era configuration, matching
// vm.DefaultDropCosts, with every later opcode this interpreter
// implements enabled.
func DefaultChainConfig() *ChainConfig {
	return &ChainConfig{
		ChainID:            1,
		DropCosts:          vm.DefaultDropCosts,
		EnableDelegateCall: true,
		EnableRevert:       true,
		EnableReturnData:   true,
		EnableStaticCall:   true,
	}
}

// InterpreterConfig adapts c's opcode-enablement flags into the
// vm.InterpreterConfig.DisableXxx fields the core actually consults.
func (c *ChainConfig) InterpreterConfig() vm.InterpreterConfig {
	return vm.InterpreterConfig{
		Costs:               &c.DropCosts,
		DisableDelegateCall: !c.EnableDelegateCall,
		DisableRevert:       !c.EnableRevert,
		DisableReturnData:   !c.EnableReturnData,
		DisableStaticCall:   !c.EnableStaticCall,
	}
}
