package vm

import "math/big"

// DropCostSchedule names every priced constant referenced by the
// interpreter. A single package-level instance,
// DefaultDropCosts, is used unless a Frame is constructed with an
// alternate schedule — this is the hook the Config in §9 of SPEC_FULL.md
// calls out for per-fork cost tables, without actually varying the
// schedule at runtime (no adaptive gas schedules, per Non-goals).
type DropCostSchedule struct {
	// Tier base costs, indexed by Tier.
	TierCost [8]uint64

	STOP    uint64
	SUICIDE uint64

	SetSSTORE    uint64
	ResetSSTORE  uint64
	ClearSSTORE  uint64
	RefundSSTORE uint64

	SLOAD   uint64
	BALANCE uint64

	CALL         uint64
	NewAcctCall  uint64
	VTCall       uint64
	StipendCall  uint64

	CREATE uint64

	SHA3     uint64
	SHA3Word uint64

	EXP     uint64
	ExpByte uint64

	LOG      uint64
	LogTopic uint64
	LogData  uint64

	ExtCodeSize uint64
	ExtCodeCopy uint64

	Memory uint64
	Copy   uint64

	QuadCoeffDiv uint64
}

// DefaultDropCosts is the frontier-era cost schedule, grounded on the
// constants VM.java reads from DropCost.getInstance()
// (org.tron.common.runtime.vm.DropCost) and on go-ethereum's equivalent
// params.*Gas constants for the pre-EIP-150/2929 fee schedule.
var DefaultDropCosts = DropCostSchedule{
	TierCost: [8]uint64{
		TierZero:    0,
		TierBase:    2,
		TierVeryLow: 3,
		TierLow:     5,
		TierMid:     8,
		TierHigh:    10,
		TierExt:     20,
		TierSpecial: 0,
	},

	STOP:    0,
	SUICIDE: 0,

	SetSSTORE:    20000,
	ResetSSTORE:  5000,
	ClearSSTORE:  5000,
	RefundSSTORE: 15000,

	SLOAD:   50,
	BALANCE: 20,

	CALL:        40,
	NewAcctCall: 40,
	VTCall:      9000,
	StipendCall: 2300,

	CREATE: 32000,

	SHA3:     30,
	SHA3Word: 6,

	EXP:     10,
	ExpByte: 10,

	LOG:      375,
	LogTopic: 375,
	LogData:  8,

	ExtCodeSize: 20,
	ExtCodeCopy: 20,

	Memory: 3,
	Copy:   3,

	QuadCoeffDiv: 512,
}

// maxMemSize bounds the integer arithmetic performed while pricing memory
// expansion.
const maxMemSize = (1 << 31) - 1

// need computes offset+size unless size is zero, in which case the result
// is zero regardless of offset.
func need(offset, size *big.Int) *big.Int {
	if size.Sign() == 0 {
		return new(big.Int)
	}
	return new(big.Int).Add(offset, size)
}

// toWordSize rounds byte count up to the next multiple of 32, in words.
func toWordSize(size uint64) uint64 { return (size + 31) / 32 }

// memExp computes the drop cost of expanding memory from oldSize bytes to
// cover newNeed bytes (already rounded up to a word boundary internally),
// plus an optional per-word copy surcharge.
func (s *DropCostSchedule) memExp(oldSize uint64, newNeed *big.Int, copySize uint64) (uint64, error) {
	if newNeed.Sign() == 0 {
		if copySize == 0 {
			return 0, nil
		}
		return s.Copy * toWordSize(copySize), nil
	}
	if newNeed.Cmp(big.NewInt(maxMemSize)) > 0 {
		return 0, ErrMemoryOverflow
	}
	newSize := (newNeed.Uint64() + 31) / 32 * 32

	var cost uint64
	if newSize > oldSize {
		wNew := newSize / 32
		wOld := oldSize / 32
		feeNew := s.Memory*wNew + wNew*wNew/s.QuadCoeffDiv
		feeOld := s.Memory*wOld + wOld*wOld/s.QuadCoeffDiv
		cost = feeNew - feeOld
	}
	if copySize > 0 {
		cost += s.Copy * toWordSize(copySize)
	}
	return cost, nil
}
