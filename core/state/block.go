package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/thodyssey/dropvm/word"
)

// StaticBlock is a fixed, non-chain-backed vm.BlockContext — everything a
// CLI run or a unit test needs to hand the interpreter is known up front,
// so there is no lookup to perform.
type StaticBlock struct {
	Hashes    map[uint64]word.Word
	coinbase  common.Address
	timestamp uint64
	number    uint64
	diff      word.Word
	gasLimit  uint64
}

// NewStaticBlock returns a StaticBlock with the given header fields and an
// empty Hashes map, which callers fill in directly.
func NewStaticBlock(coinbase common.Address, timestamp, number uint64, diff word.Word, gasLimit uint64) *StaticBlock {
	return &StaticBlock{
		Hashes:    make(map[uint64]word.Word),
		coinbase:  coinbase,
		timestamp: timestamp,
		number:    number,
		diff:      diff,
		gasLimit:  gasLimit,
	}
}

func (b *StaticBlock) BlockHash(n uint64) word.Word { return b.Hashes[n] }
func (b *StaticBlock) Coinbase() common.Address     { return b.coinbase }
func (b *StaticBlock) Timestamp() uint64            { return b.timestamp }
func (b *StaticBlock) Number() uint64               { return b.number }
func (b *StaticBlock) Difficulty() word.Word        { return b.diff }
func (b *StaticBlock) GasLimit() uint64             { return b.gasLimit }
