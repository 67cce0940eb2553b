package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/ethereum/go-ethereum/crypto"
)

// destinations is the immutable set of valid JUMP/JUMPI targets for one
// contract's code, derived once by scanning the code and skipping PUSH
// immediates.
type destinations map[uint64]struct{}

func (d destinations) has(pc uint64) bool {
	_, ok := d[pc]
	return ok
}

// analyzeJumpDests scans code once, producing the set of positions i such
// that code[i] == JUMPDEST and i does not fall inside a PUSHk immediate
// range. The scan is linear in len(code).
func analyzeJumpDests(code []byte) destinations {
	dests := make(destinations)
	for pc := uint64(0); pc < uint64(len(code)); {
		op := OpCode(code[pc])
		if op == JUMPDEST {
			dests[pc] = struct{}{}
			pc++
			continue
		}
		if op.IsPush() {
			pc += uint64(op.PushSize()) + 1
			continue
		}
		pc++
	}
	return dests
}

// jumpdestCacheCapacity bounds the number of distinct code hashes whose
// analysis is memoized. Analysis results are small (a set of uint64 PCs)
// and contracts are commonly re-entered many times within a block, so a
// modest capacity amortizes the scan cost without holding unbounded
// memory.
const jumpdestCacheCapacity = 4096

// jumpdestCache memoizes analyzeJumpDests by code hash so that repeatedly
// invoked contracts (the common case: a hot token contract called many
// times across many frames) pay the linear scan once. This is pure
// memoization of an already-specified, side-effect-free analysis — it
// changes nothing about what D is, only how often it is recomputed — and
// is not the JIT/AOT compilation this interpreter explicitly does not do.
// It is backed by go-ethereum's common/lru.Cache, which is safe for
// concurrent use internally, rather than a hand-rolled cache.
var jumpdestCache = lru.NewCache[common.Hash, destinations](jumpdestCacheCapacity)

// jumpDestsFor returns the jump-destination set for code, consulting and
// populating jumpdestCache by the code's Keccak-256 hash.
func jumpDestsFor(code []byte) destinations {
	if len(code) == 0 {
		return destinations{}
	}
	hash := crypto.Keccak256Hash(code)
	if d, ok := jumpdestCache.Get(hash); ok {
		return d
	}
	d := analyzeJumpDests(code)
	jumpdestCache.Add(hash, d)
	return d
}
