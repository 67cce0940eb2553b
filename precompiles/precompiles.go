// Package precompiles implements the small set of host-provided contracts
// addressable by a reserved address. The
// interpreter core never imports this package — it only ever calls
// through vm.PrecompileRegistry — so a host can swap in a different
// registry (or none at all) without touching core/vm.
package precompiles

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/thodyssey/dropvm/core/vm"
)

// identity implements the 0x04 identity precompile: returns its input
// unchanged, priced per word like the CALL-family copy operations.
type identity struct{}

func (identity) Execute(input []byte, budget uint64) ([]byte, uint64, bool) {
	cost := uint64(15) + 3*toWordSize(uint64(len(input)))
	if cost > budget {
		return nil, budget, false
	}
	return input, cost, true
}

// sha256hash implements the 0x02 SHA-256 precompile.
type sha256hash struct{}

func (sha256hash) Execute(input []byte, budget uint64) ([]byte, uint64, bool) {
	cost := uint64(60) + 12*toWordSize(uint64(len(input)))
	if cost > budget {
		return nil, budget, false
	}
	sum := sha256.Sum256(input)
	return sum[:], cost, true
}

// ecrecover implements the 0x01 ECRECOVER precompile: recovers the
// signer's address from a (hash, v, r, s) tuple, or fails soft (success =
// false, no output) on a malformed or invalid signature — ECRECOVER never
// faults the calling frame, it simply returns nothing.
type ecrecover struct{}

func (ecrecover) Execute(input []byte, budget uint64) ([]byte, uint64, bool) {
	const cost = 3000
	if cost > budget {
		return nil, budget, false
	}
	var padded [128]byte
	copy(padded[:], input)

	hash := padded[:32]
	v := padded[63]
	sig := make([]byte, 65)
	copy(sig[:32], padded[64:96])
	copy(sig[32:64], padded[96:128])
	if v != 27 && v != 28 {
		return nil, cost, false
	}
	sig[64] = v - 27

	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return nil, cost, false
	}
	addr := crypto.PubkeyToAddress(*pub)
	var out [32]byte
	copy(out[12:], addr[:])
	return out[:], cost, true
}

func toWordSize(n uint64) uint64 { return (n + 31) / 32 }

// Registry is a fixed, address-keyed lookup table of precompiles.
type Registry struct {
	contracts map[common.Address]vm.PrecompiledContract
}

// NewFrontierRegistry returns the frontier-era precompile set: ECRECOVER,
// SHA256, and identity at their conventional low addresses.
func NewFrontierRegistry() *Registry {
	return &Registry{
		contracts: map[common.Address]vm.PrecompiledContract{
			addressAt(1): ecrecover{},
			addressAt(2): sha256hash{},
			addressAt(4): identity{},
		},
	}
}

func (r *Registry) Lookup(addr common.Address) (vm.PrecompiledContract, bool) {
	c, ok := r.contracts[addr]
	return c, ok
}

func addressAt(n uint64) common.Address {
	var b [20]byte
	binary.BigEndian.PutUint64(b[12:], n)
	return common.Address(b)
}
