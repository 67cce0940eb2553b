// Package word implements the 256-bit value type that is the universal
// stack, memory-word, and storage-slot element of the interpreter.
//
// Word is a thin value-type wrapper around github.com/holiman/uint256.Int.
// It is deliberately a struct (not a pointer) so that copying a Word —
// pushing it onto a Stack, returning it from a method — copies its bits.
// Arithmetic methods take a pointer receiver and mutate in place, mirroring
// the VM.java source's "pop two words, mutate the first in place, push it
// back" discipline, while callers that need an independent copy use Clone.
package word

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Word is a 256-bit unsigned integer with two's-complement signed views.
type Word struct {
	u uint256.Int
}

// Zero is the additive identity. Callers must not mutate the returned Word
// in place without first cloning it — use Zero() as a fresh value each time.
func Zero() Word { return Word{} }

// One returns the Word with value 1.
func One() Word {
	var w Word
	w.u.SetOne()
	return w
}

// FromUint64 constructs a Word from a uint64.
func FromUint64(v uint64) Word {
	var w Word
	w.u.SetUint64(v)
	return w
}

// FromBig constructs a Word from an arbitrary-precision integer, reducing
// modulo 2^256 and discarding the sign (matching EVM PUSH semantics for
// out-of-range literals, which never occur for well-formed bytecode but
// are useful for test fixtures).
func FromBig(v *big.Int) Word {
	var w Word
	w.u.SetFromBig(new(big.Int).Mod(v, twoTo256))
	return w
}

// FromBytes constructs a Word from a big-endian byte slice, left-padding
// with zero bytes if shorter than 32 and truncating (taking the low-order
// 32 bytes) if longer.
func FromBytes(b []byte) Word {
	var w Word
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	w.u.SetBytes(b)
	return w
}

// FromAddress zero-extends a 20-byte address into the low-order bytes of
// a Word, matching how ADDRESS/CALLER/ORIGIN/COINBASE are pushed.
func FromAddress(addr common.Address) Word {
	var w Word
	w.u.SetBytes(addr[:])
	return w
}

var twoTo256 = new(big.Int).Lsh(big.NewInt(1), 256)

// Clone returns an independent copy of w.
func (w Word) Clone() Word {
	var out Word
	out.u.Set(&w.u)
	return out
}

// Set overwrites w's value with other's, returning w for chaining.
func (w *Word) Set(other Word) *Word {
	w.u.Set(&other.u)
	return w
}

// --- arithmetic (modulo 2^256, unsigned) ---

func (w *Word) Add(other *Word) *Word { w.u.Add(&w.u, &other.u); return w }
func (w *Word) Sub(other *Word) *Word { w.u.Sub(&w.u, &other.u); return w }
func (w *Word) Mul(other *Word) *Word { w.u.Mul(&w.u, &other.u); return w }

// Div performs unsigned integer division. Division by zero yields zero,
// per contract.
func (w *Word) Div(other *Word) *Word { w.u.Div(&w.u, &other.u); return w }

// SDiv performs two's-complement signed division. Division by zero yields
// zero per contract; the overflowing MinInt256 / -1 wraps to MinInt256.
func (w *Word) SDiv(other *Word) *Word { w.u.SDiv(&w.u, &other.u); return w }

// Mod performs unsigned remainder. Modulus zero yields zero.
func (w *Word) Mod(other *Word) *Word { w.u.Mod(&w.u, &other.u); return w }

// SMod performs signed remainder. Modulus zero yields zero.
func (w *Word) SMod(other *Word) *Word { w.u.SMod(&w.u, &other.u); return w }

// AddMod computes (w + other) mod m. If m is zero the result is zero.
func (w *Word) AddMod(other, m *Word) *Word { w.u.AddMod(&w.u, &other.u, &m.u); return w }

// MulMod computes (w * other) mod m. If m is zero the result is zero.
func (w *Word) MulMod(other, m *Word) *Word { w.u.MulMod(&w.u, &other.u, &m.u); return w }

// Exp raises w to the power of other, modulo 2^256.
func (w *Word) Exp(other *Word) *Word { w.u.Exp(&w.u, &other.u); return w }

// --- bitwise ---

func (w *Word) And(other *Word) *Word { w.u.And(&w.u, &other.u); return w }
func (w *Word) Or(other *Word) *Word  { w.u.Or(&w.u, &other.u); return w }
func (w *Word) Xor(other *Word) *Word { w.u.Xor(&w.u, &other.u); return w }
func (w *Word) Not() *Word            { w.u.Not(&w.u); return w }

// Shl sets w = w << n (logical shift left).
func (w *Word) Shl(n uint) *Word { w.u.Lsh(&w.u, n); return w }

// Shr sets w = w >> n (logical shift right, zero-filled).
func (w *Word) Shr(n uint) *Word { w.u.Rsh(&w.u, n); return w }

// Sar sets w = w >> n (arithmetic shift right, sign-extended).
func (w *Word) Sar(n uint) *Word { w.u.SRsh(&w.u, n); return w }

// SignExtend sign-extends w treating it as a (k+1)-byte two's-complement
// value (bit 8k+7 is the sign bit). If k >= 32 the value is unchanged.
func (w *Word) SignExtend(k *Word) *Word { w.u.ExtendSign(&w.u, &k.u); return w }

// Byte returns, as a new Word, the i-th big-endian byte of w placed in
// the low-order position; all other bytes are zero. If i >= 32 the result
// is zero.
func (w Word) Byte(i *Word) Word {
	out := w.Clone()
	out.u.Byte(&i.u)
	return out
}

// --- comparisons ---

func (w Word) Lt(other Word) bool  { return w.u.Lt(&other.u) }
func (w Word) Gt(other Word) bool  { return w.u.Gt(&other.u) }
func (w Word) Slt(other Word) bool { return w.u.Slt(&other.u) }
func (w Word) Sgt(other Word) bool { return w.u.Sgt(&other.u) }
func (w Word) Eq(other Word) bool  { return w.u.Eq(&other.u) }
func (w Word) IsZero() bool        { return w.u.IsZero() }

// --- conversions ---

// Uint64 returns the low 64 bits of w, discarding any higher bits.
func (w Word) Uint64() uint64 { return w.u.Uint64() }

// Uint64WithOverflow returns the low 64 bits of w and whether any of the
// higher 192 bits are set.
func (w Word) Uint64WithOverflow() (uint64, bool) { return w.u.Uint64WithOverflow() }

// BigInt returns w as an arbitrary-precision unsigned integer.
func (w Word) BigInt() *big.Int { return w.u.ToBig() }

// Bytes32 returns w as a 32-byte big-endian array.
func (w Word) Bytes32() [32]byte { return w.u.Bytes32() }

// SetBytes32 overwrites w from a 32-byte big-endian array.
func (w *Word) SetBytes32(b [32]byte) *Word { w.u.SetBytes32(b[:]); return w }

// Bytes returns w as a big-endian byte slice with no leading zero bytes
// (the zero value returns an empty slice).
func (w Word) Bytes() []byte { return w.u.Bytes() }

// Address returns the low-order 20 bytes of w, matching the EVM's
// convention for addresses stored in a stack word.
func (w Word) Address() common.Address {
	b := w.u.Bytes20()
	return common.Address(b)
}

// BytesOccupied returns the number of significant (non-zero-prefix) bytes
// in w's big-endian representation; zero for the zero Word.
func (w Word) BytesOccupied() int {
	bits := w.u.BitLen()
	if bits == 0 {
		return 0
	}
	return (bits + 7) / 8
}

// String renders w as a 0x-prefixed hexadecimal string.
func (w Word) String() string { return w.u.Hex() }
