package vm

import "github.com/thodyssey/dropvm/word"

// Memory is the Frame's byte-addressable volatile memory. It starts at
// length 0 and grows only in 32-byte words; growth is always
// priced before it happens (memExp in gas.go) so Memory itself performs
// no pricing — it only ever grows to a size the caller has already paid
// for.
type Memory struct {
	store []byte
}

func newMemory() *Memory { return &Memory{} }

// Len returns the current byte length, always a multiple of 32.
func (m *Memory) Len() int { return len(m.store) }

// resize grows the backing store to exactly size bytes (size must already
// be word-aligned); it is a no-op if the memory is already at least that
// large, preserving the monotonic-non-decreasing invariant.
func (m *Memory) resize(size uint64) {
	if uint64(len(m.store)) >= size {
		return
	}
	grown := make([]byte, size)
	copy(grown, m.store)
	m.store = grown
}

// Set writes data at offset, expanding memory first if necessary. Callers
// must have already priced the expansion.
func (m *Memory) Set(offset uint64, data []byte) {
	if len(data) == 0 {
		return
	}
	end := offset + uint64(len(data))
	if end > uint64(len(m.store)) {
		m.resize(roundUpTo32(end))
	}
	copy(m.store[offset:end], data)
}

// Set32 writes a single Word at offset (MSTORE).
func (m *Memory) Set32(offset uint64, w word.Word) {
	end := offset + 32
	if end > uint64(len(m.store)) {
		m.resize(roundUpTo32(end))
	}
	b := w.Bytes32()
	copy(m.store[offset:end], b[:])
}

// Set8 writes the low-order byte of w at offset (MSTORE8).
func (m *Memory) Set8(offset uint64, w word.Word) {
	end := offset + 1
	if end > uint64(len(m.store)) {
		m.resize(roundUpTo32(end))
	}
	b := w.Bytes32()
	m.store[offset] = b[31]
}

// Get returns a copy of the len bytes at offset. If the requested window
// extends past the current memory, the result is zero-padded rather than
// erroring — callers are expected to have already priced the expansion
// that would cover the window; Get never itself grows memory.
func (m *Memory) Get(offset, length uint64) []byte {
	if length == 0 {
		return []byte{}
	}
	out := make([]byte, length)
	if offset >= uint64(len(m.store)) {
		return out
	}
	end := offset + length
	if end > uint64(len(m.store)) {
		end = uint64(len(m.store))
	}
	copy(out, m.store[offset:end])
	return out
}

// GetPtr returns a slice view (no copy) of the len bytes at offset,
// zero-extending the backing store first if necessary. Used internally
// by SHA3 to avoid an extra allocation when the caller does not retain
// the slice past the current step.
func (m *Memory) GetPtr(offset, length uint64) []byte {
	if length == 0 {
		return nil
	}
	end := offset + length
	if end > uint64(len(m.store)) {
		m.resize(roundUpTo32(end))
	}
	return m.store[offset:end]
}

// Load32 reads a Word at offset (MLOAD), zero-padding past the end of
// memory exactly as Get does, without growing memory.
func (m *Memory) Load32(offset uint64) word.Word {
	var buf [32]byte
	copy(buf[:], m.Get(offset, 32))
	var w word.Word
	w.SetBytes32(buf)
	return w
}

// reset truncates memory to zero length for frame pooling.
func (m *Memory) reset() { m.store = m.store[:0] }

func roundUpTo32(n uint64) uint64 { return (n + 31) / 32 * 32 }
