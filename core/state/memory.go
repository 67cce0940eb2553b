// Package state provides a minimal in-memory vm.StateDB, used by
// cmd/dropvm and by tests that need a concrete world-state rather than a
// mock. The persistent, disk-backed state store is out of scope; this is deliberately just enough to drive the interpreter
// end-to-end.
package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/thodyssey/dropvm/word"
)

type account struct {
	balance word.Word
	nonce   uint64
	code    []byte
	storage map[word.Word]word.Word
	exists  bool
	dead    bool
}

func newAccount() *account {
	return &account{storage: make(map[word.Word]word.Word)}
}

func (a *account) clone() *account {
	out := &account{
		balance: a.balance,
		nonce:   a.nonce,
		code:    a.code,
		exists:  a.exists,
		dead:    a.dead,
		storage: make(map[word.Word]word.Word, len(a.storage)),
	}
	for k, v := range a.storage {
		out.storage[k] = v
	}
	return out
}

// MemoryState is a snapshot-capable, map-backed vm.StateDB implementation.
// Snapshot/RevertToSnapshot are implemented by keeping a stack of full
// account-map clones rather than an undo log, trading memory for
// simplicity — fine for the bytecode sizes and call depths a CLI run or a
// test exercises, and grounded on the same "keep it simple, this isn't
// the persistent store" spirit the core's StateDB interface is scoped to.
type MemoryState struct {
	accounts  map[common.Address]*account
	committed map[common.Address]map[word.Word]word.Word
	snapshots []map[common.Address]*account
}

// NewMemoryState returns an empty state.
func NewMemoryState() *MemoryState {
	return &MemoryState{
		accounts:  make(map[common.Address]*account),
		committed: make(map[common.Address]map[word.Word]word.Word),
	}
}

func (s *MemoryState) get(addr common.Address) *account {
	a, ok := s.accounts[addr]
	if !ok {
		a = newAccount()
		s.accounts[addr] = a
	}
	return a
}

func (s *MemoryState) GetBalance(addr common.Address) word.Word { return s.get(addr).balance }

func (s *MemoryState) AddBalance(addr common.Address, amount word.Word) {
	a := s.get(addr)
	a.balance.Add(&amount)
	a.exists = true
}

func (s *MemoryState) SubBalance(addr common.Address, amount word.Word) {
	a := s.get(addr)
	a.balance.Sub(&amount)
}

func (s *MemoryState) GetCode(addr common.Address) []byte { return s.get(addr).code }

func (s *MemoryState) GetCodeSize(addr common.Address) int { return len(s.get(addr).code) }

func (s *MemoryState) GetCodeHash(addr common.Address) common.Hash {
	return common.BytesToHash(s.get(addr).code)
}

func (s *MemoryState) SetCode(addr common.Address, code []byte) {
	a := s.get(addr)
	a.code = code
	a.exists = true
}

func (s *MemoryState) GetNonce(addr common.Address) uint64 { return s.get(addr).nonce }

func (s *MemoryState) SetNonce(addr common.Address, nonce uint64) { s.get(addr).nonce = nonce }

func (s *MemoryState) GetState(addr common.Address, key word.Word) word.Word {
	return s.get(addr).storage[key]
}

// GetCommittedState returns the value a slot held at the start of the
// enclosing top-level frame, for SSTORE refund accounting; it is recorded
// the first time a slot is touched via SetState within that top-level
// call (see StartTopLevelCall).
func (s *MemoryState) GetCommittedState(addr common.Address, key word.Word) word.Word {
	if slots, ok := s.committed[addr]; ok {
		if v, ok := slots[key]; ok {
			return v
		}
	}
	return s.get(addr).storage[key]
}

func (s *MemoryState) SetState(addr common.Address, key, value word.Word) {
	a := s.get(addr)
	if _, ok := s.committed[addr]; !ok {
		s.committed[addr] = make(map[word.Word]word.Word)
	}
	if _, ok := s.committed[addr][key]; !ok {
		s.committed[addr][key] = a.storage[key]
	}
	a.storage[key] = value
	a.exists = true
}

func (s *MemoryState) CreateAccount(addr common.Address, code []byte) {
	a := s.get(addr)
	a.code = code
	a.exists = true
}

func (s *MemoryState) Exists(addr common.Address) bool {
	a, ok := s.accounts[addr]
	return ok && a.exists && !a.dead
}

func (s *MemoryState) Suicide(addr common.Address, beneficiary common.Address) {
	self := s.get(addr)
	s.AddBalance(beneficiary, self.balance)
	self.balance = word.Zero()
	self.dead = true
}

func (s *MemoryState) HasSuicided(addr common.Address) bool { return s.get(addr).dead }

// Snapshot clones the full account map and returns its index as the
// snapshot id.
func (s *MemoryState) Snapshot() int {
	clone := make(map[common.Address]*account, len(s.accounts))
	for addr, a := range s.accounts {
		clone[addr] = a.clone()
	}
	s.snapshots = append(s.snapshots, clone)
	return len(s.snapshots) - 1
}

// RevertToSnapshot restores the account map captured at id, discarding id
// and every snapshot taken after it.
func (s *MemoryState) RevertToSnapshot(id int) {
	s.accounts = s.snapshots[id]
	s.snapshots = s.snapshots[:id]
}

// StartTopLevelCall clears the committed-state cache, beginning a fresh
// "value a slot held at the start of this call" baseline for SSTORE
// refund accounting.
func (s *MemoryState) StartTopLevelCall() {
	s.committed = make(map[common.Address]map[word.Word]word.Word)
}
