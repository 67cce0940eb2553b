package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/thodyssey/dropvm/word"
)

// testStateDB is a minimal map-backed StateDB for exercising the
// interpreter in isolation, kept local to this package so that the vm
// tests do not depend on core/state.
type testAccount struct {
	balance word.Word
	nonce   uint64
	code    []byte
	storage map[word.Word]word.Word
	exists  bool
	dead    bool
}

type testStateDB struct {
	accounts  map[common.Address]*testAccount
	committed map[common.Address]map[word.Word]word.Word
	snaps     []map[common.Address]*testAccount
}

func newTestStateDB() *testStateDB {
	return &testStateDB{
		accounts:  make(map[common.Address]*testAccount),
		committed: make(map[common.Address]map[word.Word]word.Word),
	}
}

func (s *testStateDB) get(addr common.Address) *testAccount {
	a, ok := s.accounts[addr]
	if !ok {
		a = &testAccount{storage: make(map[word.Word]word.Word)}
		s.accounts[addr] = a
	}
	return a
}

func (s *testStateDB) GetBalance(addr common.Address) word.Word { return s.get(addr).balance }
func (s *testStateDB) AddBalance(addr common.Address, amount word.Word) {
	a := s.get(addr)
	a.balance.Add(&amount)
	a.exists = true
}
func (s *testStateDB) SubBalance(addr common.Address, amount word.Word) { s.get(addr).balance.Sub(&amount) }
func (s *testStateDB) GetCode(addr common.Address) []byte                { return s.get(addr).code }
func (s *testStateDB) GetCodeSize(addr common.Address) int               { return len(s.get(addr).code) }
func (s *testStateDB) GetCodeHash(addr common.Address) common.Hash {
	return common.BytesToHash(s.get(addr).code)
}
func (s *testStateDB) SetCode(addr common.Address, code []byte) {
	a := s.get(addr)
	a.code = code
	a.exists = true
}
func (s *testStateDB) GetNonce(addr common.Address) uint64         { return s.get(addr).nonce }
func (s *testStateDB) SetNonce(addr common.Address, nonce uint64)  { s.get(addr).nonce = nonce }
func (s *testStateDB) GetState(addr common.Address, key word.Word) word.Word {
	return s.get(addr).storage[key]
}
func (s *testStateDB) GetCommittedState(addr common.Address, key word.Word) word.Word {
	if slots, ok := s.committed[addr]; ok {
		if v, ok := slots[key]; ok {
			return v
		}
	}
	return s.get(addr).storage[key]
}
func (s *testStateDB) SetState(addr common.Address, key, value word.Word) {
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
func (s *testStateDB) CreateAccount(addr common.Address, code []byte) {
	a := s.get(addr)
	a.code = code
	a.exists = true
}
func (s *testStateDB) Exists(addr common.Address) bool {
	a, ok := s.accounts[addr]
	return ok && a.exists && !a.dead
}
func (s *testStateDB) Suicide(addr, beneficiary common.Address) {
	self := s.get(addr)
	s.AddBalance(beneficiary, self.balance)
	self.balance = word.Zero()
	self.dead = true
}
func (s *testStateDB) HasSuicided(addr common.Address) bool { return s.get(addr).dead }

func (s *testStateDB) Snapshot() int {
	clone := make(map[common.Address]*testAccount, len(s.accounts))
	for addr, a := range s.accounts {
		c := &testAccount{balance: a.balance, nonce: a.nonce, code: a.code, exists: a.exists, dead: a.dead,
			storage: make(map[word.Word]word.Word, len(a.storage))}
		for k, v := range a.storage {
			c.storage[k] = v
		}
		clone[addr] = c
	}
	s.snaps = append(s.snaps, clone)
	return len(s.snaps) - 1
}

func (s *testStateDB) RevertToSnapshot(id int) {
	s.accounts = s.snaps[id]
	s.snaps = s.snaps[:id]
}

// StartTopLevelCall clears the committed-state baseline, mirroring
// core/state.MemoryState's method of the same name: whatever a slot holds
// at the moment this is called becomes "the value at the start of the
// call" for SSTORE refund accounting.
func (s *testStateDB) StartTopLevelCall() {
	s.committed = make(map[common.Address]map[word.Word]word.Word)
}

type testBlock struct{}

func (testBlock) BlockHash(n uint64) word.Word    { return word.Zero() }
func (testBlock) Coinbase() common.Address        { return common.Address{} }
func (testBlock) Timestamp() uint64               { return 0 }
func (testBlock) Number() uint64                  { return 0 }
func (testBlock) Difficulty() word.Word           { return word.Zero() }
func (testBlock) GasLimit() uint64                { return 30_000_000 }

var testOwner = common.HexToAddress("0x1111111111111111111111111111111111111111")
var testCaller = common.HexToAddress("0x2222222222222222222222222222222222222222")

func newTestInterpreter() (*Interpreter, *testStateDB) {
	db := newTestStateDB()
	in := NewInterpreter(InterpreterConfig{
		Costs: &DefaultDropCosts,
		State: db,
		Block: testBlock{},
	})
	return in, db
}

func runCode(in *Interpreter, code []byte, dropLimit uint64, static bool) Result {
	f := NewFrame(FrameConfig{
		Code:      code,
		Owner:     testOwner,
		Caller:    testCaller,
		Origin:    testCaller,
		DropLimit: dropLimit,
		Static:    static,
	})
	ret, err := in.Run(f)
	if err != nil {
		f.RuntimeFailure = err
		f.ResetRefund()
		f.SpendAllDrops()
		f.Halted = true
		return f.Result(dropLimit)
	}
	f.ReturnData = ret
	return f.Result(dropLimit)
}
