package vm

import "github.com/thodyssey/dropvm/word"

// stackLimit is the maximum number of entries a Stack may hold.
const stackLimit = 1024

// Stack is the Frame's 256-bit-word operand stack. It stores Words by
// value, so Push always copies and Dup always produces an independent
// copy — no element of the backing slice is ever aliased by a popped or
// peeked value.
type Stack struct {
	data []word.Word
}

func newStack() *Stack {
	return &Stack{data: make([]word.Word, 0, 16)}
}

// Len returns the current number of entries.
func (s *Stack) Len() int { return len(s.data) }

// Push appends w to the top of the stack.
func (s *Stack) Push(w word.Word) { s.data = append(s.data, w) }

// Pop removes and returns the top entry. The caller must have already
// verified s.Len() > 0 (arity is checked once per step, not per pop).
func (s *Stack) Pop() word.Word {
	n := len(s.data) - 1
	top := s.data[n]
	s.data = s.data[:n]
	return top
}

// Peek returns the k-th entry from the top (0-indexed) without removing
// it. peek(0) is the top of stack.
func (s *Stack) Peek(k int) word.Word {
	return s.data[len(s.data)-1-k]
}

// PeekRef returns a pointer into the backing array for the k-th entry
// from the top. It exists only for instruction handlers that need to
// mutate top-of-stack in place (matching VM.java's "pop, mutate, push
// back" idiom while avoiding a redundant copy for binary operators);
// callers must never retain the pointer past the current step.
func (s *Stack) PeekRef(k int) *word.Word {
	return &s.data[len(s.data)-1-k]
}

// Dup pushes an independent copy of the n-th entry from the top
// (1-indexed, matching DUPn).
func (s *Stack) Dup(n int) {
	s.Push(s.data[len(s.data)-n].Clone())
}

// Swap exchanges the top entry with the (n+1)-th entry from the top
// (matching SWAPn).
func (s *Stack) Swap(n int) {
	top := len(s.data) - 1
	other := top - n
	s.data[top], s.data[other] = s.data[other], s.data[top]
}

// reset clears the stack for reuse by frame pooling.
func (s *Stack) reset() { s.data = s.data[:0] }
