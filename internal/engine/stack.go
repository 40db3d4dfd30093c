package engine

import (
	"errors"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

// ErrStackUnderflow is returned by Pop if no value is visible above the
// current lock.
var ErrStackUnderflow = errors.New("stack underflow")

const initialStackCapacity = 8

// Stack is the evaluation stack. It carries argument and result values of
// calls as well as temporaries of assignments. A lock hides every entry
// below its floor, so that a call frame only sees its own values.
type Stack struct {
	values []value.Value
	top    int

	floor  int
	floors []int
}

// NewStack creates an empty stack with a capacity of 8.
func NewStack() *Stack {
	return &Stack{
		values: make([]value.Value, initialStackCapacity),
	}
}

// Push pushes v. If the stack is full, its capacity doubles.
func (s *Stack) Push(v value.Value) {
	if s.top == len(s.values) {
		grown := make([]value.Value, 2*len(s.values))
		copy(grown, s.values)
		s.values = grown
	}
	s.values[s.top] = value.OrNil(v)
	s.top++
}

// Pop removes and returns the top value.
func (s *Stack) Pop() (value.Value, error) {
	if !s.Any() {
		return nil, ErrStackUnderflow
	}
	s.top--
	v := s.values[s.top]
	s.values[s.top] = nil
	return v, nil
}

// PopN removes n values and returns them, the top value first. If fewer
// than n values are visible, the result is padded with Nil at its end, so
// that the real values keep their positions.
func (s *Stack) PopN(n int) []value.Value {
	vals := make([]value.Value, n)
	for i := range vals {
		v, err := s.Pop()
		if err != nil {
			v = value.Nil
		}
		vals[i] = v
	}
	return vals
}

// Peek returns the top value without removing it.
func (s *Stack) Peek() (value.Value, bool) {
	if !s.Any() {
		return value.Nil, false
	}
	return s.values[s.top-1], true
}

// PeekAt returns the value n entries below the top. PeekAt(0) is Peek.
func (s *Stack) PeekAt(n int) (value.Value, bool) {
	i := s.top - 1 - n
	if n < 0 || i < s.floor {
		return value.Nil, false
	}
	return s.values[i], true
}

// Any reports whether at least one value is visible above the lock.
func (s *Stack) Any() bool {
	return s.top > s.floor
}

// Top returns the number of values on the stack, including hidden ones.
func (s *Stack) Top() int {
	return s.top
}

// Visible returns the number of values above the lock.
func (s *Stack) Visible() int {
	return s.top - s.floor
}

// Cap returns the capacity of the backing storage.
func (s *Stack) Cap() int {
	return len(s.values)
}

// Lock hides all entries below index. Locks nest, Unlock restores the
// floor that was active before.
func (s *Stack) Lock(index int) {
	if index > s.top {
		index = s.top
	}
	if index < s.floor {
		index = s.floor
	}
	s.floors = append(s.floors, s.floor)
	s.floor = index
}

// Unlock removes the most recent lock.
func (s *Stack) Unlock() {
	if len(s.floors) == 0 {
		s.floor = 0
		return
	}
	s.floor = s.floors[len(s.floors)-1]
	s.floors = s.floors[:len(s.floors)-1]
}

// ShiftLeft discards the n values directly below the top value. The top
// value moves down accordingly.
func (s *Stack) ShiftLeft(n int) {
	if n <= 0 || s.Visible() < 1 {
		return
	}
	if n > s.Visible()-1 {
		n = s.Visible() - 1
	}
	topValue := s.values[s.top-1]
	for i := s.top - 1 - n; i < s.top; i++ {
		s.values[i] = nil
	}
	s.top -= n
	s.values[s.top-1] = topValue
}

// SetTop discards every value at or above index. It is used to drop the
// temporaries of a frame that ended with an error.
func (s *Stack) SetTop(index int) {
	if index < s.floor {
		index = s.floor
	}
	for i := index; i < s.top; i++ {
		s.values[i] = nil
	}
	if index < s.top {
		s.top = index
	}
}

// Adjust makes exactly want values visible above base, by pushing Nil
// values or dropping values from the top.
func (s *Stack) Adjust(base, want int) {
	have := s.top - base
	for ; have < want; have++ {
		s.Push(value.Nil)
	}
	if have > want {
		s.SetTop(base + want)
	}
}

// PopOrdered removes n values and returns them in the order they were
// pushed.
func (s *Stack) PopOrdered(n int) []value.Value {
	vals := s.PopN(n)
	for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
		vals[i], vals[j] = vals[j], vals[i]
	}
	return vals
}
