package engine

type (
	callStack struct {
		maxSize int
		size    int
		head    *node
	}

	node struct {
		frame StackFrame
		next  *node
	}

	// StackFrame is a function call that was active when an error occurred.
	StackFrame struct {
		Name string
		// Line is the line that was executed in this frame.
		Line int
	}
)

func newCallStack(maxSize int) *callStack {
	return &callStack{
		maxSize: maxSize,
	}
}

// Push pushes a frame. It returns false if the stack is full.
func (s *callStack) Push(frame StackFrame) bool {
	if s.maxSize != 0 && s.size >= s.maxSize {
		return false
	}

	s.head = &node{
		frame: frame,
		next:  s.head,
	}
	s.size++
	return true
}

func (s *callStack) Pop() (StackFrame, bool) {
	if s.head == nil {
		return StackFrame{}, false
	}
	frame := s.head.frame
	s.head = s.head.next
	s.size--
	return frame, true
}

// SetLine records the currently executed line in the top frame.
func (s *callStack) SetLine(line int) {
	if s.head != nil && line > 0 {
		s.head.frame.Line = line
	}
}

// Line returns the currently executed line of the innermost frame that
// has line information. Native functions have none.
func (s *callStack) Line() int {
	for current := s.head; current != nil; current = current.next {
		if current.frame.Line > 0 {
			return current.frame.Line
		}
	}
	return 0
}

// Slice returns the frames, innermost first.
func (s *callStack) Slice() []StackFrame {
	frames := make([]StackFrame, s.size)
	current := s.head
	i := 0
	for current != nil {
		frames[i] = current.frame
		current = current.next
		i++
	}
	return frames
}

func (f StackFrame) String() string {
	return f.Name
}
