package value

// Table is a Lua table. Keys keep their insertion order. The run of keys
// 1..n without gaps forms the array part, which Length reports and iteration
// visits first.
type Table struct {
	Metatable *Table

	entries []entry
	index   map[Value]int
	// live is the number of entries with a non-nil value.
	live int
	// border is the largest n such that the keys 1..n are all present.
	border int
}

type entry struct {
	key   Value
	value Value
}

func NewTable() *Table {
	return &Table{
		index: make(map[Value]int),
	}
}

// NewArray creates a table holding the given values under the keys 1..n.
func NewArray(vals ...Value) *Table {
	t := NewTable()
	for i, v := range vals {
		t.Set(Number(i+1), v)
	}
	return t
}

func (*Table) Type() Type { return TypeTable }

// Get returns the value stored under key, and whether there is one.
func (t *Table) Get(key Value) (Value, bool) {
	i, ok := t.index[key]
	if !ok || t.entries[i].value == Nil {
		return Nil, false
	}
	return t.entries[i].value, true
}

// GetString is a shorthand for Get(String(key)) that returns Nil if absent.
func (t *Table) GetString(key string) Value {
	v, _ := t.Get(String(key))
	return v
}

// Set stores value under key. Setting Nil removes the key. Callers must not
// pass Nil or NaN as key.
func (t *Table) Set(key Value, value Value) {
	value = OrNil(value)
	if i, ok := t.index[key]; ok {
		old := t.entries[i].value
		t.entries[i].value = value
		switch {
		case old == Nil && value != Nil:
			t.live++
			t.grow(key)
		case old != Nil && value == Nil:
			t.live--
			t.shrink(key)
		}
		return
	}
	if value == Nil {
		return
	}
	t.compact()
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, entry{key: key, value: value})
	t.live++
	t.grow(key)
}

// SetString is a shorthand for Set(String(key), value).
func (t *Table) SetString(key string, value Value) {
	t.Set(String(key), value)
}

// Append stores value under the key Length()+1.
func (t *Table) Append(value Value) {
	t.Set(Number(t.border+1), value)
}

// Insert inserts value at position pos of the array part, shifting up the
// elements at pos and above.
func (t *Table) Insert(pos int, value Value) {
	for i := t.border; i >= pos; i-- {
		v, _ := t.Get(Number(i))
		t.Set(Number(i+1), v)
	}
	t.Set(Number(pos), value)
}

// Remove removes the element at position pos of the array part and shifts
// down the elements above it. It returns the removed value.
func (t *Table) Remove(pos int) Value {
	n := t.border
	removed, _ := t.Get(Number(pos))
	for i := pos; i < n; i++ {
		v, _ := t.Get(Number(i + 1))
		t.Set(Number(i), v)
	}
	if pos <= n {
		t.Set(Number(n), Nil)
	}
	return removed
}

// Length returns the length of the array part (a border of the table).
func (t *Table) Length() int {
	return t.border
}

// Count returns the number of keys in the table.
func (t *Table) Count() int {
	return t.live
}

// IsArray reports whether the table is non-empty and its keys are exactly
// 1..n.
func (t *Table) IsArray() bool {
	return t.live > 0 && t.live == t.border
}

// Next returns the key and value that follow key in iteration order. Passing
// Nil starts the iteration. At the end, Next returns Nil, Nil. ok is false if
// key is not in the table.
func (t *Table) Next(key Value) (k, v Value, ok bool) {
	start := 0
	switch {
	case key == Nil || key == nil:
		if t.border > 0 {
			return Number(1), t.entries[t.index[Number(1)]].value, true
		}
	case t.inArrayPart(key):
		n := int(key.(Number)) + 1
		if n <= t.border {
			return Number(n), t.entries[t.index[Number(n)]].value, true
		}
	default:
		i, found := t.index[key]
		if !found {
			return Nil, Nil, false
		}
		start = i + 1
	}

	for i := start; i < len(t.entries); i++ {
		e := t.entries[i]
		if e.value == Nil || t.inArrayPart(e.key) {
			continue
		}
		return e.key, e.value, true
	}
	return Nil, Nil, true
}

// Range calls fn for every key and value in iteration order, until fn
// returns false.
func (t *Table) Range(fn func(k, v Value) bool) {
	for k, v, _ := t.Next(Nil); k != Nil; k, v, _ = t.Next(k) {
		if !fn(k, v) {
			return
		}
	}
}

// Values returns the values of the array part in order.
func (t *Table) Values() []Value {
	vals := make([]Value, t.border)
	for i := range vals {
		vals[i], _ = t.Get(Number(i + 1))
	}
	return vals
}

func (t *Table) inArrayPart(key Value) bool {
	n, ok := key.(Number)
	return ok && n.IsInteger() && n >= 1 && int(n) <= t.border
}

func (t *Table) grow(key Value) {
	if n, ok := key.(Number); !ok || n != Number(t.border+1) {
		return
	}
	for {
		if _, ok := t.Get(Number(t.border + 1)); !ok {
			return
		}
		t.border++
	}
}

func (t *Table) shrink(key Value) {
	if t.inArrayPart(key) {
		t.border = int(key.(Number)) - 1
	}
}

// compact drops entries of removed keys once they make up more than half of
// the entries.
func (t *Table) compact() {
	if len(t.entries) < 8 || t.live*2 > len(t.entries) {
		return
	}
	entries := make([]entry, 0, t.live)
	for _, e := range t.entries {
		if e.value == Nil {
			delete(t.index, e.key)
			continue
		}
		t.index[e.key] = len(entries)
		entries = append(entries, e)
	}
	t.entries = entries
}
