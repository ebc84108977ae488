package lume

import (
	"iter"
	"slices"
)

// Entry is a single positional or named tuple entry.
type Entry[T any] struct {
	// Key is the entry's name. Only meaningful when Named is true.
	Key Sym
	// Named distinguishes named entries from positional ones.
	Named bool
	// Value is the entry's payload.
	Value T
}

// Pos constructs a positional entry.
func Pos[T any](value T) Entry[T] {
	return Entry[T]{Value: value}
}

// Named constructs a named entry.
func Named[T any](key Sym, value T) Entry[T] {
	return Entry[T]{Key: key, Named: true, Value: value}
}

// Tuple is an ordered-positional / sorted-named hybrid container. Positional
// values occupy the data prefix in insertion order; named values follow,
// ordered to match the sorted key sidecar. The same container backs tuple
// expressions, tuple patterns, function parameters, call arguments, and
// runtime tuple values.
//
// Invariants: keys are unique and sorted; positional count is total length
// minus key count; named lookup is a binary search over keys.
type Tuple[T any] struct {
	keys []Sym
	data []T
}

// FromEntries builds a tuple from entries, preserving positional order and
// replacing duplicate keys (last write wins).
func FromEntries[T any](entries []Entry[T]) Tuple[T] {
	var t Tuple[T]
	for _, e := range entries {
		if e.Named {
			t.Insert(e.Key, e.Value)
		} else {
			t.Push(e.Value)
		}
	}

	return t
}

// Len returns the total number of entries.
func (t *Tuple[T]) Len() int {
	return len(t.data)
}

// NamedLen returns the number of named entries.
func (t *Tuple[T]) NamedLen() int {
	return len(t.keys)
}

// PosLen returns the number of positional entries.
func (t *Tuple[T]) PosLen() int {
	return len(t.data) - len(t.keys)
}

// At returns the i-th positional entry.
func (t *Tuple[T]) At(i int) (T, bool) {
	if i < 0 || i >= t.PosLen() {
		var zero T
		return zero, false
	}

	return t.data[i], true
}

// Get returns the entry named key.
func (t *Tuple[T]) Get(key Sym) (T, bool) {
	i, ok := slices.BinarySearch(t.keys, key)
	if !ok {
		var zero T
		return zero, false
	}

	return t.data[t.PosLen()+i], true
}

// Push appends a positional entry after the existing positional prefix.
func (t *Tuple[T]) Push(value T) {
	t.data = slices.Insert(t.data, t.PosLen(), value)
}

// Insert adds or replaces the entry named key. It returns the previous value
// when the key was already present.
func (t *Tuple[T]) Insert(key Sym, value T) (prev T, replaced bool) {
	offset := t.PosLen()

	i, ok := slices.BinarySearch(t.keys, key)
	if ok {
		prev = t.data[offset+i]
		t.data[offset+i] = value

		return prev, true
	}

	t.keys = slices.Insert(t.keys, i, key)
	t.data = slices.Insert(t.data, offset+i, value)

	return prev, false
}

// All iterates entries in storage order: the positional prefix first, then
// named entries in key order.
func (t *Tuple[T]) All() iter.Seq[Entry[T]] {
	return func(yield func(Entry[T]) bool) {
		offset := t.PosLen()
		for i, v := range t.data {
			e := Entry[T]{Value: v}
			if i >= offset {
				e.Key = t.keys[i-offset]
				e.Named = true
			}

			if !yield(e) {
				return
			}
		}
	}
}

// Equal reports whether two tuples have the same shape and eq-equal values
// entry for entry.
func (t *Tuple[T]) Equal(other *Tuple[T], eq func(a, b T) bool) bool {
	if len(t.data) != len(other.data) || !slices.Equal(t.keys, other.keys) {
		return false
	}

	for i := range t.data {
		if !eq(t.data[i], other.data[i]) {
			return false
		}
	}

	return true
}
