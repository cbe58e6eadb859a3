package value

import "strings"

// List is a growable, reference-counted array of Values (spec: "List
// (growable Value array with length and capacity)"). Go slices already
// track length and capacity, so Items is grown with ordinary append.
type List struct {
	refcount int
	Items    []Value
}

func (l *List) Retain() { l.refcount++ }

func (l *List) Release() int {
	l.refcount--
	return l.refcount
}

func (l *List) RefCount() int { return l.refcount }

// Len returns the number of elements currently in l.
func (l *List) Len() int { return len(l.Items) }

// Append retains v and appends it.
func (l *List) Append(v Value) {
	v.Retain()
	l.Items = append(l.Items, v)
}

// Pop removes the last element, returning it (ownership of its retain
// passes to the caller) and whether one existed.
func (l *List) Pop() (Value, bool) {
	if len(l.Items) == 0 {
		return Value{}, false
	}
	n := len(l.Items) - 1
	v := l.Items[n]
	l.Items = l.Items[:n]
	return v, true
}

// Get returns the element at idx, or Null if idx is out of range.
func (l *List) Get(idx int) Value {
	if idx < 0 || idx >= len(l.Items) {
		return NewNull()
	}
	return l.Items[idx]
}

// Set overwrites the element at idx, releasing the prior occupant and
// retaining v. Out-of-range idx is a no-op.
func (l *List) Set(idx int, v Value) {
	if idx < 0 || idx >= len(l.Items) {
		return
	}
	l.Items[idx].Release()
	v.Retain()
	l.Items[idx] = v
}

// Insert inserts v at idx, shifting later elements up. idx is clamped to
// [0, len(l.Items)].
func (l *List) Insert(idx int, v Value) {
	if idx < 0 {
		idx = 0
	}
	if idx > len(l.Items) {
		idx = len(l.Items)
	}
	v.Retain()
	l.Items = append(l.Items, Value{})
	copy(l.Items[idx+1:], l.Items[idx:])
	l.Items[idx] = v
}

// Remove deletes the element at idx, returning it (ownership of its retain
// passes to the caller) and whether idx was in range.
func (l *List) Remove(idx int) (Value, bool) {
	if idx < 0 || idx >= len(l.Items) {
		return Value{}, false
	}
	v := l.Items[idx]
	l.Items = append(l.Items[:idx], l.Items[idx+1:]...)
	return v, true
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range l.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteByte(']')
	return b.String()
}
