package value

// StringBox wraps an owned, immutable Go string with a refcount, giving
// otherwise-immutable strings the same reference-typed lifecycle as List,
// File and Object.
type StringBox struct {
	refcount int
	S        string
}

func (sb *StringBox) Retain() { sb.refcount++ }

func (sb *StringBox) Release() int {
	sb.refcount--
	return sb.refcount
}

func (sb *StringBox) RefCount() int { return sb.refcount }
