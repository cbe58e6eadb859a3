package value

import "strings"

// VMObject is the heap's object variant: a refcounted record addressed by
// string key, with fields held as parallel arrays so insertion order is
// preserved even though lookup order is irrelevant.
type VMObject struct {
	refcount int
	keys     []string
	vals     []Value
}

// NewVMObject allocates a VMObject with refcount 1, per NEWOBJ's contract.
func NewVMObject() *VMObject {
	return &VMObject{refcount: 1}
}

func (o *VMObject) Retain() { o.refcount++ }

func (o *VMObject) Release() int {
	o.refcount--
	return o.refcount
}

func (o *VMObject) RefCount() int { return o.refcount }

func (o *VMObject) indexOf(key string) int {
	for i, k := range o.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Get returns the field bound to key, or Null if unset (GETPROP's fallback).
func (o *VMObject) Get(key string) Value {
	if i := o.indexOf(key); i >= 0 {
		return o.vals[i]
	}
	return NewNull()
}

// Set binds key to v, retaining v and releasing any prior occupant
// (SETPROP).
func (o *VMObject) Set(key string, v Value) {
	v.Retain()
	if i := o.indexOf(key); i >= 0 {
		o.vals[i].Release()
		o.vals[i] = v
		return
	}
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

// Keys returns the object's field names in insertion order.
func (o *VMObject) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *VMObject) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(o.vals[i].String())
	}
	b.WriteByte('}')
	return b.String()
}
