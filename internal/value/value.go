// Package value implements the VM's dynamic Value type: a tagged union over
// Null, Int, Float, Bool and four reference-counted variants (String, List,
// File, Object).
package value

import "fmt"

// Kind discriminates a Value's active variant.
type Kind int

const (
	Null Kind = iota
	IntKind
	FloatKind
	BoolKind
	StringKind
	ListKind
	FileKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case BoolKind:
		return "bool"
	case StringKind:
		return "string"
	case ListKind:
		return "list"
	case FileKind:
		return "file"
	case ObjectKind:
		return "object"
	default:
		return "unknown"
	}
}

// Ref is implemented by every heap-allocated, reference-counted value
// variant: StringBox, List, File, and Object. A Value's refcount is
// meaningful only when it wraps one of these.
type Ref interface {
	Retain()
	Release() int
	RefCount() int
}

// Value is the VM's dynamic tagged value. The scalar fields are always
// present but only meaningful for their matching Kind; ref is non-nil only
// for the four reference-typed variants.
type Value struct {
	Kind Kind
	i    int64
	f    float64
	b    bool
	ref  Ref
}

// NewNull returns the Null value.
func NewNull() Value { return Value{Kind: Null} }

// NewInt wraps i as an Int value.
func NewInt(i int64) Value { return Value{Kind: IntKind, i: i} }

// NewFloat wraps f as a Float value.
func NewFloat(f float64) Value { return Value{Kind: FloatKind, f: f} }

// NewBool wraps b as a Bool value.
func NewBool(b bool) Value { return Value{Kind: BoolKind, b: b} }

// NewString allocates a fresh StringBox with refcount 1 and wraps it.
func NewString(s string) Value {
	return Value{Kind: StringKind, ref: &StringBox{refcount: 1, S: s}}
}

// NewList allocates a fresh empty List with refcount 1 and wraps it.
func NewList() Value {
	return Value{Kind: ListKind, ref: &List{refcount: 1}}
}

// NewFile wraps an already-constructed File (refcount 1, per
// NewFileHandle) as a Value.
func NewFile(f *File) Value { return Value{Kind: FileKind, ref: f} }

// NewObject wraps an already-constructed VMObject as a Value.
func NewObject(o *VMObject) Value { return Value{Kind: ObjectKind, ref: o} }

// Int returns the Int payload; the caller must check Kind == IntKind.
func (v Value) Int() int64 { return v.i }

// Float returns the Float payload; the caller must check Kind == FloatKind.
func (v Value) Float() float64 { return v.f }

// Bool returns the Bool payload; the caller must check Kind == BoolKind.
func (v Value) Bool() bool { return v.b }

// Str returns the underlying string; the caller must check Kind == StringKind.
func (v Value) Str() string {
	if sb, ok := v.ref.(*StringBox); ok {
		return sb.S
	}
	return ""
}

// List returns the underlying *List; the caller must check Kind == ListKind.
func (v Value) List() *List {
	l, _ := v.ref.(*List)
	return l
}

// File returns the underlying *File; the caller must check Kind == FileKind.
func (v Value) File() *File {
	fl, _ := v.ref.(*File)
	return fl
}

// Object returns the underlying *VMObject; the caller must check
// Kind == ObjectKind.
func (v Value) Object() *VMObject {
	o, _ := v.ref.(*VMObject)
	return o
}

// IsNull reports whether v is the Null value.
func (v Value) IsNull() bool { return v.Kind == Null }

// Truthy implements the VM's boolean-coercion rule for condition registers:
// Null, zero-valued scalars, the empty string and the empty list are falsy,
// everything else is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case Null:
		return false
	case IntKind:
		return v.i != 0
	case FloatKind:
		return v.f != 0
	case BoolKind:
		return v.b
	case StringKind:
		return v.Str() != ""
	case ListKind:
		return v.List().Len() > 0
	default:
		return true
	}
}

// Retain increments the refcount of a reference-typed Value. A no-op for
// scalar variants.
func (v Value) Retain() {
	if v.ref != nil {
		v.ref.Retain()
	}
}

// Release decrements the refcount of a reference-typed Value, returning the
// resulting count (or -1 for scalar variants, which own nothing to free).
func (v Value) Release() int {
	if v.ref != nil {
		return v.ref.Release()
	}
	return -1
}

// String renders v for diagnostics, the "str" native, and debug traces.
func (v Value) String() string {
	switch v.Kind {
	case Null:
		return "null"
	case IntKind:
		return fmt.Sprintf("%d", v.i)
	case FloatKind:
		return fmt.Sprintf("%g", v.f)
	case BoolKind:
		return fmt.Sprintf("%t", v.b)
	case StringKind:
		return v.Str()
	case ListKind:
		return v.List().String()
	case FileKind:
		return fmt.Sprintf("<file %s>", v.File().Name)
	case ObjectKind:
		return v.Object().String()
	default:
		return "<unknown>"
	}
}
