package value

import "io"

// File is the "opaque host handle" Value variant backing the open/read/
// write/close natives. It wraps any host stream, not just *os.File, so the
// same native implementations work for test doubles.
type File struct {
	refcount int
	Name     string
	Stream   io.ReadWriteCloser
	closed   bool
}

// NewFileHandle allocates a File wrapping stream with refcount 1.
func NewFileHandle(name string, stream io.ReadWriteCloser) *File {
	return &File{refcount: 1, Name: name, Stream: stream}
}

func (f *File) Retain() { f.refcount++ }

func (f *File) Release() int {
	f.refcount--
	if f.refcount <= 0 {
		f.Close()
	}
	return f.refcount
}

func (f *File) RefCount() int { return f.refcount }

// Closed reports whether Close has already been called.
func (f *File) Closed() bool { return f.closed }

// Close closes the underlying stream exactly once.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.Stream.Close()
}
