// Package panicerr turns an abnormal goroutine exit -- a panic or a call to
// runtime.Goexit -- into a plain error value.
//
// osfl's pipeline stages (lexer, parser, compiler, VM) are tree-walkers and
// dispatch loops that assume well-formed input once earlier stages have
// reported no errors; a coding mistake surfacing as an index-out-of-range or
// nil-dereference panic deep in the compiler or VM should not take the host
// process down with it. Recover wraps exactly the boundary where pipeline
// code hands control back to a caller (cmd/osfl's call to its run function).
package panicerr
