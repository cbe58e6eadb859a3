// Package flushio provides a flush-able io.Writer, used to back the sink the
// print native writes to: a terminal should see output promptly, an in-memory buffer
// (tests) needs no flushing at all, and anything else gets a bufio.Writer.
package flushio
