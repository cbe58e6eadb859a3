// Package runeio provides small building blocks around rune/byte decoding
// used by the source-loading layer: NewReader wraps an io.Reader with rune
// reading for internal/fileinput's multi-file queue, and DecodeEscape decodes
// the fixed escape set the Lexer recognizes inside string literals.
package runeio
