// Package lexer turns a byte buffer into a stream of tokens. It is a
// hand-written byte-indexed scanner, favoring a flat switch-based scan over
// any generated state machine, in the manner of a word-at-a-time reader.
package lexer

// Config configures a Lexer, restricted to the fields the Lexer itself
// consults.
type Config struct {
	FileName         string
	TabWidth         int
	SkipWhitespace   bool
	IncludeComments  bool
	TrackLineEndings bool
}

// DefaultConfig returns the Config a bare Lexer is constructed with absent
// overrides.
func DefaultConfig(fileName string) Config {
	return Config{
		FileName:         fileName,
		TabWidth:         4,
		SkipWhitespace:   true,
		IncludeComments:  false,
		TrackLineEndings: false,
	}
}
