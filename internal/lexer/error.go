package lexer

import (
	"fmt"

	"github.com/akshatnamdeo/osfl/internal/token"
)

// ErrorKind enumerates the Lexer's error taxonomy.
type ErrorKind int

const (
	NoError ErrorKind = iota
	InvalidChar
	InvalidString
	InvalidNumber
	InvalidIdentifier
	UnterminatedComment
	UnterminatedString
	StringTooLong
	InvalidEscape
	BufferOverflow
	Memory
	FileIO
)

func (k ErrorKind) String() string {
	switch k {
	case NoError:
		return "None"
	case InvalidChar:
		return "InvalidChar"
	case InvalidString:
		return "InvalidString"
	case InvalidNumber:
		return "InvalidNumber"
	case InvalidIdentifier:
		return "InvalidIdentifier"
	case UnterminatedComment:
		return "UnterminatedComment"
	case UnterminatedString:
		return "UnterminatedString"
	case StringTooLong:
		return "StringTooLong"
	case InvalidEscape:
		return "InvalidEscape"
	case BufferOverflow:
		return "BufferOverflow"
	case Memory:
		return "Memory"
	case FileIO:
		return "FileIO"
	default:
		return "Unknown"
	}
}

// Error is the Lexer's single retrievable error record, updated on each
// token call.
type Error struct {
	Kind     ErrorKind
	Message  string
	Location token.SourceLocation
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s at %s", e.Kind, e.Message, e.Location)
}
