package lexer

import (
	"strconv"
	"strings"

	"github.com/akshatnamdeo/osfl/internal/runeio"
	"github.com/akshatnamdeo/osfl/internal/token"
)

// maxStringBytes bounds a single (non-docstring) string literal's decoded
// buffer: 63 bytes succeeds, 64 fails with BufferOverflow.
const maxStringBytes = 63

// maxDocstringBytes bounds a docstring's decoded buffer; docstrings are
// meant for long free text so they get a much larger ceiling than plain
// strings, reported as StringTooLong rather than BufferOverflow.
const maxDocstringBytes = 4096

// interpFrame tracks one level of "${ ... }" interpolation nesting so the
// Lexer knows whether an upcoming '}' closes a nested brace expression or
// ends the interpolation itself.
type interpFrame struct {
	braceDepth int
}

// Lexer scans a byte buffer into tokens on demand.
type Lexer struct {
	cfg Config
	src []byte
	pos int
	line, col int

	lastErr Error

	peeked   *token.Token
	peekedOK bool

	// inString/stringBuf track the state of a string/docstring literal
	// currently being accumulated across possible interpolation splits.
	inString   bool
	isDoc      bool
	stringBuf  strings.Builder
	stringLoc  token.SourceLocation

	interpStack []interpFrame

	// lastSignificant is the kind of the last non-trivia token emitted,
	// used to disambiguate a leading '/' between division and a regex
	// literal: after an operand-like token, '/' is
	// division; otherwise it may start a regex.
	lastSignificant token.Kind
	haveLast        bool
}

// New constructs a Lexer over src using cfg.
func New(src []byte, cfg Config) *Lexer {
	return &Lexer{
		cfg:  cfg,
		src:  src,
		line: 1,
		col:  1,
	}
}

// LastError reports the most recently recorded lexer error. A single
// accessor reports the most recent error.
func (lx *Lexer) LastError() Error { return lx.lastErr }

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	if !lx.peekedOK {
		tok := lx.scanNext()
		lx.peeked = &tok
		lx.peekedOK = true
	}
	return *lx.peeked
}

// Next consumes and returns the next token.
func (lx *Lexer) Next() token.Token {
	if lx.peekedOK {
		tok := *lx.peeked
		lx.peekedOK = false
		lx.peeked = nil
		return tok
	}
	return lx.scanNext()
}

func (lx *Lexer) here() token.SourceLocation {
	return token.SourceLocation{File: lx.cfg.FileName, Line: lx.line, Column: lx.col}
}

func (lx *Lexer) eof() bool { return lx.pos >= len(lx.src) }

func (lx *Lexer) peekByte() byte {
	if lx.eof() {
		return 0
	}
	return lx.src[lx.pos]
}

func (lx *Lexer) peekByteAt(off int) byte {
	if lx.pos+off >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos+off]
}

func (lx *Lexer) advance() byte {
	b := lx.src[lx.pos]
	lx.pos++
	if b == '\n' {
		lx.line++
		lx.col = 1
	} else if b == '\t' {
		tw := lx.cfg.TabWidth
		if tw <= 0 {
			tw = 4
		}
		lx.col += tw
	} else {
		lx.col++
	}
	return b
}

func (lx *Lexer) errorTok(kind ErrorKind, loc token.SourceLocation, lexeme, message string) token.Token {
	lx.lastErr = Error{Kind: kind, Message: message, Location: loc}
	return token.Token{Kind: token.Error, Lexeme: lexeme, Location: loc}
}

func (lx *Lexer) emit(kind token.Kind, tok token.Token) token.Token {
	tok.Kind = kind
	switch kind {
	case token.Whitespace, token.Comment:
		// trivia: do not update disambiguation state
	default:
		lx.lastSignificant = kind
		lx.haveLast = true
	}
	return tok
}

// scanNext is the core dispatcher: skip trivia per config, then scan one
// token shape.
func (lx *Lexer) scanNext() token.Token {
	if lx.inString {
		return lx.scanStringBody()
	}

	for {
		if lx.eof() {
			return lx.emit(token.EOF, token.Token{Location: lx.here()})
		}

		b := lx.peekByte()

		switch {
		case b == '\n':
			loc := lx.here()
			lx.advance()
			if lx.cfg.TrackLineEndings {
				return lx.emit(token.Newline, token.Token{Lexeme: "\n", Location: loc})
			}
			continue
		case b == ' ' || b == '\t' || b == '\r':
			loc := lx.here()
			start := lx.pos
			for !lx.eof() {
				c := lx.peekByte()
				if c != ' ' && c != '\t' && c != '\r' {
					break
				}
				lx.advance()
			}
			if lx.cfg.SkipWhitespace {
				continue
			}
			return lx.emit(token.Whitespace, token.Token{Lexeme: string(lx.src[start:lx.pos]), Location: loc})
		case b == '/' && lx.peekByteAt(1) == '/':
			loc := lx.here()
			start := lx.pos
			for !lx.eof() && lx.peekByte() != '\n' {
				lx.advance()
			}
			if lx.cfg.IncludeComments {
				return lx.emit(token.Comment, token.Token{Lexeme: string(lx.src[start:lx.pos]), Location: loc})
			}
			continue
		case b == '/' && lx.peekByteAt(1) == '*':
			loc := lx.here()
			start := lx.pos
			lx.advance()
			lx.advance()
			closed := false
			for !lx.eof() {
				if lx.peekByte() == '*' && lx.peekByteAt(1) == '/' {
					lx.advance()
					lx.advance()
					closed = true
					break
				}
				lx.advance()
			}
			if !closed {
				return lx.errorTok(UnterminatedComment, loc, string(lx.src[start:lx.pos]), "unterminated block comment")
			}
			if lx.cfg.IncludeComments {
				return lx.emit(token.Comment, token.Token{Lexeme: string(lx.src[start:lx.pos]), Location: loc})
			}
			continue
		default:
			return lx.scanToken()
		}
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b&0x80 != 0
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (lx *Lexer) scanToken() token.Token {
	loc := lx.here()
	b := lx.peekByte()

	switch {
	case isDigit(b):
		return lx.scanNumber(loc)
	case isIdentStart(b):
		return lx.scanIdentifier(loc)
	case b == '"':
		return lx.scanStringStart(loc)
	case b == '}' && len(lx.interpStack) > 0:
		return lx.scanInterpolationClose(loc)
	case b == '/':
		return lx.scanSlashOrRegex(loc)
	}

	return lx.scanOperator(loc)
}

func (lx *Lexer) scanIdentifier(loc token.SourceLocation) token.Token {
	start := lx.pos
	for !lx.eof() && isIdentCont(lx.peekByte()) {
		lx.advance()
	}
	lexeme := string(lx.src[start:lx.pos])

	if lexeme == "true" || lexeme == "false" {
		return lx.emit(token.Boolean, token.Token{
			Lexeme: lexeme, Location: loc,
			Value: token.Value{Kind: token.BoolValue, Bool: lexeme == "true"},
		})
	}
	if kw, ok := token.Keywords[lexeme]; ok {
		return lx.emit(kw, token.Token{Lexeme: lexeme, Location: loc})
	}
	return lx.emit(token.Identifier, token.Token{Lexeme: lexeme, Location: loc})
}

func (lx *Lexer) scanNumber(loc token.SourceLocation) token.Token {
	start := lx.pos

	if lx.peekByte() == '0' && (lx.peekByteAt(1) == 'x' || lx.peekByteAt(1) == 'X') {
		return lx.scanRadixInt(loc, start, 16, func(b byte) bool {
			return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
		})
	}
	if lx.peekByte() == '0' && (lx.peekByteAt(1) == 'b' || lx.peekByteAt(1) == 'B') {
		return lx.scanRadixInt(loc, start, 2, func(b byte) bool { return b == '0' || b == '1' })
	}
	if lx.peekByte() == '0' && (lx.peekByteAt(1) == 'o' || lx.peekByteAt(1) == 'O') {
		return lx.scanRadixInt(loc, start, 8, func(b byte) bool { return b >= '0' && b <= '7' })
	}

	for !lx.eof() && (isDigit(lx.peekByte()) || lx.peekByte() == '_') {
		lx.advance()
	}

	isFloat := false
	if lx.peekByte() == '.' && isDigit(lx.peekByteAt(1)) {
		isFloat = true
		lx.advance()
		for !lx.eof() && (isDigit(lx.peekByte()) || lx.peekByte() == '_') {
			lx.advance()
		}
	}
	if lx.peekByte() == 'e' || lx.peekByte() == 'E' {
		save := lx.pos
		saveLine, saveCol := lx.line, lx.col
		lx.advance()
		if lx.peekByte() == '+' || lx.peekByte() == '-' {
			lx.advance()
		}
		if isDigit(lx.peekByte()) {
			isFloat = true
			for !lx.eof() && isDigit(lx.peekByte()) {
				lx.advance()
			}
		} else {
			lx.pos, lx.line, lx.col = save, saveLine, saveCol
		}
	}

	lexeme := string(lx.src[start:lx.pos])
	clean := strings.ReplaceAll(lexeme, "_", "")

	if isFloat {
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return lx.errorTok(InvalidNumber, loc, lexeme, "invalid float literal: "+err.Error())
		}
		return lx.emit(token.Float, token.Token{
			Lexeme: lexeme, Location: loc,
			Value: token.Value{Kind: token.FloatValue, Flt: f},
		})
	}

	i, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return lx.errorTok(InvalidNumber, loc, lexeme, "invalid integer literal: "+err.Error())
	}
	return lx.emit(token.Int, token.Token{
		Lexeme: lexeme, Location: loc,
		Value: token.Value{Kind: token.IntValue, Int: i},
	})
}

func (lx *Lexer) scanRadixInt(loc token.SourceLocation, start int, radix int, isDigitOf func(byte) bool) token.Token {
	lx.advance() // '0'
	lx.advance() // x|b|o
	digitsStart := lx.pos
	for !lx.eof() && (isDigitOf(lx.peekByte()) || lx.peekByte() == '_') {
		lx.advance()
	}
	lexeme := string(lx.src[start:lx.pos])
	digits := strings.ReplaceAll(string(lx.src[digitsStart:lx.pos]), "_", "")
	if digits == "" {
		digits = "0"
	}
	i, err := strconv.ParseInt(digits, radix, 64)
	if err != nil {
		return lx.errorTok(InvalidNumber, loc, lexeme, "invalid integer literal: "+err.Error())
	}
	return lx.emit(token.Int, token.Token{
		Lexeme: lexeme, Location: loc,
		Value: token.Value{Kind: token.IntValue, Int: i},
	})
}

// scanStringStart begins a (possibly docstring) string literal. It leaves
// lx.inString set so that subsequent Next/Peek calls resume accumulating
// the literal's body, which may be interrupted by "${" interpolation.
func (lx *Lexer) scanStringStart(loc token.SourceLocation) token.Token {
	isDoc := lx.peekByteAt(1) == '"' && lx.peekByteAt(2) == '"'
	if isDoc {
		lx.advance()
		lx.advance()
		lx.advance()
	} else {
		lx.advance()
	}
	lx.inString = true
	lx.isDoc = isDoc
	lx.stringLoc = loc
	lx.stringBuf.Reset()
	return lx.scanStringBody()
}

func (lx *Lexer) stringCap() int {
	if lx.isDoc {
		return maxDocstringBytes
	}
	return maxStringBytes
}

func (lx *Lexer) overflowKind() ErrorKind {
	if lx.isDoc {
		return StringTooLong
	}
	return BufferOverflow
}

// scanStringBody consumes raw string bytes until a terminator: closing
// quote(s), "${" interpolation start, EOF, or buffer overflow.
func (lx *Lexer) scanStringBody() token.Token {
	for {
		if lx.eof() {
			lx.inString = false
			return lx.errorTok(UnterminatedString, lx.stringLoc, lx.stringBuf.String(), "unterminated string literal")
		}

		b := lx.peekByte()

		if lx.isDoc {
			if b == '"' && lx.peekByteAt(1) == '"' && lx.peekByteAt(2) == '"' {
				lx.advance()
				lx.advance()
				lx.advance()
				return lx.finishString(token.Docstring)
			}
		} else if b == '"' {
			lx.advance()
			return lx.finishString(token.String)
		}

		if b == '$' && lx.peekByteAt(1) == '{' {
			lx.advance()
			lx.advance()
			lx.interpStack = append(lx.interpStack, interpFrame{})
			return lx.finishString(token.String, token.InterpolationStart)
		}

		if b == '\\' {
			escLoc := lx.here()
			lx.advance()
			if lx.eof() {
				lx.inString = false
				return lx.errorTok(UnterminatedString, escLoc, lx.stringBuf.String(), "unterminated escape sequence")
			}
			e := lx.advance()
			decoded, ok := runeio.DecodeEscape(e)
			if !ok {
				lx.inString = false
				return lx.errorTok(InvalidEscape, escLoc, string([]byte{'\\', e}), "invalid escape sequence")
			}
			lx.stringBuf.WriteByte(decoded)
		} else {
			lx.advance()
			lx.stringBuf.WriteByte(b)
		}

		if lx.stringBuf.Len() > lx.stringCap() {
			kind := lx.overflowKind()
			lx.inString = false
			return lx.errorTok(kind, lx.stringLoc, lx.stringBuf.String(), "string literal exceeds buffer capacity")
		}
	}
}

// finishString flushes the accumulated buffer as kind (String or
// Docstring) and returns that token; if a pending token kind
// (InterpolationStart) is given, a token of that kind is stashed in the
// peeked slot for the very next Next()/Peek() call.
func (lx *Lexer) finishString(kind token.Kind, pending ...token.Kind) token.Token {
	text := lx.stringBuf.String()
	loc := lx.stringLoc
	lx.stringBuf.Reset()
	lx.inString = false

	tok := lx.emit(kind, token.Token{
		Lexeme: text, Location: loc,
		Value: token.Value{Kind: token.StringValue, Str: text},
	})

	if len(pending) == 1 {
		next := token.Token{Kind: pending[0], Lexeme: "${", Location: loc}
		lx.peeked = &next
		lx.peekedOK = true
		lx.lastSignificant = pending[0]
		lx.haveLast = true
	}
	return tok
}

func (lx *Lexer) scanInterpolationClose(loc token.SourceLocation) token.Token {
	n := len(lx.interpStack)
	top := &lx.interpStack[n-1]
	if top.braceDepth > 0 {
		top.braceDepth--
		lx.advance()
		return lx.emit(token.RBrace, token.Token{Lexeme: "}", Location: loc})
	}
	lx.interpStack = lx.interpStack[:n-1]
	lx.advance()
	lx.inString = true
	lx.isDoc = false
	lx.stringLoc = lx.here()
	lx.stringBuf.Reset()
	return lx.emit(token.InterpolationEnd, token.Token{Lexeme: "}", Location: loc})
}

// regexPrecedingKinds is the set of token kinds after which a leading '/'
// is unambiguously division, not the start of a regex literal
// "Regex": "only when / is not followed by / or *" -- necessary but not
// sufficient; this operand-context heuristic supplies the rest).
var regexPrecedingKinds = map[token.Kind]bool{
	token.Int: true, token.Float: true, token.String: true, token.Docstring: true,
	token.Boolean: true, token.Identifier: true,
	token.RParen: true, token.RBracket: true, token.RBrace: true,
	token.KwNull: true,
}

// scanSlashOrRegex is only reached for a '/' not followed by '/' or '*':
// scanNext already diverts those two cases to comment scanning.
func (lx *Lexer) scanSlashOrRegex(loc token.SourceLocation) token.Token {
	if lx.haveLast && regexPrecedingKinds[lx.lastSignificant] {
		lx.advance()
		if lx.peekByte() == '=' {
			lx.advance()
			return lx.emit(token.SlashEq, token.Token{Lexeme: "/=", Location: loc})
		}
		return lx.emit(token.Slash, token.Token{Lexeme: "/", Location: loc})
	}
	return lx.scanRegex(loc)
}

func (lx *Lexer) scanRegex(loc token.SourceLocation) token.Token {
	start := lx.pos
	lx.advance() // opening '/'
	for {
		if lx.eof() {
			return lx.errorTok(InvalidString, loc, string(lx.src[start:lx.pos]), "unterminated regex literal")
		}
		b := lx.peekByte()
		if b == '\\' {
			lx.advance()
			if !lx.eof() {
				lx.advance()
			}
			continue
		}
		if b == '/' {
			lx.advance()
			break
		}
		lx.advance()
	}
	lexeme := string(lx.src[start:lx.pos])
	body := lexeme
	if len(body) >= 2 {
		body = body[1 : len(body)-1]
	}
	return lx.emit(token.Regex, token.Token{
		Lexeme: lexeme, Location: loc,
		Value: token.Value{Kind: token.StringValue, Str: body},
	})
}
