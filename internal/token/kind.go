package token

// Kind is the closed set of token kinds produced by the Lexer. Names are
// preserved across implementations; numeric values are not part of any
// external contract.
type Kind int

const (
	// Error and structural.
	Error Kind = iota
	EOF
	Newline
	Whitespace
	Comment

	// Literals.
	Int
	Float
	String
	Docstring
	Regex
	Boolean
	Identifier

	// Keywords.
	KwFrame
	KwIn
	KwVar
	KwConst
	KwFunc
	KwFunction
	KwReturn
	KwIf
	KwElse
	KwElif
	KwLoop
	KwWhile
	KwFor
	KwSwitch
	KwBreak
	KwContinue
	KwOnError
	KwRetry
	KwReset
	KwNull
	KwTry
	KwCatch
	KwClass
	KwImport

	// Arithmetic operators.
	Plus
	Minus
	Star
	Slash
	Percent
	StarStar

	// Bitwise operators.
	Amp
	Pipe
	Caret
	Tilde
	Shl
	Shr

	// Logical operators.
	AmpAmp
	PipePipe
	Bang

	// Comparison operators.
	EqEq
	BangEq
	Lt
	LtEq
	Gt
	GtEq

	// Assignment operators.
	Eq
	PlusEq
	MinusEq
	StarEq
	SlashEq

	// Frame / arrow operators.
	Arrow    // ->
	FatArrow // =>
	ColonColon

	// Delimiters and punctuation.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semicolon
	Colon
	Dot
	Question

	// Interpolation markers.
	InterpolationStart
	InterpolationEnd
)

var names = map[Kind]string{
	Error: "Error", EOF: "EOF", Newline: "Newline", Whitespace: "Whitespace", Comment: "Comment",
	Int: "Int", Float: "Float", String: "String", Docstring: "Docstring", Regex: "Regex",
	Boolean: "Boolean", Identifier: "Identifier",
	KwFrame: "frame", KwIn: "in", KwVar: "var", KwConst: "const", KwFunc: "func",
	KwFunction: "function", KwReturn: "return", KwIf: "if", KwElse: "else", KwElif: "elif",
	KwLoop: "loop", KwWhile: "while", KwFor: "for", KwSwitch: "switch", KwBreak: "break",
	KwContinue: "continue", KwOnError: "on_error", KwRetry: "retry", KwReset: "reset",
	KwNull: "null", KwTry: "try", KwCatch: "catch", KwClass: "class", KwImport: "import",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", StarStar: "**",
	Amp: "&", Pipe: "|", Caret: "^", Tilde: "~", Shl: "<<", Shr: ">>",
	AmpAmp: "&&", PipePipe: "||", Bang: "!",
	EqEq: "==", BangEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=",
	Eq: "=", PlusEq: "+=", MinusEq: "-=", StarEq: "*=", SlashEq: "/=",
	Arrow: "->", FatArrow: "=>", ColonColon: "::",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Comma: ",", Semicolon: ";", Colon: ":", Dot: ".", Question: "?",
	InterpolationStart: "${", InterpolationEnd: "}",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "Unknown"
}

// Keywords maps lexemes to their keyword Kind, used by the Lexer after
// scanning a plain identifier.
var Keywords = map[string]Kind{
	"frame": KwFrame, "in": KwIn, "var": KwVar, "const": KwConst,
	"func": KwFunc, "function": KwFunction, "return": KwReturn,
	"if": KwIf, "else": KwElse, "elif": KwElif,
	"loop": KwLoop, "while": KwWhile, "for": KwFor, "switch": KwSwitch,
	"break": KwBreak, "continue": KwContinue,
	"on_error": KwOnError, "retry": KwRetry, "reset": KwReset,
	"null": KwNull, "try": KwTry, "catch": KwCatch,
	"class": KwClass, "import": KwImport,
}
