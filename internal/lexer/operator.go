package lexer

import "github.com/akshatnamdeo/osfl/internal/token"

// two-byte operators, checked before their one-byte prefixes.
var twoByteOps = map[string]token.Kind{
	"**": token.StarStar,
	"<<": token.Shl,
	">>": token.Shr,
	"&&": token.AmpAmp,
	"||": token.PipePipe,
	"==": token.EqEq,
	"!=": token.BangEq,
	"<=": token.LtEq,
	">=": token.GtEq,
	"+=": token.PlusEq,
	"-=": token.MinusEq,
	"*=": token.StarEq,
	"/=": token.SlashEq,
	"->": token.Arrow,
	"=>": token.FatArrow,
	"::": token.ColonColon,
}

var oneByteOps = map[byte]token.Kind{
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'%': token.Percent,
	'&': token.Amp,
	'|': token.Pipe,
	'^': token.Caret,
	'~': token.Tilde,
	'!': token.Bang,
	'<': token.Lt,
	'>': token.Gt,
	'=': token.Eq,
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	'[': token.LBracket,
	']': token.RBracket,
	',': token.Comma,
	';': token.Semicolon,
	':': token.Colon,
	'.': token.Dot,
	'?': token.Question,
}

func (lx *Lexer) scanOperator(loc token.SourceLocation) token.Token {
	if !lx.eof() {
		if lx.pos+1 < len(lx.src) {
			two := string(lx.src[lx.pos : lx.pos+2])
			if kind, ok := twoByteOps[two]; ok {
				lx.advance()
				lx.advance()
				return lx.emit(kind, token.Token{Lexeme: two, Location: loc})
			}
		}
	}

	b := lx.peekByte()
	if kind, ok := oneByteOps[b]; ok {
		lx.advance()
		if kind == token.LBrace && len(lx.interpStack) > 0 {
			lx.interpStack[len(lx.interpStack)-1].braceDepth++
		}
		return lx.emit(kind, token.Token{Lexeme: string(b), Location: loc})
	}

	lx.advance()
	return lx.errorTok(InvalidChar, loc, string(b), "unexpected character")
}
