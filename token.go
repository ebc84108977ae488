package lume

import "github.com/alecthomas/participle/v2/lexer"

// Token type constants - negative values as per participle convention.
// Exported so tests and the parser can name tokens without going through the
// symbol table.
const (
	TokenEOF      lexer.TokenType = lexer.EOF
	TokenLParen   lexer.TokenType = -(iota + 2) //nolint:mnd // participle convention
	TokenRParen                                 // )
	TokenLBracket                               // [
	TokenRBracket                               // ]
	TokenLBrace                                 // {
	TokenRBrace                                 // }
	TokenComma                                  // , - also inserted synthetically after newlines
	TokenColon                                  // :
	TokenPeriod                                 // .
	TokenPlus                                   // +
	TokenMinus                                  // -
	TokenStar                                   // *
	TokenStarStar                               // **
	TokenSlash                                  // /
	TokenPercent                                // %
	TokenEq                                     // =
	TokenEqEq                                   // ==
	TokenNotEq                                  // !=
	TokenLt                                     // <
	TokenLtLt                                   // <<
	TokenLtEq                                   // <=
	TokenGt                                     // >
	TokenGtGt                                   // >>
	TokenGtEq                                   // >=
	TokenNot                                    // !
	TokenAnd                                    // &
	TokenAndAnd                                 // &&
	TokenOr                                     // |
	TokenOrOr                                   // ||
	TokenCaret                                  // ^
	TokenTilde                                  // ~
	// Keywords - distinct token types so the grammar can distinguish them
	// from identifiers.
	TokenUse   // use
	TokenLet   // let
	TokenIf    // if
	TokenElse  // else
	TokenFor   // for (reserved)
	TokenTrue  // true
	TokenFalse // false
	// Identifiers
	TokenIdent    // plain identifiers
	TokenCtxIdent // @-prefixed context identifiers
	// Literals
	TokenSym   // 'symbol'
	TokenStr   // "string"
	TokenInt   // integer literals, any base prefix
	TokenFloat // float literals
)

// keywords maps reserved words to their token types.
var keywords = map[string]lexer.TokenType{
	"use":   TokenUse,
	"let":   TokenLet,
	"if":    TokenIf,
	"else":  TokenElse,
	"for":   TokenFor,
	"true":  TokenTrue,
	"false": TokenFalse,
}

// Span represents a half-open [start, end) range in source code.
type Span struct {
	Start lexer.Position
	End   lexer.Position
}

// Text returns the lexeme the span covers in source.
func (s Span) Text(source string) string {
	return source[s.Start.Offset:s.End.Offset]
}

// tokenSpan reconstructs a token's span from its start position and value.
func tokenSpan(tok lexer.Token) Span {
	end := tok.Pos
	for i := 0; i < len(tok.Value); i++ {
		if tok.Value[i] == '\n' {
			end.Line++
			end.Column = 1
		} else {
			end.Column++
		}
		end.Offset++
	}

	return Span{Start: tok.Pos, End: end}
}

// statementCloser reports whether a token type may end a statement. A newline
// after one of these triggers automatic comma insertion.
func statementCloser(typ lexer.TokenType) bool {
	switch typ {
	case TokenRParen, TokenRBracket, TokenRBrace,
		TokenIdent, TokenSym, TokenInt, TokenFloat, TokenStr:
		return true
	default:
		return false
	}
}
