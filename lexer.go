package lume

import (
	"io"

	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer errors.
var (
	ErrUnterminatedString  = &SyntaxError{Kind: ErrStringUnterminated}
	ErrUnexpectedCharacter = &SyntaxError{Kind: ErrInvalidChar}
)

// lumeDefinition implements lexer.Definition for lume source.
type lumeDefinition struct {
	symbols map[string]lexer.TokenType
}

func newLumeLexer() *lumeDefinition {
	return &lumeDefinition{
		symbols: map[string]lexer.TokenType{
			"EOF": TokenEOF,
			// Individual punctuation tokens for grammar rules
			"(": TokenLParen,
			")": TokenRParen,
			"[": TokenLBracket,
			"]": TokenRBracket,
			"{": TokenLBrace,
			"}": TokenRBrace,
			",": TokenComma,
			":": TokenColon,
			".": TokenPeriod,
			// Operators
			"+":  TokenPlus,
			"-":  TokenMinus,
			"*":  TokenStar,
			"**": TokenStarStar,
			"/":  TokenSlash,
			"%":  TokenPercent,
			"=":  TokenEq,
			"==": TokenEqEq,
			"!=": TokenNotEq,
			"<":  TokenLt,
			"<<": TokenLtLt,
			"<=": TokenLtEq,
			">":  TokenGt,
			">>": TokenGtGt,
			">=": TokenGtEq,
			"!":  TokenNot,
			"&":  TokenAnd,
			"&&": TokenAndAnd,
			"|":  TokenOr,
			"||": TokenOrOr,
			"^":  TokenCaret,
			"~":  TokenTilde,
			// Keywords
			"use":   TokenUse,
			"let":   TokenLet,
			"if":    TokenIf,
			"else":  TokenElse,
			"for":   TokenFor,
			"true":  TokenTrue,
			"false": TokenFalse,
			// Identifiers and literals
			"Ident":    TokenIdent,
			"CtxIdent": TokenCtxIdent,
			"Sym":      TokenSym,
			"Str":      TokenStr,
			"Int":      TokenInt,
			"Float":    TokenFloat,
		},
	}
}

// lumeLexer is the shared lexer definition.
var lumeLexer = newLumeLexer()

// LexerDefinition returns the lexer definition, primarily for tests.
func LexerDefinition() lexer.Definition {
	return lumeLexer
}

// Symbols returns the mapping of symbol names to token types.
func (d *lumeDefinition) Symbols() map[string]lexer.TokenType {
	return d.symbols
}

// Lex creates a new Lexer for the given reader.
//
//nolint:ireturn // Required by participle's lexer.Definition interface.
func (d *lumeDefinition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return newLexerState(filename, string(data)), nil
}

// LexString implements lexer.StringDefinition for efficiency.
//
//nolint:ireturn // Required by participle's lexer.StringDefinition interface.
func (d *lumeDefinition) LexString(filename, input string) (lexer.Lexer, error) {
	return newLexerState(filename, input), nil
}

// lexerState holds the cursor state for lexing. Scanning is byte-wise: the
// grammar is ASCII, and string/symbol contents pass through untouched.
type lexerState struct {
	filename string
	input    string
	offset   int
	line     int
	col      int
	// lastType is the type of the last emitted token, consulted by the
	// automatic comma insertion rule.
	lastType lexer.TokenType
	// pendingComma is set when a consumed newline followed a
	// statement-closing token; the next call emits a zero-width Comma first.
	pendingComma bool
}

func newLexerState(filename, input string) *lexerState {
	return &lexerState{
		filename: filename,
		input:    input,
		line:     1,
		col:      1,
		lastType: TokenEOF,
	}
}

// Next returns the next token. Synthetic commas produced by the newline rule
// carry a zero-width span and an empty value.
func (l *lexerState) Next() (lexer.Token, error) {
	l.skipSpace()

	if l.pendingComma {
		l.pendingComma = false

		return l.emit(TokenComma, l.pos()), nil
	}

	if l.eof() {
		return lexer.EOFToken(l.pos()), nil
	}

	start := l.pos()

	if tok, ok := l.punctuation(start); ok {
		return tok, nil
	}

	b := l.peek()

	switch {
	case isIdentStart(b):
		return l.scanIdent(start), nil
	case b == '@':
		return l.scanCtxIdent(start), nil
	case b == '\'' || b == '"':
		return l.scanStringOrSym(start, b)
	case isDigit(b):
		return l.scanNumber(start), nil
	}

	l.advance()

	return lexer.Token{}, ErrUnexpectedCharacter.withSpan(Span{Start: start, End: l.pos()})
}

// skipSpace consumes ASCII whitespace and # comments, arming the pending
// comma flag when a newline follows a statement-closing token. Comments count
// as whitespace for newline tracking.
func (l *lexerState) skipSpace() {
	for !l.eof() {
		b := l.peek()
		switch {
		case b == '\n':
			if statementCloser(l.lastType) {
				l.pendingComma = true
			}

			l.advance()
		case b == ' ' || b == '\t' || b == '\r' || b == '\v' || b == '\f':
			l.advance()
		case b == '#':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *lexerState) pos() lexer.Position {
	return lexer.Position{
		Filename: l.filename,
		Offset:   l.offset,
		Line:     l.line,
		Column:   l.col,
	}
}

func (l *lexerState) eof() bool {
	return l.offset >= len(l.input)
}

// peek returns the current byte, or NUL at end of input.
func (l *lexerState) peek() byte {
	if l.eof() {
		return 0
	}

	return l.input[l.offset]
}

func (l *lexerState) peekAt(n int) byte {
	if l.offset+n >= len(l.input) {
		return 0
	}

	return l.input[l.offset+n]
}

func (l *lexerState) advance() {
	if l.eof() {
		return
	}

	if l.input[l.offset] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	l.offset++
}

// accept consumes the current byte if f matches it.
func (l *lexerState) accept(f func(byte) bool) bool {
	if !l.eof() && f(l.peek()) {
		l.advance()
		return true
	}

	return false
}

func (l *lexerState) acceptByte(b byte) bool {
	return l.accept(func(c byte) bool { return c == b })
}

func (l *lexerState) acceptWhile(f func(byte) bool) {
	for !l.eof() && f(l.peek()) {
		l.advance()
	}
}

func (l *lexerState) emit(typ lexer.TokenType, start lexer.Position) lexer.Token {
	l.lastType = typ

	return lexer.Token{
		Type:  typ,
		Value: l.input[start.Offset:l.offset],
		Pos:   start,
	}
}

// punctuation scans single and multi character operator lexemes by maximal
// munch: two-byte forms win over their one-byte prefixes.
func (l *lexerState) punctuation(start lexer.Position) (lexer.Token, bool) {
	single := func(typ lexer.TokenType) (lexer.Token, bool) {
		l.advance()
		return l.emit(typ, start), true
	}
	double := func(second byte, two, one lexer.TokenType) (lexer.Token, bool) {
		l.advance()
		if l.acceptByte(second) {
			return l.emit(two, start), true
		}

		return l.emit(one, start), true
	}

	switch l.peek() {
	case '(':
		return single(TokenLParen)
	case ')':
		return single(TokenRParen)
	case '[':
		return single(TokenLBracket)
	case ']':
		return single(TokenRBracket)
	case '{':
		return single(TokenLBrace)
	case '}':
		return single(TokenRBrace)
	case ',':
		return single(TokenComma)
	case ':':
		return single(TokenColon)
	case '.':
		return single(TokenPeriod)
	case '+':
		return single(TokenPlus)
	case '-':
		return single(TokenMinus)
	case '*':
		return double('*', TokenStarStar, TokenStar)
	case '/':
		return single(TokenSlash)
	case '%':
		return single(TokenPercent)
	case '=':
		return double('=', TokenEqEq, TokenEq)
	case '!':
		return double('=', TokenNotEq, TokenNot)
	case '<':
		l.advance()
		if l.acceptByte('<') {
			return l.emit(TokenLtLt, start), true
		}
		if l.acceptByte('=') {
			return l.emit(TokenLtEq, start), true
		}

		return l.emit(TokenLt, start), true
	case '>':
		l.advance()
		if l.acceptByte('>') {
			return l.emit(TokenGtGt, start), true
		}
		if l.acceptByte('=') {
			return l.emit(TokenGtEq, start), true
		}

		return l.emit(TokenGt, start), true
	case '&':
		return double('&', TokenAndAnd, TokenAnd)
	case '|':
		return double('|', TokenOrOr, TokenOr)
	case '^':
		return single(TokenCaret)
	case '~':
		return single(TokenTilde)
	default:
		return lexer.Token{}, false
	}
}

func (l *lexerState) scanIdent(start lexer.Position) lexer.Token {
	l.advance()
	l.acceptWhile(isIdentContinue)

	tok := l.emit(TokenIdent, start)
	if typ, ok := keywords[tok.Value]; ok {
		tok.Type = typ
		l.lastType = typ
	}

	return tok
}

// scanCtxIdent scans @-prefixed context identifiers. The suffix may be empty:
// "@" alone is a valid context identifier.
func (l *lexerState) scanCtxIdent(start lexer.Position) lexer.Token {
	l.advance()
	l.acceptWhile(isIdentContinue)

	return l.emit(TokenCtxIdent, start)
}

// scanStringOrSym scans "strings" and 'symbols'. A backslash consumes exactly
// the next byte; escape decoding happens in the parser.
func (l *lexerState) scanStringOrSym(start lexer.Position, quote byte) (lexer.Token, error) {
	kind := TokenStr
	if quote == '\'' {
		kind = TokenSym
	}

	l.advance()

	for {
		if l.eof() {
			return lexer.Token{}, ErrUnterminatedString.withSpan(Span{Start: start, End: l.pos()})
		}

		switch {
		case l.acceptByte('\\'):
			if l.eof() {
				return lexer.Token{}, ErrUnterminatedString.withSpan(Span{Start: start, End: l.pos()})
			}

			l.advance()
		case l.acceptByte(quote):
			return l.emit(kind, start), nil
		default:
			l.advance()
		}
	}
}

// scanNumber scans int and float literals. The lexer performs no value
// conversion; the literal text is decoded by the parser.
func (l *lexerState) scanNumber(start lexer.Position) lexer.Token {
	if l.peek() == '0' {
		switch l.peekAt(1) {
		case 'b':
			l.advance()
			l.advance()
			l.acceptWhile(func(b byte) bool { return b == '0' || b == '1' })

			return l.emit(TokenInt, start)
		case 'o':
			l.advance()
			l.advance()
			l.acceptWhile(func(b byte) bool { return b >= '0' && b <= '7' })

			return l.emit(TokenInt, start)
		case 'x':
			l.advance()
			l.advance()
			l.acceptWhile(isHexDigit)

			return l.emit(TokenInt, start)
		}
	}

	l.acceptWhile(isDigit)

	if l.acceptByte('.') {
		l.acceptWhile(isDigit)
		l.exponent()

		return l.emit(TokenFloat, start)
	}

	if l.exponent() {
		return l.emit(TokenFloat, start)
	}

	return l.emit(TokenInt, start)
}

// exponent consumes an optional e[-]digits suffix.
func (l *lexerState) exponent() bool {
	if !l.acceptByte('e') {
		return false
	}

	l.acceptByte('-')
	l.acceptWhile(isDigit)

	return true
}

// Tokenize scans source into a token vector, excluding the trailing EOF.
// Token order is stable and the lexer never backtracks.
func Tokenize(filename, source string) ([]lexer.Token, error) {
	state := newLexerState(filename, source)

	var tokens []lexer.Token

	for {
		tok, err := state.Next()
		if err != nil {
			return nil, err
		}

		if tok.EOF() {
			return tokens, nil
		}

		tokens = append(tokens, tok)
	}
}

// Character helpers.

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}
