package lume

// ErrorKind classifies a syntax error.
type ErrorKind uint8

// Syntax error kinds, shared between the lexer and the parser.
const (
	// ErrDelimiters reports an unclosed bracket, paren, or brace.
	ErrDelimiters ErrorKind = iota
	// ErrInvalidChar reports a byte no token can start with.
	ErrInvalidChar
	// ErrInvalidToken reports an expected-but-missing production.
	ErrInvalidToken
	// ErrIntInvalid reports an integer literal that overflows int64.
	ErrIntInvalid
	// ErrFloatInvalid reports an unconvertible float literal.
	ErrFloatInvalid
	// ErrStringUnterminated reports end-of-input inside a string or symbol.
	ErrStringUnterminated
	// ErrStringEscSeqInvalid reports an unknown or out-of-range escape.
	ErrStringEscSeqInvalid
	// ErrNoUnboundExprAtModuleLevel reports a bare expression among module
	// definitions.
	ErrNoUnboundExprAtModuleLevel
)

func (k ErrorKind) String() string {
	switch k {
	case ErrDelimiters:
		return "unbalanced delimiters"
	case ErrInvalidChar:
		return "invalid character"
	case ErrInvalidToken:
		return "invalid token"
	case ErrIntInvalid:
		return "invalid integer literal"
	case ErrFloatInvalid:
		return "invalid float literal"
	case ErrStringUnterminated:
		return "unterminated string"
	case ErrStringEscSeqInvalid:
		return "invalid escape sequence"
	case ErrNoUnboundExprAtModuleLevel:
		return "unbound expression at module level"
	default:
		return "syntax error"
	}
}

// SyntaxError is a lex or parse error with both kind and location.
type SyntaxError struct {
	Kind   ErrorKind
	Detail string
	Span   Span
}

func (e *SyntaxError) Error() string {
	if e.Detail != "" {
		return e.Span.Start.String() + ": " + e.Kind.String() + ": " + e.Detail
	}

	return e.Span.Start.String() + ": " + e.Kind.String()
}

func syntaxError(kind ErrorKind, span Span) *SyntaxError {
	return &SyntaxError{Kind: kind, Span: span}
}

func (e *SyntaxError) withDetail(detail string) *SyntaxError {
	return &SyntaxError{Kind: e.Kind, Detail: detail, Span: e.Span}
}

func (e *SyntaxError) withSpan(span Span) *SyntaxError {
	return &SyntaxError{Kind: e.Kind, Detail: e.Detail, Span: span}
}
