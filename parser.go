package lume

import (
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// parser is a Pratt-style precedence climber over the token vector. It owns
// the interner for the duration of a parse so identifier and symbol spans
// become handles on demand.
type parser struct {
	source   string
	tokens   []lexer.Token
	index    int
	interner *Interner
}

// ParseExpr parses source as a single expression. Empty input yields a Void
// expression.
func ParseExpr(source string, interner *Interner) (Expr, error) {
	tokens, err := Tokenize("", source)
	if err != nil {
		return Expr{}, err
	}

	p := &parser{source: source, tokens: tokens, interner: interner}

	expr, ok, err := p.expr()
	if err != nil {
		return Expr{}, err
	}

	if !ok {
		return NewExpr(VoidExpr{}), nil
	}

	return expr, nil
}

// ParseStmt parses source as a single statement. Empty input yields a Void
// expression statement.
func ParseStmt(source string, interner *Interner) (Stmt, error) {
	tokens, err := Tokenize("", source)
	if err != nil {
		return nil, err
	}

	p := &parser{source: source, tokens: tokens, interner: interner}

	stmt, ok, err := p.stmt()
	if err != nil {
		return nil, err
	}

	if !ok {
		return ExprStmt{Expr: NewExpr(VoidExpr{})}, nil
	}

	return stmt, nil
}

// ParseModule parses source as a module: an optional use block followed by
// let definitions only.
func ParseModule(source string, interner *Interner) (*Mod, error) {
	tokens, err := Tokenize("", source)
	if err != nil {
		return nil, err
	}

	p := &parser{source: source, tokens: tokens, interner: interner}

	return p.module()
}

// accept consumes the current token when it has the given type.
func (p *parser) accept(typ lexer.TokenType) (lexer.Token, bool) {
	if p.index < len(p.tokens) && p.tokens[p.index].Type == typ {
		tok := p.tokens[p.index]
		p.index++

		return tok, true
	}

	return lexer.Token{}, false
}

// acceptSym consumes a token of the given type and interns its lexeme.
func (p *parser) acceptSym(typ lexer.TokenType) (Sym, bool) {
	tok, ok := p.accept(typ)
	if !ok {
		return 0, false
	}

	return p.interner.Intern(tok.Value), true
}

// errSpan is the span blamed by errors raised at the cursor: the current
// token, or the last one when the cursor ran off the end.
func (p *parser) errSpan() Span {
	if p.index < len(p.tokens) {
		return tokenSpan(p.tokens[p.index])
	}

	if len(p.tokens) > 0 {
		return tokenSpan(p.tokens[len(p.tokens)-1])
	}

	return Span{}
}

func (p *parser) invalidToken() *SyntaxError {
	return syntaxError(ErrInvalidToken, p.errSpan())
}

// Operator tables. Binding powers are (left, right) pairs with right = left +
// 1 for every binary operator, so all of them, ** and . included, are
// left-associative. Unary operators bind tighter than every binary operator
// except the dot.
func unOpFor(typ lexer.TokenType) (UnOp, int, bool) {
	switch typ {
	case TokenMinus:
		return UnNeg, 20, true
	case TokenNot:
		return UnNot, 20, true
	case TokenTilde:
		return UnBitNot, 20, true
	default:
		return 0, 0, false
	}
}

func binOpFor(typ lexer.TokenType) (op BinOp, left, right int, ok bool) {
	switch typ {
	case TokenOrOr:
		return BinOr, 0, 1, true
	case TokenAndAnd:
		return BinAnd, 2, 3, true
	case TokenEqEq:
		return BinEq, 4, 5, true
	case TokenNotEq:
		return BinNotEq, 4, 5, true
	case TokenLt:
		return BinLt, 4, 5, true
	case TokenLtEq:
		return BinLtEq, 4, 5, true
	case TokenGt:
		return BinGt, 4, 5, true
	case TokenGtEq:
		return BinGtEq, 4, 5, true
	case TokenOr:
		return BinBitOr, 6, 7, true
	case TokenCaret:
		return BinXor, 8, 9, true
	case TokenAnd:
		return BinBitAnd, 10, 11, true
	case TokenLtLt:
		return BinShiftL, 12, 13, true
	case TokenGtGt:
		return BinShiftR, 12, 13, true
	case TokenPlus:
		return BinAdd, 14, 15, true
	case TokenMinus:
		return BinSub, 14, 15, true
	case TokenStar:
		return BinMul, 16, 17, true
	case TokenSlash:
		return BinDiv, 16, 17, true
	case TokenPercent:
		return BinMod, 16, 17, true
	case TokenStarStar:
		return BinExp, 18, 19, true
	case TokenPeriod:
		return BinDot, 20, 21, true
	default:
		return 0, 0, 0, false
	}
}

func (p *parser) acceptUnOp() (UnOp, int, bool) {
	if p.index >= len(p.tokens) {
		return 0, 0, false
	}

	op, right, ok := unOpFor(p.tokens[p.index].Type)
	if ok {
		p.index++
	}

	return op, right, ok
}

func (p *parser) acceptBinOp() (op BinOp, left, right int, ok bool) {
	if p.index >= len(p.tokens) {
		return 0, 0, 0, false
	}

	op, left, right, ok = binOpFor(p.tokens[p.index].Type)
	if ok {
		p.index++
	}

	return op, left, right, ok
}

// Literals.

// unescape decodes the escape sequences of a string or symbol lexeme,
// dropping the surrounding quotes.
func (p *parser) unescape(tok lexer.Token) (string, error) {
	span := tokenSpan(tok)
	slice := tok.Value[1 : len(tok.Value)-1]

	var b strings.Builder
	b.Grow(len(slice))

	for i := 0; i < len(slice); i++ {
		c := slice[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}

		// The lexer guarantees a byte follows every backslash.
		i++
		switch slice[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case 'a':
			b.WriteByte(0x07)
		case 'b':
			b.WriteByte(0x08)
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte(0x0B)
		case 'f':
			b.WriteByte(0x0C)
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0x00)
		case 'x':
			if i+2 >= len(slice) {
				return "", syntaxError(ErrStringEscSeqInvalid, span)
			}

			hi, ok1 := hexDigit(slice[i+1])
			lo, ok2 := hexDigit(slice[i+2])
			value := hi<<4 | lo
			if !ok1 || !ok2 || value > 0x7F {
				return "", syntaxError(ErrStringEscSeqInvalid, span)
			}

			b.WriteByte(value)
			i += 2
		default:
			return "", syntaxError(ErrStringEscSeqInvalid, span)
		}
	}

	return b.String(), nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

func (p *parser) symbolLit() (Sym, bool, error) {
	tok, ok := p.accept(TokenSym)
	if !ok {
		return 0, false, nil
	}

	unescaped, err := p.unescape(tok)
	if err != nil {
		return 0, false, err
	}

	return p.interner.Intern(unescaped), true, nil
}

func (p *parser) stringLit() (string, bool, error) {
	tok, ok := p.accept(TokenStr)
	if !ok {
		return "", false, nil
	}

	unescaped, err := p.unescape(tok)
	if err != nil {
		return "", false, err
	}

	return unescaped, true, nil
}

// intLit decodes an integer literal with overflow-checked accumulation. The
// base follows the 0b/0o/0x prefix; a leading zero alone stays decimal.
func (p *parser) intLit() (int64, bool, error) {
	tok, ok := p.accept(TokenInt)
	if !ok {
		return 0, false, nil
	}

	slice := tok.Value
	base := int64(10)

	switch {
	case strings.HasPrefix(slice, "0b"):
		base, slice = 2, slice[2:]
	case strings.HasPrefix(slice, "0o"):
		base, slice = 8, slice[2:]
	case strings.HasPrefix(slice, "0x"):
		base, slice = 16, slice[2:]
	}

	var value int64

	for i := 0; i < len(slice); i++ {
		digit, _ := hexDigit(slice[i])
		d := int64(digit)

		if value > (math.MaxInt64-d)/base {
			return 0, false, syntaxError(ErrIntInvalid, tokenSpan(tok))
		}

		value = value*base + d
	}

	return value, true, nil
}

func (p *parser) floatLit() (float64, bool, error) {
	tok, ok := p.accept(TokenFloat)
	if !ok {
		return 0, false, nil
	}

	value, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		return 0, false, syntaxError(ErrFloatInvalid, tokenSpan(tok))
	}

	return value, true, nil
}

func (p *parser) boolLit() (bool, bool) {
	if _, ok := p.accept(TokenTrue); ok {
		return true, true
	}

	if _, ok := p.accept(TokenFalse); ok {
		return false, true
	}

	return false, false
}

// Tuples and lists.

// tupleEntry parses `ident: expr` as a named entry and anything else as a
// positional one. A trailing `ident:` with no right-hand side puns the key:
// it binds the key to the identifier of the same name.
func (p *parser) tupleEntry() (Entry[Expr], bool, error) {
	i := p.index

	if key, ok := p.acceptSym(TokenIdent); ok {
		if _, ok := p.accept(TokenColon); ok {
			value, ok, err := p.expr()
			if err != nil {
				return Entry[Expr]{}, false, err
			}

			if !ok {
				value = NewExpr(IdentExpr{Name: key})
			}

			return Named(key, value), true, nil
		}

		p.index = i
	}

	expr, ok, err := p.expr()
	if err != nil || !ok {
		return Entry[Expr]{}, false, err
	}

	return Pos(expr), true, nil
}

// tuple parses a parenthesised entry sequence. Mixed positional and named
// ordering is accepted; the container keeps them straight.
func (p *parser) tuple() (Tuple[Expr], bool, error) {
	lparen, ok := p.accept(TokenLParen)
	if !ok {
		return Tuple[Expr]{}, false, nil
	}

	var entries []Entry[Expr]

	entry, ok, err := p.tupleEntry()
	if err != nil {
		return Tuple[Expr]{}, false, err
	}

	if ok {
		entries = append(entries, entry)

		for {
			if _, ok := p.accept(TokenComma); !ok {
				break
			}

			entry, ok, err := p.tupleEntry()
			if err != nil {
				return Tuple[Expr]{}, false, err
			}

			if ok {
				entries = append(entries, entry)
			}
		}
	}

	if _, ok := p.accept(TokenRParen); !ok {
		return Tuple[Expr]{}, false, syntaxError(ErrDelimiters, tokenSpan(lparen))
	}

	return FromEntries(entries), true, nil
}

func (p *parser) list() ([]Expr, bool, error) {
	lbracket, ok := p.accept(TokenLBracket)
	if !ok {
		return nil, false, nil
	}

	items := []Expr{}

	item, ok, err := p.expr()
	if err != nil {
		return nil, false, err
	}

	if ok {
		items = append(items, item)

		for {
			if _, ok := p.accept(TokenComma); !ok {
				break
			}

			item, ok, err := p.expr()
			if err != nil {
				return nil, false, err
			}

			if ok {
				items = append(items, item)
			}
		}
	}

	if _, ok := p.accept(TokenRBracket); !ok {
		return nil, false, syntaxError(ErrDelimiters, tokenSpan(lbracket))
	}

	return items, true, nil
}

// Patterns.

func (p *parser) patTupleEntry() (Entry[Pat], bool, error) {
	if tok, ok := p.accept(TokenIdent); ok {
		key := p.interner.Intern(tok.Value)

		if _, ok := p.accept(TokenColon); ok {
			pat, ok, err := p.pat()
			if err != nil {
				return Entry[Pat]{}, false, err
			}

			if !ok {
				pat = IdentPat{Name: key}
			}

			return Named(key, pat), true, nil
		}

		return Pos(identPat(tok.Value, key)), true, nil
	}

	pat, ok, err := p.pat()
	if err != nil || !ok {
		return Entry[Pat]{}, false, err
	}

	return Pos(pat), true, nil
}

func (p *parser) patTuple() (Tuple[Pat], bool, error) {
	lparen, ok := p.accept(TokenLParen)
	if !ok {
		return Tuple[Pat]{}, false, nil
	}

	var entries []Entry[Pat]

	entry, ok, err := p.patTupleEntry()
	if err != nil {
		return Tuple[Pat]{}, false, err
	}

	if ok {
		entries = append(entries, entry)

		for {
			if _, ok := p.accept(TokenComma); !ok {
				break
			}

			entry, ok, err := p.patTupleEntry()
			if err != nil {
				return Tuple[Pat]{}, false, err
			}

			if ok {
				entries = append(entries, entry)
			}
		}
	}

	if _, ok := p.accept(TokenRParen); !ok {
		return Tuple[Pat]{}, false, syntaxError(ErrDelimiters, tokenSpan(lparen))
	}

	return FromEntries(entries), true, nil
}

// pat parses a pattern: a tuple pattern, a binding identifier, a context
// identifier, or a literal atom. The identifier `_` is the wildcard.
func (p *parser) pat() (Pat, bool, error) {
	if entries, ok, err := p.patTuple(); err != nil {
		return nil, false, err
	} else if ok {
		return TuplePat{Entries: entries}, true, nil
	}

	if tok, ok := p.accept(TokenIdent); ok {
		return identPat(tok.Value, p.interner.Intern(tok.Value)), true, nil
	}

	if name, ok := p.acceptSym(TokenCtxIdent); ok {
		return CtxIdentPat{Name: name}, true, nil
	}

	if sym, ok, err := p.symbolLit(); err != nil {
		return nil, false, err
	} else if ok {
		return SymPat{Value: sym}, true, nil
	}

	if str, ok, err := p.stringLit(); err != nil {
		return nil, false, err
	} else if ok {
		return StrPat{Value: str}, true, nil
	}

	if value, ok, err := p.intLit(); err != nil {
		return nil, false, err
	} else if ok {
		return IntPat{Value: value}, true, nil
	}

	if value, ok, err := p.floatLit(); err != nil {
		return nil, false, err
	} else if ok {
		return FloatPat{Value: value}, true, nil
	}

	if value, ok := p.boolLit(); ok {
		return BoolPat{Value: value}, true, nil
	}

	return nil, false, nil
}

func identPat(lexeme string, name Sym) Pat {
	if lexeme == "_" {
		return WildPat{}
	}

	return IdentPat{Name: name}
}

// Statements.

// stmt parses `let pat = expr` or a bare expression. A pattern tuple between
// the binding pattern and `=` is function sugar:
// `let f(x) = body` means `let f = |x| body`.
func (p *parser) stmt() (Stmt, bool, error) {
	if _, ok := p.accept(TokenLet); ok {
		pat, ok, err := p.pat()
		if err != nil {
			return nil, false, err
		}

		if !ok {
			return nil, false, p.invalidToken()
		}

		params, hasParams, err := p.patTuple()
		if err != nil {
			return nil, false, err
		}

		if _, ok := p.accept(TokenEq); !ok {
			return nil, false, p.invalidToken()
		}

		value, ok, err := p.expr()
		if err != nil {
			return nil, false, err
		}

		if !ok {
			return nil, false, p.invalidToken()
		}

		if hasParams {
			value = NewExpr(FnExpr{Params: params, Body: value})
		}

		return LetStmt{Pat: pat, Value: value}, true, nil
	}

	expr, ok, err := p.expr()
	if err != nil || !ok {
		return nil, false, err
	}

	return ExprStmt{Expr: expr}, true, nil
}

func (p *parser) stmts() ([]Stmt, error) {
	var stmts []Stmt

	stmt, ok, err := p.stmt()
	if err != nil {
		return nil, err
	}

	if ok {
		stmts = append(stmts, stmt)

		for {
			if _, ok := p.accept(TokenComma); !ok {
				break
			}

			stmt, ok, err := p.stmt()
			if err != nil {
				return nil, err
			}

			if ok {
				stmts = append(stmts, stmt)
			}
		}
	}

	return stmts, nil
}

// block parses `{ stmt, stmt, ... }`. An empty block collapses to Void and a
// block holding exactly one expression statement collapses to that
// expression.
func (p *parser) block() (Expr, bool, error) {
	lbrace, ok := p.accept(TokenLBrace)
	if !ok {
		return Expr{}, false, nil
	}

	stmts, err := p.stmts()
	if err != nil {
		return Expr{}, false, err
	}

	if _, ok := p.accept(TokenRBrace); !ok {
		return Expr{}, false, syntaxError(ErrDelimiters, tokenSpan(lbrace))
	}

	if len(stmts) == 0 {
		return NewExpr(VoidExpr{}), true, nil
	}

	if len(stmts) == 1 {
		if es, ok := stmts[0].(ExprStmt); ok {
			return es.Expr, true, nil
		}
	}

	return NewExpr(BlockExpr{Stmts: stmts}), true, nil
}

// Expressions.

func (p *parser) atom() (Expr, bool, error) {
	if entries, ok, err := p.tuple(); err != nil {
		return Expr{}, false, err
	} else if ok {
		return NewExpr(TupleExpr{Entries: entries}), true, nil
	}

	if items, ok, err := p.list(); err != nil {
		return Expr{}, false, err
	} else if ok {
		return NewExpr(ListExpr{Items: items}), true, nil
	}

	if block, ok, err := p.block(); err != nil {
		return Expr{}, false, err
	} else if ok {
		return block, true, nil
	}

	if name, ok := p.acceptSym(TokenIdent); ok {
		return NewExpr(IdentExpr{Name: name}), true, nil
	}

	if name, ok := p.acceptSym(TokenCtxIdent); ok {
		return NewExpr(CtxIdentExpr{Name: name}), true, nil
	}

	if sym, ok, err := p.symbolLit(); err != nil {
		return Expr{}, false, err
	} else if ok {
		return NewExpr(SymExpr{Value: sym}), true, nil
	}

	if str, ok, err := p.stringLit(); err != nil {
		return Expr{}, false, err
	} else if ok {
		return NewExpr(StrExpr{Value: str}), true, nil
	}

	if value, ok, err := p.intLit(); err != nil {
		return Expr{}, false, err
	} else if ok {
		return NewExpr(IntExpr{Value: value}), true, nil
	}

	if value, ok, err := p.floatLit(); err != nil {
		return Expr{}, false, err
	} else if ok {
		return NewExpr(FloatExpr{Value: value}), true, nil
	}

	if value, ok := p.boolLit(); ok {
		return NewExpr(BoolExpr{Value: value}), true, nil
	}

	return Expr{}, false, nil
}

// functionParams parses `|pat, pat, ...|` using the pattern tuple grammar.
func (p *parser) functionParams() (Tuple[Pat], bool, error) {
	if _, ok := p.accept(TokenOr); !ok {
		return Tuple[Pat]{}, false, nil
	}

	var entries []Entry[Pat]

	entry, ok, err := p.patTupleEntry()
	if err != nil {
		return Tuple[Pat]{}, false, err
	}

	if ok {
		entries = append(entries, entry)

		for {
			if _, ok := p.accept(TokenComma); !ok {
				break
			}

			entry, ok, err := p.patTupleEntry()
			if err != nil {
				return Tuple[Pat]{}, false, err
			}

			if ok {
				entries = append(entries, entry)
			}
		}
	}

	if _, ok := p.accept(TokenOr); !ok {
		return Tuple[Pat]{}, false, p.invalidToken()
	}

	return FromEntries(entries), true, nil
}

func (p *parser) function() (Expr, bool, error) {
	params, ok, err := p.functionParams()
	if err != nil || !ok {
		return Expr{}, false, err
	}

	body, ok, err := p.expr()
	if err != nil {
		return Expr{}, false, err
	}

	if !ok {
		body = NewExpr(VoidExpr{})
	}

	return NewExpr(FnExpr{Params: params, Body: body}), true, nil
}

func (p *parser) ifElse() (Expr, bool, error) {
	if _, ok := p.accept(TokenIf); !ok {
		return Expr{}, false, nil
	}

	cond, ok, err := p.expr()
	if err != nil {
		return Expr{}, false, err
	}

	if !ok {
		return Expr{}, false, p.invalidToken()
	}

	then, ok, err := p.block()
	if err != nil {
		return Expr{}, false, err
	}

	if !ok {
		return Expr{}, false, p.invalidToken()
	}

	if _, ok := p.accept(TokenElse); !ok {
		return Expr{}, false, p.invalidToken()
	}

	var elseExpr Expr

	if chained, ok, err := p.ifElse(); err != nil {
		return Expr{}, false, err
	} else if ok {
		elseExpr = chained
	} else if block, ok, err := p.block(); err != nil {
		return Expr{}, false, err
	} else if ok {
		elseExpr = block
	} else {
		return Expr{}, false, p.invalidToken()
	}

	return NewExpr(IfElseExpr{Cond: cond, Then: then, Else: elseExpr}), true, nil
}

// forLoop rejects the reserved `for` keyword. Its syntax and semantics are
// not defined yet.
func (p *parser) forLoop() (Expr, bool, error) {
	tok, ok := p.accept(TokenFor)
	if !ok {
		return Expr{}, false, nil
	}

	err := syntaxError(ErrInvalidToken, tokenSpan(tok))

	return Expr{}, false, err.withDetail("for loops are not implemented")
}

// exprWithPrecedence climbs operators with at least min left binding power.
// Immediately after an atom, parenthesised tuples fold into call nodes, so
// f(x)(y) applies left to right.
func (p *parser) exprWithPrecedence(min int) (Expr, bool, error) {
	var left Expr

	if op, right, ok := p.acceptUnOp(); ok {
		operand, ok, err := p.exprWithPrecedence(right)
		if err != nil {
			return Expr{}, false, err
		}

		if !ok {
			return Expr{}, false, p.invalidToken()
		}

		left = NewExpr(UnaryExpr{Op: op, Operand: operand})
	} else {
		atom, ok, err := p.atom()
		if err != nil || !ok {
			return Expr{}, false, err
		}

		left = atom

		for {
			args, ok, err := p.tuple()
			if err != nil {
				return Expr{}, false, err
			}

			if !ok {
				break
			}

			left = NewExpr(CallExpr{Fn: left, Args: args})
		}
	}

	for {
		op, lbp, rbp, ok := p.acceptBinOp()
		if !ok {
			break
		}

		if lbp < min {
			p.index--
			break
		}

		right, ok, err := p.exprWithPrecedence(rbp)
		if err != nil {
			return Expr{}, false, err
		}

		if !ok {
			return Expr{}, false, p.invalidToken()
		}

		left = NewExpr(BinaryExpr{Op: op, Left: left, Right: right})
	}

	return left, true, nil
}

func (p *parser) expr() (Expr, bool, error) {
	if fn, ok, err := p.function(); err != nil {
		return Expr{}, false, err
	} else if ok {
		return fn, true, nil
	}

	if expr, ok, err := p.ifElse(); err != nil {
		return Expr{}, false, err
	} else if ok {
		return expr, true, nil
	}

	if expr, ok, err := p.forLoop(); err != nil {
		return Expr{}, false, err
	} else if ok {
		return expr, true, nil
	}

	return p.exprWithPrecedence(0)
}

// Modules.

// modulePath parses `[.]seg.seg.seg`. A leading dot marks the path local to
// the declaring module.
func (p *parser) modulePath() (ModPath, bool) {
	i := p.index
	_, local := p.accept(TokenPeriod)

	segment, ok := p.acceptSym(TokenIdent)
	if !ok {
		p.index = i
		return ModPath{}, false
	}

	segments := []Sym{segment}

	for {
		if _, ok := p.accept(TokenPeriod); !ok {
			break
		}

		segment, ok := p.acceptSym(TokenIdent)
		if !ok {
			break
		}

		segments = append(segments, segment)
	}

	return ModPath{Local: local, Segments: segments}, true
}

// bindings parses `(name, name, ...)`. Renames are not expressible yet, so
// source and destination are always the same symbol.
func (p *parser) bindings() ([]Binding, bool, error) {
	if _, ok := p.accept(TokenLParen); !ok {
		return nil, false, nil
	}

	var bindings []Binding

	if name, ok := p.acceptSym(TokenIdent); ok {
		bindings = append(bindings, Binding{Source: name, Dest: name})

		for {
			if _, ok := p.accept(TokenComma); !ok {
				break
			}

			if name, ok := p.acceptSym(TokenIdent); ok {
				bindings = append(bindings, Binding{Source: name, Dest: name})
			}
		}
	}

	if _, ok := p.accept(TokenRParen); !ok {
		return nil, false, p.invalidToken()
	}

	return bindings, true, nil
}

func (p *parser) dep() (Dep, bool, error) {
	path, ok := p.modulePath()
	if !ok {
		return Dep{}, false, nil
	}

	bindings, ok, err := p.bindings()
	if err != nil {
		return Dep{}, false, err
	}

	if !ok {
		return Dep{}, false, p.invalidToken()
	}

	return Dep{Path: path, Bindings: bindings}, true, nil
}

func (p *parser) deps() ([]Dep, error) {
	var deps []Dep

	if _, ok := p.accept(TokenUse); !ok {
		return deps, nil
	}

	if _, ok := p.accept(TokenLBrace); !ok {
		return nil, p.invalidToken()
	}

	dep, ok, err := p.dep()
	if err != nil {
		return nil, err
	}

	if ok {
		deps = append(deps, dep)

		for {
			if _, ok := p.accept(TokenComma); !ok {
				break
			}

			dep, ok, err := p.dep()
			if err != nil {
				return nil, err
			}

			if ok {
				deps = append(deps, dep)
			}
		}
	}

	if _, ok := p.accept(TokenRBrace); !ok {
		return nil, p.invalidToken()
	}

	return deps, nil
}

// defs parses the module's definitions: comma-separated let statements. A
// bare expression among them is a module-level error blamed on its first
// token.
func (p *parser) defs() ([]Stmt, error) {
	var defs []Stmt

	start := p.index

	stmt, ok, err := p.stmt()
	if err != nil {
		return nil, err
	}

	for ok {
		if _, isLet := stmt.(LetStmt); !isLet {
			return nil, syntaxError(ErrNoUnboundExprAtModuleLevel, p.spanAt(start))
		}

		defs = append(defs, stmt)

		if _, ok := p.accept(TokenComma); !ok {
			break
		}

		start = p.index

		stmt, ok, err = p.stmt()
		if err != nil {
			return nil, err
		}
	}

	return defs, nil
}

func (p *parser) spanAt(index int) Span {
	if index < len(p.tokens) {
		return tokenSpan(p.tokens[index])
	}

	return p.errSpan()
}

func (p *parser) module() (*Mod, error) {
	deps, err := p.deps()
	if err != nil {
		return nil, err
	}

	p.accept(TokenComma)

	defs, err := p.defs()
	if err != nil {
		return nil, err
	}

	return &Mod{Deps: deps, Defs: defs}, nil
}
